package mess

import (
	"strings"
)

// Gate authorizes meal-marking requests against the trusted date, the
// monthly roster and the member's exception windows.
type Gate struct {
	repo *Repository
}

// NewGate creates a membership gate over the mess repository
func NewGate(repo *Repository) *Gate {
	return &Gate{repo: repo}
}

// Authorize decides whether a member may mutate the given date. The
// month is derived from the target date, not from the request time, so
// a roster change for month M only affects dates within M.
//
// Returns an empty reason when the mutation is allowed. Refusals are
// outcomes, not errors; an error means the lookup itself failed.
func (g *Gate) Authorize(email, date, today string) (ForbiddenReason, error) {
	// Today and past dates are immutable. ISO dates order correctly
	// as strings.
	if date <= today {
		return ReasonLockedOrPast, nil
	}

	month := MonthOf(date)
	email = strings.ToLower(email)

	member, err := g.repo.IsRosterMember(month, email)
	if err != nil {
		return "", err
	}
	if !member {
		return ReasonNotInMonthlyList, nil
	}

	windows, err := g.repo.GetMemberExceptions(month, email)
	if err != nil {
		return "", err
	}
	if len(windows) == 0 {
		// No windows declared: the member is unrestricted.
		return "", nil
	}
	for _, w := range windows {
		if w.Contains(date) {
			return "", nil
		}
	}
	return ReasonExceptionBlock, nil
}
