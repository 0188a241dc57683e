package mess

import (
	"fmt"
	"strings"
)

// DefaultPointValues is the shipped rule-key weight set, applied to
// every weekday until an admin edits the table
var DefaultPointValues = map[string]float64{
	"X":   1,
	"0":   0,
	"B":   0.25,
	"L":   0.35,
	"S":   0.45,
	"B/L": 0.65,
	"B/S": 0.75,
	"L/S": 0.85,
}

// Engine computes per-member rule-key sequences and point totals over
// date ranges, for admin reporting and CSV export.
type Engine struct {
	repo *Repository
}

// NewEngine creates a points engine over the mess repository
func NewEngine(repo *Repository) *Engine {
	return &Engine{repo: repo}
}

// lookupPoints resolves a key's weight through the weekday-partitioned
// table. Unmapped keys contribute zero.
func lookupPoints(table PointTable, weekday, key string) float64 {
	sub, ok := table[weekday]
	if !ok {
		return 0
	}
	return sub[key]
}

// keyForDay resolves one member's rule key for one date in a range
// report. Exception windows override everything; absent days fall back
// to all-true when the day is still open or on/after the member's first
// recorded meal, and to "0" otherwise. A member with no recorded meals
// anchors at today, so today itself still bills as full attendance.
func keyForDay(date, today, firstMealDate string, sel *DaySelection, windows []ExceptionWindow) string {
	if len(windows) > 0 {
		inside := false
		for _, w := range windows {
			if w.Contains(date) {
				inside = true
				break
			}
		}
		if !inside {
			return KeyNone
		}
	}

	if sel == nil {
		if date > today {
			return KeyAll
		}
		anchor := firstMealDate
		if anchor == "" {
			anchor = today
		}
		if date >= anchor {
			return KeyAll
		}
		return KeyNone
	}

	return DeriveKeyFromSelection(*sel)
}

// RangeReport computes every roster member's day-by-day rule keys and
// point total over the closed range [from, to]. The range must stay
// inside one calendar month, since rosters and exception windows are
// month-scoped.
func (e *Engine) RangeReport(from, to, today string, names map[string]string) ([]MemberReport, error) {
	if !ValidDate(from) || !ValidDate(to) {
		return nil, fmt.Errorf("invalid date range %q..%q", from, to)
	}
	if MonthOf(from) != MonthOf(to) {
		return nil, fmt.Errorf("range %q..%q spans more than one month", from, to)
	}
	dates := DatesInRange(from, to)
	if dates == nil {
		return nil, fmt.Errorf("invalid date range %q..%q", from, to)
	}

	month := MonthOf(from)
	roster, err := e.repo.GetRoster(month)
	if err != nil {
		return nil, err
	}

	table, err := e.repo.GetPointTable()
	if err != nil {
		return nil, err
	}

	reports := make([]MemberReport, 0, len(roster))
	for _, email := range roster {
		windows, err := e.repo.GetMemberExceptions(month, email)
		if err != nil {
			return nil, err
		}
		selections, err := e.repo.GetMemberSelections(email, month)
		if err != nil {
			return nil, err
		}
		firstMealDate, err := e.repo.GetFirstMealDate(email)
		if err != nil {
			return nil, err
		}

		keys := make(map[string]string, len(dates))
		total := 0.0
		for _, d := range dates {
			var sel *DaySelection
			if s, ok := selections[d]; ok {
				sel = &s
			}
			key := keyForDay(d, today, firstMealDate, sel, windows)
			keys[d] = key
			total += lookupPoints(table, WeekdayOf(d), key)
		}

		reports = append(reports, MemberReport{
			Email: email,
			Name:  names[email],
			Keys:  keys,
			Total: fmt.Sprintf("%.2f", total),
		})
	}
	return reports, nil
}

// DayReport computes every roster member's rule key for a single date.
// The absent-day fallback here is simpler than the range report's:
// "X" if the date is strictly in the future, "0" otherwise; no
// first-meal anchor is consulted.
func (e *Engine) DayReport(date, today string, names map[string]string) ([]DayMarking, error) {
	if !ValidDate(date) {
		return nil, fmt.Errorf("invalid date %q", date)
	}

	month := MonthOf(date)
	roster, err := e.repo.GetRoster(month)
	if err != nil {
		return nil, err
	}

	markings := make([]DayMarking, 0, len(roster))
	for _, email := range roster {
		windows, err := e.repo.GetMemberExceptions(month, email)
		if err != nil {
			return nil, err
		}
		sel, err := e.repo.GetDaySelection(email, date)
		if err != nil {
			return nil, err
		}

		var key string
		switch {
		case outsideAllWindows(date, windows):
			key = KeyNone
		case sel == nil && date > today:
			key = KeyAll
		case sel == nil:
			key = KeyNone
		default:
			key = DeriveKeyFromSelection(*sel)
		}

		markings = append(markings, DayMarking{
			Email: email,
			Name:  names[email],
			Key:   key,
		})
	}
	return markings, nil
}

// MealCounts tallies expected attendance per meal for each of the given
// dates across that date's roster, for the kitchen counter display.
// Absent ledger entries count as full attendance for open days.
func (e *Engine) MealCounts(dates []string, today string) ([]MealCount, error) {
	counts := make([]MealCount, 0, len(dates))
	for _, date := range dates {
		month := MonthOf(date)
		roster, err := e.repo.GetRoster(month)
		if err != nil {
			return nil, err
		}

		count := MealCount{Date: date}
		for _, email := range roster {
			windows, err := e.repo.GetMemberExceptions(month, email)
			if err != nil {
				return nil, err
			}
			if outsideAllWindows(date, windows) {
				continue
			}

			sel, err := e.repo.GetDaySelection(email, date)
			if err != nil {
				return nil, err
			}
			if sel == nil {
				if date <= today {
					continue
				}
				sel = &DaySelection{Breakfast: true, Lunch: true, Supper: true}
			}
			if sel.Breakfast {
				count.Breakfast++
			}
			if sel.Lunch {
				count.Lunch++
			}
			if sel.Supper {
				count.Supper++
			}
		}
		counts = append(counts, count)
	}
	return counts, nil
}

func outsideAllWindows(date string, windows []ExceptionWindow) bool {
	if len(windows) == 0 {
		return false
	}
	for _, w := range windows {
		if w.Contains(date) {
			return false
		}
	}
	return true
}

// SeedDefaultPointTable writes the default weights for every weekday.
// Only fills cells that are missing, so admin edits survive restarts.
func SeedDefaultPointTable(repo *Repository) error {
	table, err := repo.GetPointTable()
	if err != nil {
		return err
	}
	for _, weekday := range Weekdays {
		for key, value := range DefaultPointValues {
			if _, ok := table[weekday][key]; ok {
				continue
			}
			if err := repo.SetPointValue(weekday, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// NormalizeEmailKey lowercases an email for use as a member identifier
func NormalizeEmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
