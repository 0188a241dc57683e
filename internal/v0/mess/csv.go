package mess

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// RangeReportCSV renders a range report as CSV: one row per roster
// member with a column per day and a trailing point total.
func RangeReportCSV(reports []MemberReport, dates []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"Name"}, dates...)
	header = append(header, "Total Points")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range reports {
		row := make([]string, 0, len(dates)+2)
		row = append(row, displayName(r.Name, r.Email))
		for _, d := range dates {
			row = append(row, r.Keys[d])
		}
		row = append(row, r.Total)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// DayReportCSV renders a single-day marking report as CSV
func DayReportCSV(markings []DayMarking) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Marking"}); err != nil {
		return nil, err
	}
	for _, m := range markings {
		if err := w.Write([]string{displayName(m.Name, m.Email), m.Key}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// TodayMarkingRow is one member's mirror selection for the daily
// kitchen sheet
type TodayMarkingRow struct {
	Name      string
	Email     string
	Selection DaySelection
}

// TodayMarkingsCSV renders the kitchen sheet for one day from the
// per-user mirror entries. Mirror absence means all-false here, and
// exception windows are deliberately not consulted.
func TodayMarkingsCSV(rows []TodayMarkingRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Email", "Breakfast", "Lunch", "Supper", "MarkKey"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := []string{
			displayName(r.Name, r.Email),
			r.Email,
			yesNo(r.Selection.Breakfast),
			yesNo(r.Selection.Lunch),
			yesNo(r.Selection.Supper),
			DeriveKeyFromSelection(r.Selection),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// RosterCSV renders a month's roster as CSV
func RosterCSV(month string, emails []string, names map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Month", "Name", "Email"}); err != nil {
		return nil, err
	}
	for _, email := range emails {
		if err := w.Write([]string{month, displayName(names[email], email), email}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func displayName(name, email string) string {
	if name != "" {
		return name
	}
	return email
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// CSVFilename builds a content-disposition filename for an export
func CSVFilename(prefix, suffix string) string {
	return fmt.Sprintf("%s_%s.csv", prefix, suffix)
}
