package mess

// PendingTotal is a member's outstanding balance across all months,
// recomputed in full from the fee records each time it is needed.
func PendingTotal(records []FeeRecord) float64 {
	total := 0.0
	for _, f := range records {
		total += f.Pending
	}
	return total
}

// BuildFeeSummary derives the student-facing fee view for one month:
// the month's own numbers, the balance carried over from earlier
// months, and the total currently due.
func BuildFeeSummary(records []FeeRecord, month string) FeeSummary {
	summary := FeeSummary{Month: month}

	for _, f := range records {
		if f.Month == month {
			summary.Fee = f.Fee
			summary.Paid = f.Paid
			summary.Pending = f.Pending
			break
		}
	}

	summary.PendingTotal = PendingTotal(records)

	previous := summary.PendingTotal - summary.Pending
	if previous < 0 {
		previous = 0
	}
	summary.PreviousPending = previous
	summary.TotalDue = summary.Fee + summary.PreviousPending

	return summary
}
