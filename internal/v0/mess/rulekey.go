package mess

import "strings"

// Rule keys summarize a day's three meal booleans:
// all three -> "X", none -> "0", otherwise the present letters
// joined with "/" in fixed B,L,S order.
const (
	KeyAll  = "X"
	KeyNone = "0"
)

// RuleKeys is the canonical key alphabet in display order
var RuleKeys = []string{"X", "0", "B", "L", "S", "B/L", "B/S", "L/S"}

// Weekdays in the order the point table is presented
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DeriveKey computes the rule key for one day's selection
func DeriveKey(breakfast, lunch, supper bool) string {
	if breakfast && lunch && supper {
		return KeyAll
	}

	var parts []string
	if breakfast {
		parts = append(parts, "B")
	}
	if lunch {
		parts = append(parts, "L")
	}
	if supper {
		parts = append(parts, "S")
	}

	if len(parts) == 0 {
		return KeyNone
	}
	return strings.Join(parts, "/")
}

// DeriveKeyFromSelection computes the rule key for a DaySelection
func DeriveKeyFromSelection(sel DaySelection) string {
	return DeriveKey(sel.Breakfast, sel.Lunch, sel.Supper)
}
