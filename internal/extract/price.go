package extract

import "strings"

// SplitRange parses an hourly range such as "$7.00-$20.00". Anything that is
// not exactly two parseable prices yields two empty amounts.
func SplitRange(text string) (from, to Amount) {
	parts := strings.Split(text, "-")
	if len(parts) != 2 {
		return Amount{}, Amount{}
	}
	from, to = parsePrice(parts[0]), parsePrice(parts[1])
	if !from.Valid || !to.Valid {
		return Amount{}, Amount{}
	}
	return from, to
}

// SplitBudget parses a fixed budget such as "$1,500". Empty or malformed input
// yields the empty amount.
func SplitBudget(text string) Amount {
	return parsePrice(text)
}
