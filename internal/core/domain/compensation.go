package domain

import (
	"strconv"
	"strings"
)

// CoerceMoney turns any model-reported monetary value into a float64.
// Strings are stripped of currency symbols, commas and other non-numeric
// characters before parsing; unparseable or absent values coerce to zero.
func CoerceMoney(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		var b strings.Builder
		for _, r := range n {
			if r >= '0' && r <= '9' || r == '.' {
				b.WriteRune(r)
			}
		}
		parsed, err := strconv.ParseFloat(b.String(), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// Annualize converts one compensation entry to its yearly-equivalent
// value. Unrecognized periods contribute zero; callers count those
// occurrences for diagnostics but must not fail on them.
func Annualize(entry CompensationEntry) (amount float64, recognized bool) {
	switch strings.ToLower(strings.TrimSpace(entry.Period)) {
	case "monthly", "month", "per month":
		return entry.Amount * 12, true
	case "quarterly", "quarter", "per quarter":
		return entry.Amount * 4, true
	case "annual", "annually", "yearly", "year", "per year":
		return entry.Amount, true
	case "one-time", "onetime", "one time", "flat", "lump sum", "lump-sum":
		return entry.Amount, true
	default:
		return 0, false
	}
}

// NormalizeCompensation sums the annualized entries. When entries are
// absent, or the itemized sum nets to exactly zero, the separately
// reported flat total stands in. The result is always >= 0.
func NormalizeCompensation(entries []CompensationEntry, flatTotal float64) (total float64, unrecognized int) {
	for _, entry := range entries {
		annual, ok := Annualize(entry)
		if !ok {
			unrecognized++
			continue
		}
		total += annual
	}
	if total == 0 && flatTotal > 0 {
		total = flatTotal
	}
	if total < 0 {
		total = 0
	}
	return total, unrecognized
}
