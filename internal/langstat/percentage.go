package langstat

import (
	"math"
	"slices"
)

// CalcPercentage converts byte totals into rounded percentages, largest
// first. Equal byte counts keep their insertion order. The rounded values
// are not renormalized, so they may sum to 99.9 or 100.1.
func CalcPercentage(totals *Totals) []Usage {
	if totals == nil || totals.Len() == 0 {
		return []Usage{}
	}

	type row struct {
		language string
		bytes    int64
	}

	rows := make([]row, 0, totals.Len())
	var sum int64
	for pair := totals.Oldest(); pair != nil; pair = pair.Next() {
		rows = append(rows, row{language: pair.Key, bytes: pair.Value})
		sum += pair.Value
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		switch {
		case a.bytes > b.bytes:
			return -1
		case a.bytes < b.bytes:
			return 1
		default:
			return 0
		}
	})

	out := make([]Usage, 0, len(rows))
	for _, r := range rows {
		pct := 0.0
		if sum != 0 {
			pct = float64(r.bytes) / float64(sum) * 100
		}
		out = append(out, Usage{Language: r.language, Percentage: round1(pct)})
	}
	return out
}

// round1 rounds half away from zero at the first decimal.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
