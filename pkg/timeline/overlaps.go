package timeline

import (
	"time"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Overlap is a pair of rows whose months intersect. RowA/RowB are indexes
// into the caller's row slice.
type Overlap struct {
	RowA int  `json:"row_a"`
	RowB int  `json:"row_b"`
	Span Span `json:"span"`
}

// Overlaps compares every unordered pair of rows and returns those whose
// month ranges intersect: max(start_a, start_b) <= min(end_a, end_b).
// Rows missing an endpoint are ignored. Category comparability is the
// caller's concern.
func Overlaps(rows []models.IntervalRow, now time.Time) []Overlap {
	resolved := resolveRows(rows, now)

	var out []Overlap
	for i := 0; i < len(resolved); i++ {
		for j := i + 1; j < len(resolved); j++ {
			a, b := resolved[i], resolved[j]
			start := a.start
			if b.start > start {
				start = b.start
			}
			end := a.end
			if b.end < end {
				end = b.end
			}
			if start <= end {
				out = append(out, Overlap{
					RowA: a.index,
					RowB: b.index,
					Span: Span{Start: start, End: end},
				})
			}
		}
	}
	return out
}

// CoveredMonths returns how many distinct months the rows cover in total,
// counting overlapping months once
func CoveredMonths(rows []models.IntervalRow, now time.Time) int {
	resolved := resolveRows(rows, now)
	if len(resolved) == 0 {
		return 0
	}

	months := make(map[int]struct{})
	for _, row := range resolved {
		for k := row.start; k <= row.end; k++ {
			months[int(k)] = struct{}{}
		}
	}
	return len(months)
}
