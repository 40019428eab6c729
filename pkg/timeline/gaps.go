// Package timeline implements month-granularity gap and overlap detection
// over extracted history rows.
package timeline

import (
	"sort"
	"time"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// Span is an inclusive month range
type Span struct {
	Start normalizers.MonthKey `json:"start"`
	End   normalizers.MonthKey `json:"end"`
}

// Months returns the number of months the span covers
func (s Span) Months() int {
	return int(s.End-s.Start) + 1
}

// resolvedRow is an interval row with both endpoints resolved to month keys
type resolvedRow struct {
	start normalizers.MonthKey
	end   normalizers.MonthKey
	index int
}

// resolveRows drops rows missing either endpoint or with unparseable
// dates, resolving PRESENT to the month containing now. Rows whose end
// precedes their start are dropped too.
func resolveRows(rows []models.IntervalRow, now time.Time) []resolvedRow {
	out := make([]resolvedRow, 0, len(rows))
	for i, row := range rows {
		if row.From == nil || row.To == nil || *row.From == "" || *row.To == "" {
			continue
		}
		start, err := normalizers.ResolveMonth(*row.From, now)
		if err != nil {
			continue
		}
		end, err := normalizers.ResolveMonth(*row.To, now)
		if err != nil {
			continue
		}
		if end < start {
			continue
		}
		out = append(out, resolvedRow{start: start, end: end, index: i})
	}
	return out
}

// Gaps returns the maximal sub-ranges of window not covered by any row.
// Rows missing an endpoint are ignored. Zero usable rows produce zero
// gaps; callers decide whether total absence deserves its own finding.
func Gaps(rows []models.IntervalRow, window Span, now time.Time) []Span {
	resolved := resolveRows(rows, now)
	if len(resolved) == 0 {
		return nil
	}

	sort.Slice(resolved, func(i, j int) bool {
		return resolved[i].start < resolved[j].start
	})

	var gaps []Span

	// Before the first row
	if resolved[0].start > window.Start {
		gaps = append(gaps, clamp(Span{Start: window.Start, End: resolved[0].start - 1}, window))
	}

	// Between consecutive rows. Adjacent or overlapping rows never gap;
	// the next row must start more than one month after the covered end.
	covered := resolved[0].end
	for _, row := range resolved[1:] {
		if row.start > covered+1 {
			gapStart := covered + 1
			gapEnd := row.start - 1
			if gapEnd >= window.Start && gapStart <= window.End {
				gaps = append(gaps, clamp(Span{Start: gapStart, End: gapEnd}, window))
			}
		}
		if row.end > covered {
			covered = row.end
		}
	}

	// After the last row
	if window.End > covered {
		gaps = append(gaps, clamp(Span{Start: covered + 1, End: window.End}, window))
	}

	return gaps
}

func clamp(s, window Span) Span {
	if s.Start < window.Start {
		s.Start = window.Start
	}
	if s.End > window.End {
		s.End = window.End
	}
	return s
}
