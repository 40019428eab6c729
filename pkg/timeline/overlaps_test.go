package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestOverlaps(t *testing.T) {
	t.Run("intersecting pair reported once", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-08"),
			row("2015-06", "2015-12"),
		}
		overlaps := Overlaps(rows, testNow)
		require.Len(t, overlaps, 1)
		assert.Equal(t, 0, overlaps[0].RowA)
		assert.Equal(t, 1, overlaps[0].RowB)
		assert.Equal(t, span(2015, 6, 2015, 8), overlaps[0].Span)
	})

	t.Run("shared boundary month overlaps", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-06"),
			row("2015-06", "2015-12"),
		}
		overlaps := Overlaps(rows, testNow)
		require.Len(t, overlaps, 1)
		assert.Equal(t, span(2015, 6, 2015, 6), overlaps[0].Span)
	})

	t.Run("adjacent rows do not overlap", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-06"),
			row("2015-07", "2015-12"),
		}
		assert.Empty(t, Overlaps(rows, testNow))
	})

	t.Run("three mutually overlapping rows yield three pairs", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-12"),
			row("2015-03", "2015-09"),
			row("2015-06", "2016-02"),
		}
		assert.Len(t, Overlaps(rows, testNow), 3)
	})

	t.Run("rows missing an endpoint never pair", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-12"),
			{From: strPtr("2015-03"), To: nil},
		}
		assert.Empty(t, Overlaps(rows, testNow))
	})
}

func TestCoveredMonths(t *testing.T) {
	t.Run("overlapping months counted once", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-06"),
			row("2015-04", "2015-09"),
		}
		assert.Equal(t, 9, CoveredMonths(rows, testNow))
	})

	t.Run("disjoint rows sum", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-03"),
			row("2016-01", "2016-02"),
		}
		assert.Equal(t, 5, CoveredMonths(rows, testNow))
	})

	t.Run("no rows", func(t *testing.T) {
		assert.Equal(t, 0, CoveredMonths(nil, testNow))
	})
}
