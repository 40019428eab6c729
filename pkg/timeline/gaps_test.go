package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

var testNow = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

func row(from, to string) models.IntervalRow {
	return models.IntervalRow{From: strPtr(from), To: strPtr(to)}
}

func span(fromYear, fromMonth, toYear, toMonth int) Span {
	return Span{
		Start: normalizers.NewMonthKey(fromYear, fromMonth),
		End:   normalizers.NewMonthKey(toYear, toMonth),
	}
}

func TestSpanMonths(t *testing.T) {
	assert.Equal(t, 1, span(2015, 3, 2015, 3).Months())
	assert.Equal(t, 6, span(2015, 3, 2015, 8).Months())
	assert.Equal(t, 12, span(2015, 1, 2015, 12).Months())
}

func TestGaps(t *testing.T) {
	t.Run("gap between two rows", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2014-06", "2015-02"),
			row("2015-09", "2016-01"),
		}
		gaps := Gaps(rows, span(2014, 6, 2016, 1), testNow)
		require.Len(t, gaps, 1)
		assert.Equal(t, span(2015, 3, 2015, 8), gaps[0])
	})

	t.Run("adjacent rows do not gap", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-06"),
			row("2015-07", "2015-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		assert.Empty(t, gaps)
	})

	t.Run("overlapping rows do not gap", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2015-08"),
			row("2015-06", "2015-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		assert.Empty(t, gaps)
	})

	t.Run("leading and trailing gaps clamped to window", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2019-04", "2021-06"),
		}
		gaps := Gaps(rows, span(2018, 1, 2022, 12), testNow)
		require.Len(t, gaps, 2)
		assert.Equal(t, span(2018, 1, 2019, 3), gaps[0])
		assert.Equal(t, span(2021, 7, 2022, 12), gaps[1])
	})

	t.Run("rows entirely before the window gap the whole window", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2010-01", "2010-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		require.Len(t, gaps, 1)
		assert.Equal(t, span(2015, 1, 2015, 12), gaps[0])
	})

	t.Run("rows entirely after the window gap the whole window", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2020-01", "2020-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		require.Len(t, gaps, 1)
		assert.Equal(t, span(2015, 1, 2015, 12), gaps[0])
	})

	t.Run("containing row swallows later shorter row", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-01", "2016-12"),
			row("2015-06", "2015-09"),
			row("2017-06", "2017-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2017, 12), testNow)
		require.Len(t, gaps, 1)
		assert.Equal(t, span(2017, 1, 2017, 5), gaps[0])
	})

	t.Run("present resolves to current month", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2023-01", "PRESENT"),
		}
		gaps := Gaps(rows, span(2023, 1, 2024, 7), testNow)
		assert.Empty(t, gaps)
	})

	t.Run("rows missing an endpoint are ignored", func(t *testing.T) {
		rows := []models.IntervalRow{
			{From: strPtr("2015-01"), To: nil},
			row("2015-06", "2015-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		require.Len(t, gaps, 1)
		assert.Equal(t, span(2015, 1, 2015, 5), gaps[0])
	})

	t.Run("inverted rows are ignored", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-12", "2015-01"),
			row("2015-01", "2015-12"),
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		assert.Empty(t, gaps)
	})

	t.Run("zero usable rows produce zero gaps", func(t *testing.T) {
		rows := []models.IntervalRow{
			{From: nil, To: nil},
			{From: strPtr("garbage"), To: strPtr("2015-06")},
		}
		gaps := Gaps(rows, span(2015, 1, 2015, 12), testNow)
		assert.Nil(t, gaps)
	})

	t.Run("unsorted input is handled", func(t *testing.T) {
		rows := []models.IntervalRow{
			row("2015-09", "2016-01"),
			row("2014-06", "2015-02"),
		}
		gaps := Gaps(rows, span(2014, 6, 2016, 1), testNow)
		require.Len(t, gaps, 1)
		assert.Equal(t, span(2015, 3, 2015, 8), gaps[0])
	})
}
