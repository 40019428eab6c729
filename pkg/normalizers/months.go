package normalizers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Present is the sentinel meaning "open-ended through the current month"
const Present = "PRESENT"

// MonthKey encodes a calendar month as year*12 + month so that month
// arithmetic and ordering are plain integer operations.
type MonthKey int

// NewMonthKey builds a key from a calendar year and 1-based month
func NewMonthKey(year, month int) MonthKey {
	return MonthKey(year*12 + month)
}

// MonthKeyFromTime returns the key of the month containing t
func MonthKeyFromTime(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), int(t.Month()))
}

// Year returns the calendar year of the key
func (k MonthKey) Year() int {
	return (int(k) - 1) / 12
}

// Month returns the 1-based calendar month of the key
func (k MonthKey) Month() int {
	return (int(k)-1)%12 + 1
}

// String formats the key as "YYYY-MM"
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year(), k.Month())
}

// ParseMonth parses a "YYYY-MM" string (a trailing "-DD" day component is
// tolerated and ignored) into a MonthKey.
func ParseMonth(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, "-", 3)
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, fmt.Errorf("invalid year in %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid month in %q", s)
	}
	return NewMonthKey(year, month), nil
}

// ResolveMonth parses a month string, resolving the PRESENT sentinel to
// the month containing now
func ResolveMonth(s string, now time.Time) (MonthKey, error) {
	if strings.EqualFold(strings.TrimSpace(s), Present) {
		return MonthKeyFromTime(now), nil
	}
	return ParseMonth(s)
}

// NormalizeMonth canonicalizes a month string to "YYYY-MM" form, leaving
// values it cannot parse untouched
func NormalizeMonth(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), Present) {
		return Present
	}
	key, err := ParseMonth(s)
	if err != nil {
		return s
	}
	return key.String()
}
