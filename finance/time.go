package finance

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - Calendar month (the only time granularity a projection needs)
// =============================================================================

// Month is the first instant (UTC) of a calendar month.
type Month struct {
	Time time.Time
}

const monthLayout = "2006-01"

// Constructors
func NewMonth(year int, month time.Month) Month {
	return Month{Time: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// StartOfMonth returns the month containing t.
func StartOfMonth(t time.Time) Month { return NewMonth(t.Year(), t.Month()) }

// ParseMonth accepts "2006-01" or "2006-01-02" (the day is dropped).
func ParseMonth(s string) (Month, error) {
	if t, err := time.Parse(monthLayout, s); err == nil {
		return StartOfMonth(t), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (use YYYY-MM)", s)
	}
	return StartOfMonth(t), nil
}

// Comparison
func (m Month) Before(other Month) bool { return m.Time.Before(other.Time) }
func (m Month) After(other Month) bool { return m.Time.After(other.Time) }
func (m Month) Equal(other Month) bool { return m.Time.Equal(other.Time) }

// Arithmetic
func (m Month) AddMonths(n int) Month { return Month{Time: m.Time.AddDate(0, n, 0)} }

// MonthsBetween returns how many months `to` is after `from`.
func MonthsBetween(from, to Month) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// Properties
func (m Month) Year() int { return m.Time.Year() }
func (m Month) Month() time.Month { return m.Time.Month() }
func (m Month) IsZero() bool { return m.Time.IsZero() }
func (m Month) String() string { return m.Time.Format(monthLayout) }

func (m Month) MarshalText() ([]byte, error) {
	if m.IsZero() {
		return []byte{}, nil
	}
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
