package report

import (
	"fmt"
	"time"
)

// Month is a calendar month used to navigate reports.
type Month struct {
	Year  int
	Month int // 1-12
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month())}
}

// NewMonth validates year and month.
func NewMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("year out of range: %d", year)
	}
	return Month{Year: year, Month: month}, nil
}

// Next returns the following month.
func (m Month) Next() Month {
	if m.Month == 12 {
		return Month{Year: m.Year + 1, Month: 1}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	if m.Month == 1 {
		return Month{Year: m.Year - 1, Month: 12}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// CanAdvance reports whether navigating forward stays at or before the month
// containing now.
func (m Month) CanAdvance(now time.Time) bool {
	return m.Before(MonthOf(now))
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}
