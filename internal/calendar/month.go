package calendar

import (
	"fmt"
	"time"

	"github.com/timewise/timewise/internal/model"
)

const monthLayout = "2006-01"

// Month identifies a displayed calendar month.
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewMonth normalises year/month (e.g. month 13 rolls into the next year).
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the month containing d.
func MonthOf(d model.Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// First returns the first day of the month.
func (m Month) First() model.Date { return model.NewDate(m.Year, m.Month, 1) }

// Last returns the last day of the month.
func (m Month) Last() model.Date { return model.NewDate(m.Year, m.Month+1, 0) }

// Days returns the number of days in the month (28–31).
func (m Month) Days() int { return m.Last().Day() }

func (m Month) Next() Month { return NewMonth(m.Year, m.Month+1) }
func (m Month) Prev() Month { return NewMonth(m.Year, m.Month-1) }

// Contains reports whether d falls inside the month.
func (m Month) Contains(d model.Date) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
