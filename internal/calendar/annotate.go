// Package calendar computes which days of a displayed month carry entries and
// which weekdays were missed.
package calendar

import (
	"sort"

	"github.com/timewise/timewise/internal/model"
)

// Annotations are the derived day sets for one displayed month. They are
// recomputed from scratch whenever the entries or the month change.
type Annotations struct {
	Month Month `json:"month"`
	// HighlightedDays holds every distinct entry day across the whole list,
	// not only the displayed month. Sorted ascending.
	HighlightedDays []model.Date `json:"highlightedDays"`
	// MissedDays holds missed weekdays of the displayed month. Sorted ascending.
	MissedDays []model.Date `json:"missedDays"`
}

// Summary counts the displayed month's annotated days.
type Summary struct {
	EntryDays  int `json:"entryDays"`
	MissedDays int `json:"missedDays"`
}

// Annotate computes the calendar markings for month given the full entry list
// and the current day. It has no side effects.
//
// A day of month is missed when it is a weekday, strictly after the earliest
// entry date, strictly before today, and has no entry. With no entries nothing
// is ever missed.
func Annotate(entries []model.TimelineEntry, month Month, today model.Date) Annotations {
	days := make(map[model.Date]struct{}, len(entries))
	var earliest model.Date
	for _, e := range entries {
		d := e.Date
		if d.IsZero() {
			continue
		}
		days[d] = struct{}{}
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}

	out := Annotations{
		Month:           month,
		HighlightedDays: sortedDays(days),
		MissedDays:      []model.Date{},
	}
	if earliest.IsZero() {
		return out
	}

	first := month.First()
	for i := 0; i < month.Days(); i++ {
		d := first.AddDays(i)
		if d.IsWeekend() {
			continue
		}
		if !d.After(earliest) || !d.Before(today) {
			continue
		}
		if _, ok := days[d]; ok {
			continue
		}
		out.MissedDays = append(out.MissedDays, d)
	}
	return out
}

// IsHighlighted reports whether d has at least one entry.
func (a Annotations) IsHighlighted(d model.Date) bool { return containsDay(a.HighlightedDays, d) }

// IsMissed reports whether d is a missed day of the annotated month.
func (a Annotations) IsMissed(d model.Date) bool { return containsDay(a.MissedDays, d) }

// Summary counts entry days and missed days inside the annotated month.
func (a Annotations) Summary() Summary {
	var s Summary
	for _, d := range a.HighlightedDays {
		if a.Month.Contains(d) {
			s.EntryDays++
		}
	}
	s.MissedDays = len(a.MissedDays)
	return s
}

func sortedDays(set map[model.Date]struct{}) []model.Date {
	out := make([]model.Date, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func containsDay(days []model.Date, d model.Date) bool {
	i := sort.Search(len(days), func(i int) bool { return !days[i].Before(d) })
	return i < len(days) && days[i] == d
}
