package pipeline

import (
	"time"

	"whenwin/model"
)

// Partitioned splits an event list relative to a reference instant.
type Partitioned struct {
	Upcoming []model.Event
	Past     []model.Event
}

// Partition classifies each event as upcoming (its calendar date is on or
// after the reference instant's date) or past. Both sides compare date-only;
// time of day is ignored. Each partition preserves input order and no
// sorting is implied. Events with an unparseable date go to Past.
func Partition(events []model.Event, ref time.Time) Partitioned {
	refDay := truncateToDay(ref)

	var p Partitioned
	for _, e := range events {
		day, ok := e.Day()
		if ok && !day.Before(refDay) {
			p.Upcoming = append(p.Upcoming, e)
		} else {
			p.Past = append(p.Past, e)
		}
	}
	return p
}

// GroupByDay buckets the events of the given month and year by day of
// month. Days without events are absent from the map. Used to drive the
// calendar grid's has-events indicators.
func GroupByDay(events []model.Event, month time.Month, year int) map[int][]model.Event {
	out := make(map[int][]model.Event)
	for _, e := range events {
		day, ok := e.Day()
		if !ok || day.Month() != month || day.Year() != year {
			continue
		}
		d := day.Day()
		out[d] = append(out[d], e)
	}
	return out
}

// DaysUntil returns the whole-calendar-day difference between the event date
// and the reference instant, both truncated to date-only. Zero means today;
// negative means the date has passed.
func DaysUntil(eventDate, ref time.Time) int {
	return int(truncateToDay(eventDate).Sub(truncateToDay(ref)).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
