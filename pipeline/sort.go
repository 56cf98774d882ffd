package pipeline

import (
	"sort"
	"strings"

	"whenwin/model"
)

// Sort keys accepted by Sort.
const (
	SortByDate       = "date"
	SortByPopularity = "popularity"
	SortByPrice      = "price"
)

// Sort orders events by the given key and returns a new slice; the input is
// never mutated. All orderings are stable so ties keep their prior relative
// order.
//
//   - "date": ascending by calendar date only; the time of day is not part
//     of the key. Events with an unparseable date compare equal to
//     everything and therefore stay where they were.
//   - "popularity": descending by the base attendee count. The
//     viewer-adjusted display count is deliberately not used here, so that
//     toggling a favorite never reorders the list.
//   - "price": events whose price contains "free" (case-insensitive) come
//     before all others. There is no ordering inside either bucket beyond
//     input order. This two-bucket partition mirrors the original app and
//     is a known simplification, kept on purpose.
//
// Any other key returns the input order unchanged.
func Sort(events []model.Event, key string) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)

	switch key {
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			di, iok := out[i].Day()
			dj, jok := out[j].Day()
			if !iok || !jok {
				return false
			}
			return di.Before(dj)
		})
	case SortByPopularity:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Attendees > out[j].Attendees
		})
	case SortByPrice:
		sort.SliceStable(out, func(i, j int) bool {
			return isFree(out[i]) && !isFree(out[j])
		})
	}
	return out
}

func isFree(e model.Event) bool {
	return strings.Contains(strings.ToLower(e.Price), "free")
}
