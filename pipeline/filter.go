// Package pipeline holds the pure event list transformations: location and
// search filtering, sorting, attendee aggregation and temporal partitioning.
// Nothing here performs I/O or reads a clock; every function takes explicit
// inputs and returns a new derived slice.
package pipeline

import (
	"strings"

	"whenwin/model"
)

// MatchesLocation reports whether the event belongs to the given city and
// state. Comparison is exact and case-sensitive; this is a deliberate
// simplicity boundary, not missing normalization.
func MatchesLocation(e model.Event, city, state string) bool {
	return e.City == city && e.State == state
}

// FilterByLocation keeps events matching the city/state, preserving order.
func FilterByLocation(events []model.Event, city, state string) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if MatchesLocation(e, city, state) {
			out = append(out, e)
		}
	}
	return out
}

// Filter narrows events by free-text query and category id. The category
// sentinel "all" disables category filtering; otherwise an event passes only
// when its category display name equals the name bound to categoryID in the
// supplied table (an unknown id therefore matches nothing). An empty or
// whitespace query disables text filtering; otherwise the query must appear,
// case-insensitively, in the title, description, organizer or location.
// Both predicates must pass. Input order is preserved.
func Filter(events []model.Event, query, categoryID string, categories []model.Category) []model.Event {
	wantName, haveCategory := "", false
	if categoryID != model.CategoryAll {
		for _, c := range categories {
			if c.ID == categoryID {
				wantName, haveCategory = c.Name, true
				break
			}
		}
		if !haveCategory {
			return []model.Event{}
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if haveCategory && e.Category != wantName {
			continue
		}
		if q != "" && !matchesQuery(e, q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesQuery(e model.Event, q string) bool {
	for _, field := range []string{e.Title, e.Description, e.Organizer, e.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
