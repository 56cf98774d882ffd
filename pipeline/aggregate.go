package pipeline

import "whenwin/model"

// DisplayCount computes the interest count shown for an event: the stored
// base count plus one for each of the viewer's own favorite and calendar
// memberships. This is the single source of truth for displayed counts; no
// other component adds these adjustments.
func DisplayCount(e model.Event, favorites, calendar model.IDSet) int {
	id := model.CanonicalID(e.ID)
	count := e.Attendees
	if favorites.Has(id) {
		count++
	}
	if calendar.Has(id) {
		count++
	}
	return count
}
