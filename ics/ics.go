// Package ics builds the downloadable calendar attachment for an event.
// Building is a pure transformation of one event into iCalendar text; it is
// sequenced after a successful calendar add but is not part of the toggle
// state machine.
package ics

import (
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"

	"whenwin/model"
)

// defaultDuration is assumed because events only carry a start time.
const defaultDuration = 2 * time.Hour

// Build renders the event as a VCALENDAR with a single VEVENT. Events
// without a parseable date cannot produce an artifact.
func Build(e model.Event) (string, error) {
	start, ok := e.StartsAt()
	if !ok {
		return "", errors.New("event has no usable date")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//When? Win!//whenwin//EN")

	ev := cal.AddEvent(model.CanonicalID(e.ID) + "@whenwin")
	ev.SetDtStampTime(start)
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(defaultDuration))
	ev.SetSummary(e.Title)
	if e.Description != "" {
		ev.SetDescription(e.Description)
	}
	if e.Location != "" {
		ev.SetLocation(e.Location + ", " + e.City + ", " + e.State)
	}
	if e.Organizer != "" {
		ev.SetOrganizer(e.Organizer)
	}

	return cal.Serialize(), nil
}

// Filename is the suggested attachment name for an event's artifact.
func Filename(id any) string {
	return "whenwin-event-" + model.CanonicalID(id) + ".ics"
}
