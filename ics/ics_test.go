package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whenwin/model"
)

func TestBuild(t *testing.T) {
	e := model.Event{
		ID:          "42",
		Title:       "Jazz Night",
		Description: "Live jazz on the riverfront.",
		Date:        "2026-09-05",
		Time:        "19:00",
		Location:    "Riverside Club",
		City:        "Evansville",
		State:       "IN",
		Organizer:   "Arts Council",
	}

	got, err := Build(e)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "BEGIN:VCALENDAR"))
	assert.Contains(t, got, "UID:42@whenwin")
	assert.Contains(t, got, "SUMMARY:Jazz Night")
	assert.Contains(t, got, "DTSTART:20260905T190000Z")
	assert.Contains(t, got, "DTEND:20260905T210000Z")
	assert.Contains(t, got, "Riverside Club")
	assert.Contains(t, got, "END:VCALENDAR")
}

func TestBuildWithoutDate(t *testing.T) {
	_, err := Build(model.Event{ID: "1", Title: "No Date", Date: "soon"})
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "whenwin-event-42.ics", Filename("42"))
	assert.Equal(t, "whenwin-event-7.ics", Filename(7))
}
