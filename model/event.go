package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date form events carry ("YYYY-MM-DD", no zone).
const DateLayout = "2006-01-02"

// TimeLayout is the local clock-time form events carry ("HH:MM").
const TimeLayout = "15:04"

type Event struct {
	ID          string `firestore:"id" json:"id"`
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description" json:"description"`
	Category    string `firestore:"category" json:"category"` // display name, e.g. "Community"
	Date        string `firestore:"date" json:"date"`         // YYYY-MM-DD
	Time        string `firestore:"time" json:"time"`         // HH:MM
	Location    string `firestore:"location" json:"location"`
	City        string `firestore:"city" json:"city"`
	State       string `firestore:"state" json:"state"`
	Price       string `firestore:"price" json:"price"` // free text; "Free" means zero cost
	Organizer   string `firestore:"organizer" json:"organizer"`
	Attendees   int    `firestore:"attendees" json:"attendees"` // base interest count from other users
	Image       string `firestore:"image" json:"image,omitempty"`
	CreatedBy   string `firestore:"createdBy" json:"createdBy,omitempty"` // creator uid; empty on legacy records

	CreatedAt time.Time `firestore:"createdAt" json:"createdAt,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt" json:"updatedAt,omitempty"`
}

// Day returns the event's composed calendar date truncated to midnight UTC.
// The second return is false when the date field does not parse.
func (e Event) Day() (time.Time, bool) {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StartsAt composes the event's date and local clock time. When the time
// field does not parse the date's midnight is used.
func (e Event) StartsAt() (time.Time, bool) {
	day, ok := e.Day()
	if !ok {
		return time.Time{}, false
	}
	clock, err := time.Parse(TimeLayout, e.Time)
	if err != nil {
		return day, true
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), true
}

// CanonicalID normalizes an event identifier to its canonical string form.
// Source data mixes numeric and string ids, so every set membership check
// must go through this before lookup.
func CanonicalID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		// JSON numbers decode as float64; ids are whole numbers.
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Location is the viewer's browsing location.
type Location struct {
	City     string `json:"city" yaml:"city"`
	State    string `json:"state" yaml:"state"`
	IsManual bool   `json:"isManual" yaml:"is_manual"`
}

// Category is one entry of the fixed category lookup table.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// CategoryAll is the sentinel id meaning "no category filtering".
const CategoryAll = "all"

type UserProfile struct {
	UserID    string    `firestore:"-" json:"userId"`
	Name      string    `firestore:"name" json:"name"`
	Email     string    `firestore:"email" json:"email"`
	HomeCity  string    `firestore:"homeCity" json:"homeCity"`
	HomeState string    `firestore:"homeState" json:"homeState"`
	Avatar    string    `firestore:"avatar" json:"avatar"`
	CreatedAt time.Time `firestore:"createdAt" json:"createdAt,omitempty"`
}
