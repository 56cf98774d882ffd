package session

import (
	"strconv"
	"time"

	"whenwin/model"
	"whenwin/pipeline"
)

// Notification is one reminder-style entry: an upcoming event the viewer
// favorited, calendared, or both.
type Notification struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"` // favorite, calendar or both
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Location string      `json:"location"`
	Icon     string      `json:"icon"`
	Event    model.Event `json:"event"`
}

// Notifications lists upcoming events the viewer marked, soonest first.
func (c *Controller) Notifications(ref time.Time) []Notification {
	favorites, calendar := c.Favorites(), c.Calendar()

	marked := make([]model.Event, 0)
	for _, e := range c.Events() {
		id := model.CanonicalID(e.ID)
		if favorites.Has(id) || calendar.Has(id) {
			marked = append(marked, e)
		}
	}

	upcoming := pipeline.Partition(marked, ref).Upcoming
	upcoming = pipeline.Sort(upcoming, pipeline.SortByDate)

	out := make([]Notification, 0, len(upcoming))
	for _, e := range upcoming {
		id := model.CanonicalID(e.ID)
		isFavorite := favorites.Has(id)
		inCalendar := calendar.Has(id)

		var kind, icon, title string
		switch {
		case isFavorite && inCalendar:
			kind, icon, title = "both", "📅❤️", "In Calendar & Favorited"
		case inCalendar:
			kind, icon, title = "calendar", "📅", "In Your Calendar"
		default:
			kind, icon, title = "favorite", "❤️", "Favorited Event"
		}

		day, _ := e.Day()
		when := DaysUntilLabel(pipeline.DaysUntil(day, ref), e.Date)

		out = append(out, Notification{
			ID:       id,
			Type:     kind,
			Title:    title,
			Message:  e.Title + " • " + when + " at " + FormatClock(e.Time),
			Location: e.Location,
			Icon:     icon,
			Event:    e,
		})
	}
	return out
}

// DaysUntilLabel buckets a whole-day distance the way reminder rows show
// it: today, tomorrow, "In N days" up to a week out, then the full date.
func DaysUntilLabel(days int, date string) string {
	switch {
	case days == 0:
		return "Today!"
	case days == 1:
		return "Tomorrow"
	case days >= 2 && days <= 7:
		return "In " + strconv.Itoa(days) + " days"
	default:
		return FormatDate(date)
	}
}

// FormatDate renders a YYYY-MM-DD date for display; unparseable input is
// returned as-is.
func FormatDate(date string) string {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// FormatClock renders an HH:MM clock time as 12-hour am/pm; unparseable
// input is returned as-is.
func FormatClock(clock string) string {
	t, err := time.Parse(model.TimeLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
