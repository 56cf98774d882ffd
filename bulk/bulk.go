// Package bulk parses bulk event submissions: CSV text or pipe-delimited
// lines, one event per line.
package bulk

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"whenwin/model"
)

// Mode selects the input format.
type Mode string

const (
	ModeCSV  Mode = "csv"
	ModeText Mode = "text" // fields separated by |
)

// CSVTemplate is the downloadable template offered next to the upload form.
const CSVTemplate = "Title,Date (YYYY-MM-DD),Time (HH:MM),Location,Category,Price,Description\n" +
	"Summer BBQ,2024-12-15,18:00,Central Park,Community,Free,Join us for a fun evening"

// Defaults applied per line when optional columns are missing.
const (
	defaultDate     = "2024-12-01"
	defaultTime     = "18:00"
	defaultLocation = "TBD"
	defaultCategory = "Community"
	defaultPrice    = "Free"
	defaultDetails  = "Event details to be announced."
)

// Options carries the per-batch context every parsed event inherits.
type Options struct {
	City      string
	State     string
	Organizer string
	CreatedBy string // creator uid
	Now       time.Time
}

// ParseEvents turns the submitted text into events. Lines with fewer than
// four columns are skipped, matching the original import. Column order is
// title, date, time, location, category, price, description; a CSV header
// row mentioning "title" or "event" is ignored.
func ParseEvents(text string, mode Mode, opts Options) []model.Event {
	var rows [][]string
	if mode == ModeText {
		rows = splitLines(text, "|")
	} else {
		rows = parseCSV(text)
	}

	events := make([]model.Event, 0, len(rows))
	for i, parts := range rows {
		if len(parts) < 4 {
			continue
		}
		events = append(events, buildEvent(parts, i, opts))
	}
	return events
}

func buildEvent(parts []string, index int, opts Options) model.Event {
	get := func(i int, fallback string) string {
		if i < len(parts) && parts[i] != "" {
			return parts[i]
		}
		return fallback
	}

	id := uuid.NewString()
	return model.Event{
		ID:          id,
		Title:       get(0, "Event "+model.CanonicalID(index+1)),
		Date:        get(1, defaultDate),
		Time:        get(2, defaultTime),
		Location:    get(3, defaultLocation),
		City:        opts.City,
		State:       opts.State,
		Category:    get(4, defaultCategory),
		Price:       get(5, defaultPrice),
		Description: get(6, defaultDetails),
		Image:       "https://picsum.photos/400/200?random=" + id,
		Attendees:   0,
		Organizer:   opts.Organizer,
		CreatedBy:   opts.CreatedBy,
		CreatedAt:   opts.Now,
		UpdatedAt:   opts.Now,
	}
}

// parseCSV is a deliberately simple comma split with surrounding-quote
// stripping. Embedded commas inside quoted fields are not supported; the
// original import behaves the same way.
func parseCSV(text string) [][]string {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return nil
	}

	first := strings.ToLower(lines[0])
	if strings.Contains(first, "title") || strings.Contains(first, "event") {
		lines = lines[1:]
	}

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, ",")
		for i, p := range parts {
			p = strings.TrimSpace(p)
			p = strings.TrimPrefix(p, `"`)
			p = strings.TrimSuffix(p, `"`)
			parts[i] = p
		}
		rows = append(rows, parts)
	}
	return rows
}

func splitLines(text, sep string) [][]string {
	lines := nonEmptyLines(text)
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, sep)
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		rows = append(rows, parts)
	}
	return rows
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
