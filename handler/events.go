package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"whenwin/bulk"
	"whenwin/ics"
	"whenwin/model"
	"whenwin/session"
)

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Categories())
}

func (s *Server) handleGetLocation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Location())
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var loc model.Location
	if err := decodeBody(r, &loc); err != nil {
		writeError(w, err)
		return
	}
	loc.IsManual = true
	s.session.SetLocation(loc)
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if city := q.Get("city"); city != "" {
		s.session.SetLocation(model.Location{City: city, State: q.Get("state"), IsManual: true})
	}

	views := s.session.Browse(q.Get("q"), q.Get("category"), q.Get("sort"))
	writeJSON(w, http.StatusOK, map[string]any{
		"events": views,
		"count":  len(views),
	})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}

	var draft session.EventDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, err)
		return
	}

	event, err := s.session.CreateEvent(r.Context(), draft, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}

	var draft session.EventDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, err)
		return
	}

	event, err := s.session.UpdateEvent(r.Context(), r.PathValue("id"), draft, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}

	if err := s.session.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bulkPayload struct {
	Text             string `json:"text"`
	Mode             string `json:"mode"` // csv or text
	OrganizerType    string `json:"organizerType"`
	OrganizationName string `json:"organizationName"`
}

func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}

	var payload bulkPayload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	mode := bulk.ModeCSV
	if payload.Mode == string(bulk.ModeText) {
		mode = bulk.ModeText
	}

	created, failed, err := s.session.BulkCreate(r.Context(), payload.Text, mode, payload.OrganizerType, payload.OrganizationName, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"created": created,
		"failed":  failed,
	})
}

func (s *Server) handleTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="event-template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(bulk.CSVTemplate))
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, s.session.ToggleFavorite)
}

func (s *Server) handleToggleCalendar(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, s.session.ToggleCalendar)
}

// handleToggle dispatches the flip, then waits for the persistence outcome
// so the response can report a rollback. The optimistic set replacement is
// already published before the remote call resolves.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, toggle func(ctx context.Context, id string) (<-chan error, error)) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}

	done, err := toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := <-done; err != nil {
		writeError(w, err)
		return
	}

	id := model.CanonicalID(r.PathValue("id"))
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         id,
		"isFavorite": s.session.Favorites().Has(id),
		"inCalendar": s.session.Calendar().Has(id),
	})
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	text, err := s.session.Artifact(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ics.Filename(r.PathValue("id"))+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (s *Server) handleMonthGrid(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	month, year := int(now.Month()), now.Year()

	if v := r.URL.Query().Get("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			month = n
		}
	}
	if v := r.URL.Query().Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}

	grid := s.session.MonthGrid(time.Month(month), year)
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month,
		"year":  year,
		"days":  grid,
	})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Notifications(time.Now()))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := s.viewer(r); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Profile(time.Now()))
}
