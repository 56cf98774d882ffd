// Package session owns the authoritative in-memory session state: the event
// list, the viewer, and the two membership sets. Every other component
// receives read-only snapshots; all membership mutation goes through the
// toggle coordinator's replacement protocol.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"whenwin/bulk"
	"whenwin/config"
	"whenwin/ics"
	"whenwin/model"
	"whenwin/pipeline"
	"whenwin/validate"
)

// AuthService is the hosted authentication collaborator. LogIn and SignUp
// return a session token alongside the profile; fakes may return an empty
// token.
type AuthService interface {
	SignUp(ctx context.Context, email, password, name, city, state string) (*model.UserProfile, string, error)
	LogIn(ctx context.Context, email, password string) (*model.UserProfile, string, error)
	LogOut(ctx context.Context, userID string) error
}

// EventStore is the hosted document store for event records.
type EventStore interface {
	CreateEvent(ctx context.Context, e model.Event) (string, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, e model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context) ([]model.Event, error)
}

// startTimeout bounds the initial load so a slow backend cannot hang
// startup. Liveness safeguard only; nothing else in the core is timed.
const startTimeout = 15 * time.Second

type Controller struct {
	auth    AuthService
	store   EventStore
	members MembershipStore
	toggles *ToggleCoordinator

	categories []model.Category

	mu        sync.Mutex
	user      *model.UserProfile
	location  model.Location
	events    []model.Event
	favorites model.IDSet
	calendar  model.IDSet
	artifacts map[string]string // event id -> generated .ics text
}

func NewController(auth AuthService, store EventStore, members MembershipStore, location model.Location, categories []model.Category) *Controller {
	return &Controller{
		auth:       auth,
		store:      store,
		members:    members,
		toggles:    NewToggleCoordinator(members),
		categories: categories,
		location:   location,
		favorites:  model.NewIDSet(),
		calendar:   model.NewIDSet(),
		artifacts:  make(map[string]string),
	}
}

// Start loads the event list, seeding the store with the starter events
// when it is empty and seeding is requested.
func (c *Controller) Start(ctx context.Context, seed []model.Event) error {
	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	events, err := c.store.ListEvents(ctx)
	if err != nil {
		return fmt.Errorf("error loading events: %v", err)
	}

	if len(events) == 0 && len(seed) > 0 {
		for _, e := range seed {
			if _, err := c.store.CreateEvent(ctx, e); err != nil {
				return fmt.Errorf("error seeding event %q: %v", e.Title, err)
			}
		}
		events = seed
		log.Info().Int("count", len(seed)).Msg("seeded starter events")
	}

	c.mu.Lock()
	c.events = events
	c.mu.Unlock()
	return nil
}

// Categories returns the fixed category table.
func (c *Controller) Categories() []model.Category {
	out := make([]model.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// --- auth -----------------------------------------------------------------

// SignUp validates the form (including the password confirmation), then
// registers a new account and signs the session in.
func (c *Controller) SignUp(ctx context.Context, email, password, confirm, name, city, state string) (*model.UserProfile, string, error) {
	if errs := validate.SignUp(email, password, confirm, name); errs != nil {
		return nil, "", errs
	}

	loc := c.Location()
	if city == "" {
		city = loc.City
	}
	if state == "" {
		state = loc.State
	}

	profile, token, err := c.auth.SignUp(ctx, email, password, name, city, state)
	if err != nil {
		return nil, "", err
	}
	c.onSignedIn(ctx, profile)
	return profile, token, nil
}

// LogIn authenticates and restores the viewer's membership sets.
func (c *Controller) LogIn(ctx context.Context, email, password string) (*model.UserProfile, string, error) {
	profile, token, err := c.auth.LogIn(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	c.onSignedIn(ctx, profile)
	return profile, token, nil
}

// Restore adopts an already-authenticated viewer (session start with a
// still-valid token) and reloads their membership sets.
func (c *Controller) Restore(ctx context.Context, profile *model.UserProfile) {
	c.onSignedIn(ctx, profile)
}

func (c *Controller) onSignedIn(ctx context.Context, profile *model.UserProfile) {
	favorites := c.loadMembership(ctx, profile.UserID, KindFavorite)
	calendar := c.loadMembership(ctx, profile.UserID, KindCalendar)

	c.mu.Lock()
	c.user = profile
	c.favorites = favorites
	c.calendar = calendar
	c.mu.Unlock()
}

func (c *Controller) loadMembership(ctx context.Context, userID string, kind Kind) model.IDSet {
	ids, err := c.members.ListMembership(ctx, userID, kind)
	if err != nil {
		// A failed restore degrades to an empty set; toggles still work.
		log.Error().Err(err).Str("kind", string(kind)).Msg("error loading membership")
		return model.NewIDSet()
	}
	return model.NewIDSet(ids...)
}

// LogOut clears the viewer and both membership sets.
func (c *Controller) LogOut(ctx context.Context) error {
	c.mu.Lock()
	user := c.user
	c.user = nil
	c.favorites = model.NewIDSet()
	c.calendar = model.NewIDSet()
	c.mu.Unlock()

	if user == nil {
		return nil
	}
	return c.auth.LogOut(ctx, user.UserID)
}

// --- snapshots ------------------------------------------------------------

func (c *Controller) User() *model.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Controller) Location() model.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// SetLocation switches the browsing location (manual pick).
func (c *Controller) SetLocation(loc model.Location) {
	c.mu.Lock()
	c.location = loc
	c.mu.Unlock()
}

func (c *Controller) Events() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Event, len(c.events))
	copy(out, c.events)
	return out
}

func (c *Controller) Favorites() model.IDSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.favorites.Clone()
}

func (c *Controller) Calendar() model.IDSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calendar.Clone()
}

func (c *Controller) findEvent(id string) (model.Event, bool) {
	id = model.CanonicalID(id)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if model.CanonicalID(e.ID) == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// --- views ----------------------------------------------------------------

// EventView decorates an event with the viewer-specific display fields.
type EventView struct {
	model.Event
	DisplayAttendees int  `json:"displayAttendees"`
	IsFavorite       bool `json:"isFavorite"`
	InCalendar       bool `json:"inCalendar"`
}

func (c *Controller) viewOf(e model.Event, favorites, calendar model.IDSet) EventView {
	id := model.CanonicalID(e.ID)
	return EventView{
		Event:            e,
		DisplayAttendees: pipeline.DisplayCount(e, favorites, calendar),
		IsFavorite:       favorites.Has(id),
		InCalendar:       calendar.Has(id),
	}
}

func (c *Controller) views(events []model.Event) []EventView {
	favorites, calendar := c.Favorites(), c.Calendar()
	out := make([]EventView, 0, len(events))
	for _, e := range events {
		out = append(out, c.viewOf(e, favorites, calendar))
	}
	return out
}

// Browse runs the display pipeline: location filter, search/category
// filter, then sort.
func (c *Controller) Browse(query, categoryID, sortKey string) []EventView {
	if categoryID == "" {
		categoryID = model.CategoryAll
	}
	loc := c.Location()
	result := pipeline.FilterByLocation(c.Events(), loc.City, loc.State)
	result = pipeline.Filter(result, query, categoryID, c.categories)
	result = pipeline.Sort(result, sortKey)
	return c.views(result)
}

// MonthGrid groups the location's events by day for a calendar month.
func (c *Controller) MonthGrid(month time.Month, year int) map[int][]EventView {
	loc := c.Location()
	events := pipeline.FilterByLocation(c.Events(), loc.City, loc.State)

	out := make(map[int][]EventView)
	for day, group := range pipeline.GroupByDay(events, month, year) {
		out[day] = c.views(group)
	}
	return out
}

// ProfileView backs the profile screen's tabs.
type ProfileView struct {
	Upcoming  []EventView `json:"upcoming"`
	Past      []EventView `json:"past"`
	MyEvents  []EventView `json:"myEvents"`
	Favorites []EventView `json:"favorites"`
}

// Profile partitions the location's events around the reference instant and
// collects the viewer's own and favorited events.
func (c *Controller) Profile(ref time.Time) ProfileView {
	loc := c.Location()
	events := c.Events()
	local := pipeline.FilterByLocation(events, loc.City, loc.State)
	parts := pipeline.Partition(local, ref)

	user := c.User()
	favorites := c.Favorites()

	var mine, faved []model.Event
	for _, e := range events {
		if isOwnEvent(e, user) {
			mine = append(mine, e)
		}
		if favorites.Has(model.CanonicalID(e.ID)) {
			faved = append(faved, e)
		}
	}

	return ProfileView{
		Upcoming:  c.views(parts.Upcoming),
		Past:      c.views(parts.Past),
		MyEvents:  c.views(mine),
		Favorites: c.views(faved),
	}
}

// isOwnEvent decides whether the viewer created the event. The uid check is
// authoritative; the name comparisons are a best-effort fallback for legacy
// records that never recorded a creator uid.
func isOwnEvent(e model.Event, user *model.UserProfile) bool {
	if user == nil {
		return false
	}
	if e.CreatedBy != "" && e.CreatedBy == user.UserID {
		return true
	}
	if e.Organizer == user.Name {
		return true
	}
	if e.Organizer != "" && user.Name != "" {
		organizer := strings.ToLower(strings.TrimSpace(e.Organizer))
		name := strings.ToLower(strings.TrimSpace(user.Name))
		if organizer == name || strings.Contains(organizer, name) || strings.Contains(name, organizer) {
			return true
		}
	}
	return false
}

// --- create / edit / delete ----------------------------------------------

// EventDraft is a create or edit submission.
type EventDraft struct {
	Title            string `json:"title"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Location         string `json:"location"`
	CategoryID       string `json:"category"`
	Price            string `json:"price"`
	Description      string `json:"description"`
	ImageURL         string `json:"imageUrl"`
	OrganizerType    string `json:"organizerType"`
	OrganizationName string `json:"organizationName"`
}

func (c *Controller) buildEvent(draft EventDraft, user *model.UserProfile, now time.Time) (model.Event, error) {
	organizer, verr := validate.ResolveOrganizer(draft.OrganizerType, draft.OrganizationName, user.Name)
	if verr != nil {
		return model.Event{}, verr
	}

	loc := c.Location()
	price := strings.TrimSpace(draft.Price)
	if price == "" {
		price = "Free"
	}

	e := model.Event{
		Title:       strings.TrimSpace(draft.Title),
		Date:        draft.Date,
		Time:        draft.Time,
		Location:    strings.TrimSpace(draft.Location),
		City:        loc.City,
		State:       loc.State,
		Category:    config.CategoryName(draft.CategoryID),
		Price:       price,
		Description: strings.TrimSpace(draft.Description),
		Image:       strings.TrimSpace(draft.ImageURL),
		Organizer:   organizer,
	}

	if errs := validate.Event(e, now); errs != nil {
		return model.Event{}, errs
	}
	return e, nil
}

// CreateEvent validates the draft and persists a new event owned by the
// viewer.
func (c *Controller) CreateEvent(ctx context.Context, draft EventDraft, now time.Time) (model.Event, error) {
	user := c.User()
	if user == nil {
		return model.Event{}, model.ErrNotAuthenticated
	}

	e, err := c.buildEvent(draft, user, now)
	if err != nil {
		return model.Event{}, err
	}

	e.ID = uuid.NewString()
	e.CreatedBy = user.UserID
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Image == "" {
		e.Image = "https://picsum.photos/400/200?random=" + e.ID
	}

	id, err := c.store.CreateEvent(ctx, e)
	if err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", model.ErrPersistenceFailure, err)
	}
	e.ID = id

	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	return e, nil
}

// UpdateEvent replaces an event the viewer owns. Edits are full
// replacements; identity, base attendee count and creator are preserved.
func (c *Controller) UpdateEvent(ctx context.Context, id string, draft EventDraft, now time.Time) (model.Event, error) {
	user := c.User()
	if user == nil {
		return model.Event{}, model.ErrNotAuthenticated
	}

	existing, ok := c.findEvent(id)
	if !ok {
		return model.Event{}, model.ErrEventDoesNotExist
	}
	if !isOwnEvent(existing, user) {
		return model.Event{}, model.ErrNotEventOwner
	}

	e, err := c.buildEvent(draft, user, now)
	if err != nil {
		return model.Event{}, err
	}
	e.ID = existing.ID
	e.Attendees = existing.Attendees
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = now
	if e.Image == "" {
		e.Image = existing.Image
	}

	if err := c.store.UpdateEvent(ctx, existing.ID, e); err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", model.ErrPersistenceFailure, err)
	}

	c.mu.Lock()
	for i := range c.events {
		if model.CanonicalID(c.events[i].ID) == model.CanonicalID(existing.ID) {
			c.events[i] = e
			break
		}
	}
	c.mu.Unlock()
	return e, nil
}

// DeleteEvent removes an event the viewer owns.
func (c *Controller) DeleteEvent(ctx context.Context, id string) error {
	user := c.User()
	if user == nil {
		return model.ErrNotAuthenticated
	}

	existing, ok := c.findEvent(id)
	if !ok {
		return model.ErrEventDoesNotExist
	}
	if !isOwnEvent(existing, user) {
		return model.ErrNotEventOwner
	}

	if err := c.store.DeleteEvent(ctx, existing.ID); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistenceFailure, err)
	}

	want := model.CanonicalID(existing.ID)
	c.mu.Lock()
	kept := c.events[:0]
	for _, e := range c.events {
		if model.CanonicalID(e.ID) != want {
			kept = append(kept, e)
		}
	}
	c.events = kept
	c.mu.Unlock()
	return nil
}

// BulkCreate parses the submitted text and persists each event. Lines that
// fail to persist are reported by title; the rest still land.
func (c *Controller) BulkCreate(ctx context.Context, text string, mode bulk.Mode, organizerType, organizationName string, now time.Time) ([]model.Event, []string, error) {
	user := c.User()
	if user == nil {
		return nil, nil, model.ErrNotAuthenticated
	}

	organizer, verr := validate.ResolveOrganizer(organizerType, organizationName, user.Name)
	if verr != nil {
		return nil, nil, verr
	}

	loc := c.Location()
	parsed := bulk.ParseEvents(text, mode, bulk.Options{
		City:      loc.City,
		State:     loc.State,
		Organizer: organizer,
		CreatedBy: user.UserID,
		Now:       now,
	})

	var created []model.Event
	var failed []string
	for _, e := range parsed {
		id, err := c.store.CreateEvent(ctx, e)
		if err != nil {
			log.Error().Err(err).Str("title", e.Title).Msg("error creating bulk event")
			failed = append(failed, e.Title)
			continue
		}
		e.ID = id
		created = append(created, e)
	}

	if len(created) > 0 {
		c.mu.Lock()
		c.events = append(c.events, created...)
		c.mu.Unlock()
	}
	return created, failed, nil
}

// --- toggles --------------------------------------------------------------

// ToggleFavorite flips the viewer's favorite membership for the event. The
// flip is visible immediately; the returned channel delivers the
// persistence outcome (nil or a wrapped ErrPersistenceFailure) exactly once.
func (c *Controller) ToggleFavorite(ctx context.Context, eventID string) (<-chan error, error) {
	return c.toggle(ctx, KindFavorite, eventID, nil)
}

// ToggleCalendar flips the viewer's calendar membership. A confirmed add
// additionally builds the event's .ics artifact.
func (c *Controller) ToggleCalendar(ctx context.Context, eventID string) (<-chan error, error) {
	return c.toggle(ctx, KindCalendar, eventID, func(id string) {
		e, ok := c.findEvent(id)
		if !ok {
			return
		}
		text, err := ics.Build(e)
		if err != nil {
			log.Error().Err(err).Str("event", id).Msg("error building calendar artifact")
			return
		}
		c.mu.Lock()
		c.artifacts[id] = text
		c.mu.Unlock()
	})
}

func (c *Controller) toggle(ctx context.Context, kind Kind, eventID string, onAdded func(string)) (<-chan error, error) {
	done := make(chan error, 1)

	c.mu.Lock()
	user := c.user
	current := c.favorites
	if kind == KindCalendar {
		current = c.calendar
	}
	c.mu.Unlock()

	err := c.toggles.RequestToggle(ctx, ToggleRequest{
		Viewer:  user,
		Kind:    kind,
		EventID: eventID,
		Current: current,
		Apply: func(transform func(model.IDSet) model.IDSet) {
			c.mu.Lock()
			if kind == KindCalendar {
				c.calendar = transform(c.calendar)
			} else {
				c.favorites = transform(c.favorites)
			}
			c.mu.Unlock()
		},
		Report: func(err error) {
			done <- err
		},
		OnAdded: onAdded,
	})
	if err != nil {
		return nil, err
	}
	return done, nil
}

// Artifact returns the cached .ics text for an event, building it on demand
// when the event is known but was never added to the calendar here.
func (c *Controller) Artifact(eventID string) (string, error) {
	id := model.CanonicalID(eventID)

	c.mu.Lock()
	text, ok := c.artifacts[id]
	c.mu.Unlock()
	if ok {
		return text, nil
	}

	e, found := c.findEvent(id)
	if !found {
		return "", model.ErrEventDoesNotExist
	}
	return ics.Build(e)
}

// Close waits for in-flight toggles to finish.
func (c *Controller) Close() {
	c.toggles.Wait()
}
