package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whenwin/model"
)

type fakeAuth struct {
	profile   *model.UserProfile
	token     string
	err       error
	loggedOut []string
}

func (f *fakeAuth) SignUp(_ context.Context, email, _, name, city, state string) (*model.UserProfile, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if f.profile != nil {
		return f.profile, f.token, nil
	}
	return &model.UserProfile{UserID: "uid-new", Name: name, Email: email, HomeCity: city, HomeState: state}, f.token, nil
}

func (f *fakeAuth) LogIn(context.Context, string, string) (*model.UserProfile, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.profile, f.token, nil
}

func (f *fakeAuth) LogOut(_ context.Context, userID string) error {
	f.loggedOut = append(f.loggedOut, userID)
	return nil
}

type fakeEventStore struct {
	mu        sync.Mutex
	events    []model.Event
	nextID    int
	createErr error
	failTitle string // CreateEvent fails for this title only
}

func (f *fakeEventStore) CreateEvent(_ context.Context, e model.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil || (f.failTitle != "" && e.Title == f.failTitle) {
		if f.createErr != nil {
			return "", f.createErr
		}
		return "", errors.New("backend unavailable")
	}
	if e.ID == "" {
		f.nextID++
		e.ID = "gen-" + strconv.Itoa(f.nextID)
	}
	f.events = append(f.events, e)
	return e.ID, nil
}

func (f *fakeEventStore) GetEvent(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.ID == id {
			out := e
			return &out, nil
		}
	}
	return nil, model.ErrEventDoesNotExist
}

func (f *fakeEventStore) UpdateEvent(_ context.Context, id string, e model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events[i] = e
			return nil
		}
	}
	return model.ErrEventDoesNotExist
}

func (f *fakeEventStore) DeleteEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.events {
		if f.events[i].ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return model.ErrEventDoesNotExist
}

func (f *fakeEventStore) ListEvents(context.Context) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

var testCategories = []model.Category{
	{ID: "all", Name: "All Events"},
	{ID: "music", Name: "Music"},
	{ID: "community", Name: "Community"},
}

var testLocation = model.Location{City: "Evansville", State: "IN"}

func testEvents() []model.Event {
	return []model.Event{
		{ID: "1", Title: "Jazz Night", Category: "Music", Date: "2026-09-05", Time: "19:00",
			Location: "Riverside Club", City: "Evansville", State: "IN", Price: "$10",
			Organizer: "Arts Council", Attendees: 40},
		{ID: "2", Title: "Farmers Market", Category: "Community", Date: "2026-09-06", Time: "08:00",
			Location: "Main St", City: "Evansville", State: "IN", Price: "Free",
			Organizer: "Jordan", Attendees: 10},
		{ID: "3", Title: "Derby Gala", Category: "Community", Date: "2026-09-07", Time: "18:00",
			Location: "Churchill", City: "Louisville", State: "KY", Price: "$50",
			Organizer: "Jordan", Attendees: 100},
		{ID: "4", Title: "Retro Arcade", Category: "Community", Date: "2026-08-01", Time: "12:00",
			Location: "Haynie's Corner", City: "Evansville", State: "IN", Price: "Free",
			Organizer: "Sam", Attendees: 5, CreatedBy: "uid-1"},
	}
}

func newTestController(t *testing.T, auth *fakeAuth, store *fakeEventStore, members *fakeMembers) *Controller {
	t.Helper()
	c := NewController(auth, store, members, testLocation, testCategories)
	require.NoError(t, c.Start(context.Background(), nil))
	t.Cleanup(c.Close)
	return c
}

func signedInController(t *testing.T) (*Controller, *fakeEventStore, *fakeMembers) {
	t.Helper()
	store := &fakeEventStore{events: testEvents()}
	members := &fakeMembers{}
	c := newTestController(t, &fakeAuth{}, store, members)
	c.Restore(context.Background(), &model.UserProfile{UserID: "uid-1", Name: "Jordan"})
	return c, store, members
}

func TestStartSeedsEmptyStore(t *testing.T) {
	store := &fakeEventStore{}
	c := NewController(&fakeAuth{}, store, &fakeMembers{}, testLocation, testCategories)

	seed := []model.Event{{ID: "s1", Title: "Starter"}}
	require.NoError(t, c.Start(context.Background(), seed))

	assert.Len(t, c.Events(), 1)
	assert.Len(t, store.events, 1, "seed events are persisted")

	t.Run("non-empty store is not reseeded", func(t *testing.T) {
		c2 := NewController(&fakeAuth{}, store, &fakeMembers{}, testLocation, testCategories)
		require.NoError(t, c2.Start(context.Background(), []model.Event{{ID: "s2", Title: "Other"}}))
		assert.Len(t, c2.Events(), 1)
		assert.Equal(t, "s1", c2.Events()[0].ID)
	})
}

func TestSignUp(t *testing.T) {
	t.Run("rejects invalid form before auth", func(t *testing.T) {
		auth := &fakeAuth{err: errors.New("auth should not be reached")}
		c := newTestController(t, auth, &fakeEventStore{}, &fakeMembers{})

		_, _, err := c.SignUp(context.Background(), "bad-email", "short", "", "", "", "")

		var verr model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr, "email")
		assert.Contains(t, verr, "password")
		assert.Contains(t, verr, "name")
	})

	t.Run("rejects a mismatched confirmation before auth", func(t *testing.T) {
		auth := &fakeAuth{err: errors.New("auth should not be reached")}
		c := newTestController(t, auth, &fakeEventStore{}, &fakeMembers{})

		_, _, err := c.SignUp(context.Background(), "jo@example.com", "abc123", "abc124", "Jordan", "", "")

		var verr model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Passwords do not match", verr["confirmPassword"])
		assert.Nil(t, c.User(), "no session is established")
	})

	t.Run("blank home falls back to browsing location", func(t *testing.T) {
		c := newTestController(t, &fakeAuth{token: "tok"}, &fakeEventStore{}, &fakeMembers{})

		profile, token, err := c.SignUp(context.Background(), "jo@example.com", "abc123", "abc123", "Jordan", "", "")
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.Equal(t, "Evansville", profile.HomeCity)
		assert.Equal(t, "IN", profile.HomeState)
		require.NotNil(t, c.User())
		assert.Equal(t, "uid-new", c.User().UserID)
	})
}

func TestLogInRestoresMemberships(t *testing.T) {
	members := &fakeMembers{lists: map[Kind][]string{
		KindFavorite: {"1"},
		KindCalendar: {"2"},
	}}
	auth := &fakeAuth{profile: &model.UserProfile{UserID: "uid-1", Name: "Jordan"}, token: "tok"}
	c := newTestController(t, auth, &fakeEventStore{events: testEvents()}, members)

	_, token, err := c.LogIn(context.Background(), "jo@example.com", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	assert.True(t, c.Favorites().Has("1"))
	assert.True(t, c.Calendar().Has("2"))
}

func TestLogOut(t *testing.T) {
	auth := &fakeAuth{profile: &model.UserProfile{UserID: "uid-1"}}
	members := &fakeMembers{lists: map[Kind][]string{KindFavorite: {"1"}}}
	c := newTestController(t, auth, &fakeEventStore{}, members)

	_, _, err := c.LogIn(context.Background(), "jo@example.com", "abc123")
	require.NoError(t, err)

	require.NoError(t, c.LogOut(context.Background()))

	assert.Nil(t, c.User())
	assert.Equal(t, 0, c.Favorites().Len())
	assert.Equal(t, []string{"uid-1"}, auth.loggedOut)

	t.Run("logged-out logout is a no-op", func(t *testing.T) {
		require.NoError(t, c.LogOut(context.Background()))
		assert.Len(t, auth.loggedOut, 1)
	})
}

func TestBrowse(t *testing.T) {
	c, _, _ := signedInController(t)

	t.Run("default shows only the browsing location", func(t *testing.T) {
		got := c.Browse("", "", "")
		require.Len(t, got, 3)
		for _, v := range got {
			assert.Equal(t, "Evansville", v.City)
		}
	})

	t.Run("category and query narrow conjunctively", func(t *testing.T) {
		got := c.Browse("jazz", "music", "")
		require.Len(t, got, 1)
		assert.Equal(t, "Jazz Night", got[0].Title)
	})

	t.Run("price sort puts free first", func(t *testing.T) {
		got := c.Browse("", "", "price")
		require.Len(t, got, 3)
		assert.Equal(t, "Free", got[0].Price)
		assert.Equal(t, "Free", got[1].Price)
	})

	t.Run("membership decorates the views", func(t *testing.T) {
		done, err := c.ToggleFavorite(context.Background(), "1")
		require.NoError(t, err)
		require.NoError(t, <-done)

		for _, v := range c.Browse("", "", "") {
			if v.ID == "1" {
				assert.True(t, v.IsFavorite)
				assert.Equal(t, 41, v.DisplayAttendees)
			} else {
				assert.False(t, v.IsFavorite)
				assert.Equal(t, v.Attendees, v.DisplayAttendees)
			}
		}
	})
}

func TestMonthGrid(t *testing.T) {
	c, _, _ := signedInController(t)

	grid := c.MonthGrid(time.September, 2026)

	assert.Len(t, grid, 2)
	require.Len(t, grid[5], 1)
	assert.Equal(t, "Jazz Night", grid[5][0].Title)
	assert.Len(t, grid[6], 1)
	_, ok := grid[7]
	assert.False(t, ok, "out-of-location events are excluded")
}

func TestProfile(t *testing.T) {
	c, _, _ := signedInController(t)

	done, err := c.ToggleFavorite(context.Background(), "3")
	require.NoError(t, err)
	require.NoError(t, <-done)

	ref := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	p := c.Profile(ref)

	assert.Equal(t, []string{"1", "2"}, viewIDs(p.Upcoming))
	assert.Equal(t, []string{"4"}, viewIDs(p.Past))
	// "2" and "3" match the organizer name, "4" matches the creator uid.
	assert.Equal(t, []string{"2", "3", "4"}, viewIDs(p.MyEvents))
	assert.Equal(t, []string{"3"}, viewIDs(p.Favorites), "favorites are not location-scoped")
}

func viewIDs(views []EventView) []string {
	out := make([]string, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

func TestIsOwnEvent(t *testing.T) {
	user := &model.UserProfile{UserID: "uid-1", Name: "Jordan Lee"}

	assert.True(t, isOwnEvent(model.Event{CreatedBy: "uid-1"}, user))
	assert.False(t, isOwnEvent(model.Event{CreatedBy: "uid-2"}, user))
	assert.True(t, isOwnEvent(model.Event{Organizer: "Jordan Lee"}, user))
	assert.True(t, isOwnEvent(model.Event{Organizer: "jordan lee"}, user))
	assert.True(t, isOwnEvent(model.Event{Organizer: "Jordan Lee Productions"}, user))
	assert.False(t, isOwnEvent(model.Event{Organizer: "Sam"}, user))
	assert.False(t, isOwnEvent(model.Event{Organizer: "Jordan Lee"}, nil))
}

func validDraft() EventDraft {
	return EventDraft{
		Title:       "Open Mic",
		Date:        "2026-09-10",
		Time:        "20:00",
		Location:    "Downtown Cafe",
		CategoryID:  "music",
		Description: "Bring your songs and your nerves.",
	}
}

func TestCreateEvent(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	t.Run("requires a viewer", func(t *testing.T) {
		c := newTestController(t, &fakeAuth{}, &fakeEventStore{}, &fakeMembers{})
		_, err := c.CreateEvent(context.Background(), validDraft(), now)
		assert.ErrorIs(t, err, model.ErrNotAuthenticated)
	})

	t.Run("rejects an invalid draft", func(t *testing.T) {
		c, store, _ := signedInController(t)
		draft := validDraft()
		draft.Description = "short"

		_, err := c.CreateEvent(context.Background(), draft, now)

		var verr model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, store.events, 4, "nothing persisted")
	})

	t.Run("persists and fills defaults", func(t *testing.T) {
		c, store, _ := signedInController(t)

		e, err := c.CreateEvent(context.Background(), validDraft(), now)
		require.NoError(t, err)

		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "Music", e.Category, "category id resolves to display name")
		assert.Equal(t, "Free", e.Price)
		assert.Equal(t, "Evansville", e.City)
		assert.Equal(t, "Jordan", e.Organizer)
		assert.Equal(t, "uid-1", e.CreatedBy)
		assert.Contains(t, e.Image, "picsum.photos")
		assert.Len(t, store.events, 5)
		assert.Len(t, c.Events(), 5)
	})

	t.Run("persistence failure is reported", func(t *testing.T) {
		c, store, _ := signedInController(t)
		store.createErr = errors.New("backend unavailable")

		_, err := c.CreateEvent(context.Background(), validDraft(), now)
		assert.ErrorIs(t, err, model.ErrPersistenceFailure)
		assert.Len(t, c.Events(), 4)
	})
}

func TestUpdateEvent(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unknown event", func(t *testing.T) {
		c, _, _ := signedInController(t)
		_, err := c.UpdateEvent(context.Background(), "missing", validDraft(), now)
		assert.ErrorIs(t, err, model.ErrEventDoesNotExist)
	})

	t.Run("only the owner may edit", func(t *testing.T) {
		c, _, _ := signedInController(t)
		_, err := c.UpdateEvent(context.Background(), "1", validDraft(), now)
		assert.ErrorIs(t, err, model.ErrNotEventOwner)
	})

	t.Run("preserves identity and base count", func(t *testing.T) {
		c, store, _ := signedInController(t)

		draft := validDraft()
		draft.Title = "Farmers Market Deluxe"
		e, err := c.UpdateEvent(context.Background(), "2", draft, now)
		require.NoError(t, err)

		assert.Equal(t, "2", e.ID)
		assert.Equal(t, 10, e.Attendees)
		assert.Equal(t, now, e.UpdatedAt)

		stored, err := store.GetEvent(context.Background(), "2")
		require.NoError(t, err)
		assert.Equal(t, "Farmers Market Deluxe", stored.Title)
	})
}

func TestDeleteEvent(t *testing.T) {
	t.Run("only the owner may delete", func(t *testing.T) {
		c, _, _ := signedInController(t)
		assert.ErrorIs(t, c.DeleteEvent(context.Background(), "1"), model.ErrNotEventOwner)
	})

	t.Run("removes everywhere", func(t *testing.T) {
		c, store, _ := signedInController(t)

		require.NoError(t, c.DeleteEvent(context.Background(), "2"))

		assert.Len(t, c.Events(), 3)
		_, err := store.GetEvent(context.Background(), "2")
		assert.ErrorIs(t, err, model.ErrEventDoesNotExist)
	})
}

func TestBulkCreate(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	text := "Title,Date,Time,Location\n" +
		"Potluck,2026-09-10,17:00,Community Center\n" +
		"Doomed,2026-09-11,17:00,Nowhere\n"

	c, store, _ := signedInController(t)
	store.failTitle = "Doomed"

	created, failed, err := c.BulkCreate(context.Background(), text, "csv", "name", "", now)
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, "Potluck", created[0].Title)
	assert.Equal(t, "Jordan", created[0].Organizer)
	assert.Equal(t, []string{"Doomed"}, failed)
	assert.Len(t, c.Events(), 5)
}

func TestToggleFavoriteRollback(t *testing.T) {
	c, _, members := signedInController(t)
	members.failAdd = true

	done, err := c.ToggleFavorite(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, c.Favorites().Has("1"), "flip is visible before persistence resolves")

	got := <-done
	assert.ErrorIs(t, got, model.ErrPersistenceFailure)
	assert.False(t, c.Favorites().Has("1"))
}

func TestToggleCalendarBuildsArtifact(t *testing.T) {
	c, _, _ := signedInController(t)

	done, err := c.ToggleCalendar(context.Background(), "1")
	require.NoError(t, err)
	require.NoError(t, <-done)
	c.Close()

	assert.True(t, c.Calendar().Has("1"))

	text, err := c.Artifact("1")
	require.NoError(t, err)
	assert.Contains(t, text, "BEGIN:VCALENDAR")
	assert.Contains(t, text, "SUMMARY:Jazz Night")
}

func TestArtifact(t *testing.T) {
	c, _, _ := signedInController(t)

	t.Run("built on demand for known events", func(t *testing.T) {
		text, err := c.Artifact("2")
		require.NoError(t, err)
		assert.Contains(t, text, "SUMMARY:Farmers Market")
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := c.Artifact("missing")
		assert.ErrorIs(t, err, model.ErrEventDoesNotExist)
	})
}

func TestNotifications(t *testing.T) {
	c, _, _ := signedInController(t)
	ref := time.Date(2026, time.September, 4, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, c.Notifications(ref))

	for _, toggle := range []struct {
		fn func(context.Context, string) (<-chan error, error)
		id string
	}{
		{c.ToggleFavorite, "1"},
		{c.ToggleCalendar, "1"},
		{c.ToggleCalendar, "2"},
		{c.ToggleFavorite, "4"}, // past, must not appear
	} {
		done, err := toggle.fn(context.Background(), toggle.id)
		require.NoError(t, err)
		require.NoError(t, <-done)
	}
	c.Close()

	got := c.Notifications(ref)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "both", got[0].Type)
	assert.Equal(t, "Jazz Night • Tomorrow at 7:00 PM", got[0].Message)

	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "calendar", got[1].Type)
	assert.Equal(t, "In Your Calendar", got[1].Title)
}

func TestDaysUntilLabel(t *testing.T) {
	assert.Equal(t, "Today!", DaysUntilLabel(0, "2026-09-01"))
	assert.Equal(t, "Tomorrow", DaysUntilLabel(1, "2026-09-02"))
	assert.Equal(t, "In 3 days", DaysUntilLabel(3, "2026-09-04"))
	assert.Equal(t, "In 7 days", DaysUntilLabel(7, "2026-09-08"))
	assert.Equal(t, "September 30, 2026", DaysUntilLabel(29, "2026-09-30"))
	assert.Equal(t, "someday", DaysUntilLabel(30, "someday"), "unparseable dates pass through")
}
