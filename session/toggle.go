package session

import (
	"context"
	"fmt"
	"sync"

	"whenwin/model"
)

// Kind names a membership set.
type Kind string

const (
	KindFavorite Kind = "favorites"
	KindCalendar Kind = "calendar"
)

// MembershipStore is the external persistence collaborator for the per-user
// favorite and calendar id sets.
type MembershipStore interface {
	AddMembership(ctx context.Context, userID string, kind Kind, eventID string) error
	RemoveMembership(ctx context.Context, userID string, kind Kind, eventID string) error
	ListMembership(ctx context.Context, userID string, kind Kind) ([]string, error)
}

type toggleKey struct {
	userID  string
	kind    Kind
	eventID string
}

// ToggleCoordinator flips a viewer's membership for one event: it publishes
// the flipped set synchronously (optimistic, zero perceived latency), then
// persists the change, and on failure republishes with only its own id
// restored before reporting the error once. At most one toggle per
// (viewer, kind, event id) may be in flight; a second request for the same
// key is rejected rather than allowed to race. Toggles for different ids on
// the same set interleave safely because each rollback touches only its own
// id.
type ToggleCoordinator struct {
	store MembershipStore

	mu       sync.Mutex
	inflight map[toggleKey]struct{}

	// wg lets tests and shutdown wait for completions; a dispatched toggle
	// always runs to completion even if its originator is gone.
	wg sync.WaitGroup
}

func NewToggleCoordinator(store MembershipStore) *ToggleCoordinator {
	return &ToggleCoordinator{
		store:    store,
		inflight: make(map[toggleKey]struct{}),
	}
}

// ToggleRequest carries one membership flip.
//
// Apply commits a set replacement: the coordinator hands it a transform and
// the owner must run that transform against its current set, under its own
// lock, and publish the result. Report receives the persistence outcome
// exactly once: nil on success, the wrapped failure otherwise. Both
// callbacks must stay valid after RequestToggle returns and must not
// reference request-scoped view state.
type ToggleRequest struct {
	Viewer  *model.UserProfile
	Kind    Kind
	EventID string
	Current model.IDSet

	Apply   func(transform func(model.IDSet) model.IDSet)
	Report  func(err error)
	OnAdded func(eventID string) // optional; runs after a confirmed add
}

// RequestToggle validates and dispatches the flip. The optimistic set
// replacement happens synchronously before this returns; persistence and any
// rollback happen afterwards. Returns ErrNotAuthenticated for a logged-out
// viewer and ErrToggleInFlight when the same key is already pending; in both
// cases no state changes.
func (c *ToggleCoordinator) RequestToggle(ctx context.Context, req ToggleRequest) error {
	if req.Viewer == nil || req.Viewer.UserID == "" {
		return model.ErrNotAuthenticated
	}

	id := model.CanonicalID(req.EventID)
	key := toggleKey{userID: req.Viewer.UserID, kind: req.Kind, eventID: id}

	c.mu.Lock()
	if _, pending := c.inflight[key]; pending {
		c.mu.Unlock()
		return model.ErrToggleInFlight
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	wasPresent := req.Current.Has(id)

	// Optimistic flip, published before any remote call resolves.
	req.Apply(func(cur model.IDSet) model.IDSet {
		if wasPresent {
			return cur.Without(id)
		}
		return cur.With(id)
	})

	// The remote call must finish even if the originating request's context
	// is cancelled mid-flight.
	detached := context.WithoutCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		var err error
		if wasPresent {
			err = c.store.RemoveMembership(detached, key.userID, req.Kind, id)
		} else {
			err = c.store.AddMembership(detached, key.userID, req.Kind, id)
		}

		if err != nil {
			// Roll back by restoring this id's pre-toggle membership.
			// Flipping only our own id keeps toggles of other ids that
			// landed in the meantime intact.
			req.Apply(func(cur model.IDSet) model.IDSet {
				if wasPresent {
					return cur.With(id)
				}
				return cur.Without(id)
			})
			// Release before reporting so a caller reacting to the
			// outcome can immediately toggle the same key again.
			c.release(key)
			if req.Report != nil {
				req.Report(fmt.Errorf("%w: %v", model.ErrPersistenceFailure, err))
			}
			return
		}

		if !wasPresent && req.OnAdded != nil {
			req.OnAdded(id)
		}
		c.release(key)
		if req.Report != nil {
			req.Report(nil)
		}
	}()

	return nil
}

func (c *ToggleCoordinator) release(key toggleKey) {
	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
}

// Wait blocks until every dispatched toggle has completed.
func (c *ToggleCoordinator) Wait() {
	c.wg.Wait()
}
