package repo

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"whenwin/model"
	"whenwin/session"
)

// FirestoreConnector holds the Firebase app and Firestore client and
// implements the event store and membership store used by the session.
// Layout: events live in the "events" collection; user profiles in
// "users/{uid}"; the per-user membership sets in "users/{uid}/favorites"
// and "users/{uid}/calendar" subcollections keyed by canonical event id.
type FirestoreConnector struct {
	app    *firebase.App
	client *firestore.Client
}

// NewFirestoreConnector creates a new Firestore connector. An empty
// credentials file falls back to application default credentials.
func NewFirestoreConnector(ctx context.Context, projectID, credentialsFile string) (*FirestoreConnector, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %v", err)
	}

	return &FirestoreConnector{
		app:    app,
		client: client,
	}, nil
}

// App exposes the underlying Firebase app for the auth connector.
func (fc *FirestoreConnector) App() *firebase.App {
	return fc.app
}

// CreateEvent creates a new event document and returns its id.
func (fc *FirestoreConnector) CreateEvent(ctx context.Context, event model.Event) (string, error) {
	doc := fc.client.Collection("events").NewDoc()
	if event.ID != "" {
		doc = fc.client.Collection("events").Doc(model.CanonicalID(event.ID))
	}
	event.ID = doc.ID

	if _, err := doc.Set(ctx, event); err != nil {
		return "", fmt.Errorf("error creating event: %v", err)
	}
	return doc.ID, nil
}

// GetEvent reads an event by its id.
func (fc *FirestoreConnector) GetEvent(ctx context.Context, eventID string) (*model.Event, error) {
	snap, err := fc.client.Collection("events").Doc(model.CanonicalID(eventID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrEventDoesNotExist
		}
		return nil, fmt.Errorf("error reading event: %v", err)
	}

	var event model.Event
	if err := snap.DataTo(&event); err != nil {
		return nil, fmt.Errorf("error decoding event: %v", err)
	}
	if event.ID == "" {
		event.ID = snap.Ref.ID
	}
	return &event, nil
}

// UpdateEvent replaces an existing event document.
func (fc *FirestoreConnector) UpdateEvent(ctx context.Context, eventID string, event model.Event) error {
	event.ID = model.CanonicalID(eventID)
	if _, err := fc.client.Collection("events").Doc(event.ID).Set(ctx, event); err != nil {
		return fmt.Errorf("error updating event: %v", err)
	}
	return nil
}

// DeleteEvent deletes an event by its id.
func (fc *FirestoreConnector) DeleteEvent(ctx context.Context, eventID string) error {
	if _, err := fc.client.Collection("events").Doc(model.CanonicalID(eventID)).Delete(ctx); err != nil {
		return fmt.Errorf("error deleting event: %v", err)
	}
	return nil
}

// ListEvents lists all event documents.
func (fc *FirestoreConnector) ListEvents(ctx context.Context) ([]model.Event, error) {
	iter := fc.client.Collection("events").Documents(ctx)
	defer iter.Stop()

	var events []model.Event
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing events: %v", err)
		}

		var event model.Event
		if err := snap.DataTo(&event); err != nil {
			return nil, fmt.Errorf("error decoding event %s: %v", snap.Ref.ID, err)
		}
		if event.ID == "" {
			event.ID = snap.Ref.ID
		}
		events = append(events, event)
	}
	return events, nil
}

type membershipDoc struct {
	EventID string    `firestore:"eventId"`
	SavedAt time.Time `firestore:"savedAt"`
}

func (fc *FirestoreConnector) membership(userID string, kind session.Kind) *firestore.CollectionRef {
	return fc.client.Collection("users").Doc(userID).Collection(string(kind))
}

// AddMembership stores one favorite/calendar marking.
func (fc *FirestoreConnector) AddMembership(ctx context.Context, userID string, kind session.Kind, eventID string) error {
	doc := membershipDoc{EventID: eventID, SavedAt: time.Now()}
	if _, err := fc.membership(userID, kind).Doc(eventID).Set(ctx, doc); err != nil {
		return fmt.Errorf("error saving %s entry: %v", kind, err)
	}
	return nil
}

// RemoveMembership deletes one favorite/calendar marking.
func (fc *FirestoreConnector) RemoveMembership(ctx context.Context, userID string, kind session.Kind, eventID string) error {
	if _, err := fc.membership(userID, kind).Doc(eventID).Delete(ctx); err != nil {
		return fmt.Errorf("error removing %s entry: %v", kind, err)
	}
	return nil
}

// ListMembership returns the user's stored event ids for one set.
func (fc *FirestoreConnector) ListMembership(ctx context.Context, userID string, kind session.Kind) ([]string, error) {
	iter := fc.membership(userID, kind).Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing %s: %v", kind, err)
		}

		var doc membershipDoc
		if err := snap.DataTo(&doc); err != nil || doc.EventID == "" {
			ids = append(ids, snap.Ref.ID)
			continue
		}
		ids = append(ids, doc.EventID)
	}
	return ids, nil
}

// CreateUserProfile writes the profile document for a new account.
func (fc *FirestoreConnector) CreateUserProfile(ctx context.Context, userID string, profile model.UserProfile) error {
	if _, err := fc.client.Collection("users").Doc(userID).Set(ctx, profile); err != nil {
		return fmt.Errorf("error creating user profile: %v", err)
	}
	return nil
}

// GetUserProfile reads a profile document.
func (fc *FirestoreConnector) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	snap, err := fc.client.Collection("users").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, model.ErrUserDoesNotExist
		}
		return nil, fmt.Errorf("error reading user profile: %v", err)
	}

	var profile model.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("error decoding user profile: %v", err)
	}
	profile.UserID = snap.Ref.ID
	return &profile, nil
}

// Close closes the Firestore client.
func (fc *FirestoreConnector) Close() error {
	return fc.client.Close()
}
