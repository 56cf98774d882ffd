package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"firebase.google.com/go/v4/auth"

	"whenwin/model"
)

// signInEndpoint is the Identity Toolkit password sign-in endpoint. The
// Admin SDK cannot exchange an email/password for a session, so log-in goes
// through the same REST call the hosted client SDKs use.
const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// AuthConnector wraps the Firebase auth client. Sign-up goes through the
// Admin SDK; password sign-in goes through the Identity Toolkit REST
// endpoint using the project's web API key; session tokens are Firebase ID
// tokens verified per request.
type AuthConnector struct {
	client *auth.Client
	store  *FirestoreConnector
	apiKey string
	http   *http.Client
}

func NewAuthConnector(ctx context.Context, store *FirestoreConnector, apiKey string) (*AuthConnector, error) {
	client, err := store.App().Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %v", err)
	}
	return &AuthConnector{
		client: client,
		store:  store,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// SignUp creates the account and its profile document, then signs the new
// user in and returns the session token.
func (ac *AuthConnector) SignUp(ctx context.Context, email, password, name, city, state string) (*model.UserProfile, string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)

	user, err := ac.client.CreateUser(ctx, params)
	if err != nil {
		return nil, "", fmt.Errorf("error creating user: %v", err)
	}

	profile := model.UserProfile{
		UserID:    user.UID,
		Name:      name,
		Email:     email,
		HomeCity:  city,
		HomeState: state,
		Avatar:    "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=32a86b&color=fff",
		CreatedAt: time.Now(),
	}
	if err := ac.store.CreateUserProfile(ctx, user.UID, profile); err != nil {
		return nil, "", err
	}

	_, token, err := ac.signInWithPassword(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	return &profile, token, nil
}

// LogIn exchanges the credentials for a session token and loads the
// profile.
func (ac *AuthConnector) LogIn(ctx context.Context, email, password string) (*model.UserProfile, string, error) {
	uid, token, err := ac.signInWithPassword(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	profile, err := ac.store.GetUserProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, model.ErrUserDoesNotExist) {
			// Account exists in auth but never got a profile document;
			// return a minimal profile rather than locking the user out.
			return &model.UserProfile{UserID: uid, Email: email}, token, nil
		}
		return nil, "", err
	}
	return profile, token, nil
}

// LogOut revokes the user's refresh tokens so the session cannot be
// re-minted.
func (ac *AuthConnector) LogOut(ctx context.Context, userID string) error {
	if err := ac.client.RevokeRefreshTokens(ctx, userID); err != nil {
		return fmt.Errorf("error revoking tokens: %v", err)
	}
	return nil
}

// VerifySession validates a bearer ID token and resolves its profile.
func (ac *AuthConnector) VerifySession(ctx context.Context, idToken string) (*model.UserProfile, error) {
	if idToken == "" {
		return nil, model.ErrNotAuthenticated
	}
	tok, err := ac.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, model.ErrNotAuthenticated
	}

	profile, err := ac.store.GetUserProfile(ctx, tok.UID)
	if err != nil {
		if errors.Is(err, model.ErrUserDoesNotExist) {
			return &model.UserProfile{UserID: tok.UID}, nil
		}
		return nil, err
	}
	return profile, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	IDToken string `json:"idToken"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (ac *AuthConnector) signInWithPassword(ctx context.Context, email, password string) (string, string, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return "", "", fmt.Errorf("error encoding sign-in request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signInEndpoint+"?key="+url.QueryEscape(ac.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("error building sign-in request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ac.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("error signing in: %v", err)
	}
	defer resp.Body.Close()

	var decoded signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", "", fmt.Errorf("error decoding sign-in response: %v", err)
	}
	if resp.StatusCode != http.StatusOK || decoded.Error != nil {
		msg := "sign-in rejected"
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", "", fmt.Errorf("error signing in: %s", msg)
	}
	return decoded.LocalID, decoded.IDToken, nil
}
