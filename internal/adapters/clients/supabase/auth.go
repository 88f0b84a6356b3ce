package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/ports"
)

const (
	signUpPath  = "/auth/v1/signup"
	signInPath  = "/auth/v1/token?grant_type=password"
	recoverPath = "/auth/v1/recover"
)

// authUser is the identity object inside auth responses.
type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// authEnvelope covers both response shapes the auth endpoints produce: a
// token grant with a nested user, or (sign-up with email confirmation
// enabled) the bare user object at the root.
type authEnvelope struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	User         *authUser `json:"user"`

	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	ConfirmationSentAt *timestamp `json:"confirmation_sent_at"`
}

// metadataName returns the display name from user metadata, or the fallback
// when the metadata has none.
func (u *authUser) metadataName(fallback string) string {
	if v, ok := u.UserMetadata["name"].(string); ok && v != "" {
		return v
	}

	return fallback
}

func sessionFromGrant(env *authEnvelope, email, name string) *domain.Session {
	userEmail := env.User.Email
	if userEmail == "" {
		userEmail = email
	}

	return &domain.Session{
		UserID:       env.User.ID,
		Email:        userEmail,
		Name:         env.User.metadataName(name),
		AccessToken:  env.AccessToken,
		RefreshToken: env.RefreshToken,
	}
}

// postAuth executes a POST against an auth endpoint and returns the status
// and raw body. Auth endpoints authenticate with the API key only; no
// bearer token travels with them.
func (g *Gateway) postAuth(ctx context.Context, path string, payload any) (int, []byte, error) {
	req, err := g.newRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Del("Authorization")

	resp, err := g.do(ctx, req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// SignUp registers a new account. The display name travels as user metadata.
// Implements ports.AuthBackend.
//
// The backend answers 200 or 201 depending on project settings. A token in
// the response means the account is live; a bare user object means the
// account was created but email confirmation is required before sign-in.
func (g *Gateway) SignUp(ctx context.Context, email, password, name string) (*ports.SignUpResult, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}

	status, body, err := g.postAuth(ctx, signUpPath, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return nil, domain.NewAPIErrorWithStatus(authErrorMessage(body, status, "sign up"), status)
	}

	var env authEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidResponse, err)
	}

	switch {
	case env.AccessToken != "" && env.User != nil:
		return &ports.SignUpResult{Session: sessionFromGrant(&env, email, name)}, nil
	case env.User != nil || env.ID != "":
		// Account created, tokens withheld until the email is confirmed.
		return &ports.SignUpResult{ConfirmationPending: true}, nil
	}

	// A 2xx body with neither shape is an error payload in disguise.
	return nil, domain.NewAPIErrorWithStatus(authErrorMessage(body, status, "sign up"), status)
}

// SignIn exchanges credentials for a session.
// Implements ports.AuthBackend.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	status, body, err := g.postAuth(ctx, signInPath, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, domain.NewAPIErrorWithStatus(authErrorMessage(body, status, "sign in"), status)
	}

	var env authEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidResponse, err)
	}

	if env.AccessToken == "" || env.User == nil {
		return nil, fmt.Errorf("%w: token grant missing session", domain.ErrInvalidResponse)
	}

	return sessionFromGrant(&env, email, domain.DeriveName(email)), nil
}

// ResetPassword requests a password-recovery email.
// Implements ports.AuthBackend.
func (g *Gateway) ResetPassword(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}

	status, body, err := g.postAuth(ctx, recoverPath, payload)
	if err != nil {
		return err
	}

	if status != http.StatusOK && status != http.StatusCreated {
		return domain.NewAPIErrorWithStatus(authErrorMessage(body, status, "password reset"), status)
	}

	return nil
}
