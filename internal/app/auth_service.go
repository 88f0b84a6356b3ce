package app

import (
	"context"
	"log/slog"
	"regexp"
	"sync"

	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/ports"
)

// emailPattern is the client-side email shape check. Validation happens
// before any network call; the backend stays the final authority.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,64}$`)

const minPasswordLength = 6

// AuthService orchestrates the authentication lifecycle: sign-up, login,
// logout, password reset, session restore and the stay-logged-in
// preference. It owns the in-memory session; persistence goes through the
// session store, and the bearer token through the token holder.
//
// Sign-up and login run through the transactional executor so that the
// session is only persisted after the backend's response is verified.
type AuthService struct {
	auth   ports.AuthBackend
	tokens ports.TokenHolder
	store  ports.SessionStore
	exec   *Executor
	logger *slog.Logger

	mu      sync.RWMutex
	session *domain.Session
}

// AuthServiceConfig contains configuration for the auth service.
type AuthServiceConfig struct {
	Auth     ports.AuthBackend
	Tokens   ports.TokenHolder
	Sessions ports.SessionStore
	Logger   *slog.Logger
}

// NewAuthService creates a new auth service with the provided dependencies.
// Panics if Auth or Sessions is nil.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	if cfg.Auth == nil {
		panic("AuthService: Auth is required")
	}

	if cfg.Sessions == nil {
		panic("AuthService: Sessions is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.AuthService"))

	return &AuthService{
		auth:   cfg.Auth,
		tokens: cfg.Tokens,
		store:  cfg.Sessions,
		exec:   NewExecutor(logger),
		logger: logger,
	}
}

// Restore rehydrates the session persisted by a previous run. Restoration
// succeeds only when the stay-logged-in preference is on and every identity
// field survived; anything less starts signed out.
func (s *AuthService) Restore() (*domain.Session, bool) {
	session, ok := s.store.RestoreSession()
	if !ok {
		return nil, false
	}

	s.establish(session)

	s.logger.Info("session restored",
		slog.String("user_id", session.UserID))

	return s.sessionCopy(), true
}

// CurrentSession returns a copy of the in-memory session, if signed in.
func (s *AuthService) CurrentSession() (*domain.Session, bool) {
	session := s.sessionCopy()
	if session == nil {
		return nil, false
	}

	return session, true
}

// IsAuthenticated reports whether a session is established.
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.session != nil
}

type signUpInput struct {
	email    string
	password string
	name     string
}

// SignUp registers a new account. Input is validated before any network
// call. On a token-issuing response the session is established and
// persisted; a confirmation-pending response leaves the caller signed out
// until the email is confirmed.
func (s *AuthService) SignUp(ctx context.Context, email, password, name string) (*ports.SignUpResult, error) {
	op := Operation[signUpInput, *ports.SignUpResult, *ports.SignUpResult, *ports.SignUpResult]{
		Name: "auth.sign_up",

		Validate: func(_ context.Context, in signUpInput) error {
			return ValidateSignUp(in.email, in.password, in.name)
		},

		Perform: func(ctx context.Context, in signUpInput) (*ports.SignUpResult, error) {
			return s.auth.SignUp(ctx, in.email, in.password, in.name)
		},

		Verify: func(_ context.Context, _ signUpInput, performed *ports.SignUpResult) (*ports.SignUpResult, error) {
			if performed == nil || (performed.Session == nil && !performed.ConfirmationPending) {
				return nil, domain.ErrInvalidResponse
			}

			if performed.Session != nil && performed.Session.AccessToken == "" {
				return nil, domain.ErrInvalidResponse
			}

			return performed, nil
		},

		Archive: func(_ context.Context, _ signUpInput, verified *ports.SignUpResult) error {
			if verified.Session == nil {
				return nil
			}

			s.establish(verified.Session)

			return s.store.SaveSession(verified.Session)
		},

		Respond: func(_ context.Context, _ signUpInput, verified *ports.SignUpResult) (*ports.SignUpResult, error) {
			return verified, nil
		},
	}

	return Execute(ctx, s.exec, op, signUpInput{email: email, password: password, name: name})
}

type loginInput struct {
	email    string
	password string
}

// Login exchanges credentials for a session. Input is validated before any
// network call; a verified session is persisted when stay-logged-in is on.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	op := Operation[loginInput, *domain.Session, *domain.Session, *domain.Session]{
		Name: "auth.login",

		Validate: func(_ context.Context, in loginInput) error {
			return ValidateLogin(in.email, in.password)
		},

		Perform: func(ctx context.Context, in loginInput) (*domain.Session, error) {
			return s.auth.SignIn(ctx, in.email, in.password)
		},

		Verify: func(_ context.Context, _ loginInput, performed *domain.Session) (*domain.Session, error) {
			if performed == nil || performed.AccessToken == "" || performed.UserID == "" {
				return nil, domain.ErrInvalidResponse
			}

			return performed, nil
		},

		Archive: func(_ context.Context, _ loginInput, verified *domain.Session) error {
			s.establish(verified)

			return s.store.SaveSession(verified)
		},

		Respond: func(_ context.Context, _ loginInput, verified *domain.Session) (*domain.Session, error) {
			return verified, nil
		},
	}

	return Execute(ctx, s.exec, op, loginInput{email: email, password: password})
}

// Logout clears the in-memory session, the gateway's bearer token and the
// persisted session, regardless of the stay-logged-in preference.
func (s *AuthService) Logout() error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.tokens != nil {
		s.tokens.ClearToken()
	}

	return s.store.ClearSession()
}

// ResetPassword requests a password-recovery email. Only the email shape
// is validated locally.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}

	return s.auth.ResetPassword(ctx, email)
}

// StayLoggedIn reports the persisted preference.
func (s *AuthService) StayLoggedIn() bool {
	return s.store.StayLoggedIn()
}

// SetStayLoggedIn records the preference. Enabling it while signed in
// persists the current session; disabling it erases the persisted fields
// while the in-memory session stays live.
func (s *AuthService) SetStayLoggedIn(enabled bool) error {
	if err := s.store.SetStayLoggedIn(enabled); err != nil {
		return err
	}

	if !enabled {
		return nil
	}

	if session := s.sessionCopy(); session != nil {
		return s.store.SaveSession(session)
	}

	return nil
}

// ValidateEmail reports whether the address passes the client-side shape
// check.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateSignUp checks sign-up input: all fields present, a well-formed
// email, and the minimum password length.
func ValidateSignUp(email, password, name string) error {
	if email == "" || password == "" || name == "" {
		return domain.ErrInvalidInput
	}

	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}

	if len(password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}

	return nil
}

// ValidateLogin checks login input. Unlike sign-up, the password length is
// not enforced; existing accounts may predate the rule.
func ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return domain.ErrInvalidInput
	}

	if !emailPattern.MatchString(email) {
		return domain.ErrInvalidEmail
	}

	return nil
}

func (s *AuthService) establish(session *domain.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if s.tokens != nil {
		s.tokens.SetToken(session.AccessToken)
	}
}

func (s *AuthService) sessionCopy() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil
	}

	snapshot := *s.session

	return &snapshot
}
