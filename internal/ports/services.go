// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for anything that crosses the network
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, APIError, etc.)
//   - Methods represent business operations, not CRUD operations
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/quoteapp/quoted/internal/domain"
)

// QuoteQuery holds the paging and filter parameters for a quote page fetch.
// Page is zero-based; the offset sent to the backend is Page*Limit.
type QuoteQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Author   string
}

// QuoteBackend is the read/write surface of the remote quote database.
// Implementations translate these operations into REST calls and map
// failures to domain errors; they never invent data on failure (fallback
// behavior such as the daily quote is the application layer's job).
type QuoteBackend interface {
	// FetchQuotes retrieves a page of quotes, newest first.
	// An empty page is a valid result, not an error.
	FetchQuotes(ctx context.Context, q QuoteQuery) ([]*domain.Quote, error)

	// FetchLatestQuote retrieves the single most recently created quote.
	// Returns domain.ErrNotFound when the backend holds no quotes.
	FetchLatestQuote(ctx context.Context) (*domain.Quote, error)

	// FetchAnyQuote retrieves one quote without an ordering constraint.
	// Returns domain.ErrNotFound when the backend holds no quotes.
	FetchAnyQuote(ctx context.Context) (*domain.Quote, error)

	// FetchQuoteByID retrieves a single quote.
	// Returns domain.ErrNotFound if the id does not exist.
	FetchQuoteByID(ctx context.Context, id string) (*domain.Quote, error)

	// FetchQuotesByIDs retrieves the quotes whose ids are in the given set,
	// in a single membership-filtered request. Missing ids are silently
	// absent from the result.
	FetchQuotesByIDs(ctx context.Context, ids []string) ([]*domain.Quote, error)

	// FetchUserFavorites retrieves the favorite rows for a user, newest
	// first. An empty slice means the user has no favorites.
	FetchUserFavorites(ctx context.Context, userID string) ([]*domain.UserFavorite, error)

	// FetchFavorite retrieves the favorite row linking a user to a quote.
	// Returns domain.ErrNotFound if no such row exists.
	FetchFavorite(ctx context.Context, userID, quoteID string) (*domain.UserFavorite, error)

	// AddFavorite inserts a favorite row. Duplicate inserts are rejected by
	// the backend, surfacing as a domain.APIError.
	AddFavorite(ctx context.Context, userID, quoteID string) error

	// RemoveFavorite deletes the favorite row for (user, quote).
	// Removing a non-existent favorite is not an error.
	RemoveFavorite(ctx context.Context, userID, quoteID string) error

	// FetchCollections retrieves a user's collections, newest first.
	FetchCollections(ctx context.Context, userID string) ([]*domain.Collection, error)

	// CreateCollection inserts a collection and returns the created record.
	// Returns domain.ErrInvalidResponse if the backend acknowledges the
	// insert without returning the representation.
	CreateCollection(ctx context.Context, userID, name string) (*domain.Collection, error)

	// DeleteCollection removes a collection owned by the user.
	DeleteCollection(ctx context.Context, userID, collectionID string) error

	// FetchCollectionLinks retrieves the quote-membership rows of a
	// collection, newest first.
	FetchCollectionLinks(ctx context.Context, collectionID string) ([]*domain.CollectionQuote, error)

	// AddQuoteToCollection inserts a membership row. Duplicates are the
	// backend's concern, as with AddFavorite.
	AddQuoteToCollection(ctx context.Context, collectionID, quoteID string) error

	// RemoveQuoteFromCollection deletes the membership row.
	RemoveQuoteFromCollection(ctx context.Context, collectionID, quoteID string) error
}

// SignUpResult is the discriminated outcome of a sign-up call. Exactly one
// of the two shapes is populated: a live session when the backend issued
// tokens immediately, or ConfirmationPending when the account was created
// but requires email confirmation before sign-in.
type SignUpResult struct {
	Session             *domain.Session
	ConfirmationPending bool
}

// AuthBackend is the authentication surface of the remote identity service.
type AuthBackend interface {
	// SignUp registers a new account. The display name travels as user
	// metadata. Backend rejections surface as domain.APIError with the
	// server-provided message.
	SignUp(ctx context.Context, email, password, name string) (*SignUpResult, error)

	// SignIn exchanges credentials for a session.
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)

	// ResetPassword requests a password-recovery email. A successful return
	// only means the request was accepted.
	ResetPassword(ctx context.Context, email string) error
}

// TokenHolder is implemented by gateways that attach a bearer token to
// outgoing requests. The orchestrator sets the token on login and clears it
// on logout; persistence of the token is the SessionStore's concern.
type TokenHolder interface {
	SetToken(token string)
	ClearToken()
}

// SessionStore persists the authenticated session across process restarts,
// gated by the stay-logged-in preference. Implementations are local
// (a preferences file) and therefore take no context.
type SessionStore interface {
	// StayLoggedIn reports the persisted value of the preference.
	StayLoggedIn() bool

	// SetStayLoggedIn records the preference. Disabling it erases every
	// persisted session field immediately; the caller's in-memory session
	// is not affected.
	SetStayLoggedIn(enabled bool) error

	// SaveSession persists the session fields. It is a no-op unless the
	// stay-logged-in preference is currently enabled.
	SaveSession(s *domain.Session) error

	// RestoreSession returns the persisted session only when the
	// stay-logged-in preference is enabled and every identity field
	// (email, name, user id, access token) is present. Any other state
	// restores nothing.
	RestoreSession() (*domain.Session, bool)

	// ClearSession removes every persisted session field unconditionally,
	// regardless of the stay-logged-in preference.
	ClearSession() error
}

// Preferences exposes the presentation settings that live alongside the
// session in the preference store. The core never interprets these values;
// they round-trip between the store and the UI surfaces.
type Preferences interface {
	FontSize() float64
	SetFontSize(size float64) error
	Theme() string
	SetTheme(theme string) error
	AccentColor() string
	SetAccentColor(color string) error
	NotificationsEnabled() bool
	SetNotificationsEnabled(enabled bool) error
	NotificationTime() string
	SetNotificationTime(hhmm string) error
}
