// Package supabase adapts the remote backend's REST and auth APIs to the
// application's backend ports. It translates wire DTOs to domain types and
// maps failures to domain errors, protecting the rest of the codebase from
// the backend's representation.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/quoteapp/quoted/internal/adapters/clients"
	"github.com/quoteapp/quoted/internal/adapters/http/middleware"
	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/platform/logging"
	"github.com/quoteapp/quoted/internal/ports"
)

const (
	serviceName = "supabase"
	restPrefix  = "/rest/v1/"
)

// Config contains configuration for the gateway.
type Config struct {
	// Client is the instrumented HTTP client. Its BaseURL must match
	// BaseURL below.
	Client *clients.Client

	// BaseURL is the project URL, e.g. "https://project.supabase.co".
	BaseURL string

	// AnonKey is the project's anonymous API key, sent on every request.
	AnonKey string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Gateway implements ports.QuoteBackend, ports.AuthBackend, ports.TokenHolder
// and ports.HealthChecker against a single backend project.
//
// The bearer token is mutable: the auth flow sets it after sign-in and
// clears it on logout. All other state is immutable after construction.
type Gateway struct {
	client  *clients.Client
	baseURL string
	anonKey string
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a gateway. Panics if Client is nil. Defaults logger to
// slog.Default() if nil.
func New(cfg Config) *Gateway {
	if cfg.Client == nil {
		panic("supabase: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		client:  cfg.Client,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		anonKey: cfg.AnonKey,
		logger:  logger,
	}
}

// SetToken installs the bearer token attached to subsequent requests.
// Implements ports.TokenHolder.
func (g *Gateway) SetToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

// ClearToken removes the bearer token. Implements ports.TokenHolder.
func (g *Gateway) ClearToken() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = ""
}

// bearer resolves the token for a request. A caller token carried in the
// context (set by the HTTP facade's auth middleware) takes precedence over
// the gateway-held token.
func (g *Gateway) bearer(ctx context.Context) string {
	if token := middleware.BearerFromContext(ctx); token != "" {
		return token
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.token
}

// newRequest builds a REST request with the standard headers. The bearer
// token is attached when present; anonymous reads work without it.
func (g *Gateway) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader = http.NoBody

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Content-Type", "application/json")

	if token := g.bearer(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

// do executes the request through the instrumented client and maps transport
// failures (timeouts, connection errors, open circuit) to domain errors.
// Non-2xx responses come back as responses; the caller interprets the body.
func (g *Gateway) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	g.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path))

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, err.Error())
	}

	g.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode))

	return resp, nil
}

func is2xx(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// requestError converts a non-2xx REST response to a domain error, keeping
// the backend's message when the body carries one.
func (g *Gateway) requestError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	g.logger.Warn("backend request failed",
		slog.Int("status_code", resp.StatusCode),
		slog.String("body", string(body)))

	msg := requestErrorMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}

	return domain.NewAPIErrorWithStatus(msg, resp.StatusCode)
}

// fetchList performs a GET against a REST endpoint and decodes the row set.
// An empty body and a literal empty array both decode to an empty slice.
func fetchList[T any](ctx context.Context, g *Gateway, endpoint string) ([]T, error) {
	req, err := g.newRequest(ctx, http.MethodGet, restPrefix+endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return nil, g.requestError(resp)
	}

	return decodeList[T](resp.Body)
}

func decodeList[T any](body io.Reader) ([]T, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if trimmed := strings.TrimSpace(string(data)); trimmed == "" || trimmed == "[]" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		// A 2xx status with an undecodable body sometimes carries an
		// error payload anyway. Surface its message when present.
		if msg := requestErrorMessage(data); msg != "" {
			return nil, domain.NewAPIError(msg)
		}

		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidResponse, err)
	}

	return items, nil
}

// insert performs a POST with Prefer: return=representation and decodes the
// created rows.
func insert[T any](ctx context.Context, g *Gateway, table string, payload any) ([]T, error) {
	req, err := g.newRequest(ctx, http.MethodPost, restPrefix+table, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Prefer", "return=representation")

	resp, err := g.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return nil, g.requestError(resp)
	}

	return decodeList[T](resp.Body)
}

// deleteWhere performs a DELETE against a filtered REST endpoint.
func (g *Gateway) deleteWhere(ctx context.Context, endpoint string) error {
	req, err := g.newRequest(ctx, http.MethodDelete, restPrefix+endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := g.do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return g.requestError(resp)
	}

	return nil
}

// FetchQuotes retrieves a page of quotes, newest first.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchQuotes(ctx context.Context, q ports.QuoteQuery) ([]*domain.Quote, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "quotes?order=created_at.desc&limit=%d&offset=%d", q.Limit, q.Page*q.Limit)

	if q.Category != "" {
		fmt.Fprintf(&sb, "&category=eq.%s", url.QueryEscape(q.Category))
	}

	// ilike patterns wrap the term in encoded % wildcards.
	if q.Search != "" {
		fmt.Fprintf(&sb, "&text=ilike.%%25%s%%25", url.QueryEscape(q.Search))
	}

	if q.Author != "" {
		fmt.Fprintf(&sb, "&author=ilike.%%25%s%%25", url.QueryEscape(q.Author))
	}

	records, err := fetchList[quoteRecord](ctx, g, sb.String())
	if err != nil {
		return nil, err
	}

	return quotesToDomain(records), nil
}

// FetchLatestQuote retrieves the most recently created quote.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchLatestQuote(ctx context.Context) (*domain.Quote, error) {
	return g.fetchOneQuote(ctx, "quotes?order=created_at.desc&limit=1", "")
}

// FetchAnyQuote retrieves one quote without an ordering constraint.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchAnyQuote(ctx context.Context) (*domain.Quote, error) {
	return g.fetchOneQuote(ctx, "quotes?limit=1", "")
}

// FetchQuoteByID retrieves a single quote.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchQuoteByID(ctx context.Context, id string) (*domain.Quote, error) {
	return g.fetchOneQuote(ctx, "quotes?id=eq."+id, id)
}

func (g *Gateway) fetchOneQuote(ctx context.Context, endpoint, id string) (*domain.Quote, error) {
	records, err := fetchList[quoteRecord](ctx, g, endpoint)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.NewNotFoundError("quote", id)
	}

	return records[0].toDomain(), nil
}

// FetchQuotesByIDs retrieves quotes by membership filter in one request.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchQuotesByIDs(ctx context.Context, ids []string) ([]*domain.Quote, error) {
	if len(ids) == 0 {
		return []*domain.Quote{}, nil
	}

	endpoint := "quotes?id=in.(" + strings.Join(ids, ",") + ")"

	records, err := fetchList[quoteRecord](ctx, g, endpoint)
	if err != nil {
		return nil, err
	}

	return quotesToDomain(records), nil
}

// FetchUserFavorites retrieves a user's favorite rows, newest first.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchUserFavorites(ctx context.Context, userID string) ([]*domain.UserFavorite, error) {
	endpoint := fmt.Sprintf("user_favorites?user_id=eq.%s&order=created_at.desc", userID)

	records, err := fetchList[favoriteRecord](ctx, g, endpoint)
	if err != nil {
		return nil, err
	}

	favorites := make([]*domain.UserFavorite, 0, len(records))
	for i := range records {
		favorites = append(favorites, records[i].toDomain())
	}

	return favorites, nil
}

// FetchFavorite retrieves the favorite row linking a user to a quote.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchFavorite(ctx context.Context, userID, quoteID string) (*domain.UserFavorite, error) {
	endpoint := fmt.Sprintf("user_favorites?user_id=eq.%s&quote_id=eq.%s", userID, quoteID)

	records, err := fetchList[favoriteRecord](ctx, g, endpoint)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, domain.NewNotFoundError("favorite", quoteID)
	}

	return records[0].toDomain(), nil
}

// AddFavorite inserts a favorite row.
// Implements ports.QuoteBackend.
func (g *Gateway) AddFavorite(ctx context.Context, userID, quoteID string) error {
	payload := map[string]string{
		"user_id":  userID,
		"quote_id": quoteID,
	}

	_, err := insert[favoriteRecord](ctx, g, "user_favorites", payload)

	return err
}

// RemoveFavorite deletes the favorite row for (user, quote).
// Implements ports.QuoteBackend.
func (g *Gateway) RemoveFavorite(ctx context.Context, userID, quoteID string) error {
	endpoint := fmt.Sprintf("user_favorites?user_id=eq.%s&quote_id=eq.%s", userID, quoteID)

	return g.deleteWhere(ctx, endpoint)
}

// FetchCollections retrieves a user's collections, newest first.
// Implements ports.QuoteBackend.
func (g *Gateway) FetchCollections(ctx context.Context, userID string) ([]*domain.Collection, error) {
	endpoint := fmt.Sprintf("collections?user_id=eq.%s&order=created_at.desc", userID)

	records, err := fetchList[collectionRecord](ctx, g, endpoint)
	if err != nil {
		return nil, err
	}

	collections := make([]*domain.Collection, 0, len(records))
	for i := range records {
		collections = append(collections, records[i].toDomain())
	}

	return collections, nil
}

// CreateCollection inserts a collection and returns the created record.
// Implements ports.QuoteBackend.
func (g *Gateway) CreateCollection(ctx context.Context, userID, name string) (*domain.Collection, error) {
	payload := map[string]string{
		"user_id": userID,
		"name":    name,
	}

	records, err := insert[collectionRecord](ctx, g, "collections", payload)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: insert returned no representation", domain.ErrInvalidResponse)
	}

	return records[0].toDomain(), nil
}

// DeleteCollection removes a collection owned by the user. The user filter
// keeps one user from deleting another's collection by id.
// Implements ports.QuoteBackend.
func (g *Gateway) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	endpoint := fmt.Sprintf("collections?id=eq.%s&user_id=eq.%s", collectionID, userID)

	return g.deleteWhere(ctx, endpoint)
}

// FetchCollectionLinks retrieves a collection's membership rows, newest
// first. Implements ports.QuoteBackend.
func (g *Gateway) FetchCollectionLinks(ctx context.Context, collectionID string) ([]*domain.CollectionQuote, error) {
	endpoint := fmt.Sprintf("collection_quotes?collection_id=eq.%s&order=created_at.desc", collectionID)

	records, err := fetchList[collectionQuoteRecord](ctx, g, endpoint)
	if err != nil {
		return nil, err
	}

	links := make([]*domain.CollectionQuote, 0, len(records))
	for i := range records {
		links = append(links, records[i].toDomain())
	}

	return links, nil
}

// AddQuoteToCollection inserts a membership row.
// Implements ports.QuoteBackend.
func (g *Gateway) AddQuoteToCollection(ctx context.Context, collectionID, quoteID string) error {
	payload := map[string]string{
		"collection_id": collectionID,
		"quote_id":      quoteID,
	}

	_, err := insert[collectionQuoteRecord](ctx, g, "collection_quotes", payload)

	return err
}

// RemoveQuoteFromCollection deletes the membership row.
// Implements ports.QuoteBackend.
func (g *Gateway) RemoveQuoteFromCollection(ctx context.Context, collectionID, quoteID string) error {
	endpoint := fmt.Sprintf("collection_quotes?collection_id=eq.%s&quote_id=eq.%s", collectionID, quoteID)

	return g.deleteWhere(ctx, endpoint)
}

// Name returns the health check name for this gateway.
// Implements ports.HealthChecker.
func (g *Gateway) Name() string {
	return serviceName
}

// Check verifies connectivity with a minimal read.
// Implements ports.HealthChecker.
func (g *Gateway) Check(ctx context.Context) error {
	req, err := g.newRequest(ctx, http.MethodGet, restPrefix+"quotes?limit=1", nil)
	if err != nil {
		return err
	}

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !is2xx(resp.StatusCode) {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	return nil
}
