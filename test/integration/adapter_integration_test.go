//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteapp/quoted/internal/adapters/clients"
	"github.com/quoteapp/quoted/internal/adapters/clients/supabase"
	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/platform/config"
	"github.com/quoteapp/quoted/internal/ports"
)

const integrationAnonKey = "integration-anon-key"

// testGatewayConfig returns a client config suitable for gateway integration
// testing.
func testGatewayConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "supabase",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 2,
		},
	}
}

func newIntegrationGateway(t *testing.T, cfg *clients.Config) *supabase.Gateway {
	t.Helper()

	client, err := clients.New(cfg)
	require.NoError(t, err)

	return supabase.New(supabase.Config{
		Client:  client,
		BaseURL: cfg.BaseURL,
		AnonKey: integrationAnonKey,
	})
}

// TestGateway_FetchQuoteByID_Integration verifies the full flow of fetching
// a quote by ID through the gateway, including the REST filter syntax and
// the standard headers.
func TestGateway_FetchQuoteByID_Integration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/quotes", r.URL.Path)
		assert.Equal(t, "eq.quote-integration-123", r.URL.Query().Get("id"))
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, integrationAnonKey, r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": "quote-integration-123",
			"text": "Stay hungry, stay foolish.",
			"author": "Steve Jobs",
			"category": "motivation",
			"created_at": "2024-06-15T14:30:00Z"
		}]`))
	}))
	defer server.Close()

	gateway := newIntegrationGateway(t, testGatewayConfig(server.URL))

	quote, err := gateway.FetchQuoteByID(context.Background(), "quote-integration-123")

	require.NoError(t, err)
	assert.Equal(t, "quote-integration-123", quote.ID)
	assert.Equal(t, "Stay hungry, stay foolish.", quote.Text)
	assert.Equal(t, "Steve Jobs", quote.Author)
	assert.Equal(t, "motivation", quote.Category)
	assert.False(t, quote.CreatedAt.IsZero())
}

// TestGateway_FetchQuotes_Pagination verifies that page and limit translate
// to the REST limit/offset parameters with newest-first ordering.
func TestGateway_FetchQuotes_Pagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/quotes", r.URL.Path)
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "50", r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "q1", "text": "one", "author": "A", "category": "life"},
			{"id": "q2", "text": "two", "author": "B", "category": "life"},
			{"id": "q3", "text": "three", "author": "C", "category": "life"}
		]`))
	}))
	defer server.Close()

	gateway := newIntegrationGateway(t, testGatewayConfig(server.URL))

	quotes, err := gateway.FetchQuotes(context.Background(), ports.QuoteQuery{Page: 2, Limit: 25})

	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "q1", quotes[0].ID)
	assert.Equal(t, "q3", quotes[2].ID)
}

// TestGateway_ErrorMapping_NotFound verifies that an empty row set for a
// single-row lookup maps to a domain NotFoundError.
func TestGateway_ErrorMapping_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	gateway := newIntegrationGateway(t, testGatewayConfig(server.URL))

	_, err := gateway.FetchQuoteByID(context.Background(), "nonexistent-quote")

	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err), "expected NotFoundError")

	// The quote ID is preserved on the error
	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "nonexistent-quote", notFoundErr.ID)
}

// TestGateway_ErrorMapping_BackendMessage verifies that non-2xx responses
// keep the backend's message and status verbatim.
func TestGateway_ErrorMapping_BackendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{
			"code": "23505",
			"message": "duplicate key value violates unique constraint \"user_favorites_pkey\""
		}`))
	}))
	defer server.Close()

	gateway := newIntegrationGateway(t, testGatewayConfig(server.URL))

	err := gateway.AddFavorite(context.Background(), "user-1", "quote-1")

	require.Error(t, err)
	assert.True(t, domain.IsAPIError(err), "expected APIError")
	assert.Contains(t, domain.APIMessage(err), "duplicate key value")

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

// TestGateway_ErrorMapping_Unavailable verifies that transport failures map
// to a domain UnavailableError.
func TestGateway_ErrorMapping_Unavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	cfg := testGatewayConfig(server.URL)
	server.Close() // Connection refused from here on

	gateway := newIntegrationGateway(t, cfg)

	_, err := gateway.FetchLatestQuote(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err), "expected UnavailableError")
}

// TestGateway_ErrorMapping_CircuitOpen verifies that an open circuit breaker
// short-circuits requests and surfaces as a domain UnavailableError.
func TestGateway_ErrorMapping_CircuitOpen(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testGatewayConfig(server.URL)
	cfg.Circuit.MaxFailures = 2

	gateway := newIntegrationGateway(t, cfg)

	// 5xx responses count as failures and trip the breaker. They surface as
	// APIError; only the short-circuited call below maps to Unavailable.
	_, _ = gateway.FetchLatestQuote(context.Background())
	_, _ = gateway.FetchLatestQuote(context.Background())

	callsBefore := atomic.LoadInt32(&calls)
	_, err := gateway.FetchLatestQuote(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err), "expected UnavailableError")
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "no server call when circuit is open")
}

// TestGateway_AddFavorite_Integration verifies the full write flow including
// the representation preference and the insert payload.
func TestGateway_AddFavorite_Integration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/user_favorites", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "user-integration-1", payload["user_id"])
		assert.Equal(t, "quote-integration-1", payload["quote_id"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"user_id": "user-integration-1", "quote_id": "quote-integration-1"}]`))
	}))
	defer server.Close()

	gateway := newIntegrationGateway(t, testGatewayConfig(server.URL))

	err := gateway.AddFavorite(context.Background(), "user-integration-1", "quote-integration-1")

	require.NoError(t, err)
}

// TestGateway_BearerToken_Integration verifies that the held token is
// attached after sign-in and absent after logout.
func TestGateway_BearerToken_Integration(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	gateway := newIntegrationGateway(t, testGatewayConfig(server.URL))

	gateway.SetToken("session-token-123")

	_, err := gateway.FetchQuotes(context.Background(), ports.QuoteQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token-123", receivedAuth)

	gateway.ClearToken()

	_, err = gateway.FetchQuotes(context.Background(), ports.QuoteQuery{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, receivedAuth, "no Authorization header after logout")
}
