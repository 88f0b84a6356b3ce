package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteapp/quoted/internal/adapters/http/dto"
	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/ports"
)

func newFavoritesRouter(backend ports.QuoteBackend) *gin.Engine {
	engine := gin.New()
	handler := NewFavoritesHandler(newTestService(backend))
	handler.RegisterFavoriteRoutes(engine.Group("/api/v1"))

	return engine
}

// TestListFavorites tests GET /api/v1/users/:userId/favorites.
func TestListFavorites(t *testing.T) {
	t.Parallel()

	t.Run("resolves favorite rows into quotes", func(t *testing.T) {
		t.Parallel()

		engine := newFavoritesRouter(&fakeQuoteBackend{
			fetchFavoritesFn: func(_ context.Context, userID string) ([]*domain.UserFavorite, error) {
				assert.Equal(t, testUserID, userID)
				return []*domain.UserFavorite{
					{ID: 1, UserID: userID, QuoteID: "q1"},
					{ID: 2, UserID: userID, QuoteID: "q2"},
				}, nil
			},
			fetchByIDsFn: func(_ context.Context, ids []string) ([]*domain.Quote, error) {
				out := make([]*domain.Quote, 0, len(ids))
				for _, id := range ids {
					out = append(out, quote(id, "favorited"))
				}
				return out, nil
			},
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/users/"+testUserID+"/favorites", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []QuoteResponse `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "q1", resp.Items[0].ID)
	})

	t.Run("empty favorites return an empty list", func(t *testing.T) {
		t.Parallel()

		engine := newFavoritesRouter(&fakeQuoteBackend{})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/users/"+testUserID+"/favorites", nil))

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []QuoteResponse `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Items)
	})

	t.Run("maps backend failure", func(t *testing.T) {
		t.Parallel()

		engine := newFavoritesRouter(&fakeQuoteBackend{
			fetchFavoritesFn: func(_ context.Context, _ string) ([]*domain.UserFavorite, error) {
				return nil, domain.NewUnavailableError("supabase", "timeout")
			},
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/users/"+testUserID+"/favorites", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

// TestCheckFavorite tests GET /api/v1/users/:userId/favorites/:quoteId.
func TestCheckFavorite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fetch    func(ctx context.Context, userID, quoteID string) (*domain.UserFavorite, error)
		expected bool
	}{
		{
			name: "favorited quote",
			fetch: func(_ context.Context, userID, quoteID string) (*domain.UserFavorite, error) {
				return &domain.UserFavorite{ID: 1, UserID: userID, QuoteID: quoteID}, nil
			},
			expected: true,
		},
		{
			name:     "not favorited",
			fetch:    nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := newFavoritesRouter(&fakeQuoteBackend{fetchFavoriteFn: tt.fetch})

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
				"/api/v1/users/"+testUserID+"/favorites/q1", nil))

			require.Equal(t, http.StatusOK, w.Code)

			var resp struct {
				IsFavorite bool `json:"isFavorite"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp.IsFavorite)
		})
	}
}

// TestAddFavorite tests PUT /api/v1/users/:userId/favorites/:quoteId.
func TestAddFavorite(t *testing.T) {
	t.Parallel()

	t.Run("inserts the favorite", func(t *testing.T) {
		t.Parallel()

		var gotUser, gotQuote string

		engine := newFavoritesRouter(&fakeQuoteBackend{
			addFavoriteFn: func(_ context.Context, userID, quoteID string) error {
				gotUser, gotQuote = userID, quoteID
				return nil
			},
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
			"/api/v1/users/"+testUserID+"/favorites/q1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, testUserID, gotUser)
		assert.Equal(t, "q1", gotQuote)
	})

	t.Run("duplicate surfaces the backend message", func(t *testing.T) {
		t.Parallel()

		engine := newFavoritesRouter(&fakeQuoteBackend{
			addFavoriteFn: func(_ context.Context, _, _ string) error {
				return domain.NewAPIErrorWithStatus(
					`duplicate key value violates unique constraint "user_favorites_user_id_quote_id_key"`,
					http.StatusConflict,
				)
			},
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
			"/api/v1/users/"+testUserID+"/favorites/q1", nil))

		require.Equal(t, http.StatusConflict, w.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrorCodeUpstream, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "duplicate key value")
	})
}

// TestRemoveFavorite tests DELETE /api/v1/users/:userId/favorites/:quoteId.
func TestRemoveFavorite(t *testing.T) {
	t.Parallel()

	t.Run("removes the favorite", func(t *testing.T) {
		t.Parallel()

		engine := newFavoritesRouter(&fakeQuoteBackend{})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete,
			"/api/v1/users/"+testUserID+"/favorites/q1", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("removing a non-existent favorite is a no-op", func(t *testing.T) {
		t.Parallel()

		engine := newFavoritesRouter(&fakeQuoteBackend{
			removeFavoriteFn: func(_ context.Context, _, _ string) error {
				return nil
			},
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete,
			"/api/v1/users/"+testUserID+"/favorites/never-favorited", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
