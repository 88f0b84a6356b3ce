package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteapp/quoted/internal/domain"
)

// TestGateway_SignUp_TokenIssued verifies the immediate-session shape when
// email confirmation is disabled on the project.
func TestGateway_SignUp_TokenIssued(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "jane@example.com", payload["email"])
		assert.Equal(t, "secret99", payload["password"])

		data, ok := payload["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Jane", data["name"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"user": map[string]any{
				"id":            "user-1",
				"email":         "jane@example.com",
				"user_metadata": map[string]any{"name": "Jane"},
			},
		})
	}

	gw := setupGateway(t, handler)

	result, err := gw.SignUp(context.Background(), "jane@example.com", "secret99", "Jane")

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.False(t, result.ConfirmationPending)
	assert.Equal(t, "user-1", result.Session.UserID)
	assert.Equal(t, "jane@example.com", result.Session.Email)
	assert.Equal(t, "Jane", result.Session.Name)
	assert.Equal(t, "at-1", result.Session.AccessToken)
	assert.Equal(t, "rt-1", result.Session.RefreshToken)
}

// TestGateway_SignUp_ConfirmationPending verifies the bare-user shape when
// the project requires email confirmation.
func TestGateway_SignUp_ConfirmationPending(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":                   "user-1",
			"email":                "jane@example.com",
			"user_metadata":        map[string]any{"name": "Jane"},
			"confirmation_sent_at": "2024-03-01T10:00:00Z",
		})
	}

	gw := setupGateway(t, handler)

	result, err := gw.SignUp(context.Background(), "jane@example.com", "secret99", "Jane")

	require.NoError(t, err)
	assert.Nil(t, result.Session)
	assert.True(t, result.ConfirmationPending)
}

// TestGateway_SignUp_Created verifies that a 201 with tokens also yields a
// session.
func TestGateway_SignUp_Created(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"user":          map[string]any{"id": "user-1", "email": "jane@example.com"},
		})
	}

	gw := setupGateway(t, handler)

	result, err := gw.SignUp(context.Background(), "jane@example.com", "secret99", "Jane")

	require.NoError(t, err)
	require.NotNil(t, result.Session)
	// Metadata carried no name, so the requested name stands.
	assert.Equal(t, "Jane", result.Session.Name)
}

// TestGateway_SignUp_Errors verifies the auth error key precedence and the
// error-code prefix.
func TestGateway_SignUp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		want   string
	}{
		{
			name:   "msg wins over message",
			status: http.StatusUnprocessableEntity,
			body:   map[string]any{"msg": "User already registered", "message": "ignored"},
			want:   "User already registered",
		},
		{
			name:   "error_description fallback",
			status: http.StatusBadRequest,
			body:   map[string]any{"error_description": "Signup disabled"},
			want:   "Signup disabled",
		},
		{
			name:   "error code prefixes the message",
			status: http.StatusBadRequest,
			body:   map[string]any{"error": "invalid_request", "error_description": "email is invalid"},
			want:   "invalid_request: email is invalid",
		},
		{
			name:   "no known keys",
			status: http.StatusInternalServerError,
			body:   map[string]any{"detail": "ignored"},
			want:   "sign up failed with status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			}

			gw := setupGateway(t, handler)

			result, err := gw.SignUp(context.Background(), "jane@example.com", "secret99", "Jane")

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, domain.IsAPIError(err))
			assert.Equal(t, tt.want, domain.APIMessage(err))
		})
	}
}

// TestGateway_SignIn_Success verifies the password grant exchange.
func TestGateway_SignIn_Success(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "jane@example.com", payload["email"])
		assert.Equal(t, "secret99", payload["password"])

		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "at-2",
			"refresh_token": "rt-2",
			"user": map[string]any{
				"id":            "user-1",
				"email":         "jane@example.com",
				"user_metadata": map[string]any{"name": "Jane"},
			},
		})
	}

	gw := setupGateway(t, handler)

	session, err := gw.SignIn(context.Background(), "jane@example.com", "secret99")

	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "Jane", session.Name)
	assert.Equal(t, "at-2", session.AccessToken)
	assert.Equal(t, "rt-2", session.RefreshToken)
}

// TestGateway_SignIn_NameDerivedFromEmail verifies the display name falls
// back to the email local part when metadata has none.
func TestGateway_SignIn_NameDerivedFromEmail(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"access_token":  "at-2",
			"refresh_token": "rt-2",
			"user":          map[string]any{"id": "user-1", "email": "jane.doe@example.com"},
		})
	}

	gw := setupGateway(t, handler)

	session, err := gw.SignIn(context.Background(), "jane.doe@example.com", "secret99")

	require.NoError(t, err)
	assert.Equal(t, "jane.doe", session.Name)
}

// TestGateway_SignIn_BadCredentials verifies the rejection message surfaces
// verbatim with its error code.
func TestGateway_SignIn_BadCredentials(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]any{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	}

	gw := setupGateway(t, handler)

	session, err := gw.SignIn(context.Background(), "jane@example.com", "wrong")

	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, domain.IsAPIError(err))
	assert.Equal(t, "invalid_grant: Invalid login credentials", domain.APIMessage(err))
}

// TestGateway_SignIn_MissingToken verifies the invalid response mapping
// when the grant succeeds without a session.
func TestGateway_SignIn_MissingToken(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": "user-1"},
		})
	}

	gw := setupGateway(t, handler)

	session, err := gw.SignIn(context.Background(), "jane@example.com", "secret99")

	require.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, errors.Is(err, domain.ErrInvalidResponse))
}

// TestGateway_ResetPassword verifies the recovery request and its error
// mapping.
func TestGateway_ResetPassword(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/recover", r.URL.Path)

			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "jane@example.com", payload["email"])

			writeJSON(t, w, http.StatusOK, map[string]any{})
		}

		gw := setupGateway(t, handler)

		assert.NoError(t, gw.ResetPassword(context.Background(), "jane@example.com"))
	})

	t.Run("rate limited", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusTooManyRequests, map[string]any{
				"msg": "For security purposes, you can only request this once every 60 seconds",
			})
		}

		gw := setupGateway(t, handler)

		err := gw.ResetPassword(context.Background(), "jane@example.com")

		require.Error(t, err)
		assert.True(t, domain.IsAPIError(err))
		assert.Contains(t, err.Error(), "60 seconds")
	})
}
