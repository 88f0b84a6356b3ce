package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quoteapp/quoted/internal/adapters/http/dto"
	"github.com/quoteapp/quoted/internal/app"
	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/ports"
)

// AuthHandler fronts the identity service. The facade holds no per-user
// state; it validates input locally, forwards the call and returns the
// session for the client to keep. The stateful session lifecycle
// (stay-logged-in, restore) lives in the client, not here.
type AuthHandler struct {
	backend ports.AuthBackend
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(backend ports.AuthBackend) *AuthHandler {
	return &AuthHandler{
		backend: backend,
	}
}

// SessionResponse is the HTTP response structure for an issued session.
type SessionResponse struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func toSessionResponse(s *domain.Session) *SessionResponse {
	return &SessionResponse{
		UserID:       s.UserID,
		Email:        s.Email,
		Name:         s.Name,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

// signUpRequest is the POST body for account registration.
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest is the POST body for credential sign-in.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// recoverRequest is the POST body for password recovery.
type recoverRequest struct {
	Email string `json:"email"`
}

// SignUp handles POST /api/v1/auth/signup
// Input is validated before any backend call. The response is one of two
// shapes: an issued session, or a confirmation-pending acknowledgement.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		respondBindingError(c, err)
		return
	}

	err = app.ValidateSignUp(req.Email, req.Password, req.Name)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.backend.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	if result.ConfirmationPending {
		c.JSON(http.StatusAccepted, gin.H{
			"confirmationPending": true,
			"email":               req.Email,
		})

		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"confirmationPending": false,
		"session":             toSessionResponse(result.Session),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		respondBindingError(c, err)
		return
	}

	err = app.ValidateLogin(req.Email, req.Password)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	session, err := h.backend.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// RecoverPassword handles POST /api/v1/auth/recover
// A 202 only means the recovery request was accepted.
func (h *AuthHandler) RecoverPassword(c *gin.Context) {
	var req recoverRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		respondBindingError(c, err)
		return
	}

	if !app.ValidateEmail(req.Email) {
		dto.HandleError(c, domain.ErrInvalidEmail)
		return
	}

	err = h.backend.ResetPassword(c.Request.Context(), req.Email)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// RegisterAuthRoutes registers auth routes on the given router group.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	auth.POST("/signup", h.SignUp)
	auth.POST("/login", h.Login)
	auth.POST("/recover", h.RecoverPassword)
}
