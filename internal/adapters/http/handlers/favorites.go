package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quoteapp/quoted/internal/adapters/http/dto"
	"github.com/quoteapp/quoted/internal/app"
)

// FavoritesHandler handles the user's favorite-quote endpoints. All routes
// are user-scoped and sit behind the bearer middleware; the backend's row
// level security is the actual authority on ownership.
type FavoritesHandler struct {
	service *app.QuoteService
}

// NewFavoritesHandler creates a new favorites handler.
func NewFavoritesHandler(service *app.QuoteService) *FavoritesHandler {
	return &FavoritesHandler{
		service: service,
	}
}

// ListFavorites handles GET /api/v1/users/:userId/favorites
// Returns the user's favorited quotes.
func (h *FavoritesHandler) ListFavorites(c *gin.Context) {
	quotes, err := h.service.Favorites(c.Request.Context(), c.Param("userId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": toQuoteResponses(quotes)})
}

// CheckFavorite handles GET /api/v1/users/:userId/favorites/:quoteId
func (h *FavoritesHandler) CheckFavorite(c *gin.Context) {
	favorite, err := h.service.IsFavorite(c.Request.Context(), c.Param("userId"), c.Param("quoteId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"isFavorite": favorite})
}

// AddFavorite handles PUT /api/v1/users/:userId/favorites/:quoteId
// Duplicate favorites are rejected by the backend's uniqueness constraint
// and surface with the backend's message.
func (h *FavoritesHandler) AddFavorite(c *gin.Context) {
	err := h.service.AddToFavorites(c.Request.Context(), c.Param("userId"), c.Param("quoteId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /api/v1/users/:userId/favorites/:quoteId
// Removing a favorite that does not exist is not an error.
func (h *FavoritesHandler) RemoveFavorite(c *gin.Context) {
	err := h.service.RemoveFromFavorites(c.Request.Context(), c.Param("userId"), c.Param("quoteId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterFavoriteRoutes registers favorite routes on the given router group.
func (h *FavoritesHandler) RegisterFavoriteRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/users/:userId/favorites")
	favorites.GET("", h.ListFavorites)
	favorites.GET("/:quoteId", h.CheckFavorite)
	favorites.PUT("/:quoteId", h.AddFavorite)
	favorites.DELETE("/:quoteId", h.RemoveFavorite)
}
