package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quoteapp/quoted/internal/adapters/http/dto"
	"github.com/quoteapp/quoted/internal/app"
	"github.com/quoteapp/quoted/internal/domain"
)

// CollectionsHandler handles the user's quote-collection endpoints.
type CollectionsHandler struct {
	service *app.QuoteService
}

// NewCollectionsHandler creates a new collections handler.
func NewCollectionsHandler(service *app.QuoteService) *CollectionsHandler {
	return &CollectionsHandler{
		service: service,
	}
}

// CollectionResponse is the HTTP response structure for a collection.
type CollectionResponse struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

func toCollectionResponse(col *domain.Collection) CollectionResponse {
	return CollectionResponse{
		ID:        col.ID,
		UserID:    col.UserID,
		Name:      col.Name,
		CreatedAt: col.CreatedAt,
	}
}

// createCollectionRequest is the POST body for creating a collection.
type createCollectionRequest struct {
	Name string `json:"name" validate:"required,notempty,max=100"`
}

// ListCollections handles GET /api/v1/users/:userId/collections
func (h *CollectionsHandler) ListCollections(c *gin.Context) {
	collections, err := h.service.Collections(c.Request.Context(), c.Param("userId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	items := make([]CollectionResponse, 0, len(collections))
	for _, col := range collections {
		items = append(items, toCollectionResponse(col))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateCollection handles POST /api/v1/users/:userId/collections
func (h *CollectionsHandler) CreateCollection(c *gin.Context) {
	var req createCollectionRequest

	err := dto.BindAndValidate(c, &req)
	if err != nil {
		respondBindingError(c, err)
		return
	}

	collection, err := h.service.CreateCollection(c.Request.Context(), c.Param("userId"), req.Name)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCollectionResponse(collection))
}

// DeleteCollection handles DELETE /api/v1/users/:userId/collections/:collectionId
// The delete is scoped to the owning user; another user's collection id is
// a silent no-op on the backend.
func (h *CollectionsHandler) DeleteCollection(c *gin.Context) {
	err := h.service.DeleteCollection(c.Request.Context(), c.Param("userId"), c.Param("collectionId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCollectionQuotes handles GET /api/v1/collections/:collectionId/quotes
// Quotes that fail to resolve individually are skipped, not fatal.
func (h *CollectionsHandler) ListCollectionQuotes(c *gin.Context) {
	quotes, err := h.service.CollectionQuotes(c.Request.Context(), c.Param("collectionId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": toQuoteResponses(quotes)})
}

// AddCollectionQuote handles PUT /api/v1/collections/:collectionId/quotes/:quoteId
func (h *CollectionsHandler) AddCollectionQuote(c *gin.Context) {
	err := h.service.AddQuoteToCollection(c.Request.Context(), c.Param("collectionId"), c.Param("quoteId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveCollectionQuote handles DELETE /api/v1/collections/:collectionId/quotes/:quoteId
func (h *CollectionsHandler) RemoveCollectionQuote(c *gin.Context) {
	err := h.service.RemoveQuoteFromCollection(c.Request.Context(), c.Param("collectionId"), c.Param("quoteId"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterCollectionRoutes registers collection routes on the given router group.
func (h *CollectionsHandler) RegisterCollectionRoutes(rg *gin.RouterGroup) {
	owned := rg.Group("/users/:userId/collections")
	owned.GET("", h.ListCollections)
	owned.POST("", h.CreateCollection)
	owned.DELETE("/:collectionId", h.DeleteCollection)

	quotes := rg.Group("/collections/:collectionId/quotes")
	quotes.GET("", h.ListCollectionQuotes)
	quotes.PUT("/:quoteId", h.AddCollectionQuote)
	quotes.DELETE("/:quoteId", h.RemoveCollectionQuote)
}
