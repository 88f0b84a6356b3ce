package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quoteapp/quoted/internal/adapters/http/dto"
	"github.com/quoteapp/quoted/internal/app"
	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/ports"
)

// QuoteHandler handles quote browsing endpoints.
type QuoteHandler struct {
	service *app.QuoteService
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(service *app.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		service: service,
	}
}

// QuoteResponse is the HTTP response structure for a quote.
type QuoteResponse struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AnnotatedQuoteResponse is a quote with the requesting user's favorite flag.
type AnnotatedQuoteResponse struct {
	QuoteResponse

	IsFavorite bool `json:"isFavorite"`
}

// toQuoteResponse converts a domain Quote to an HTTP response.
func toQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:        q.ID,
		Text:      q.Text,
		Author:    q.Author,
		Category:  q.Category,
		CreatedAt: q.CreatedAt,
	}
}

func toQuoteResponses(quotes []*domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}

	return out
}

// quoteListRequest binds the paging and filter query parameters.
type quoteListRequest struct {
	dto.PageRequest

	Category string `form:"category"`
	Search   string `form:"search"`
	Author   string `form:"author"`
	UserID   string `form:"user_id" validate:"omitempty,uuid"`
}

// ListQuotes handles GET /api/v1/quotes
// Returns a page of quotes, newest first, with optional category, text and
// author filters. When user_id is present the quotes are annotated with that
// user's favorite status.
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	var req quoteListRequest

	err := dto.BindQueryAndValidate(c, &req)
	if err != nil {
		respondBindingError(c, err)
		return
	}

	if req.Category != "" && !slices.Contains(h.service.Categories(), req.Category) {
		dto.RespondWithValidationErrors(c, map[string]string{
			"category": "unknown category",
		})

		return
	}

	query := ports.QuoteQuery{
		Page:     req.GetPage(),
		Limit:    req.GetLimit(),
		Category: req.Category,
		Search:   req.Search,
		Author:   req.Author,
	}

	if req.UserID != "" {
		annotated, err := h.service.QuotesWithFavorites(c.Request.Context(), req.UserID, query)
		if err != nil {
			dto.HandleError(c, err)
			return
		}

		items := make([]AnnotatedQuoteResponse, 0, len(annotated))
		for _, a := range annotated {
			items = append(items, AnnotatedQuoteResponse{
				QuoteResponse: toQuoteResponse(a.Quote),
				IsFavorite:    a.IsFavorite,
			})
		}

		c.JSON(http.StatusOK, dto.NewPaginatedResponse(items, query.Page, query.Limit))

		return
	}

	quotes, err := h.service.FetchQuotes(c.Request.Context(), query)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(toQuoteResponses(quotes), query.Page, query.Limit))
}

// DailyQuote handles GET /api/v1/quotes/daily
// Always returns a quote; the service falls back internally when the
// backend is empty or unreachable.
func (h *QuoteHandler) DailyQuote(c *gin.Context) {
	quote := h.service.QuoteOfTheDay(c.Request.Context())

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// ListCategories handles GET /api/v1/quotes/categories
func (h *QuoteHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.service.Categories()})
}

// StartupContent handles GET /api/v1/startup
// Returns the startup payload: daily quote, first quote page and, when
// user_id is given, the user's favorites. The three parts load concurrently
// and degrade independently.
func (h *QuoteHandler) StartupContent(c *gin.Context) {
	userID := c.Query("user_id")

	content := h.service.LoadStartupContent(c.Request.Context(), userID)

	c.JSON(http.StatusOK, gin.H{
		"daily":     toQuoteResponse(content.Daily),
		"quotes":    toQuoteResponses(content.Quotes),
		"favorites": toQuoteResponses(content.Favorites),
	})
}

// GetQuoteByID handles GET /api/v1/quotes/:id
func (h *QuoteHandler) GetQuoteByID(c *gin.Context) {
	id := c.Param("id")

	quote, err := h.service.QuoteByID(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.GET("/daily", h.DailyQuote)
	quotes.GET("/categories", h.ListCategories)
	quotes.GET("/:id", h.GetQuoteByID)

	rg.GET("/startup", h.StartupContent)
}

// respondBindingError translates binding and validation failures into the
// standard error envelope.
func respondBindingError(c *gin.Context, err error) {
	if dto.IsValidationError(err) {
		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))
		return
	}

	dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "malformed request: "+err.Error())
}
