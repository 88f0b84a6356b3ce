package dto

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// PageRequest represents offset pagination parameters from the request.
// Pages are zero-based; the backend offset is page*limit.
type PageRequest struct {
	// Page is the zero-based page index.
	Page int `form:"page" validate:"omitempty,gte=0"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetPage returns the page with negative values clamped to zero.
func (p *PageRequest) GetPage() int {
	if p.Page < 0 {
		return 0
	}

	return p.Page
}

// GetLimit returns the limit with defaults applied.
func (p *PageRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	if p.Limit > MaxLimit {
		return MaxLimit
	}

	return p.Limit
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	// Items is the array of items for this page.
	Items []T `json:"items"`

	// Page is the zero-based page index that produced these items.
	Page int `json:"page"`

	// Count is the number of items on this page.
	Count int `json:"count"`

	// HasMore indicates whether a full page came back, meaning another
	// page may exist. The backend does not report totals.
	HasMore bool `json:"hasMore"`
}

// NewPaginatedResponse creates a paginated response from a fetched page.
func NewPaginatedResponse[T any](items []T, page, limit int) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	return &PaginatedResponse[T]{
		Items:   items,
		Page:    page,
		Count:   len(items),
		HasMore: limit > 0 && len(items) >= limit,
	}
}

// EmptyPaginatedResponse returns an empty paginated response.
func EmptyPaginatedResponse[T any]() *PaginatedResponse[T] {
	return &PaginatedResponse[T]{
		Items: []T{},
	}
}
