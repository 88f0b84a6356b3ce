// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/quoteapp/quoted/internal/domain"
	"github.com/quoteapp/quoted/internal/platform/logging"
	"github.com/quoteapp/quoted/internal/ports"
)

// flagBatchedCollectionFetch selects the single membership-filtered query
// for collection quotes. When off (or when the batched query fails), quotes
// are fetched per id with individual failures skipped.
const flagBatchedCollectionFetch = "batched-collection-fetch"

const defaultPageSize = 20

// QuoteService orchestrates quote, favorite and collection use cases.
// It depends on port interfaces, not concrete implementations.
type QuoteService struct {
	backend  ports.QuoteBackend
	flags    ports.FeatureFlags
	logger   *slog.Logger
	pageSize int
	fallback domain.Quote
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	// Backend is the remote quote database.
	Backend ports.QuoteBackend

	// Flags is optional; a nil value enables default behavior.
	Flags ports.FeatureFlags

	// Logger is the structured logger.
	Logger *slog.Logger

	// PageSize is the default page size when a query does not set one.
	PageSize int

	// Fallback overrides the daily fallback quote. Nil keeps the fixed
	// built-in quote.
	Fallback *domain.Quote
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if Backend is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Backend == nil {
		panic("QuoteService: Backend is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	fallback := domain.FallbackQuote()
	if cfg.Fallback != nil {
		fallback = cfg.Fallback
	}

	return &QuoteService{
		backend:  cfg.Backend,
		flags:    cfg.Flags,
		logger:   logger.With(slog.String("component", "app.QuoteService")),
		pageSize: pageSize,
		fallback: *fallback,
	}
}

func (s *QuoteService) contextLogger(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}

	return s.logger
}

// FetchQuotes retrieves a page of quotes, newest first, with optional
// category, text and author filters. A negative page reads as page zero and
// a missing limit falls back to the configured page size.
func (s *QuoteService) FetchQuotes(ctx context.Context, q ports.QuoteQuery) ([]*domain.Quote, error) {
	if q.Page < 0 {
		q.Page = 0
	}

	if q.Limit <= 0 {
		q.Limit = s.pageSize
	}

	quotes, err := s.backend.FetchQuotes(ctx, q)
	if err != nil {
		return nil, err
	}

	s.contextLogger(ctx).DebugContext(ctx, "fetched quote page",
		slog.Int("page", q.Page),
		slog.Int("count", len(quotes)))

	return quotes, nil
}

// QuoteOfTheDay returns the most recently created quote, any quote when the
// table has no ordering hit, and the fixed fallback quote when the backend
// is empty or unreachable. It never fails outward.
func (s *QuoteService) QuoteOfTheDay(ctx context.Context) *domain.Quote {
	quote, err := s.backend.FetchLatestQuote(ctx)
	if err == nil {
		return quote
	}

	if domain.IsNotFound(err) {
		quote, err = s.backend.FetchAnyQuote(ctx)
		if err == nil {
			return quote
		}
	}

	s.contextLogger(ctx).WarnContext(ctx, "quote of the day unavailable, using fallback",
		slog.Any("error", err))

	fallback := s.fallback

	return &fallback
}

// QuoteByID retrieves a single quote.
func (s *QuoteService) QuoteByID(ctx context.Context, id string) (*domain.Quote, error) {
	if id == "" {
		return nil, domain.NewValidationError("quote_id", "cannot be empty")
	}

	return s.backend.FetchQuoteByID(ctx, id)
}

// Categories returns the known category names for filter pickers.
func (s *QuoteService) Categories() []string {
	return domain.Categories()
}

// Favorites returns the quotes a user has favorited. Resolution is
// two-step: the favorite rows are fetched first, then the quotes by
// membership filter. Zero favorite rows short-circuit without a second
// request.
func (s *QuoteService) Favorites(ctx context.Context, userID string) ([]*domain.Quote, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "cannot be empty")
	}

	rows, err := s.backend.FetchUserFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return []*domain.Quote{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.QuoteID)
	}

	return s.backend.FetchQuotesByIDs(ctx, ids)
}

// IsFavorite reports whether the user has favorited the quote.
func (s *QuoteService) IsFavorite(ctx context.Context, userID, quoteID string) (bool, error) {
	_, err := s.backend.FetchFavorite(ctx, userID, quoteID)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// AddToFavorites marks a quote as a favorite of the user. Duplicates are
// rejected by the backend's uniqueness constraint, not deduplicated here.
func (s *QuoteService) AddToFavorites(ctx context.Context, userID, quoteID string) error {
	if userID == "" || quoteID == "" {
		return domain.NewValidationError("favorite", "user_id and quote_id are required")
	}

	return s.backend.AddFavorite(ctx, userID, quoteID)
}

// RemoveFromFavorites removes a quote from the user's favorites.
func (s *QuoteService) RemoveFromFavorites(ctx context.Context, userID, quoteID string) error {
	if userID == "" || quoteID == "" {
		return domain.NewValidationError("favorite", "user_id and quote_id are required")
	}

	return s.backend.RemoveFavorite(ctx, userID, quoteID)
}

// Collections returns the user's collections, newest first.
func (s *QuoteService) Collections(ctx context.Context, userID string) ([]*domain.Collection, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "cannot be empty")
	}

	return s.backend.FetchCollections(ctx, userID)
}

// CreateCollection creates a named collection for the user.
func (s *QuoteService) CreateCollection(ctx context.Context, userID, name string) (*domain.Collection, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "cannot be empty")
	}

	if strings.TrimSpace(name) == "" {
		return nil, domain.NewValidationError("name", "cannot be empty")
	}

	return s.backend.CreateCollection(ctx, userID, name)
}

// DeleteCollection removes a collection owned by the user.
func (s *QuoteService) DeleteCollection(ctx context.Context, userID, collectionID string) error {
	if userID == "" || collectionID == "" {
		return domain.NewValidationError("collection", "user_id and collection_id are required")
	}

	return s.backend.DeleteCollection(ctx, userID, collectionID)
}

// AddQuoteToCollection adds a quote to a collection.
func (s *QuoteService) AddQuoteToCollection(ctx context.Context, collectionID, quoteID string) error {
	if collectionID == "" || quoteID == "" {
		return domain.NewValidationError("collection_quote", "collection_id and quote_id are required")
	}

	return s.backend.AddQuoteToCollection(ctx, collectionID, quoteID)
}

// RemoveQuoteFromCollection removes a quote from a collection.
func (s *QuoteService) RemoveQuoteFromCollection(ctx context.Context, collectionID, quoteID string) error {
	if collectionID == "" || quoteID == "" {
		return domain.NewValidationError("collection_quote", "collection_id and quote_id are required")
	}

	return s.backend.RemoveQuoteFromCollection(ctx, collectionID, quoteID)
}

// CollectionQuotes returns the quotes in a collection. Membership rows are
// resolved first; zero rows short-circuit. Quotes are then fetched with one
// membership-filtered query, falling back to per-id fetches that skip
// individually failing ids when the batched query fails.
func (s *QuoteService) CollectionQuotes(ctx context.Context, collectionID string) ([]*domain.Quote, error) {
	if collectionID == "" {
		return nil, domain.NewValidationError("collection_id", "cannot be empty")
	}

	links, err := s.backend.FetchCollectionLinks(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	if len(links) == 0 {
		return []*domain.Quote{}, nil
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.QuoteID)
	}

	if s.batchedFetchEnabled(ctx) {
		quotes, err := s.backend.FetchQuotesByIDs(ctx, ids)
		if err == nil {
			return quotes, nil
		}

		s.contextLogger(ctx).WarnContext(ctx, "membership query failed, fetching per id",
			slog.String("collection_id", collectionID),
			slog.Any("error", err))
	}

	return s.fetchQuotesIndividually(ctx, ids), nil
}

func (s *QuoteService) batchedFetchEnabled(ctx context.Context) bool {
	if s.flags == nil {
		return true
	}

	return s.flags.IsEnabled(ctx, flagBatchedCollectionFetch, true)
}

// fetchQuotesIndividually fetches each quote concurrently and drops the
// ones that fail, preserving the id order for the rest.
func (s *QuoteService) fetchQuotesIndividually(ctx context.Context, ids []string) []*domain.Quote {
	fns := make([]func(context.Context) (*domain.Quote, error), len(ids))
	for i, id := range ids {
		fns[i] = func(ctx context.Context) (*domain.Quote, error) {
			return s.backend.FetchQuoteByID(ctx, id)
		}
	}

	results := ParallelPartial(ctx, fns...)

	quotes := make([]*domain.Quote, 0, len(results))

	for i, r := range results {
		if r.Err != nil {
			s.contextLogger(ctx).WarnContext(ctx, "skipping unfetchable quote",
				slog.String("quote_id", ids[i]),
				slog.Any("error", r.Err))

			continue
		}

		quotes = append(quotes, r.Value)
	}

	return quotes
}

// QuotesWithFavorites returns a page of quotes annotated with the user's
// favorite status. The quote page and the favorite rows load concurrently.
func (s *QuoteService) QuotesWithFavorites(ctx context.Context, userID string, q ports.QuoteQuery) ([]*domain.QuoteWithFavorite, error) {
	quotes, rows, err := Parallel2(ctx,
		func(ctx context.Context) ([]*domain.Quote, error) {
			return s.FetchQuotes(ctx, q)
		},
		func(ctx context.Context) ([]*domain.UserFavorite, error) {
			if userID == "" {
				return nil, nil
			}

			return s.backend.FetchUserFavorites(ctx, userID)
		})
	if err != nil {
		return nil, err
	}

	favored := make(map[string]bool, len(rows))
	for _, row := range rows {
		favored[row.QuoteID] = true
	}

	annotated := make([]*domain.QuoteWithFavorite, 0, len(quotes))
	for _, quote := range quotes {
		annotated = append(annotated, &domain.QuoteWithFavorite{
			Quote:      quote,
			IsFavorite: favored[quote.ID],
		})
	}

	return annotated, nil
}

// StartupContent is the data loaded when the client starts: the daily
// quote, the first quote page and the user's favorites.
type StartupContent struct {
	Daily     *domain.Quote
	Quotes    []*domain.Quote
	Favorites []*domain.Quote
}

// LoadStartupContent loads the three startup data sets concurrently.
/// Failures are independent: a part that cannot load comes back empty while
// the others still populate, and the daily quote is always present.
func (s *QuoteService) LoadStartupContent(ctx context.Context, userID string) *StartupContent {
	daily, quotes, favorites, err := Parallel3(ctx,
		func(ctx context.Context) (*domain.Quote, error) {
			return s.QuoteOfTheDay(ctx), nil
		},
		func(ctx context.Context) ([]*domain.Quote, error) {
			page, err := s.FetchQuotes(ctx, ports.QuoteQuery{})
			if err != nil {
				s.contextLogger(ctx).WarnContext(ctx, "startup quote page failed",
					slog.Any("error", err))

				return []*domain.Quote{}, nil
			}

			return page, nil
		},
		func(ctx context.Context) ([]*domain.Quote, error) {
			if userID == "" {
				return []*domain.Quote{}, nil
			}

			favs, err := s.Favorites(ctx, userID)
			if err != nil {
				s.contextLogger(ctx).WarnContext(ctx, "startup favorites failed",
					slog.Any("error", err))

				return []*domain.Quote{}, nil
			}

			return favs, nil
		})
	if err != nil {
		// The loaders degrade internally; this only fires on context
		// cancellation.
		fallback := s.fallback

		return &StartupContent{Daily: &fallback}
	}

	return &StartupContent{
		Daily:     daily,
		Quotes:    quotes,
		Favorites: favorites,
	}
}
