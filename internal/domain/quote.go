// Package domain contains core business entities and rules.
package domain

import "time"

// Quote represents a single quotation. Quotes are immutable once fetched;
// the remote backend is the sole writer.
type Quote struct {
	// ID is the unique identifier for this quote (a backend UUID).
	ID string

	// Text is the body of the quote.
	Text string

	// Author is who said or wrote the quote.
	Author string

	// Category is the theme the quote is filed under.
	Category string

	// CreatedAt is when the quote was created on the backend, if known.
	CreatedAt *time.Time
}

// FallbackQuote is returned by the quote-of-the-day flow when the backend
// is empty or unreachable. The daily quote must never be absent.
func FallbackQuote() *Quote {
	return &Quote{
		ID:       "1",
		Text:     "The only way to do great work is to love what you do.",
		Author:   "Steve Jobs",
		Category: CategoryMotivation,
	}
}

// Known quote categories. The set is extensible on the backend; these are
// the starter categories used for filtering.
const (
	CategoryMotivation = "Motivation"
	CategoryLove       = "Love"
	CategorySuccess    = "Success"
	CategoryWisdom     = "Wisdom"
	CategoryHumor      = "Humor"
)

// Categories returns the known category names in display order.
func Categories() []string {
	return []string{
		CategoryMotivation,
		CategoryLove,
		CategorySuccess,
		CategoryWisdom,
		CategoryHumor,
	}
}

// Collection is a user-owned named set of quotes.
// Created and deleted by the owning user only.
type Collection struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt *time.Time
}

// CollectionQuote links a collection to a quote (many-to-many join).
// A given (collection, quote) pair should not be duplicated; uniqueness is
// enforced by the backend, not here.
type CollectionQuote struct {
	ID           string
	CollectionID string
	QuoteID      string
	CreatedAt    *time.Time
}

// UserFavorite links a user to a quote they favorited.
// Same uniqueness caveat as CollectionQuote.
type UserFavorite struct {
	ID        int64
	UserID    string
	QuoteID   string
	CreatedAt *time.Time
}

// QuoteWithFavorite pairs a quote with the requesting user's favorite flag.
type QuoteWithFavorite struct {
	Quote      *Quote
	IsFavorite bool
}
