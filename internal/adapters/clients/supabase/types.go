package supabase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quoteapp/quoted/internal/domain"
)

// timestamp decodes the backend's timestamp columns. The REST layer emits
// RFC 3339 with or without fractional seconds, and timestamp-without-zone
// columns omit the offset entirely.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp is not a string: %w", err)
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("unsupported timestamp %q", s)
}

// timePtr returns the wrapped time, tolerating a nil receiver for absent
// columns.
func (t *timestamp) timePtr() *time.Time {
	if t == nil {
		return nil
	}

	tt := t.Time

	return &tt
}

// quoteRecord is the wire shape of a quotes row. Internal to the adapter,
// never exposed to the application layer.
type quoteRecord struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	CreatedAt *timestamp `json:"created_at"`
}

func (r *quoteRecord) toDomain() *domain.Quote {
	return &domain.Quote{
		ID:        r.ID,
		Text:      r.Text,
		Author:    r.Author,
		Category:  r.Category,
		CreatedAt: r.CreatedAt.timePtr(),
	}
}

func quotesToDomain(records []quoteRecord) []*domain.Quote {
	quotes := make([]*domain.Quote, 0, len(records))
	for i := range records {
		quotes = append(quotes, records[i].toDomain())
	}

	return quotes
}

// favoriteRecord is the wire shape of a user_favorites row.
type favoriteRecord struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	QuoteID   string     `json:"quote_id"`
	CreatedAt *timestamp `json:"created_at"`
}

func (r *favoriteRecord) toDomain() *domain.UserFavorite {
	return &domain.UserFavorite{
		ID:        r.ID,
		UserID:    r.UserID,
		QuoteID:   r.QuoteID,
		CreatedAt: r.CreatedAt.timePtr(),
	}
}

// collectionRecord is the wire shape of a collections row.
type collectionRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	CreatedAt *timestamp `json:"created_at"`
}

func (r *collectionRecord) toDomain() *domain.Collection {
	return &domain.Collection{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.timePtr(),
	}
}

// collectionQuoteRecord is the wire shape of a collection_quotes row.
type collectionQuoteRecord struct {
	ID           string     `json:"id"`
	CollectionID string     `json:"collection_id"`
	QuoteID      string     `json:"quote_id"`
	CreatedAt    *timestamp `json:"created_at"`
}

func (r *collectionQuoteRecord) toDomain() *domain.CollectionQuote {
	return &domain.CollectionQuote{
		ID:           r.ID,
		CollectionID: r.CollectionID,
		QuoteID:      r.QuoteID,
		CreatedAt:    r.CreatedAt.timePtr(),
	}
}

// errorBody covers every error payload shape the backend produces. The REST
// layer favors message over msg; the auth layer favors msg over message and
// adds error/error_description.
type errorBody struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// requestErrorMessage extracts the human-readable message from a REST error
// body. Returns the empty string when no known key is present.
func requestErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	switch {
	case eb.Message != "":
		return eb.Message
	case eb.Msg != "":
		return eb.Msg
	case eb.Error != "":
		return eb.Error
	}

	return ""
}

// authErrorMessage extracts the message from an auth error body, falling
// back to "<action> failed with status N". When the body carries an error
// code field, the code prefixes the message.
func authErrorMessage(body []byte, status int, action string) string {
	fallback := fmt.Sprintf("%s failed with status %d", action, status)

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return fallback
	}

	msg := fallback
	switch {
	case eb.Msg != "":
		msg = eb.Msg
	case eb.Message != "":
		msg = eb.Message
	case eb.ErrorDescription != "":
		msg = eb.ErrorDescription
	}

	if eb.Error != "" {
		return eb.Error + ": " + msg
	}

	return msg
}
