package ports

import (
	"context"
)

// FeatureFlags defines the contract for feature flag evaluation.
// This port allows the application to check feature enablement without
// knowing the underlying provider; the default implementation reads
// static flags from configuration.
//
// Always provide a default value so evaluation degrades gracefully.
//
// Example usage:
//
//	if flags.IsEnabled(ctx, "batched-collection-fetch", true) {
//	    return s.fetchQuotesBatched(ctx, ids)
//	}
//	return s.fetchQuotesOneByOne(ctx, ids)
type FeatureFlags interface {
	// IsEnabled checks if a boolean feature flag is enabled.
	// Returns defaultValue if the flag doesn't exist or evaluation fails.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool
}
