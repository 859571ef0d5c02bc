// Package search turns buyer criteria into a ranked slate of candidate
// listings.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/resilience"
	"github.com/homescout-ai/homescout/internal/store"
)

// Searcher finds candidate listings matching the buyer's criteria.
type Searcher interface {
	Search(ctx context.Context, criteria model.SearchCriteria) ([]model.Listing, error)
}

// StoreSearcher implements Searcher against the listings store.
type StoreSearcher struct {
	store      store.Store
	limit      int
	maxRetries int
}

// NewStoreSearcher returns a StoreSearcher with the given result limit and
// retry budget.
func NewStoreSearcher(st store.Store, limit, maxRetries int) *StoreSearcher {
	if limit <= 0 {
		limit = 15
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &StoreSearcher{store: st, limit: limit, maxRetries: maxRetries}
}

// Search runs the filtered listing query with retry on transient store
// errors. Results come back ordered best match first, each stamped with a
// similarity score that decays with rank.
func (s *StoreSearcher) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.Listing, error) {
	filter := filterFromCriteria(criteria, s.limit)

	zap.L().Debug("searching listings",
		zap.String("query", QueryText(criteria)),
		zap.Int("limit", s.limit),
	)

	cfg := resilience.StoreRetryConfig(s.maxRetries)
	cfg.OnRetry = resilience.RetryLogger("search_listings")

	listings, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]model.Listing, error) {
		return s.store.SearchListings(ctx, filter)
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: listings query")
	}

	for i := range listings {
		listings[i].Similarity = similarityForRank(i)
	}

	zap.L().Info("candidate listings found",
		zap.Int("count", len(listings)),
	)
	return listings, nil
}

func filterFromCriteria(c model.SearchCriteria, limit int) store.ListingFilter {
	return store.ListingFilter{
		PriceMin:     c.PriceMin,
		PriceMax:     c.PriceMax,
		BedroomsMin:  c.BedroomsMin,
		BathroomsMin: c.BathroomsMin,
		PropertyType: c.PropertyType,
		Keywords:     normalizeKeywords(c.Keywords),
		Limit:        limit,
	}
}

// similarityForRank decays by 0.1 per rank position and floors at 0.5 so
// downstream consumers can still distinguish matched listings from absent
// ones.
func similarityForRank(i int) float64 {
	s := 1.0 - 0.1*float64(i)
	if s < 0.5 {
		return 0.5
	}
	return s
}

// normalizeKeywords lowercases, trims, and drops empty or duplicate terms
// while preserving order.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	var out []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

// QueryText renders criteria as a human-readable search phrase for logs and
// recorded query history.
func QueryText(c model.SearchCriteria) string {
	var parts []string

	if c.BedroomsMin > 0 {
		parts = append(parts, fmt.Sprintf("%g+ bedroom", c.BedroomsMin))
	}
	if c.BathroomsMin > 0 {
		parts = append(parts, fmt.Sprintf("%g+ bathroom", c.BathroomsMin))
	}
	if c.PropertyType != "" {
		parts = append(parts, strings.ReplaceAll(strings.ToLower(c.PropertyType), "_", " "))
	} else {
		parts = append(parts, "home")
	}

	switch {
	case c.PriceMin > 0 && c.PriceMax > 0:
		parts = append(parts, fmt.Sprintf("between $%.0f and $%.0f", c.PriceMin, c.PriceMax))
	case c.PriceMax > 0:
		parts = append(parts, fmt.Sprintf("under $%.0f", c.PriceMax))
	case c.PriceMin > 0:
		parts = append(parts, fmt.Sprintf("over $%.0f", c.PriceMin))
	}

	if kws := normalizeKeywords(c.Keywords); len(kws) > 0 {
		parts = append(parts, "with "+strings.Join(kws, ", "))
	}

	return strings.Join(parts, " ")
}
