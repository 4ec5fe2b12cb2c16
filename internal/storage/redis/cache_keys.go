package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"job-alert-bot/internal/models"
)

const (
	RateLimitWindowTTL = 1 * time.Minute
)

// SearchResultsKey identifies one provider query. Keyword and location are
// case-folded so equivalent searches share an entry.
func SearchResultsKey(provider, keyword, location string) string {
	return fmt.Sprintf("search:%s:%s:%s",
		provider,
		strings.ToLower(strings.TrimSpace(keyword)),
		strings.ToLower(strings.TrimSpace(location)),
	)
}

func RateLimitKey(userID int64) string {
	return fmt.Sprintf("ratelimit:user:%d", userID)
}

func (c *Cache) GetSearchResults(ctx context.Context, provider, keyword, location string) ([]models.Listing, bool, error) {
	var listings []models.Listing
	found, err := c.Get(ctx, SearchResultsKey(provider, keyword, location), &listings)
	if err != nil || !found {
		return nil, false, err
	}
	return listings, true, nil
}

func (c *Cache) SetSearchResults(ctx context.Context, provider, keyword, location string, listings []models.Listing, ttl time.Duration) error {
	if listings == nil {
		listings = []models.Listing{}
	}
	return c.Set(ctx, SearchResultsKey(provider, keyword, location), listings, ttl)
}

func (c *Cache) IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(userID), RateLimitWindowTTL)
}
