package providers

import (
	"context"
	"time"

	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

// ResultCache stores provider search results for a short time.
type ResultCache interface {
	GetSearchResults(ctx context.Context, provider, keyword, location string) ([]models.Listing, bool, error)
	SetSearchResults(ctx context.Context, provider, keyword, location string, listings []models.Listing, ttl time.Duration) error
}

type cachedGateway struct {
	Gateway
	cache  ResultCache
	ttl    time.Duration
	logger *zap.Logger
}

// Cached wraps gw so identical searches within ttl are answered from cache.
// Cache failures are logged and fall through to the provider.
func Cached(gw Gateway, cache ResultCache, ttl time.Duration, logger *zap.Logger) Gateway {
	if cache == nil || ttl <= 0 {
		return gw
	}
	return &cachedGateway{Gateway: gw, cache: cache, ttl: ttl, logger: logger}
}

func (g *cachedGateway) Search(ctx context.Context, keyword, location string) ([]models.Listing, error) {
	tag := string(g.Tag())

	listings, ok, err := g.cache.GetSearchResults(ctx, tag, keyword, location)
	if err != nil {
		g.logger.Warn("search cache read failed",
			zap.String("provider", tag),
			zap.Error(err),
		)
	} else if ok {
		g.logger.Debug("search cache hit",
			zap.String("provider", tag),
			zap.String("keyword", keyword),
			zap.Int("count", len(listings)),
		)
		return listings, nil
	}

	listings, err = g.Gateway.Search(ctx, keyword, location)
	if err != nil {
		return nil, err
	}

	if err := g.cache.SetSearchResults(ctx, tag, keyword, location, listings, g.ttl); err != nil {
		g.logger.Warn("search cache write failed",
			zap.String("provider", tag),
			zap.Error(err),
		)
	}

	return listings, nil
}
