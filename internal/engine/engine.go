// Package engine runs one subscriber's fetch, dedupe and delivery cycle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-alert-bot/internal/api/providers"
	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

const (
	DefaultMaxKeywords     = 10
	DefaultMaxSendPerRun   = 8
	DefaultProviderTimeout = 30 * time.Second
)

type SubscriberStore interface {
	SetLastRun(ctx context.Context, chatID int64, ts int64) error
}

type DeliveryStore interface {
	WasDelivered(ctx context.Context, chatID int64, uid string) (bool, error)
	RecordDelivered(ctx context.Context, chatID int64, uid string, ts int64) error
}

// Providers resolves an enabled provider tag to an available gateway.
type Providers interface {
	Get(tag string) (providers.Gateway, bool)
}

// Channel delivers messages to a subscriber.
type Channel interface {
	Deliver(ctx context.Context, chatID int64, listing models.Listing) error
	Notify(ctx context.Context, chatID int64, text string) error
}

var (
	// ErrStore matches every *StoreError.
	ErrStore = errors.New("store unavailable")
	// ErrDelivery wraps channel send failures.
	ErrDelivery = errors.New("delivery failed")
)

// StoreError marks a persistence failure. It ends the cycle before the
// last-run marker is advanced.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

type Config struct {
	MaxKeywords     int
	MaxSendPerRun   int
	ProviderTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxKeywords <= 0 {
		c.MaxKeywords = DefaultMaxKeywords
	}
	if c.MaxSendPerRun <= 0 {
		c.MaxSendPerRun = DefaultMaxSendPerRun
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = DefaultProviderTimeout
	}
	return c
}

// Result summarizes one cycle.
type Result struct {
	Skipped        bool // not due yet
	Searches       int
	FailedSearches int
	Fetched        int // deliverable listings after merge
	Matched        int // after keyword filter
	Fresh          int // not delivered before
	Delivered      int
	SendFailures   int
}

type Engine struct {
	subscribers SubscriberStore
	deliveries  DeliveryStore
	providers   Providers
	channel     Channel
	cfg         Config
	logger      *zap.Logger
	now         func() time.Time
}

func New(
	subscribers SubscriberStore,
	deliveries DeliveryStore,
	providers Providers,
	channel Channel,
	cfg Config,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		subscribers: subscribers,
		deliveries:  deliveries,
		providers:   providers,
		channel:     channel,
		cfg:         cfg.withDefaults(),
		logger:      logger,
		now:         time.Now,
	}
}

// RunCycle fetches, filters and delivers new listings for one subscriber.
//
// Unless forced, the cycle is a no-op until the subscriber's interval has
// elapsed since its last run. Provider failures count as empty results.
// Store failures end the cycle with an error and leave last-run unchanged,
// so the subscriber is retried on the next tick. A forced cycle always
// ends with one summary message when it succeeds.
func (e *Engine) RunCycle(ctx context.Context, sub models.Subscriber, forced bool) (Result, error) {
	var res Result
	prefs := sub.Preferences
	start := e.now()

	if !forced && !prefs.IsDue(start) {
		res.Skipped = true
		return res, nil
	}

	log := e.logger.With(zap.Int64("user_id", sub.ID), zap.Bool("forced", forced))
	log.Debug("cycle started",
		zap.Strings("keywords", prefs.Keywords),
		zap.Strings("sources", prefs.Sources),
	)

	outcomes := e.fanOut(ctx, sub.ID, prefs)
	res.Searches = len(outcomes)

	var batches [][]models.Listing
	for _, o := range outcomes {
		if o.err != nil {
			res.FailedSearches++
			log.Warn("provider search failed",
				zap.String("provider", o.tag),
				zap.String("keyword", o.keyword),
				zap.Error(o.err),
			)
			continue
		}
		batches = append(batches, o.listings)
	}

	listings := merge(batches)
	res.Fetched = len(listings)

	if !prefs.Unfiltered() {
		listings = filterByKeywords(listings, prefs)
	}
	res.Matched = len(listings)

	fresh, err := e.undelivered(ctx, sub.ID, listings)
	if err != nil {
		return res, err
	}
	res.Fresh = len(fresh)

	if len(fresh) > e.cfg.MaxSendPerRun {
		fresh = fresh[:e.cfg.MaxSendPerRun]
	}

	for _, listing := range fresh {
		if err := e.channel.Deliver(ctx, sub.ID, listing); err != nil {
			res.SendFailures++
			log.Error("failed to deliver listing",
				zap.String("uid", listing.UID),
				zap.Error(err),
			)
			continue
		}

		if err := e.deliveries.RecordDelivered(ctx, sub.ID, listing.UID, e.now().Unix()); err != nil {
			return res, &StoreError{Op: "record delivered", Err: err}
		}
		res.Delivered++
	}

	if err := e.subscribers.SetLastRun(ctx, sub.ID, start.Unix()); err != nil {
		return res, &StoreError{Op: "set last run", Err: err}
	}

	if forced {
		if err := e.channel.Notify(ctx, sub.ID, SummaryText(res.Delivered)); err != nil {
			log.Warn("failed to send cycle summary", zap.Error(err))
		}
	}

	log.Info("cycle finished",
		zap.Int("searches", res.Searches),
		zap.Int("failed_searches", res.FailedSearches),
		zap.Int("fetched", res.Fetched),
		zap.Int("matched", res.Matched),
		zap.Int("fresh", res.Fresh),
		zap.Int("delivered", res.Delivered),
		zap.Int("send_failures", res.SendFailures),
		zap.Duration("duration", e.now().Sub(start)),
	)

	return res, nil
}

// SummaryText is the acknowledgment sent at the end of a forced cycle.
func SummaryText(delivered int) string {
	if delivered == 0 {
		return "No new matching jobs right now 🙂"
	}
	return fmt.Sprintf("✅ Sent %d jobs.", delivered)
}

func (e *Engine) undelivered(ctx context.Context, chatID int64, listings []models.Listing) ([]models.Listing, error) {
	var fresh []models.Listing
	for _, l := range listings {
		seen, err := e.deliveries.WasDelivered(ctx, chatID, l.UID)
		if err != nil {
			return nil, &StoreError{Op: "was delivered", Err: err}
		}
		if !seen {
			fresh = append(fresh, l)
		}
	}
	return fresh, nil
}
