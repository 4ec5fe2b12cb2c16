package handlers

import (
	"context"
	"time"

	"job-alert-bot/internal/engine"
	"job-alert-bot/internal/models"

	"go.uber.org/zap"
)

const (
	dbTimeout  = 10 * time.Second
	nowTimeout = 5 * time.Minute
)

type Store interface {
	GetPreferences(ctx context.Context, chatID int64) (*models.Preferences, error)
	UpsertPreferences(ctx context.Context, chatID int64, prefs models.Preferences) error
	CountDelivered(ctx context.Context, chatID int64) (int, error)
}

type Sources interface {
	AvailableTags() []string
	NormalizeSources(requested []string) []string
}

type CycleRunner interface {
	RunCycle(ctx context.Context, sub models.Subscriber, forced bool) (engine.Result, error)
}

// Context contains deps for all handlers
type Context struct {
	Store    Store
	Sources  Sources
	Engine   CycleRunner
	Location *time.Location
	Logger   *zap.Logger
}

func (ctx *Context) location() *time.Location {
	if ctx.Location == nil {
		return time.Local
	}
	return ctx.Location
}
