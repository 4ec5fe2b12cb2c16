package sqldb

import (
	"context"
	"fmt"

	"job-alert-bot/internal/models"

	"github.com/gocraft/dbr/v2"
	"go.uber.org/zap"
)

var subscriberColumns = []string{"chat_id", "keywords", "location", "sources", "interval_min", "last_run"}

type subscriberRow struct {
	ChatID      int64  `db:"chat_id"`
	Keywords    string `db:"keywords"`
	Location    string `db:"location"`
	Sources     string `db:"sources"`
	IntervalMin int    `db:"interval_min"`
	LastRun     int64  `db:"last_run"`
}

func (r subscriberRow) preferences() models.Preferences {
	return models.Preferences{
		Keywords:    models.ParseKeywords(r.Keywords),
		Location:    r.Location,
		Sources:     models.SplitCSV(r.Sources),
		IntervalMin: r.IntervalMin,
		LastRun:     r.LastRun,
	}
}

// GetPreferences returns nil without error when the subscriber is unknown.
func (s *Store) GetPreferences(ctx context.Context, chatID int64) (*models.Preferences, error) {
	var row subscriberRow

	err := s.sess.
		Select(subscriberColumns...).
		From("users").
		Where("chat_id = ?", chatID).
		LoadOneContext(ctx, &row)

	if err == dbr.ErrNotFound {
		return nil, nil
	}

	if err != nil {
		s.logger.Error("failed to get preferences",
			zap.Int64("user_id", chatID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	prefs := row.preferences()
	return &prefs, nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.Subscriber, error) {
	var rows []subscriberRow

	_, err := s.sess.
		Select(subscriberColumns...).
		From("users").
		OrderBy("chat_id").
		LoadContext(ctx, &rows)

	if err != nil {
		s.logger.Error("failed to list subscribers", zap.Error(err))
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	subscribers := make([]models.Subscriber, 0, len(rows))
	for _, row := range rows {
		subscribers = append(subscribers, models.Subscriber{
			ID:          row.ChatID,
			Preferences: row.preferences(),
		})
	}

	return subscribers, nil
}

// UpsertPreferences creates the subscriber or replaces its search settings.
// The last-run marker of an existing subscriber is left untouched.
func (s *Store) UpsertPreferences(ctx context.Context, chatID int64, prefs models.Preferences) error {
	query := `
		INSERT INTO users (chat_id, keywords, location, sources, interval_min, last_run)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT (chat_id) DO UPDATE SET
			keywords     = excluded.keywords,
			location     = excluded.location,
			sources      = excluded.sources,
			interval_min = excluded.interval_min
	`

	_, err := s.sess.
		InsertBySql(query,
			chatID,
			prefs.KeywordsCSV(),
			prefs.Location,
			prefs.SourcesCSV(),
			prefs.IntervalMin,
		).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to upsert preferences",
			zap.Int64("user_id", chatID),
			zap.Error(err),
		)
		return fmt.Errorf("upsert preferences: %w", err)
	}

	s.logger.Info("preferences saved",
		zap.Int64("user_id", chatID),
		zap.Strings("keywords", prefs.Keywords),
		zap.String("location", prefs.Location),
		zap.Strings("sources", prefs.Sources),
		zap.Int("interval", prefs.IntervalMin),
	)

	return nil
}

func (s *Store) SetLastRun(ctx context.Context, chatID int64, ts int64) error {
	_, err := s.sess.
		Update("users").
		Set("last_run", ts).
		Where("chat_id = ?", chatID).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to set last run",
			zap.Int64("user_id", chatID),
			zap.Error(err),
		)
		return fmt.Errorf("set last run: %w", err)
	}

	return nil
}
