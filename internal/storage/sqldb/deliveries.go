package sqldb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

func (s *Store) WasDelivered(ctx context.Context, chatID int64, uid string) (bool, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("sent_jobs").
		Where("chat_id = ? AND job_uid = ?", chatID, uid).
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to check delivery",
			zap.Int64("user_id", chatID),
			zap.String("uid", uid),
			zap.Error(err),
		)
		return false, fmt.Errorf("was delivered: %w", err)
	}

	return count > 0, nil
}

// RecordDelivered is insert-if-absent: recording the same pair twice is not
// an error and keeps the first timestamp.
func (s *Store) RecordDelivered(ctx context.Context, chatID int64, uid string, ts int64) error {
	query := `
		INSERT INTO sent_jobs (chat_id, job_uid, sent_at)
		VALUES (?, ?, ?)
		ON CONFLICT (chat_id, job_uid) DO NOTHING
	`

	_, err := s.sess.
		InsertBySql(query, chatID, uid, ts).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to record delivery",
			zap.Int64("user_id", chatID),
			zap.String("uid", uid),
			zap.Error(err),
		)
		return fmt.Errorf("record delivered: %w", err)
	}

	return nil
}

// PurgeOlderThan removes delivery records sent before ts.
func (s *Store) PurgeOlderThan(ctx context.Context, ts int64) (int64, error) {
	result, err := s.sess.
		DeleteFrom("sent_jobs").
		Where("sent_at < ?", ts).
		ExecContext(ctx)

	if err != nil {
		s.logger.Error("failed to purge delivery records",
			zap.Int64("cutoff", ts),
			zap.Error(err),
		)
		return 0, fmt.Errorf("purge delivery records: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	s.logger.Debug("old delivery records purged",
		zap.Int64("cutoff", ts),
		zap.Int64("count", rowsAffected),
	)

	return rowsAffected, nil
}

func (s *Store) CountDelivered(ctx context.Context, chatID int64) (int, error) {
	var count int

	err := s.sess.
		Select("COUNT(*)").
		From("sent_jobs").
		Where("chat_id = ?", chatID).
		LoadOneContext(ctx, &count)

	if err != nil {
		s.logger.Error("failed to count deliveries",
			zap.Int64("user_id", chatID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("count delivered: %w", err)
	}

	return count, nil
}
