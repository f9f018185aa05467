package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bvrtu/quakeconnect-data/internal/alert"
)

// AlreadySent reports whether a notification record exists for the
// (user, earthquake) pair.
func (s *Store) AlreadySent(ctx context.Context, userID, earthquakeID string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, "sent_notification_exists", userID, earthquakeID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sent notification lookup: %w", err)
	}
	return true, nil
}

// RecordSent persists the dedup record for a delivered notification. A
// concurrent insert of the same pair is a no-op, not an error.
func (s *Store) RecordSent(ctx context.Context, rec alert.SentRecord) error {
	_, err := s.pool.Exec(ctx, "insert_sent_notification",
		rec.UserID, rec.EarthquakeID, rec.Magnitude, rec.Location)
	if err != nil {
		return fmt.Errorf("insert sent notification: %w", err)
	}
	return nil
}
