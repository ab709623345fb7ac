package store

import (
	"context"
	"fmt"

	"github.com/roach88/devsync/internal/record"
)

// AppendEvent inserts an audit event. Events are immutable once written.
func (s *Store) AppendEvent(ctx context.Context, e record.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, user, action, subject_id, at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.User, e.Action, e.SubjectID, e.At)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// UserHistory returns the user's most recent audit events, newest first.
// UUIDv7 event IDs are time-sortable, so the ID tiebreak preserves append
// order within a clock tick. Returns an empty slice (not nil) if the user
// has no history.
func (s *Store) UserHistory(ctx context.Context, user string, limit int) ([]record.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user, action, subject_id, at
		FROM events
		WHERE user = ?
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, user, limit)
	if err != nil {
		return nil, fmt.Errorf("query user history: %w", err)
	}
	defer rows.Close()

	events := []record.Event{}
	for rows.Next() {
		var e record.Event
		if err := rows.Scan(&e.ID, &e.User, &e.Action, &e.SubjectID, &e.At); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user history: %w", err)
	}
	return events, nil
}
