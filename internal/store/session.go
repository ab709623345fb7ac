package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
)

// CreateSession mints a sequential session identity, inserts the session,
// and refreshes the device's last-seen timestamp in one transaction.
// The minted identity is returned and written back to sess.
func (s *Store) CreateSession(ctx context.Context, sess *record.SyncSession, deviceLastSeen int64) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("create session: begin tx: %w", err)
	}
	defer tx.Rollback()

	id, err := nextID(tx, record.KindSession)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, user, device_id, started_at, completed_at, status, entries_synced, conflicts, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		sess.User,
		sess.DeviceID,
		sess.StartedAt,
		sess.CompletedAt,
		string(sess.Status),
		sess.EntriesSynced,
		sess.Conflicts,
		sess.ErrorMessage,
	)
	if err != nil {
		return "", fmt.Errorf("create session: insert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE devices SET last_seen = ? WHERE id = ?
	`, deviceLastSeen, sess.DeviceID)
	if err != nil {
		return "", fmt.Errorf("create session: touch device: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("create session: commit: %w", err)
	}

	sess.ID = id
	return id, nil
}

// ReadSession retrieves a single session by ID.
// Returns ErrNotFound if no such session exists.
func (s *Store) ReadSession(ctx context.Context, id string) (record.SyncSession, error) {
	var sess record.SyncSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user, device_id, started_at, completed_at, status, entries_synced, conflicts, error_message
		FROM sessions
		WHERE id = ?
	`, id).Scan(
		&sess.ID, &sess.User, &sess.DeviceID, &sess.StartedAt, &sess.CompletedAt,
		&sess.Status, &sess.EntriesSynced, &sess.Conflicts, &sess.ErrorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.SyncSession{}, ErrNotFound
	}
	if err != nil {
		return record.SyncSession{}, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}

// CompleteSession moves a session to its terminal state and, when the
// session succeeded, stamps the device's last-sync time and increments its
// sync-version, all in one transaction.
//
// The WHERE status clause guards against racing completions: if the session
// already left in_progress the UPDATE affects zero rows and ErrNotFound is
// returned without touching the device.
func (s *Store) CompleteSession(ctx context.Context, id string, status record.Status, completedAt int64, errorMessage string, deviceID string, bumpDevice bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("complete session: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET status = ?, completed_at = ?, error_message = ?
		WHERE id = ? AND status = ?
	`, string(status), completedAt, errorMessage, id, string(record.StatusInProgress))
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if err := oneRow(res, "complete session"); err != nil {
		return err
	}

	if bumpDevice {
		_, err = tx.ExecContext(ctx, `
			UPDATE devices SET last_sync = ?, sync_version = sync_version + 1 WHERE id = ?
		`, completedAt, deviceID)
		if err != nil {
			return fmt.Errorf("complete session: bump device: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("complete session: commit: %w", err)
	}
	return nil
}
