package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
)

// AppendEntry appends a sync entry to the log and bumps the owning session's
// counters, all in one transaction. If conflict is non-nil a conflict record
// is created in the same transaction, with its EntryID2 pointing at the new
// entry, and the session's conflict counter is incremented too.
//
// Identity fields on entry and conflict are ignored on input; the minted
// identities are returned and written back.
func (s *Store) AppendEntry(ctx context.Context, entry *record.SyncEntry, conflict *record.SyncConflict, sessionID string) (entryID, conflictID string, err error) {
	merged, err := marshalStrings(entry.MergedWith)
	if err != nil {
		return "", "", fmt.Errorf("append entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", "", fmt.Errorf("append entry: begin tx: %w", err)
	}
	defer tx.Rollback()

	entryID, err = nextID(tx, record.KindEntry)
	if err != nil {
		return "", "", fmt.Errorf("append entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries
		(id, user, device_id, data_type, fingerprint, submitted_at, status, resolution, parent_entry_id, merged_with, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entryID,
		entry.User,
		entry.DeviceID,
		entry.DataType,
		entry.Fingerprint,
		entry.SubmittedAt,
		string(entry.Status),
		string(entry.Resolution),
		entry.ParentEntryID,
		merged,
		entry.Payload,
	)
	if err != nil {
		return "", "", fmt.Errorf("append entry: insert: %w", err)
	}

	if conflict != nil {
		conflictID, err = nextID(tx, record.KindConflict)
		if err != nil {
			return "", "", fmt.Errorf("append entry: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO conflicts
			(id, user, entry_id_1, entry_id_2, type, detected_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			conflictID,
			conflict.User,
			conflict.EntryID1,
			entryID,
			string(conflict.Type),
			conflict.DetectedAt,
		)
		if err != nil {
			return "", "", fmt.Errorf("append entry: insert conflict: %w", err)
		}
	}

	conflictBump := 0
	if conflict != nil {
		conflictBump = 1
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE sessions
		SET entries_synced = entries_synced + 1, conflicts = conflicts + ?
		WHERE id = ?
	`, conflictBump, sessionID)
	if err != nil {
		return "", "", fmt.Errorf("append entry: bump session: %w", err)
	}
	if err := oneRow(res, "append entry: bump session"); err != nil {
		return "", "", err
	}

	if err := tx.Commit(); err != nil {
		return "", "", fmt.Errorf("append entry: commit: %w", err)
	}

	entry.ID = entryID
	if conflict != nil {
		conflict.ID = conflictID
		conflict.EntryID2 = entryID
	}
	return entryID, conflictID, nil
}

// ReadEntry retrieves a single entry by ID.
// Returns ErrNotFound if no such entry exists.
func (s *Store) ReadEntry(ctx context.Context, id string) (record.SyncEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user, device_id, data_type, fingerprint, submitted_at, status, resolution, parent_entry_id, merged_with, payload
		FROM entries
		WHERE id = ?
	`, id)
	return scanEntry(row)
}

// LatestEntryForRecord returns the most recent entry for the logical record
// (user, dataType) whose status is completed or conflict, or found=false if
// none exists. Ordering is by submission time with the sequential ID as a
// deterministic tiebreak.
func (s *Store) LatestEntryForRecord(ctx context.Context, user, dataType string) (record.SyncEntry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user, device_id, data_type, fingerprint, submitted_at, status, resolution, parent_entry_id, merged_with, payload
		FROM entries
		WHERE user = ? AND data_type = ? AND status IN (?, ?)
		ORDER BY submitted_at DESC, length(id) DESC, id DESC
		LIMIT 1
	`, user, dataType, string(record.StatusCompleted), string(record.StatusConflict))

	entry, err := scanEntry(row)
	if errors.Is(err, ErrNotFound) {
		return record.SyncEntry{}, false, nil
	}
	if err != nil {
		return record.SyncEntry{}, false, err
	}
	return entry, true, nil
}

// scanEntry reads one entry row from a QueryRow result.
func scanEntry(row *sql.Row) (record.SyncEntry, error) {
	var (
		e      record.SyncEntry
		merged string
	)
	err := row.Scan(
		&e.ID, &e.User, &e.DeviceID, &e.DataType, &e.Fingerprint,
		&e.SubmittedAt, &e.Status, &e.Resolution, &e.ParentEntryID,
		&merged, &e.Payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.SyncEntry{}, ErrNotFound
	}
	if err != nil {
		return record.SyncEntry{}, fmt.Errorf("scan entry: %w", err)
	}

	e.MergedWith, err = unmarshalStrings(merged)
	if err != nil {
		return record.SyncEntry{}, fmt.Errorf("scan entry: %w", err)
	}
	return e, nil
}
