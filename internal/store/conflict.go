package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
)

// ReadConflict retrieves a single conflict by ID.
// Returns ErrNotFound if no such conflict exists.
func (s *Store) ReadConflict(ctx context.Context, id string) (record.SyncConflict, error) {
	var c record.SyncConflict
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user, entry_id_1, entry_id_2, type, detected_at, resolution, resolved_at, resolved_by, winning_entry_id
		FROM conflicts
		WHERE id = ?
	`, id).Scan(
		&c.ID, &c.User, &c.EntryID1, &c.EntryID2, &c.Type, &c.DetectedAt,
		&c.Resolution, &c.ResolvedAt, &c.ResolvedBy, &c.WinningEntryID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.SyncConflict{}, ErrNotFound
	}
	if err != nil {
		return record.SyncConflict{}, fmt.Errorf("read conflict: %w", err)
	}
	return c, nil
}

// UserConflicts returns conflict IDs for a user in detection order.
// Returns an empty slice (not nil) if the user has none.
func (s *Store) UserConflicts(ctx context.Context, user string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM conflicts
		WHERE user = ?
		ORDER BY detected_at ASC, length(id) ASC, id ASC
	`, user)
	if err != nil {
		return nil, fmt.Errorf("query user conflicts: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user conflict: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user conflicts: %w", err)
	}
	return ids, nil
}

// ApplyResolution applies a resolution's entry mutation and seals the
// conflict record in one transaction.
//
// The conflict seal uses WHERE resolution = '' so it happens exactly once:
// a concurrent or repeated resolution finds zero rows to update and the
// whole transaction rolls back with ErrNotFound, leaving the entry
// untouched.
func (s *Store) ApplyResolution(ctx context.Context, conflict *record.SyncConflict, winning *record.SyncEntry) error {
	merged, err := marshalStrings(winning.MergedWith)
	if err != nil {
		return fmt.Errorf("apply resolution: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply resolution: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE conflicts
		SET resolution = ?, resolved_at = ?, resolved_by = ?, winning_entry_id = ?
		WHERE id = ? AND resolution = ''
	`,
		string(conflict.Resolution),
		conflict.ResolvedAt,
		conflict.ResolvedBy,
		conflict.WinningEntryID,
		conflict.ID,
	)
	if err != nil {
		return fmt.Errorf("apply resolution: seal conflict: %w", err)
	}
	if err := oneRow(res, "apply resolution: seal conflict"); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE entries
		SET status = ?, resolution = ?, payload = ?, merged_with = ?
		WHERE id = ?
	`,
		string(winning.Status),
		string(winning.Resolution),
		winning.Payload,
		merged,
		winning.ID,
	)
	if err != nil {
		return fmt.Errorf("apply resolution: update entry: %w", err)
	}
	if err := oneRow(res, "apply resolution: update entry"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply resolution: commit: %w", err)
	}
	return nil
}
