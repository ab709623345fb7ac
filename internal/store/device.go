package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
)

// CreateDevice mints a sequential device identity, inserts the device, and
// appends it to the owner's insertion-ordered device index, all in one
// transaction. The device's ID field is ignored on input; the minted
// identity is returned and written back to d.
func (s *Store) CreateDevice(ctx context.Context, d *record.Device) (string, error) {
	caps, err := marshalStrings(d.Capabilities)
	if err != nil {
		return "", fmt.Errorf("create device: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("create device: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id, err := nextID(tx, record.KindDevice)
	if err != nil {
		return "", fmt.Errorf("create device: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO devices
		(id, user, class, name, active, capabilities, created_at, last_seen, last_sync, sync_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		d.User,
		string(d.Class),
		d.Name,
		boolToInt(d.Active),
		caps,
		d.CreatedAt,
		d.LastSeen,
		d.LastSync,
		d.SyncVersion,
	)
	if err != nil {
		return "", fmt.Errorf("create device: insert: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_devices (user, position, device_id)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM user_devices WHERE user = ?), ?)
	`, d.User, d.User, id)
	if err != nil {
		return "", fmt.Errorf("create device: index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("create device: commit: %w", err)
	}

	d.ID = id
	return id, nil
}

// ReadDevice retrieves a single device by ID.
// Returns ErrNotFound if no such device exists.
func (s *Store) ReadDevice(ctx context.Context, id string) (record.Device, error) {
	var (
		d      record.Device
		active int
		caps   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user, class, name, active, capabilities, created_at, last_seen, last_sync, sync_version
		FROM devices
		WHERE id = ?
	`, id).Scan(
		&d.ID, &d.User, &d.Class, &d.Name, &active, &caps,
		&d.CreatedAt, &d.LastSeen, &d.LastSync, &d.SyncVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Device{}, ErrNotFound
	}
	if err != nil {
		return record.Device{}, fmt.Errorf("read device: %w", err)
	}

	d.Active = active != 0
	d.Capabilities, err = unmarshalStrings(caps)
	if err != nil {
		return record.Device{}, fmt.Errorf("read device: %w", err)
	}
	return d, nil
}

// SetDeviceActive flips the activity flag and refreshes last-seen.
// Returns ErrNotFound if no such device exists.
func (s *Store) SetDeviceActive(ctx context.Context, id string, active bool, lastSeen int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE devices SET active = ?, last_seen = ? WHERE id = ?
	`, boolToInt(active), lastSeen, id)
	if err != nil {
		return fmt.Errorf("set device active: %w", err)
	}
	return oneRow(res, "set device active")
}

// SetDeviceCapabilities replaces the capability set wholesale and refreshes
// last-seen. Returns ErrNotFound if no such device exists.
func (s *Store) SetDeviceCapabilities(ctx context.Context, id string, capabilities []string, lastSeen int64) error {
	caps, err := marshalStrings(capabilities)
	if err != nil {
		return fmt.Errorf("set device capabilities: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE devices SET capabilities = ?, last_seen = ? WHERE id = ?
	`, caps, lastSeen, id)
	if err != nil {
		return fmt.Errorf("set device capabilities: %w", err)
	}
	return oneRow(res, "set device capabilities")
}

// UserDevices returns the user's device IDs in registration order.
// Returns an empty slice (not nil) if the user has no devices.
func (s *Store) UserDevices(ctx context.Context, user string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT device_id FROM user_devices
		WHERE user = ?
		ORDER BY position ASC
	`, user)
	if err != nil {
		return nil, fmt.Errorf("query user devices: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user device: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user devices: %w", err)
	}
	return ids, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// oneRow converts a zero-rows-affected UPDATE into ErrNotFound.
func oneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
