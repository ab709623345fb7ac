package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
)

// DeviceRegistry owns device identity, capability, and activity state.
// It is a stateless operator over the store.
type DeviceRegistry struct {
	store *store.Store
	clock Clock
}

// NewDeviceRegistry creates a registry over the given store and clock.
func NewDeviceRegistry(st *store.Store, clock Clock) *DeviceRegistry {
	return &DeviceRegistry{store: st, clock: clock}
}

// Register creates a new device for user and returns its identity.
// The device starts active with sync-version 1. Names need not be unique.
func (r *DeviceRegistry) Register(ctx context.Context, user string, class record.DeviceClass, name string, capabilities []string) (string, error) {
	if user == "" {
		return "", validation("user must not be empty")
	}
	if name == "" {
		return "", validation("device name must not be empty")
	}
	if !class.IsValid() {
		return "", validation(fmt.Sprintf("unknown device class %q", class))
	}

	now := r.clock.Now()
	device := record.Device{
		User:         user,
		Class:        class,
		Name:         name,
		Active:       true,
		Capabilities: capabilities,
		CreatedAt:    now,
		LastSeen:     now,
		LastSync:     0,
		SyncVersion:  1,
	}

	id, err := r.store.CreateDevice(ctx, &device)
	if err != nil {
		return "", fmt.Errorf("register device: %w", err)
	}
	return id, nil
}

// Get retrieves a device by identity.
func (r *DeviceRegistry) Get(ctx context.Context, deviceID string) (record.Device, error) {
	device, err := r.store.ReadDevice(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return record.Device{}, notFound("device", deviceID)
	}
	if err != nil {
		return record.Device{}, fmt.Errorf("get device: %w", err)
	}
	return device, nil
}

// Deactivate marks the device inactive and refreshes last-seen.
// Devices are never deleted. Fails UNAUTHORIZED unless user owns the device.
func (r *DeviceRegistry) Deactivate(ctx context.Context, user, deviceID string) error {
	if _, err := r.owned(ctx, user, deviceID); err != nil {
		return err
	}

	if err := r.store.SetDeviceActive(ctx, deviceID, false, r.clock.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("device", deviceID)
		}
		return fmt.Errorf("deactivate device: %w", err)
	}
	return nil
}

// UpdateCapabilities replaces the device's capability set wholesale and
// refreshes last-seen. Fails UNAUTHORIZED unless user owns the device.
func (r *DeviceRegistry) UpdateCapabilities(ctx context.Context, user, deviceID string, capabilities []string) error {
	if _, err := r.owned(ctx, user, deviceID); err != nil {
		return err
	}

	if err := r.store.SetDeviceCapabilities(ctx, deviceID, capabilities, r.clock.Now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("device", deviceID)
		}
		return fmt.Errorf("update capabilities: %w", err)
	}
	return nil
}

// ListForUser returns the user's device identities in registration order.
func (r *DeviceRegistry) ListForUser(ctx context.Context, user string) ([]string, error) {
	ids, err := r.store.UserDevices(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return ids, nil
}

// owned loads the device and checks the caller owns it.
func (r *DeviceRegistry) owned(ctx context.Context, user, deviceID string) (record.Device, error) {
	device, err := r.Get(ctx, deviceID)
	if err != nil {
		return record.Device{}, err
	}
	if device.User != user {
		return record.Device{}, unauthorized("device does not belong to user", deviceID)
	}
	return device, nil
}
