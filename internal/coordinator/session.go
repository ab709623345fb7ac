package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
)

// SessionManager orchestrates bounded sync sessions:
// start -> submit entries -> complete.
//
// Session states move Created -> InProgress -> {Completed, Failed}. A
// session record is only ever stored in InProgress or a terminal state;
// terminal sessions never change again. Completion is deliberately not
// idempotent: completing twice fails INVALID_STATE rather than silently
// succeeding, so double-completion cannot corrupt device sync state.
type SessionManager struct {
	store    *store.Store
	registry *DeviceRegistry
	log      *EntryLog
	detector *ConflictDetector
	clock    Clock
}

// NewSessionManager wires a session manager over its collaborators.
func NewSessionManager(st *store.Store, registry *DeviceRegistry, log *EntryLog, detector *ConflictDetector, clock Clock) *SessionManager {
	return &SessionManager{store: st, registry: registry, log: log, detector: detector, clock: clock}
}

// Start opens a session for the user's device and returns its identity.
//
// Fails NOT_FOUND if the device is absent, UNAUTHORIZED if it belongs to a
// different user, INVALID_STATE if the device is inactive. A device may
// have several open sessions; the store does not enforce a single active
// session per device.
func (m *SessionManager) Start(ctx context.Context, user, deviceID string) (string, error) {
	if user == "" {
		return "", validation("user must not be empty")
	}
	if deviceID == "" {
		return "", validation("device id must not be empty")
	}

	device, err := m.registry.Get(ctx, deviceID)
	if err != nil {
		return "", err
	}
	if device.User != user {
		return "", unauthorized("device does not belong to user", deviceID)
	}
	if !device.Active {
		return "", invalidState("device inactive", deviceID)
	}

	now := m.clock.Now()
	session := record.SyncSession{
		User:      user,
		DeviceID:  deviceID,
		StartedAt: now,
		Status:    record.StatusInProgress,
	}

	id, err := m.store.CreateSession(ctx, &session, now)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}
	return id, nil
}

// Submit records one entry in an active session. This is the sole entry
// point that creates SyncEntry records during a session.
//
// The submission is checked against the logical record's latest version;
// on divergence the entry is stored with conflict status, a SyncConflict
// record referencing both entries is created, and the session's conflict
// counter increments. The entries-synced counter always increments.
//
// Returns the entry identity and, when a conflict was detected, the
// conflict identity (empty otherwise).
func (m *SessionManager) Submit(ctx context.Context, sessionID, deviceID, dataType, fingerprint, payload string) (string, string, error) {
	if dataType == "" {
		return "", "", validation("data type must not be empty")
	}
	if fingerprint == "" {
		return "", "", validation("fingerprint must not be empty")
	}

	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	if session.Status != record.StatusInProgress {
		return "", "", invalidState("session not active", sessionID)
	}

	now := m.clock.Now()
	conflict, prior, err := m.detector.Detect(ctx, session.User, dataType, fingerprint, now)
	if err != nil {
		return "", "", err
	}

	entry := record.SyncEntry{
		User:        session.User,
		DeviceID:    deviceID,
		DataType:    dataType,
		Fingerprint: fingerprint,
		SubmittedAt: now,
		Status:      record.StatusCompleted,
		Payload:     payload,
	}
	if conflict != nil {
		entry.Status = record.StatusConflict
		entry.ParentEntryID = prior.ID
	}

	entryID, conflictID, err := m.log.Append(ctx, &entry, conflict, sessionID)
	if err != nil {
		return "", "", err
	}
	return entryID, conflictID, nil
}

// Complete closes an active session. errorMessage is required when
// success=false and ignored otherwise. On success the device's last-sync
// timestamp is stamped and its sync-version incremented, atomically with
// the session transition.
func (m *SessionManager) Complete(ctx context.Context, sessionID string, success bool, errorMessage string) error {
	if !success && errorMessage == "" {
		return validation("error message required for failed session")
	}
	if success {
		errorMessage = ""
	}

	session, err := m.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != record.StatusInProgress {
		return invalidState("session not active", sessionID)
	}

	status := record.StatusCompleted
	if !success {
		status = record.StatusFailed
	}

	err = m.store.CompleteSession(ctx, sessionID, status, m.clock.Now(), errorMessage, session.DeviceID, success)
	if errors.Is(err, store.ErrNotFound) {
		// Raced with another completion between our read and the write.
		return invalidState("session not active", sessionID)
	}
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

// Get retrieves a session by identity.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (record.SyncSession, error) {
	session, err := m.store.ReadSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return record.SyncSession{}, notFound("session", sessionID)
	}
	if err != nil {
		return record.SyncSession{}, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}
