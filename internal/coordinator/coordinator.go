package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/devsync/internal/logging"
	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
)

// Audit event action tags.
const (
	ActionDeviceRegistered    = "device_registered"
	ActionDeviceDeactivated   = "device_deactivated"
	ActionCapabilitiesUpdated = "capabilities_updated"
	ActionSessionStarted      = "session_started"
	ActionEntrySubmitted      = "entry_submitted"
	ActionConflictDetected    = "conflict_detected"
	ActionConflictResolved    = "conflict_resolved"
	ActionSessionCompleted    = "session_completed"
	ActionSessionFailed       = "session_failed"
)

// Config configures a Coordinator.
type Config struct {
	// Store is the backing persistence. Required.
	Store *store.Store

	// Admin is the designated administrator identity, allowed to resolve
	// any user's conflicts. Empty means no administrator.
	Admin string

	// Clock is the shared timestamp source. Defaults to a SystemClock.
	Clock Clock

	// EventIDs mints audit event identities. Defaults to UUIDv7Source.
	EventIDs EventIDSource

	// Logger receives structured operation logs. Defaults to the package
	// default logger.
	Logger *slog.Logger
}

// Coordinator is the facade over the sync coordination operators. All
// public operations serialize per user, so concurrent submissions for the
// same logical record cannot both miss a conflict.
type Coordinator struct {
	store    *store.Store
	clock    Clock
	eventIDs EventIDSource
	log      *slog.Logger
	locks    *userLocks

	registry *DeviceRegistry
	entries  *EntryLog
	detector *ConflictDetector
	resolver *ConflictResolver
	sessions *SessionManager
}

// Counts holds the aggregate entity counters.
type Counts struct {
	Devices   int64 `json:"devices"`
	Entries   int64 `json:"entries"`
	Conflicts int64 `json:"conflicts"`
	Sessions  int64 `json:"sessions"`
}

// New creates a Coordinator from cfg.
func New(cfg Config) (*Coordinator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("coordinator: store is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = NewSystemClock()
	}
	if cfg.EventIDs == nil {
		cfg.EventIDs = UUIDv7Source{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	registry := NewDeviceRegistry(cfg.Store, cfg.Clock)
	entries := NewEntryLog(cfg.Store)
	detector := NewConflictDetector(entries)

	return &Coordinator{
		store:    cfg.Store,
		clock:    cfg.Clock,
		eventIDs: cfg.EventIDs,
		log:      cfg.Logger,
		locks:    newUserLocks(),
		registry: registry,
		entries:  entries,
		detector: detector,
		resolver: NewConflictResolver(cfg.Store, entries, cfg.Clock, cfg.Admin),
		sessions: NewSessionManager(cfg.Store, registry, entries, detector, cfg.Clock),
	}, nil
}

// RegisterDevice registers a new device for user and returns its identity.
func (c *Coordinator) RegisterDevice(ctx context.Context, user string, class record.DeviceClass, name string, capabilities []string) (string, error) {
	unlock := c.locks.lock(user)
	defer unlock()

	id, err := c.registry.Register(ctx, user, class, name, capabilities)
	if err != nil {
		return "", err
	}

	c.audit(ctx, user, ActionDeviceRegistered, id)
	c.log.Info("device registered",
		logging.User(user), logging.Device(id), logging.Operation("register"))
	return id, nil
}

// DeactivateDevice marks the user's device inactive.
func (c *Coordinator) DeactivateDevice(ctx context.Context, user, deviceID string) error {
	unlock := c.locks.lock(user)
	defer unlock()

	if err := c.registry.Deactivate(ctx, user, deviceID); err != nil {
		return err
	}

	c.audit(ctx, user, ActionDeviceDeactivated, deviceID)
	c.log.Info("device deactivated",
		logging.User(user), logging.Device(deviceID), logging.Operation("deactivate"))
	return nil
}

// UpdateDeviceCapabilities replaces the device's capability set wholesale.
func (c *Coordinator) UpdateDeviceCapabilities(ctx context.Context, user, deviceID string, capabilities []string) error {
	unlock := c.locks.lock(user)
	defer unlock()

	if err := c.registry.UpdateCapabilities(ctx, user, deviceID, capabilities); err != nil {
		return err
	}

	c.audit(ctx, user, ActionCapabilitiesUpdated, deviceID)
	return nil
}

// StartSession opens a sync session for the user's device.
func (c *Coordinator) StartSession(ctx context.Context, user, deviceID string) (string, error) {
	unlock := c.locks.lock(user)
	defer unlock()

	id, err := c.sessions.Start(ctx, user, deviceID)
	if err != nil {
		return "", err
	}

	c.audit(ctx, user, ActionSessionStarted, id)
	c.log.Info("session started",
		logging.User(user), logging.Device(deviceID), logging.Session(id))
	return id, nil
}

// SubmitEntry submits one entry to an active session. Returns the entry
// identity and, when divergence was detected, the conflict identity
// (empty otherwise).
func (c *Coordinator) SubmitEntry(ctx context.Context, sessionID, deviceID, dataType, fingerprint, payload string) (string, string, error) {
	// The session's user scopes the lock; the manager re-reads the session
	// state under the lock.
	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", "", err
	}

	unlock := c.locks.lock(session.User)
	defer unlock()

	entryID, conflictID, err := c.sessions.Submit(ctx, sessionID, deviceID, dataType, fingerprint, payload)
	if err != nil {
		return "", "", err
	}

	c.audit(ctx, session.User, ActionEntrySubmitted, entryID)
	if conflictID != "" {
		c.audit(ctx, session.User, ActionConflictDetected, conflictID)
		c.log.Warn("conflict detected",
			logging.User(session.User), logging.Session(sessionID),
			logging.Entry(entryID), logging.Conflict(conflictID))
	}
	return entryID, conflictID, nil
}

// ResolveConflict settles a conflict with the given policy.
func (c *Coordinator) ResolveConflict(ctx context.Context, conflictID string, policy record.Policy, winningEntryID, resolver string) error {
	conflict, err := c.Conflict(ctx, conflictID)
	if err != nil {
		return err
	}

	unlock := c.locks.lock(conflict.User)
	defer unlock()

	if err := c.resolver.Resolve(ctx, conflictID, policy, winningEntryID, resolver); err != nil {
		return err
	}

	c.audit(ctx, conflict.User, ActionConflictResolved, conflictID)
	c.log.Info("conflict resolved",
		logging.User(conflict.User), logging.Conflict(conflictID),
		logging.Policy(string(policy)), logging.Entry(winningEntryID))
	return nil
}

// CompleteSession closes an active session. errorMessage is required when
// success=false and ignored otherwise.
func (c *Coordinator) CompleteSession(ctx context.Context, sessionID string, success bool, errorMessage string) error {
	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	unlock := c.locks.lock(session.User)
	defer unlock()

	if err := c.sessions.Complete(ctx, sessionID, success, errorMessage); err != nil {
		return err
	}

	action := ActionSessionCompleted
	if !success {
		action = ActionSessionFailed
	}
	c.audit(ctx, session.User, action, sessionID)
	c.log.Info("session closed",
		logging.User(session.User), logging.Session(sessionID),
		slog.Bool("success", success))
	return nil
}

// Device retrieves a device by identity.
func (c *Coordinator) Device(ctx context.Context, deviceID string) (record.Device, error) {
	return c.registry.Get(ctx, deviceID)
}

// Session retrieves a session by identity.
func (c *Coordinator) Session(ctx context.Context, sessionID string) (record.SyncSession, error) {
	return c.sessions.Get(ctx, sessionID)
}

// Entry retrieves an entry by identity.
func (c *Coordinator) Entry(ctx context.Context, entryID string) (record.SyncEntry, error) {
	return c.entries.Get(ctx, entryID)
}

// Conflict retrieves a conflict by identity.
func (c *Coordinator) Conflict(ctx context.Context, conflictID string) (record.SyncConflict, error) {
	conflict, err := c.store.ReadConflict(ctx, conflictID)
	if errors.Is(err, store.ErrNotFound) {
		return record.SyncConflict{}, notFound("conflict", conflictID)
	}
	if err != nil {
		return record.SyncConflict{}, fmt.Errorf("get conflict: %w", err)
	}
	return conflict, nil
}

// UserDevices returns the user's device identities in registration order.
func (c *Coordinator) UserDevices(ctx context.Context, user string) ([]string, error) {
	return c.registry.ListForUser(ctx, user)
}

// UserConflicts returns the user's conflict identities in detection order.
func (c *Coordinator) UserConflicts(ctx context.Context, user string) ([]string, error) {
	ids, err := c.store.UserConflicts(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("user conflicts: %w", err)
	}
	return ids, nil
}

// UserHistory returns the user's most recent audit events, newest first.
func (c *Coordinator) UserHistory(ctx context.Context, user string, limit int) ([]record.Event, error) {
	if limit <= 0 {
		return nil, validation("limit must be positive")
	}
	events, err := c.store.UserHistory(ctx, user, limit)
	if err != nil {
		return nil, fmt.Errorf("user history: %w", err)
	}
	return events, nil
}

// CountAll returns the aggregate entity counters.
func (c *Coordinator) CountAll(ctx context.Context) (Counts, error) {
	var counts Counts
	for _, pair := range []struct {
		kind record.Kind
		dst  *int64
	}{
		{record.KindDevice, &counts.Devices},
		{record.KindEntry, &counts.Entries},
		{record.KindConflict, &counts.Conflicts},
		{record.KindSession, &counts.Sessions},
	} {
		n, err := c.store.Count(ctx, pair.kind)
		if err != nil {
			return Counts{}, fmt.Errorf("counts: %w", err)
		}
		*pair.dst = n
	}
	return counts, nil
}

// audit appends an audit event. Audit is best-effort: a failed append is
// logged and does not fail the already-committed operation.
func (c *Coordinator) audit(ctx context.Context, user, action, subjectID string) {
	event := record.Event{
		ID:        c.eventIDs.NewID(),
		User:      user,
		Action:    action,
		SubjectID: subjectID,
		At:        c.clock.Now(),
	}
	if err := c.store.AppendEvent(ctx, event); err != nil {
		c.log.Warn("audit append failed",
			logging.User(user), logging.Operation(action), logging.Err(err))
	}
}
