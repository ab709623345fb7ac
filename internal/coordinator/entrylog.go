package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
)

// EntryLog owns the append-only record of synchronized data items.
//
// Append-only by construction: entries are only ever created through
// Append, and no field changes after creation except the mutations applied
// by ConflictResolver.
type EntryLog struct {
	store *store.Store
}

// NewEntryLog creates an entry log over the given store.
func NewEntryLog(st *store.Store) *EntryLog {
	return &EntryLog{store: st}
}

// Append stores a new entry (and, when conflict is non-nil, the conflict
// record referencing it) and bumps the owning session's counters in one
// atomic write. Returns the minted entry and conflict identities.
func (l *EntryLog) Append(ctx context.Context, entry *record.SyncEntry, conflict *record.SyncConflict, sessionID string) (string, string, error) {
	entryID, conflictID, err := l.store.AppendEntry(ctx, entry, conflict, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return "", "", notFound("session", sessionID)
	}
	if err != nil {
		return "", "", fmt.Errorf("append entry: %w", err)
	}
	return entryID, conflictID, nil
}

// Get retrieves an entry by identity.
func (l *EntryLog) Get(ctx context.Context, entryID string) (record.SyncEntry, error) {
	entry, err := l.store.ReadEntry(ctx, entryID)
	if errors.Is(err, store.ErrNotFound) {
		return record.SyncEntry{}, notFound("entry", entryID)
	}
	if err != nil {
		return record.SyncEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// Latest returns the most recent completed-or-conflict entry for the
// logical record (user, dataType), or found=false if none exists.
func (l *EntryLog) Latest(ctx context.Context, user, dataType string) (record.SyncEntry, bool, error) {
	entry, found, err := l.store.LatestEntryForRecord(ctx, user, dataType)
	if err != nil {
		return record.SyncEntry{}, false, fmt.Errorf("latest entry: %w", err)
	}
	return entry, found, nil
}
