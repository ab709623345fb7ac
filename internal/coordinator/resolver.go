package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
)

// ConflictResolver applies a named resolution policy to a detected
// conflict. Resolution is decoupled from detection and happens exactly
// once per conflict: the conflict's resolution fields are sealed in the
// same atomic write as the winning entry's mutation.
type ConflictResolver struct {
	store *store.Store
	log   *EntryLog
	clock Clock
	admin string
}

// NewConflictResolver creates a resolver. admin is the designated
// administrator identity allowed to resolve any user's conflicts; an empty
// admin means only conflict owners may resolve.
func NewConflictResolver(st *store.Store, log *EntryLog, clock Clock, admin string) *ConflictResolver {
	return &ConflictResolver{store: st, log: log, clock: clock, admin: admin}
}

// Resolve settles conflictID with the given policy, naming winningEntryID
// as the surviving entry.
//
// Preconditions: the conflict exists and is unresolved; resolver is the
// conflict's owning user or the administrator; winningEntryID is one of the
// conflict's two entries (otherwise the losing entry is undefined).
//
// Losing entries are left unchanged and retained for audit; they are never
// deleted.
func (r *ConflictResolver) Resolve(ctx context.Context, conflictID string, policy record.Policy, winningEntryID, resolver string) error {
	if resolver == "" {
		return validation("resolver identity must not be empty")
	}
	if !policy.IsValid() {
		return validation(fmt.Sprintf("unknown resolution policy %q", policy))
	}

	conflict, err := r.get(ctx, conflictID)
	if err != nil {
		return err
	}
	if conflict.Resolved() {
		return invalidState("already resolved", conflictID)
	}
	if resolver != conflict.User && (r.admin == "" || resolver != r.admin) {
		return unauthorized("not authorized to resolve this conflict", conflictID)
	}
	if !conflict.Involves(winningEntryID) {
		return validation(fmt.Sprintf("entry %s is not part of conflict %s", winningEntryID, conflictID))
	}

	winning, err := r.log.Get(ctx, winningEntryID)
	if err != nil {
		return err
	}

	if err := applyPolicy(ctx, r.log, policy, &conflict, &winning); err != nil {
		return err
	}

	conflict.Resolution = policy
	conflict.ResolvedAt = r.clock.Now()
	conflict.ResolvedBy = resolver
	conflict.WinningEntryID = winningEntryID

	if err := r.store.ApplyResolution(ctx, &conflict, &winning); err != nil {
		// The seal guard found the conflict already resolved by a racing
		// caller between our read and the write.
		if errors.Is(err, store.ErrNotFound) {
			return invalidState("already resolved", conflictID)
		}
		return fmt.Errorf("resolve conflict: %w", err)
	}
	return nil
}

// get retrieves a conflict by identity.
func (r *ConflictResolver) get(ctx context.Context, conflictID string) (record.SyncConflict, error) {
	conflict, err := r.store.ReadConflict(ctx, conflictID)
	if errors.Is(err, store.ErrNotFound) {
		return record.SyncConflict{}, notFound("conflict", conflictID)
	}
	if err != nil {
		return record.SyncConflict{}, fmt.Errorf("get conflict: %w", err)
	}
	return conflict, nil
}

// applyPolicy mutates the winning entry in memory according to the policy.
// The caller persists the result.
func applyPolicy(ctx context.Context, log *EntryLog, policy record.Policy, conflict *record.SyncConflict, winning *record.SyncEntry) error {
	switch policy {
	case record.PolicyLastWriteWins, record.PolicyFirstWriteWins, record.PolicyTimestampWins:
		// The caller chose the winner; these differ only by audit label.
		winning.Status = record.StatusCompleted
		winning.Resolution = policy

	case record.PolicyManualReview:
		// Sync stays paused until a human re-resolves.
		winning.Status = record.StatusPending
		winning.Resolution = policy

	case record.PolicyMergeData:
		losing, err := log.Get(ctx, conflict.OtherEntry(winning.ID))
		if err != nil {
			return err
		}
		winning.Payload = winning.Payload + record.MergeSeparator + losing.Payload
		winning.Status = record.StatusCompleted
		winning.Resolution = policy
		winning.MergedWith = append(winning.MergedWith, losing.ID)

	default:
		return validation(fmt.Sprintf("unknown resolution policy %q", policy))
	}
	return nil
}
