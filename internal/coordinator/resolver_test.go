package coordinator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devsync/internal/record"
)

func TestResolveConflict_LastWriteWins(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, priorID, newID := makeConflict(t, coord, "alice")

	require.NoError(t, coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, newID, "alice"))

	conflict, err := coord.Conflict(ctx, conflictID)
	require.NoError(t, err)
	assert.True(t, conflict.Resolved())
	assert.Equal(t, record.PolicyLastWriteWins, conflict.Resolution)
	assert.Equal(t, "alice", conflict.ResolvedBy)
	assert.Equal(t, newID, conflict.WinningEntryID)
	assert.NotZero(t, conflict.ResolvedAt)

	winning, err := coord.Entry(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, record.StatusCompleted, winning.Status)
	assert.Equal(t, record.PolicyLastWriteWins, winning.Resolution)

	// The losing entry is retained unchanged for audit.
	losing, err := coord.Entry(ctx, priorID)
	require.NoError(t, err)
	assert.Equal(t, record.StatusCompleted, losing.Status)
	assert.Empty(t, losing.Resolution)
}

func TestResolveConflict_PriorEntryCanWin(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, priorID, _ := makeConflict(t, coord, "alice")

	require.NoError(t, coord.ResolveConflict(ctx, conflictID, record.PolicyFirstWriteWins, priorID, "alice"))

	conflict, err := coord.Conflict(ctx, conflictID)
	require.NoError(t, err)
	assert.Equal(t, priorID, conflict.WinningEntryID)
}

func TestResolveConflict_MergeData(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, priorID, newID := makeConflict(t, coord, "alice")

	require.NoError(t, coord.ResolveConflict(ctx, conflictID, record.PolicyMergeData, newID, "alice"))

	winning, err := coord.Entry(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, "payload-b|payload-a", winning.Payload)
	assert.Equal(t, record.StatusCompleted, winning.Status)
	assert.Equal(t, []string{priorID}, winning.MergedWith)

	losing, err := coord.Entry(ctx, priorID)
	require.NoError(t, err)
	assert.Equal(t, "payload-a", losing.Payload)
}

func TestResolveConflict_ManualReview(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, _, newID := makeConflict(t, coord, "alice")

	require.NoError(t, coord.ResolveConflict(ctx, conflictID, record.PolicyManualReview, newID, "alice"))

	// The conflict seals, but the winning entry parks as pending.
	conflict, err := coord.Conflict(ctx, conflictID)
	require.NoError(t, err)
	assert.True(t, conflict.Resolved())

	winning, err := coord.Entry(ctx, newID)
	require.NoError(t, err)
	assert.Equal(t, record.StatusPending, winning.Status)
}

func TestResolveConflict_ExactlyOnce(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, priorID, newID := makeConflict(t, coord, "alice")

	require.NoError(t, coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, newID, "alice"))

	err := coord.ResolveConflict(ctx, conflictID, record.PolicyFirstWriteWins, priorID, "alice")
	assert.True(t, IsInvalidState(err), "got %v", err)

	// First resolution stands.
	conflict, err := coord.Conflict(ctx, conflictID)
	require.NoError(t, err)
	assert.Equal(t, record.PolicyLastWriteWins, conflict.Resolution)
	assert.Equal(t, newID, conflict.WinningEntryID)
}

func TestResolveConflict_Authorization(t *testing.T) {
	coord := newTestCoordinator(t, "ops")
	ctx := context.Background()
	conflictID, _, newID := makeConflict(t, coord, "alice")

	err := coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, newID, "mallory")
	assert.True(t, IsUnauthorized(err), "got %v", err)

	// The admin may resolve another user's conflict.
	require.NoError(t, coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, newID, "ops"))

	conflict, err := coord.Conflict(ctx, conflictID)
	require.NoError(t, err)
	assert.Equal(t, "ops", conflict.ResolvedBy)
}

func TestResolveConflict_NoAdminConfigured(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, _, newID := makeConflict(t, coord, "alice")

	// Without a configured admin only the owner may resolve, even for a
	// caller claiming the empty identity.
	err := coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, newID, "ops")
	assert.True(t, IsUnauthorized(err), "got %v", err)
}

func TestResolveConflict_Validation(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()
	conflictID, _, newID := makeConflict(t, coord, "alice")

	err := coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, newID, "")
	assert.True(t, IsValidation(err), "empty resolver: %v", err)

	err = coord.ResolveConflict(ctx, conflictID, "coin_flip", newID, "alice")
	assert.True(t, IsValidation(err), "unknown policy: %v", err)

	// The winner must be one of the conflict's two entries.
	err = coord.ResolveConflict(ctx, conflictID, record.PolicyLastWriteWins, "entry_999", "alice")
	assert.True(t, IsValidation(err), "outside winner: %v", err)
}

func TestResolveConflict_Missing(t *testing.T) {
	coord := newTestCoordinator(t, "")

	err := coord.ResolveConflict(context.Background(), "conflict_404", record.PolicyLastWriteWins, "entry_1", "alice")
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestUserConflicts_DetectionOrder(t *testing.T) {
	coord := newTestCoordinator(t, "")
	ctx := context.Background()

	first, _, _ := makeConflict(t, coord, "alice")
	second, _, _ := makeConflict(t, coord, "bob")

	ids, err := coord.UserConflicts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{first}, ids)

	ids, err = coord.UserConflicts(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{second}, ids)

	ids, err = coord.UserConflicts(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
