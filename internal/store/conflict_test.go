package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/devsync/internal/record"
)

// seedConflict sets up a prior entry, a conflicting entry, and the conflict
// record between them.
func seedConflict(t *testing.T, s *Store) (conflictID, priorID, newID string) {
	t.Helper()
	ctx := context.Background()
	deviceID := createTestDevice(t, s, "alice")
	sessionID := createTestSession(t, s, "alice", deviceID)

	priorID = appendTestEntry(t, s, "alice", deviceID, sessionID, "settings", "fp1", 10)

	entry := record.SyncEntry{
		User:          "alice",
		DeviceID:      deviceID,
		DataType:      "settings",
		Fingerprint:   "fp2",
		SubmittedAt:   20,
		Status:        record.StatusConflict,
		ParentEntryID: priorID,
		Payload:       "new",
	}
	conflict := record.SyncConflict{
		User:       "alice",
		EntryID1:   priorID,
		Type:       record.ConflictData,
		DetectedAt: 20,
	}
	var err error
	newID, conflictID, err = s.AppendEntry(ctx, &entry, &conflict, sessionID)
	if err != nil {
		t.Fatalf("AppendEntry() failed: %v", err)
	}
	return conflictID, priorID, newID
}

func TestApplyResolution_SealsConflictAndUpdatesEntry(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	conflictID, priorID, newID := seedConflict(t, s)

	conflict, err := s.ReadConflict(ctx, conflictID)
	if err != nil {
		t.Fatalf("ReadConflict() failed: %v", err)
	}
	conflict.Resolution = record.PolicyMergeData
	conflict.ResolvedAt = 30
	conflict.ResolvedBy = "alice"
	conflict.WinningEntryID = newID

	winning, err := s.ReadEntry(ctx, newID)
	if err != nil {
		t.Fatalf("ReadEntry() failed: %v", err)
	}
	winning.Status = record.StatusCompleted
	winning.Resolution = record.PolicyMergeData
	winning.Payload = "new|old"
	winning.MergedWith = append(winning.MergedWith, priorID)

	if err := s.ApplyResolution(ctx, &conflict, &winning); err != nil {
		t.Fatalf("ApplyResolution() failed: %v", err)
	}

	sealed, err := s.ReadConflict(ctx, conflictID)
	if err != nil {
		t.Fatalf("ReadConflict() failed: %v", err)
	}
	if !sealed.Resolved() {
		t.Error("conflict not sealed")
	}
	if sealed.ResolvedBy != "alice" || sealed.ResolvedAt != 30 || sealed.WinningEntryID != newID {
		t.Errorf("seal fields = %+v", sealed)
	}

	updated, err := s.ReadEntry(ctx, newID)
	if err != nil {
		t.Fatalf("ReadEntry() failed: %v", err)
	}
	if updated.Status != record.StatusCompleted {
		t.Errorf("entry status = %s, want completed", updated.Status)
	}
	if updated.Payload != "new|old" {
		t.Errorf("entry payload = %q, want %q", updated.Payload, "new|old")
	}
	if !reflect.DeepEqual(updated.MergedWith, []string{priorID}) {
		t.Errorf("MergedWith = %v, want [%s]", updated.MergedWith, priorID)
	}
}

func TestApplyResolution_WriteOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	conflictID, _, newID := seedConflict(t, s)

	conflict, err := s.ReadConflict(ctx, conflictID)
	if err != nil {
		t.Fatalf("ReadConflict() failed: %v", err)
	}
	conflict.Resolution = record.PolicyLastWriteWins
	conflict.ResolvedAt = 30
	conflict.ResolvedBy = "alice"
	conflict.WinningEntryID = newID

	winning, err := s.ReadEntry(ctx, newID)
	if err != nil {
		t.Fatalf("ReadEntry() failed: %v", err)
	}
	winning.Status = record.StatusCompleted
	winning.Resolution = record.PolicyLastWriteWins

	if err := s.ApplyResolution(ctx, &conflict, &winning); err != nil {
		t.Fatalf("first ApplyResolution() failed: %v", err)
	}

	// A second resolution must find zero unsealed rows and roll back.
	conflict.ResolvedBy = "mallory"
	winning.Payload = "tampered"
	err = s.ApplyResolution(ctx, &conflict, &winning)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("second ApplyResolution() = %v, want ErrNotFound", err)
	}

	sealed, err := s.ReadConflict(ctx, conflictID)
	if err != nil {
		t.Fatalf("ReadConflict() failed: %v", err)
	}
	if sealed.ResolvedBy != "alice" {
		t.Errorf("ResolvedBy = %q, want alice (seal is write-once)", sealed.ResolvedBy)
	}

	entry, err := s.ReadEntry(ctx, newID)
	if err != nil {
		t.Fatalf("ReadEntry() failed: %v", err)
	}
	if entry.Payload == "tampered" {
		t.Error("entry mutated by rejected resolution")
	}
}

func TestUserConflicts_DetectionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, _, _ := seedConflict(t, s)
	second, _, _ := seedConflict(t, s)

	ids, err := s.UserConflicts(ctx, "alice")
	if err != nil {
		t.Fatalf("UserConflicts() failed: %v", err)
	}
	want := []string{first, second}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("UserConflicts() = %v, want %v", ids, want)
	}
}

func TestUserConflicts_EmptyNotNil(t *testing.T) {
	s := openTestStore(t)

	ids, err := s.UserConflicts(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("UserConflicts() failed: %v", err)
	}
	if ids == nil {
		t.Error("UserConflicts() returned nil, want empty slice")
	}
}

func TestReadConflict_Missing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadConflict(context.Background(), "conflict_404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ReadConflict() = %v, want ErrNotFound", err)
	}
}
