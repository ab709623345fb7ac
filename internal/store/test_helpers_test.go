package store

import (
	"context"
	"testing"

	"github.com/roach88/devsync/internal/record"
)

// openTestStore creates a fresh in-memory store for a test.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestDevice inserts a device for user and returns its identity.
func createTestDevice(t *testing.T, s *Store, user string) string {
	t.Helper()
	d := record.Device{
		User:        user,
		Class:       record.DeviceMobile,
		Name:        "Test Device",
		Active:      true,
		CreatedAt:   100,
		LastSeen:    100,
		SyncVersion: 1,
	}
	id, err := s.CreateDevice(context.Background(), &d)
	if err != nil {
		t.Fatalf("CreateDevice() failed: %v", err)
	}
	return id
}

// createTestSession inserts an in-progress session for the device.
func createTestSession(t *testing.T, s *Store, user, deviceID string) string {
	t.Helper()
	sess := record.SyncSession{
		User:      user,
		DeviceID:  deviceID,
		StartedAt: 200,
		Status:    record.StatusInProgress,
	}
	id, err := s.CreateSession(context.Background(), &sess, 200)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	return id
}

// appendTestEntry appends a completed entry and returns its identity.
func appendTestEntry(t *testing.T, s *Store, user, deviceID, sessionID, dataType, fingerprint string, submittedAt int64) string {
	t.Helper()
	entry := record.SyncEntry{
		User:        user,
		DeviceID:    deviceID,
		DataType:    dataType,
		Fingerprint: fingerprint,
		SubmittedAt: submittedAt,
		Status:      record.StatusCompleted,
		Payload:     "payload",
	}
	id, _, err := s.AppendEntry(context.Background(), &entry, nil, sessionID)
	if err != nil {
		t.Fatalf("AppendEntry() failed: %v", err)
	}
	return id
}
