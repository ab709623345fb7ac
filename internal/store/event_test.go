package store

import (
	"context"
	"testing"

	"github.com/roach88/devsync/internal/record"
)

func TestUserHistory_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	events := []record.Event{
		{ID: "evt-1", User: "alice", Action: "device_registered", SubjectID: "device_1", At: 10},
		{ID: "evt-2", User: "alice", Action: "session_started", SubjectID: "session_1", At: 20},
		{ID: "evt-3", User: "bob", Action: "device_registered", SubjectID: "device_2", At: 15},
		{ID: "evt-4", User: "alice", Action: "session_completed", SubjectID: "session_1", At: 30},
	}
	for _, e := range events {
		if err := s.AppendEvent(ctx, e); err != nil {
			t.Fatalf("AppendEvent(%s) failed: %v", e.ID, err)
		}
	}

	got, err := s.UserHistory(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("UserHistory() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("UserHistory() returned %d events, want 3", len(got))
	}
	wantOrder := []string{"evt-4", "evt-2", "evt-1"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("history[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestUserHistory_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		e := record.Event{
			ID:     record.FormatID("evt", int64(i)),
			User:   "alice",
			Action: "entry_submitted",
			At:     int64(i),
		}
		if err := s.AppendEvent(ctx, e); err != nil {
			t.Fatalf("AppendEvent() failed: %v", err)
		}
	}

	got, err := s.UserHistory(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("UserHistory() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("UserHistory(limit=2) returned %d events", len(got))
	}
	if got[0].At != 5 || got[1].At != 4 {
		t.Errorf("timestamps = %d, %d, want 5, 4", got[0].At, got[1].At)
	}
}

func TestUserHistory_EmptyNotNil(t *testing.T) {
	s := openTestStore(t)

	got, err := s.UserHistory(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("UserHistory() failed: %v", err)
	}
	if got == nil {
		t.Error("UserHistory() returned nil, want empty slice")
	}
}
