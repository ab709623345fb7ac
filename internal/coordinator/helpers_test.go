package coordinator

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
	"github.com/roach88/devsync/internal/testutil"
)

// newTestCoordinator builds a coordinator over a fresh in-memory store with
// deterministic clock and event identities.
func newTestCoordinator(t *testing.T, admin string) *Coordinator {
	t.Helper()
	return newTestCoordinatorWithClock(t, admin, testutil.NewSteppingClock(0))
}

func newTestCoordinatorWithClock(t *testing.T, admin string, clock Clock) *Coordinator {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	coord, err := New(Config{
		Store:    st,
		Admin:    admin,
		Clock:    clock,
		EventIDs: NewSequenceSource(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return coord
}

// registerTestDevice registers a mobile device for user.
func registerTestDevice(t *testing.T, coord *Coordinator, user string) string {
	t.Helper()
	id, err := coord.RegisterDevice(context.Background(), user, record.DeviceMobile, "Test Device", []string{"read", "write"})
	require.NoError(t, err)
	return id
}

// startTestSession opens a session for the user's device.
func startTestSession(t *testing.T, coord *Coordinator, user, deviceID string) string {
	t.Helper()
	id, err := coord.StartSession(context.Background(), user, deviceID)
	require.NoError(t, err)
	return id
}

// makeConflict drives two devices through divergent submissions for the
// same logical record and returns the conflict and both entry identities.
func makeConflict(t *testing.T, coord *Coordinator, user string) (conflictID, priorEntryID, newEntryID string) {
	t.Helper()
	ctx := context.Background()

	first := registerTestDevice(t, coord, user)
	second := registerTestDevice(t, coord, user)

	s1 := startTestSession(t, coord, user, first)
	priorEntryID, cid, err := coord.SubmitEntry(ctx, s1, first, "notes", "fp-a", "payload-a")
	require.NoError(t, err)
	require.Empty(t, cid)
	require.NoError(t, coord.CompleteSession(ctx, s1, true, ""))

	s2 := startTestSession(t, coord, user, second)
	newEntryID, conflictID, err = coord.SubmitEntry(ctx, s2, second, "notes", "fp-b", "payload-b")
	require.NoError(t, err)
	require.NotEmpty(t, conflictID)
	return conflictID, priorEntryID, newEntryID
}
