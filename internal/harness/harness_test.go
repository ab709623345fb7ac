package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SingleDeviceFlow(t *testing.T) {
	scenario := &Scenario{
		Name:        "single_device",
		Description: "register, sync, complete",
		Steps: []Step{
			{Op: OpRegister, User: "alice", Name: "Phone", Class: "mobile"},
			{Op: OpStart, User: "alice", Device: "device_1"},
			{Op: OpSubmit, Session: "session_1", Device: "device_1", DataType: "settings", Payload: `{"theme":"dark"}`},
			{Op: OpComplete, Session: "session_1"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, "device_1", result.Trace[0].Result["device"])
	assert.Equal(t, "session_1", result.Trace[1].Result["session"])
	assert.Equal(t, "entry_1", result.Trace[2].Result["entry"])
	assert.Empty(t, result.Trace[2].Result["conflict"])
	assert.Equal(t, int64(1), result.Counts.Devices)
	assert.Equal(t, int64(1), result.Counts.Sessions)
	assert.Equal(t, int64(1), result.Counts.Entries)
	assert.Equal(t, int64(0), result.Counts.Conflicts)
}

func TestRun_ConflictDetected(t *testing.T) {
	scenario := &Scenario{
		Name:        "divergence",
		Description: "two devices write different payloads for the same record",
		Steps: []Step{
			{Op: OpRegister, User: "alice", Name: "Phone", Class: "mobile"},
			{Op: OpRegister, User: "alice", Name: "Laptop", Class: "desktop"},
			{Op: OpStart, User: "alice", Device: "device_1"},
			{Op: OpSubmit, Session: "session_1", Device: "device_1", DataType: "bookmarks", Payload: "a"},
			{Op: OpComplete, Session: "session_1"},
			{Op: OpStart, User: "alice", Device: "device_2"},
			{Op: OpSubmit, Session: "session_2", Device: "device_2", DataType: "bookmarks", Payload: "b"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	last := result.Trace[len(result.Trace)-1]
	assert.Equal(t, "entry_2", last.Result["entry"])
	assert.Equal(t, "conflict_1", last.Result["conflict"])
	assert.Equal(t, int64(1), result.Counts.Conflicts)
}

func TestRun_ExpectedErrorMatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_owner",
		Description: "starting a session on someone else's device fails",
		Steps: []Step{
			{Op: OpRegister, User: "alice", Name: "Phone", Class: "mobile"},
			{Op: OpStart, User: "bob", Device: "device_1", Expect: "UNAUTHORIZED"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, "UNAUTHORIZED", result.Trace[1].Error)
}

func TestRun_UnexpectedSuccessFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "should_have_failed",
		Description: "an expect clause on a succeeding step fails the scenario",
		Steps: []Step{
			{Op: OpRegister, User: "alice", Name: "Phone", Class: "mobile", Expect: "VALIDATION"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "succeeded")
}

func TestRun_WrongErrorCodeFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_code",
		Description: "expecting the wrong error code fails the scenario",
		Steps: []Step{
			{Op: OpStart, User: "alice", Device: "device_1", Expect: "UNAUTHORIZED"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	// device_1 does not exist, so the step fails NOT_FOUND.
	assert.False(t, result.Pass)
	assert.Equal(t, "NOT_FOUND", result.Trace[0].Error)
}

func TestRun_AdminResolves(t *testing.T) {
	scenario := &Scenario{
		Name:        "admin_resolution",
		Description: "the configured admin may resolve another user's conflict",
		Admin:       "ops",
		Steps: []Step{
			{Op: OpRegister, User: "alice", Name: "Phone", Class: "mobile"},
			{Op: OpRegister, User: "alice", Name: "Laptop", Class: "desktop"},
			{Op: OpStart, User: "alice", Device: "device_1"},
			{Op: OpSubmit, Session: "session_1", Device: "device_1", DataType: "notes", Payload: "a"},
			{Op: OpComplete, Session: "session_1"},
			{Op: OpStart, User: "alice", Device: "device_2"},
			{Op: OpSubmit, Session: "session_2", Device: "device_2", DataType: "notes", Payload: "b"},
			{Op: OpResolve, Conflict: "conflict_1", Policy: "merge_data", Winner: "entry_2", Resolver: "ops"},
			{Op: OpComplete, Session: "session_2"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}
