package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/devsync/internal/coordinator"
	"github.com/roach88/devsync/internal/record"
	"github.com/roach88/devsync/internal/store"
	"github.com/roach88/devsync/internal/testutil"
)

// TraceEvent records the outcome of one scenario step.
type TraceEvent struct {
	Step   int               `json:"step"`
	Op     string            `json:"op"`
	Result map[string]string `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"` // error code on failure
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expect clause.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists expect-clause mismatches. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Counts holds the final aggregate entity counters.
	Counts coordinator.Counts `json:"counts"`
}

// Run executes a scenario against a fresh coordinator and returns the
// trace.
//
// Each scenario runs in its own in-memory database with a stepping clock
// and sequential audit event identities, so traces are identical across
// runs.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	defer st.Close()

	coord, err := coordinator.New(coordinator.Config{
		Store:    st,
		Admin:    scenario.Admin,
		Clock:    testutil.NewSteppingClock(0),
		EventIDs: coordinator.NewSequenceSource(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return nil, fmt.Errorf("build coordinator: %w", err)
	}

	ctx := context.Background()
	result := &Result{Pass: true, Trace: []TraceEvent{}}

	for i, step := range scenario.Steps {
		event := TraceEvent{Step: i + 1, Op: step.Op}

		outcome, err := executeStep(ctx, coord, step)
		if err != nil {
			code := string(coordinator.ErrCode(err))
			if code == "" {
				return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Op, err)
			}
			event.Error = code
			if step.Expect != code {
				result.Pass = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("step %d (%s): got error %s, want %q", i+1, step.Op, code, step.Expect))
			}
		} else {
			event.Result = outcome
			if step.Expect != "" {
				result.Pass = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("step %d (%s): succeeded, want error %s", i+1, step.Op, step.Expect))
			}
		}

		result.Trace = append(result.Trace, event)
	}

	counts, err := coord.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("final counts: %w", err)
	}
	result.Counts = counts

	return result, nil
}

// executeStep dispatches one step to the coordinator. The returned map
// holds the identities the operation produced, if any.
func executeStep(ctx context.Context, coord *coordinator.Coordinator, step Step) (map[string]string, error) {
	switch step.Op {
	case OpRegister:
		id, err := coord.RegisterDevice(ctx, step.User, record.DeviceClass(step.Class), step.Name, step.Capabilities)
		if err != nil {
			return nil, err
		}
		return map[string]string{"device": id}, nil

	case OpDeactivate:
		return nil, coord.DeactivateDevice(ctx, step.User, step.Device)

	case OpCapabilities:
		return nil, coord.UpdateDeviceCapabilities(ctx, step.User, step.Device, step.Capabilities)

	case OpStart:
		id, err := coord.StartSession(ctx, step.User, step.Device)
		if err != nil {
			return nil, err
		}
		return map[string]string{"session": id}, nil

	case OpSubmit:
		fingerprint := step.Fingerprint
		if fingerprint == "" {
			fingerprint = record.Fingerprint(step.Payload)
		}
		entryID, conflictID, err := coord.SubmitEntry(ctx, step.Session, step.Device, step.DataType, fingerprint, step.Payload)
		if err != nil {
			return nil, err
		}
		outcome := map[string]string{"entry": entryID}
		if conflictID != "" {
			outcome["conflict"] = conflictID
		}
		return outcome, nil

	case OpResolve:
		return nil, coord.ResolveConflict(ctx, step.Conflict, record.Policy(step.Policy), step.Winner, step.Resolver)

	case OpComplete:
		return nil, coord.CompleteSession(ctx, step.Session, !step.Failed, step.Error)

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}
