package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures a scenario execution for golden comparison.
type TraceSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Trace        []TraceEvent   `json:"trace"`
	Counts       countsSnapshot `json:"counts"`
}

type countsSnapshot struct {
	Devices   int64 `json:"devices"`
	Entries   int64 `json:"entries"`
	Conflicts int64 `json:"conflicts"`
	Sessions  int64 `json:"sessions"`
}

// RunWithGolden executes a scenario and compares the trace against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
		Counts: countsSnapshot{
			Devices:   result.Counts.Devices,
			Entries:   result.Counts.Entries,
			Conflicts: result.Counts.Conflicts,
			Sessions:  result.Counts.Sessions,
		},
	}
	traceJSON, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	traceJSON = append(traceJSON, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
