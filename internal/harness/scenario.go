package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a sequence of coordinator
// operations with expected outcomes.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Admin is the administrator identity for the coordinator under test.
	// Empty means no administrator.
	Admin string `yaml:"admin,omitempty"`

	// Steps is the ordered list of operations to execute.
	Steps []Step `yaml:"steps"`
}

// Step is one coordinator operation.
//
// Which fields apply depends on Op; unused fields are ignored. Expect names
// the error code the step must fail with; an empty Expect means the step
// must succeed.
type Step struct {
	Op string `yaml:"op"`

	User         string   `yaml:"user,omitempty"`
	Device       string   `yaml:"device,omitempty"`
	Name         string   `yaml:"name,omitempty"`
	Class        string   `yaml:"class,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`

	Session string `yaml:"session,omitempty"`

	DataType    string `yaml:"type,omitempty"`
	Fingerprint string `yaml:"fingerprint,omitempty"`
	Payload     string `yaml:"payload,omitempty"`

	Conflict string `yaml:"conflict,omitempty"`
	Policy   string `yaml:"policy,omitempty"`
	Winner   string `yaml:"winner,omitempty"`
	Resolver string `yaml:"resolver,omitempty"`

	Failed bool   `yaml:"failed,omitempty"`
	Error  string `yaml:"error,omitempty"`

	Expect string `yaml:"expect,omitempty"`
}

// Step operation names.
const (
	OpRegister     = "register"
	OpDeactivate   = "deactivate"
	OpCapabilities = "capabilities"
	OpStart        = "start"
	OpSubmit       = "submit"
	OpResolve      = "resolve"
	OpComplete     = "complete"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and every step
// names a known operation.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpRegister:
			if step.User == "" || step.Name == "" || step.Class == "" {
				return fmt.Errorf("steps[%d]: register requires user, name, and class", i)
			}
		case OpDeactivate, OpCapabilities:
			if step.User == "" || step.Device == "" {
				return fmt.Errorf("steps[%d]: %s requires user and device", i, step.Op)
			}
		case OpStart:
			if step.User == "" || step.Device == "" {
				return fmt.Errorf("steps[%d]: start requires user and device", i)
			}
		case OpSubmit:
			if step.Session == "" || step.Device == "" || step.DataType == "" {
				return fmt.Errorf("steps[%d]: submit requires session, device, and type", i)
			}
		case OpResolve:
			if step.Conflict == "" || step.Policy == "" || step.Winner == "" || step.Resolver == "" {
				return fmt.Errorf("steps[%d]: resolve requires conflict, policy, winner, and resolver", i)
			}
		case OpComplete:
			if step.Session == "" {
				return fmt.Errorf("steps[%d]: complete requires session", i)
			}
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}
	return nil
}
