// Package policy loads conflict-resolution policy configuration from CUE
// files.
//
// A policy directory declares the administrator identity and a default
// resolution policy per data type:
//
//	admin: "ops"
//	policy: {
//		course_progress: "merge_data"
//		settings:        "last_write_wins"
//	}
//
// The CLI consults this configuration when --policy is omitted; the
// coordinator itself never reads files.
package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/devsync/internal/record"
)

// Config is the validated policy configuration.
type Config struct {
	// Admin is the designated administrator identity. May be empty.
	Admin string

	// Defaults maps a data type to its default resolution policy.
	Defaults map[string]record.Policy
}

// For returns the default policy for a data type, or ok=false if none is
// configured.
func (c *Config) For(dataType string) (record.Policy, bool) {
	p, ok := c.Defaults[dataType]
	return p, ok
}

// LoadError describes a policy configuration problem.
type LoadError struct {
	Path    string // config path or CUE field
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("policy config: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("policy config: %s", e.Message)
}

// Load reads and validates all CUE files in dir.
func Load(dir string) (*Config, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Path: dir, Message: "directory not found"}
	}
	if err != nil {
		return nil, &LoadError{Path: dir, Message: err.Error()}
	}
	if !info.IsDir() {
		return nil, &LoadError{Path: dir, Message: "not a directory"}
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, Message: fmt.Sprintf("scanning: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Path: dir, Message: "no CUE files found"}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Path: dir, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Path: dir, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Path: dir, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return decode(value)
}

// decode extracts and validates the config fields from a CUE value.
func decode(value cue.Value) (*Config, error) {
	cfg := &Config{Defaults: make(map[string]record.Policy)}

	adminVal := value.LookupPath(cue.ParsePath("admin"))
	if adminVal.Exists() {
		admin, err := adminVal.String()
		if err != nil {
			return nil, &LoadError{Path: "admin", Message: fmt.Sprintf("must be a string: %v", err)}
		}
		cfg.Admin = admin
	}

	policyVal := value.LookupPath(cue.ParsePath("policy"))
	if policyVal.Exists() {
		iter, err := policyVal.Fields()
		if err != nil {
			return nil, &LoadError{Path: "policy", Message: fmt.Sprintf("must be a struct: %v", err)}
		}
		for iter.Next() {
			dataType := iter.Label()
			name, err := iter.Value().String()
			if err != nil {
				return nil, &LoadError{Path: "policy." + dataType, Message: fmt.Sprintf("must be a string: %v", err)}
			}
			p := record.Policy(name)
			if !p.IsValid() {
				return nil, &LoadError{Path: "policy." + dataType, Message: fmt.Sprintf("unknown policy %q", name)}
			}
			cfg.Defaults[dataType] = p
		}
	}

	return cfg, nil
}

// findCUEFiles walks the directory and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
