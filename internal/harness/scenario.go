package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/renderplan/internal/timecode"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the CUE fixture file. Relative paths are resolved
	// against the scenario file's directory.
	Fixture string `yaml:"fixture"`

	// Select picks one fixture when the file declares several.
	Select string `yaml:"select,omitempty"`

	// Splices are split-splice edits applied after the fixture's own
	// segments, in order.
	Splices []SpliceStep `yaml:"splices,omitempty"`

	// Plan is the planning request.
	Plan PlanStep `yaml:"plan"`

	// Execute triggers every dispatched job after planning.
	Execute bool `yaml:"execute,omitempty"`

	// Assertions validate the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// SpliceStep is one split-splice edit. Omitted bounds extend to the
// neighbouring segments.
type SpliceStep struct {
	Start string            `yaml:"start,omitempty"`
	After string            `yaml:"after,omitempty"`
	Exits map[string]string `yaml:"exits"`
}

// PlanStep describes the calculation stream to plan.
type PlanStep struct {
	Port       string `yaml:"port,omitempty"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
	Expand     bool   `yaml:"expand,omitempty"`
	Urgency    string `yaml:"urgency,omitempty"`
	BreakPoint string `yaml:"break_point,omitempty"`
	ChunkLimit int    `yaml:"chunk_limit,omitempty"`
}

// Assertion validates the trace or the segmentation.
type Assertion struct {
	// Type specifies the assertion type:
	// - "job_count": number of jobs, optionally filtered by node, kind, depth
	// - "job_order": nodes first appear in the given order
	// - "deadline": every job of node (at frame, if given) has this deadline
	// - "trace": the whole trace, as J(mark|nominal⧐deadline) entries
	// - "segmentation": the rendered segmentation
	// - "invoked": number of invocations of node (needs execute: true)
	Type string `yaml:"type"`

	Node  string `yaml:"node,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
	Depth *int   `yaml:"depth,omitempty"`
	Frame *int64 `yaml:"frame,omitempty"`

	Count    int      `yaml:"count,omitempty"`
	Nodes    []string `yaml:"nodes,omitempty"`
	Deadline string   `yaml:"deadline,omitempty"`
	Jobs     []string `yaml:"jobs,omitempty"`
	Render   string   `yaml:"render,omitempty"`
}

// Assertion type constants.
const (
	AssertJobCount     = "job_count"
	AssertJobOrder     = "job_order"
	AssertDeadline     = "deadline"
	AssertTrace        = "trace"
	AssertSegmentation = "segmentation"
	AssertInvoked      = "invoked"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) {
		scenario.Fixture = filepath.Join(filepath.Dir(path), scenario.Fixture)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios lists the .yaml and .yml files of dir in lexical order.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	return paths, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}
	if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
		return fmt.Errorf("fixture file not found: %s", s.Fixture)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Plan.From == "" || s.Plan.To == "" {
		return fmt.Errorf("plan: from and to are required")
	}
	for _, f := range []struct{ name, value string }{
		{"from", s.Plan.From},
		{"to", s.Plan.To},
		{"break_point", s.Plan.BreakPoint},
	} {
		if f.value == "" {
			continue
		}
		t, err := timecode.Parse(f.value)
		if err != nil {
			return fmt.Errorf("plan.%s: %w", f.name, err)
		}
		if t.IsInfinite() && f.name != "break_point" {
			return fmt.Errorf("plan.%s must be finite, got %s", f.name, t)
		}
	}
	if s.Plan.ChunkLimit < 0 {
		return fmt.Errorf("plan.chunk_limit must be non-negative")
	}

	for i, sp := range s.Splices {
		if len(sp.Exits) == 0 {
			return fmt.Errorf("splices[%d]: exits are required", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertJobCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for job_count", index)
		}
	case AssertJobOrder:
		if len(a.Nodes) == 0 {
			return fmt.Errorf("assertions[%d]: nodes list is required for job_order", index)
		}
	case AssertDeadline:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for deadline", index)
		}
		if _, err := timecode.Parse(a.Deadline); err != nil {
			return fmt.Errorf("assertions[%d]: deadline: %w", index, err)
		}
	case AssertTrace:
		if a.Jobs == nil {
			return fmt.Errorf("assertions[%d]: jobs list is required for trace", index)
		}
	case AssertSegmentation:
		if a.Render == "" {
			return fmt.Errorf("assertions[%d]: render is required for segmentation", index)
		}
	case AssertInvoked:
		if a.Node == "" {
			return fmt.Errorf("assertions[%d]: node is required for invoked", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
