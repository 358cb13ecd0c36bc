package compiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/renderplan/internal/ir"
	"github.com/roach88/renderplan/internal/timecode"
)

// Validation error codes (E100-E199)
const (
	// Fixture-level errors (E100-E109)
	ErrFixtureNameEmpty   = "E100" // fixture needs a name
	ErrInvalidFrameRate   = "E101" // frame rate missing or not positive
	ErrInvalidUrgency     = "E102" // unknown urgency
	ErrInvalidTime        = "E103" // unparsable time or duration
	ErrMissingDelivery    = "E104" // time-bound stream without delivery
	ErrNoPorts            = "E105" // at least one model port required
	ErrDuplicateName      = "E106" // duplicate port or node name
	ErrFloatTypeForbidden = "E107" // float rate or time

	// Node errors (E110-E119)
	ErrInvalidKind         = "E110" // unknown node kind
	ErrUnknownPrerequisite = "E111" // prerequisite not declared
	ErrNegativeRuntime     = "E112" // runtime below zero
	ErrPrerequisiteCycle   = "E113" // node graph is cyclic
	ErrInvalidMark         = "E114" // negative or duplicate mark

	// Segment errors (E120-E129)
	ErrUnknownPort     = "E120" // exit bound to an undeclared port
	ErrUnknownExitNode = "E121" // exit names an undeclared node
	ErrEmptySegment    = "E122" // start equals after
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidateFixture checks a compiled fixture against schema rules.
// Returns all errors found (does not fail-fast).
func ValidateFixture(spec *ir.FixtureSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	if strings.TrimSpace(spec.Name) == "" {
		add("name", ErrFixtureNameEmpty, "fixture name is required")
	}

	errs = append(errs, validateTimings(spec.Timings)...)

	// Ports
	if len(spec.Ports) == 0 {
		add("ports", ErrNoPorts, "at least one model port is required")
	}
	ports := make(map[string]bool, len(spec.Ports))
	for i, p := range spec.Ports {
		if ports[p] {
			add(fmt.Sprintf("ports[%d]", i), ErrDuplicateName, "duplicate port name: %q", p)
		}
		ports[p] = true
	}

	// Nodes
	nodes := make(map[string]bool, len(spec.Nodes))
	for _, n := range spec.Nodes {
		nodes[n.Name] = true
	}
	seen := make(map[string]bool, len(spec.Nodes))
	marks := make(map[int64]string)
	for i, n := range spec.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if seen[n.Name] {
			add(field+".name", ErrDuplicateName, "duplicate node name: %q", n.Name)
		}
		seen[n.Name] = true

		if !ir.ValidKinds[strings.ToLower(n.Kind)] {
			add(field+".kind", ErrInvalidKind, "unknown node kind %q (want calc, load or meta)", n.Kind)
		}
		if n.Runtime != "" {
			if d, err := time.ParseDuration(n.Runtime); err != nil {
				add(field+".runtime", ErrInvalidTime, "%v", err)
			} else if d < 0 {
				add(field+".runtime", ErrNegativeRuntime, "runtime must not be negative")
			}
		}
		if n.Mark < 0 {
			add(field+".mark", ErrInvalidMark, "mark must not be negative")
		} else if n.Mark > 0 {
			if other, dup := marks[n.Mark]; dup {
				add(field+".mark", ErrInvalidMark, "mark %d already used by node %q", n.Mark, other)
			}
			marks[n.Mark] = n.Name
		}
		for j, pre := range n.Prerequisites {
			if !nodes[pre] {
				add(fmt.Sprintf("%s.prerequisites[%d]", field, j), ErrUnknownPrerequisite,
					"node %q requires undeclared node %q", n.Name, pre)
			}
		}
	}
	for _, c := range AnalyzeCycles(spec) {
		add("nodes."+c.Path[0], ErrPrerequisiteCycle, "%s", c.Message)
	}

	// Segments
	for i, s := range spec.Segments {
		field := fmt.Sprintf("segments[%d]", i)
		start, startOK := validateTime(s.Start, field+".start", &errs)
		after, afterOK := validateTime(s.After, field+".after", &errs)
		if startOK && afterOK && s.Start != "" && s.After != "" && start == after {
			add(field, ErrEmptySegment, "segment [%s,%s) is empty", start, after)
		}
		for port, node := range s.Exits {
			if !ports[port] {
				add(field+".exits."+port, ErrUnknownPort, "undeclared port %q", port)
			}
			if !nodes[node] {
				add(field+".exits."+port, ErrUnknownExitNode, "undeclared node %q", node)
			}
		}
	}

	return errs
}

func validateTimings(ts ir.TimingsSpec) []ValidationError {
	var errs []ValidationError
	if strings.Contains(ts.FrameRate, ".") {
		errs = append(errs, ValidationError{
			Field:   "timings.frame_rate",
			Message: "float frame rates are forbidden - use a rational such as 30000/1001",
			Code:    ErrFloatTypeForbidden,
		})
	} else if _, err := timecode.ParseFrameRate(ts.FrameRate); err != nil {
		errs = append(errs, ValidationError{Field: "timings.frame_rate", Message: err.Error(), Code: ErrInvalidFrameRate})
	}

	urgency := strings.ToLower(ts.Urgency)
	if !ir.ValidUrgencies[urgency] {
		errs = append(errs, ValidationError{
			Field:   "timings.urgency",
			Message: fmt.Sprintf("unknown urgency %q (want asap, nice or timebound)", ts.Urgency),
			Code:    ErrInvalidUrgency,
		})
	}
	if urgency == "timebound" && ts.Delivery == "" {
		errs = append(errs, ValidationError{
			Field:   "timings.delivery",
			Message: "time-bound streams need a scheduled delivery",
			Code:    ErrMissingDelivery,
		})
	}

	if origin, ok := validateTime(ts.Origin, "timings.origin", &errs); ok && origin.IsInfinite() {
		errs = append(errs, ValidationError{
			Field:   "timings.origin",
			Message: fmt.Sprintf("origin must be finite, got %s", origin),
			Code:    ErrInvalidTime,
		})
	}
	validateTime(ts.Delivery, "timings.delivery", &errs)
	for _, l := range []struct{ field, value string }{
		{"timings.engine_latency", ts.EngineLatency},
		{"timings.output_latency", ts.OutputLatency},
	} {
		if l.value == "" {
			continue
		}
		if d, err := time.ParseDuration(l.value); err != nil {
			errs = append(errs, ValidationError{Field: l.field, Message: err.Error(), Code: ErrInvalidTime})
		} else if d < 0 {
			errs = append(errs, ValidationError{Field: l.field, Message: "latency must not be negative", Code: ErrInvalidTime})
		}
	}
	return errs
}

// validateTime parses an optional time, recording an error if malformed.
func validateTime(s, field string, errs *[]ValidationError) (timecode.Time, bool) {
	if s == "" {
		return 0, true
	}
	t, err := timecode.Parse(s)
	if err != nil {
		*errs = append(*errs, ValidationError{Field: field, Message: err.Error(), Code: ErrInvalidTime})
		return 0, false
	}
	return t, true
}
