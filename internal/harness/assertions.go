package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/renderplan/internal/timecode"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] F%d d%d %s %s\n", ev.Seq, ev.Frame, ev.Depth, ev.Node, ev.Short())
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages. An empty slice means all assertions held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertJobCount:
		return assertJobCount(result.Trace, a)
	case AssertJobOrder:
		return assertJobOrder(result.Trace, a)
	case AssertDeadline:
		return assertDeadline(result.Trace, a)
	case AssertTrace:
		return assertTrace(result.Trace, a)
	case AssertSegmentation:
		return assertSegmentation(result.Segments, a)
	case AssertInvoked:
		return assertInvoked(result, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// matches applies the optional node, kind, depth and frame filters.
func matches(ev TraceEvent, a Assertion) bool {
	if a.Node != "" && ev.Node != a.Node {
		return false
	}
	if a.Kind != "" && ev.Kind != a.Kind {
		return false
	}
	if a.Depth != nil && ev.Depth != *a.Depth {
		return false
	}
	if a.Frame != nil && ev.Frame != *a.Frame {
		return false
	}
	return true
}

func describe(a Assertion) string {
	var parts []string
	if a.Node != "" {
		parts = append(parts, "node="+a.Node)
	}
	if a.Kind != "" {
		parts = append(parts, "kind="+a.Kind)
	}
	if a.Depth != nil {
		parts = append(parts, fmt.Sprintf("depth=%d", *a.Depth))
	}
	if a.Frame != nil {
		parts = append(parts, fmt.Sprintf("frame=%d", *a.Frame))
	}
	if len(parts) == 0 {
		return "all jobs"
	}
	return strings.Join(parts, " ")
}

func assertJobCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if matches(ev, a) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertJobCount,
			Expected: fmt.Sprintf("%d jobs (%s)", a.Count, describe(a)),
			Actual:   fmt.Sprintf("%d jobs", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertJobOrder checks that nodes first appear in the given order.
// Other jobs may come in between.
func assertJobOrder(trace []TraceEvent, a Assertion) error {
	first := make(map[string]int)
	for i, ev := range trace {
		if _, seen := first[ev.Node]; !seen {
			first[ev.Node] = i
		}
	}
	for _, n := range a.Nodes {
		if _, ok := first[n]; !ok {
			return &AssertionError{
				Type:     AssertJobOrder,
				Expected: fmt.Sprintf("all nodes present: %v", a.Nodes),
				Actual:   fmt.Sprintf("missing node: %s", n),
				Trace:    trace,
			}
		}
	}
	for i := 1; i < len(a.Nodes); i++ {
		prev, curr := a.Nodes[i-1], a.Nodes[i]
		if first[prev] >= first[curr] {
			return &AssertionError{
				Type:     AssertJobOrder,
				Expected: fmt.Sprintf("nodes in order: %v", a.Nodes),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, first[prev]+1, curr, first[curr]+1),
				Trace: trace,
			}
		}
	}
	return nil
}

func assertDeadline(trace []TraceEvent, a Assertion) error {
	want, err := timecode.Parse(a.Deadline)
	if err != nil {
		return err
	}
	found := 0
	for _, ev := range trace {
		if !matches(ev, a) {
			continue
		}
		found++
		if ev.Deadline != want.String() {
			return &AssertionError{
				Type:     AssertDeadline,
				Expected: fmt.Sprintf("%s due by %s", describe(a), want),
				Actual:   fmt.Sprintf("job #%d (frame %d) due by %s", ev.Seq, ev.Frame, ev.Deadline),
				Trace:    trace,
			}
		}
	}
	if found == 0 {
		return &AssertionError{
			Type:     AssertDeadline,
			Expected: fmt.Sprintf("jobs matching %s", describe(a)),
			Actual:   "none planned",
			Trace:    trace,
		}
	}
	return nil
}

func assertTrace(trace []TraceEvent, a Assertion) error {
	got := make([]string, len(trace))
	for i, ev := range trace {
		got[i] = ev.Short()
	}
	want := strings.Join(a.Jobs, "-")
	if have := strings.Join(got, "-"); have != want {
		return &AssertionError{
			Type:     AssertTrace,
			Expected: want,
			Actual:   have,
		}
	}
	return nil
}

func assertSegmentation(render string, a Assertion) error {
	if render != a.Render {
		return &AssertionError{
			Type:     AssertSegmentation,
			Expected: a.Render,
			Actual:   render,
		}
	}
	return nil
}

func assertInvoked(result *Result, a Assertion) error {
	if got := result.Invocations[a.Node]; got != a.Count {
		return &AssertionError{
			Type:     AssertInvoked,
			Expected: fmt.Sprintf("%s invoked %d times", a.Node, a.Count),
			Actual:   fmt.Sprintf("%d invocations", got),
		}
	}
	return nil
}
