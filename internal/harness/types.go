package harness

import "fmt"

// TraceEvent is one dispatched job as seen by assertions and golden files.
type TraceEvent struct {
	Seq      int64  `json:"seq"`
	Frame    int64  `json:"frame"`
	Depth    int    `json:"depth"`
	Node     string `json:"node"`
	Mark     uint64 `json:"mark"`
	Kind     string `json:"kind"`
	Nominal  string `json:"nominal"`
	Deadline string `json:"deadline"`
}

// Short renders the event as J(mark|nominal⧐deadline).
func (e TraceEvent) Short() string {
	return fmt.Sprintf("J(%d|%s⧐%s)", e.Mark, e.Nominal, e.Deadline)
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held and the replay matched.
	Pass bool `json:"pass"`

	StreamID string `json:"stream_id"`

	// Segments is the rendered segmentation the plan was made from.
	Segments string `json:"segments"`

	// Trace lists dispatched jobs in dispatch order.
	Trace []TraceEvent `json:"trace"`

	// Invocations counts triggered jobs per node (execute: true only).
	Invocations map[string]int `json:"invocations,omitempty"`

	// Errors holds assertion and replay failures.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceEvent{},
		Invocations: make(map[string]int),
		Errors:      []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
