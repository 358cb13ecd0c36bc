package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(i int) *int       { return &i }
func int64p(i int64) *int64 { return &i }

func sampleResult() *Result {
	r := NewResult()
	r.Segments = "├[-∞_250ms[[250ms_+∞[┤"
	r.Trace = []TraceEvent{
		{Seq: 1, Frame: 5, Depth: 0, Node: "out", Mark: 11, Kind: "calc", Nominal: "200ms", Deadline: "1s180ms"},
		{Seq: 2, Frame: 5, Depth: 1, Node: "grade", Mark: 22, Kind: "calc", Nominal: "200ms", Deadline: "1s150ms"},
		{Seq: 3, Frame: 5, Depth: 2, Node: "decode", Mark: 33, Kind: "load", Nominal: "200ms", Deadline: "1s110ms"},
		{Seq: 4, Frame: 6, Depth: 0, Node: "out", Mark: 11, Kind: "calc", Nominal: "240ms", Deadline: "1s220ms"},
	}
	r.Invocations["out"] = 2
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertJobCount, Count: 4},
		{Type: AssertJobCount, Node: "out", Count: 2},
		{Type: AssertJobCount, Kind: "load", Count: 1},
		{Type: AssertJobCount, Depth: intp(1), Count: 1},
		{Type: AssertJobCount, Frame: int64p(6), Count: 1},
		{Type: AssertJobCount, Node: "mix", Count: 0},
		{Type: AssertJobOrder, Nodes: []string{"out", "decode"}},
		{Type: AssertDeadline, Node: "out", Frame: int64p(5), Deadline: "1s180ms"},
		{Type: AssertDeadline, Node: "decode", Deadline: "1.11s"},
		{Type: AssertTrace, Jobs: []string{
			"J(11|200ms⧐1s180ms)", "J(22|200ms⧐1s150ms)", "J(33|200ms⧐1s110ms)", "J(11|240ms⧐1s220ms)",
		}},
		{Type: AssertSegmentation, Render: "├[-∞_250ms[[250ms_+∞[┤"},
		{Type: AssertInvoked, Node: "out", Count: 2},
		{Type: AssertInvoked, Node: "grade", Count: 0},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"count", Assertion{Type: AssertJobCount, Kind: "calc", Count: 1}, "Expected: 1 jobs (kind=calc)"},
		{"order", Assertion{Type: AssertJobOrder, Nodes: []string{"decode", "grade"}}, "decode (pos 3) should be before grade (pos 2)"},
		{"order missing", Assertion{Type: AssertJobOrder, Nodes: []string{"out", "mix"}}, "missing node: mix"},
		{"deadline", Assertion{Type: AssertDeadline, Node: "out", Deadline: "1s180ms"}, "job #4 (frame 6) due by 1s220ms"},
		{"deadline none", Assertion{Type: AssertDeadline, Node: "mix", Deadline: "1s"}, "none planned"},
		{"trace", Assertion{Type: AssertTrace, Jobs: []string{"J(11|200ms⧐1s180ms)"}}, "Assertion failed: trace"},
		{"segmentation", Assertion{Type: AssertSegmentation, Render: "├[-∞~+∞[┤"}, "Actual: ├[-∞_250ms[[250ms_+∞[┤"},
		{"invoked", Assertion{Type: AssertInvoked, Node: "out", Count: 1}, "out invoked 1 times"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if assert.Len(t, errs, 1) {
				assert.Contains(t, errs[0], "assertions[0]")
				assert.Contains(t, errs[0], tt.want)
			}
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertJobCount,
		Expected: "2 jobs",
		Actual:   "1 jobs",
		Trace:    sampleResult().Trace[:1],
	}
	assert.Equal(t,
		"Assertion failed: job_count\n  Expected: 2 jobs\n  Actual: 1 jobs\n\nFull trace:\n  [1] F5 d0 out J(11|200ms⧐1s180ms)\n",
		err.Error())
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
