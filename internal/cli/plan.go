package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/metrics"
	"github.com/roach88/renderplan/internal/planner"
	"github.com/roach88/renderplan/internal/store"
	"github.com/roach88/renderplan/internal/timecode"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Select     string
	Port       string
	From       string
	To         string
	Expand     bool
	Urgency    string
	BreakPoint string
	ChunkLimit int
	Journal    string
	Metrics    bool
}

// PlannedJob is one job in the plan output.
type PlannedJob struct {
	Seq      int64  `json:"seq"`
	Frame    int64  `json:"frame"`
	Depth    int    `json:"depth"`
	Node     string `json:"node"`
	Mark     uint64 `json:"mark"`
	Kind     string `json:"kind"`
	Nominal  string `json:"nominal"`
	Deadline string `json:"deadline"`
	Hash     string `json:"hash"`
}

// PlanOutput is the result of the plan command.
type PlanOutput struct {
	StreamID string             `json:"stream_id"`
	Fixture  string             `json:"fixture"`
	Port     string             `json:"port"`
	Range    string             `json:"range"`
	Urgency  string             `json:"urgency"`
	Chunks   int                `json:"chunks"`
	Jobs     []PlannedJob       `json:"jobs"`
	Journal  string             `json:"journal,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <fixture>",
		Short: "Plan the jobs of a frame range",
		Long: `Plan the render jobs of one calculation stream.

Every frame starting in [--from, --to) is looked up in the fixture's
segmentation; the job ticket attached to --port yields the frame's job
and, with --expand, its prerequisites depth first. Time-bound fixtures
get a deadline per job.

Exit codes:
  0 - Plan produced
  2 - Command error (fixture invalid, unknown port, journal unwritable)

Examples:
  renderplan plan playout.cue --from 200ms --to 300ms
  renderplan plan playout.cue --to 2s --urgency asap --expand=false
  renderplan plan playout.cue --to 1s --journal plan.db --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Select, "select", "", "fixture name when the file declares several")
	cmd.Flags().StringVar(&opts.Port, "port", "", "model port (default: first declared port)")
	cmd.Flags().StringVar(&opts.From, "from", "0s", "start of the frame range")
	cmd.Flags().StringVar(&opts.To, "to", "", "end of the frame range, exclusive (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().BoolVar(&opts.Expand, "expand", true, "expand prerequisites")
	cmd.Flags().StringVar(&opts.Urgency, "urgency", "", "override urgency (asap|nice|timebound)")
	cmd.Flags().StringVar(&opts.BreakPoint, "break-point", "", "dispatch in chunks of this length")
	cmd.Flags().IntVar(&opts.ChunkLimit, "chunk-limit", 0, "maximum jobs per chunk (0: unlimited)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record the plan in this SQLite journal")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "report planning metrics")

	return cmd
}

func (o *PlanOptions) request() (planner.Request, error) {
	req := planner.Request{Port: o.Port, Expand: o.Expand, Urgency: o.Urgency, ChunkLimit: o.ChunkLimit}
	var err error
	if req.From, err = timecode.Parse(o.From); err != nil {
		return req, fmt.Errorf("--from: %w", err)
	}
	if req.To, err = timecode.Parse(o.To); err != nil {
		return req, fmt.Errorf("--to: %w", err)
	}
	if o.BreakPoint != "" {
		if req.BreakPoint, err = timecode.Parse(o.BreakPoint); err != nil {
			return req, fmt.Errorf("--break-point: %w", err)
		}
	}
	if o.ChunkLimit < 0 {
		return req, fmt.Errorf("--chunk-limit must not be negative")
	}
	return req, nil
}

func runPlan(ctx context.Context, opts *PlanOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)

	req, err := opts.request()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
	}
	model, err := loadModel(path, opts.Select)
	if err != nil {
		return failLoad(f, err)
	}
	f.VerboseLog("Loaded fixture %s (%d nodes, %d segments)", model.Name, len(model.Nodes), model.Segmentation.Len())

	popts := []planner.Option{planner.WithLogger(opts.Logger(cmd.ErrOrStderr()))}
	var reg *prometheus.Registry
	if opts.Metrics {
		reg = prometheus.NewRegistry()
		popts = append(popts, planner.WithObserver(metrics.NewRecorder(reg)))
	}
	if opts.Journal != "" {
		journal, err := store.Open(opts.Journal)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, err, nil)
		}
		defer journal.Close()
		popts = append(popts, planner.WithJournal(journal))
	}

	res, err := planner.New(model, popts...).Plan(ctx, req)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodePlanFailed, err, nil)
	}

	out := PlanOutput{
		StreamID: res.StreamID,
		Fixture:  res.Fixture,
		Port:     res.Port,
		Range:    res.Range.String(),
		Urgency:  res.Timings.Urgency.String(),
		Chunks:   res.Chunks,
		Jobs:     plannedJobs(res.Jobs, nodeNames(model)),
		Journal:  opts.Journal,
	}
	if reg != nil {
		if out.Metrics, err = metrics.Snapshot(reg); err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, err, nil)
		}
	}
	return f.Success(out, func(w io.Writer) { writePlanText(w, out) })
}

func plannedJobs(jobs []engine.ScheduledJob, names map[uint64]string) []PlannedJob {
	out := make([]PlannedJob, len(jobs))
	for i, j := range jobs {
		key := j.Job.Key()
		node := "nop"
		if !j.Job.IsNOP() {
			node = names[key.Seed]
		}
		out[i] = PlannedJob{
			Seq:      j.Seq,
			Frame:    j.FrameNr,
			Depth:    j.Depth,
			Node:     node,
			Mark:     key.Seed,
			Kind:     j.Job.Kind().String(),
			Nominal:  j.Job.NominalTime().String(),
			Deadline: j.Deadline.String(),
			Hash:     strconv.FormatUint(j.Job.Hash(), 16),
		}
	}
	return out
}

func writePlanText(w io.Writer, out PlanOutput) {
	fmt.Fprintf(w, "stream %s: fixture %s, port %s, %s, %s\n",
		out.StreamID, out.Fixture, out.Port, out.Range, out.Urgency)
	for _, j := range out.Jobs {
		fmt.Fprintf(w, "  #%-4d F%-5d %s%s(%d) %s @%s ⧐ %s\n",
			j.Seq, j.Frame, strings.Repeat("  ", j.Depth), j.Node, j.Mark, j.Kind, j.Nominal, j.Deadline)
	}
	fmt.Fprintf(w, "%d jobs in %d chunk(s)\n", len(out.Jobs), out.Chunks)
	if out.Journal != "" {
		fmt.Fprintf(w, "journaled to %s\n", out.Journal)
	}
	if len(out.Metrics) > 0 {
		keys := make([]string, 0, len(out.Metrics))
		for k := range out.Metrics {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fmt.Fprintln(w, "metrics:")
		for _, k := range keys {
			fmt.Fprintf(w, "  %s %g\n", k, out.Metrics[k])
		}
	}
}

// requireFile turns a missing file into a command error.
func requireFile(f *OutputFormatter, path, what string) error {
	if _, err := os.Stat(path); err != nil {
		return f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("%s not found: %s", what, path), nil)
	}
	return nil
}
