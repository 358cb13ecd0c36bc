package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/renderplan/internal/planner"
	"github.com/roach88/renderplan/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Select  string
	Journal string
	Stream  string
}

// StreamVerification is the verify outcome of one journaled stream.
type StreamVerification struct {
	StreamID   string   `json:"stream_id"`
	Reproduced bool     `json:"reproduced"`
	Journaled  int      `json:"journaled"`
	Replayed   int      `json:"replayed"`
	Mismatches []string `json:"mismatches,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// VerifyResult holds the verify outcome of all checked streams.
type VerifyResult struct {
	Fixture    string               `json:"fixture"`
	Reproduced bool                 `json:"reproduced"`
	Streams    []StreamVerification `json:"streams"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <fixture> --journal <db>",
		Short: "Replay journaled streams and compare",
		Long: `Plan journaled streams again from the fixture and compare the jobs
with the journal, position by position.

Without --stream every stream of the selected fixture is verified.
A stream planned from a different version of the fixture fails.

Exit codes:
  0 - All streams reproduced
  1 - A stream differs from its journal
  2 - Command error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Select, "select", "", "fixture name when the file declares several")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal written by plan --journal")
	cmd.Flags().StringVar(&opts.Stream, "stream", "", "verify only this stream")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runVerify(opts *VerifyOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd)

	model, err := loadModel(path, opts.Select)
	if err != nil {
		return failLoad(f, err)
	}
	if err := requireFile(f, opts.Journal, "journal"); err != nil {
		return err
	}
	journal, err := store.Open(opts.Journal)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, err, nil)
	}
	defer journal.Close()

	ids := []string{opts.Stream}
	if opts.Stream == "" {
		streams, err := journal.Streams(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, err, nil)
		}
		ids = ids[:0]
		for _, st := range streams {
			if st.Fixture == model.Name {
				ids = append(ids, st.ID)
			}
		}
		if len(ids) == 0 {
			return f.Fail(ExitCommandError, ErrCodeNotFound,
				fmt.Errorf("journal %s has no streams of fixture %s", opts.Journal, model.Name), nil)
		}
	}

	p := planner.New(model, planner.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	result := VerifyResult{Fixture: model.Name, Reproduced: true}
	for _, id := range ids {
		f.VerboseLog("Verifying stream: %s", id)
		sv := StreamVerification{StreamID: id}
		v, err := p.Verify(ctx, journal, id)
		var changed *planner.FixtureChangedError
		switch {
		case errors.Is(err, store.ErrStreamNotFound):
			return f.Fail(ExitCommandError, ErrCodeNotFound, err, nil)
		case errors.As(err, &changed):
			sv.Error = err.Error()
		case err != nil:
			return f.Fail(ExitCommandError, ErrCodeJournal, err, nil)
		default:
			sv.Journaled, sv.Replayed = v.Journaled, v.Replayed
			sv.Reproduced = v.OK()
			for _, m := range v.Mismatches {
				sv.Mismatches = append(sv.Mismatches, m.String())
			}
		}
		if !sv.Reproduced {
			result.Reproduced = false
		}
		result.Streams = append(result.Streams, sv)
	}

	if !result.Reproduced {
		if err := f.Error(ErrCodeNotReproduced, "journal not reproduced", result); err != nil {
			return err
		}
		if f.Format != "json" {
			writeVerifyText(f.Writer, result)
		}
		return NewExitError(ExitFailure, "journal not reproduced")
	}
	return f.Success(result, func(w io.Writer) { writeVerifyText(w, result) })
}

func writeVerifyText(w io.Writer, r VerifyResult) {
	for _, s := range r.Streams {
		switch {
		case s.Error != "":
			fmt.Fprintf(w, "✗ %s: %s\n", s.StreamID, s.Error)
		case s.Reproduced:
			fmt.Fprintf(w, "✓ %s (%d jobs)\n", s.StreamID, s.Journaled)
		default:
			fmt.Fprintf(w, "✗ %s (journal %d jobs, replay %d jobs)\n", s.StreamID, s.Journaled, s.Replayed)
			for _, m := range s.Mismatches {
				fmt.Fprintf(w, "  %s\n", m)
			}
		}
	}
}
