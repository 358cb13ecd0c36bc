package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/renderplan/internal/store"
)

// StreamInfo summarizes one journaled stream.
type StreamInfo struct {
	ID          string `json:"id"`
	Fixture     string `json:"fixture"`
	FixtureHash string `json:"fixture_hash"`
	Port        string `json:"port"`
	Range       string `json:"range"`
	Urgency     string `json:"urgency"`
	Expand      bool   `json:"expand"`
	Jobs        int    `json:"jobs"`
}

// NewStreamsCommand creates the streams command.
func NewStreamsCommand(rootOpts *RootOptions) *cobra.Command {
	var journalPath string

	cmd := &cobra.Command{
		Use:   "streams --journal <db>",
		Short: "List journaled calculation streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			if err := requireFile(f, journalPath, "journal"); err != nil {
				return err
			}
			journal, err := store.Open(journalPath)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeJournal, err, nil)
			}
			defer journal.Close()

			infos, err := listStreams(cmd, journal)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeJournal, err, nil)
			}
			return f.Success(infos, func(w io.Writer) {
				for _, s := range infos {
					fmt.Fprintf(w, "%s  %s:%s %s %s  %d jobs\n", s.ID, s.Fixture, s.Port, s.Range, s.Urgency, s.Jobs)
				}
			})
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "SQLite journal written by plan --journal")
	_ = cmd.MarkFlagRequired("journal")
	return cmd
}

func listStreams(cmd *cobra.Command, journal *store.Store) ([]StreamInfo, error) {
	ctx := cmd.Context()
	streams, err := journal.Streams(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]StreamInfo, 0, len(streams))
	for _, st := range streams {
		n, err := journal.CountJobs(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, StreamInfo{
			ID:          st.ID,
			Fixture:     st.Fixture,
			FixtureHash: st.FixtureHash,
			Port:        st.Port,
			Range:       fmt.Sprintf("[%s, %s)", st.Start, st.After),
			Urgency:     st.Urgency,
			Expand:      st.Expand,
			Jobs:        n,
		})
	}
	return infos, nil
}
