package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/renderplan/internal/fixture"
)

// SegmentInfo describes one segment of a segmentation.
type SegmentInfo struct {
	Start string            `json:"start"`
	After string            `json:"after"`
	Exits map[string]string `json:"exits"`
}

// SegmentsOutput is the result of the segments command.
type SegmentsOutput struct {
	Fixture  string        `json:"fixture"`
	Render   string        `json:"render"`
	Segments []SegmentInfo `json:"segments"`
	Problems []string      `json:"problems,omitempty"`
}

// NewSegmentsCommand creates the segments command.
func NewSegmentsCommand(rootOpts *RootOptions) *cobra.Command {
	var selectName string

	cmd := &cobra.Command{
		Use:   "segments <fixture>",
		Short: "Show the segmentation of a fixture",
		Long: `Build a fixture and print its segmentation: the ordered, gap-free
segments covering the whole time axis and the exit node each segment
attaches to every model port (∅ for none).

Examples:
  renderplan segments playout.cue
  renderplan segments fixtures/ --select playout --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			model, err := loadModel(args[0], selectName)
			if err != nil {
				return failLoad(f, err)
			}
			out := describeSegments(model)
			return f.Success(out, func(w io.Writer) { writeSegmentsText(w, out) })
		},
	}

	cmd.Flags().StringVar(&selectName, "select", "", "fixture name when the file declares several")
	return cmd
}

func describeSegments(m *fixture.Model) SegmentsOutput {
	ports := m.Ports.Ports()
	out := SegmentsOutput{
		Fixture:  m.Name,
		Render:   m.Segmentation.Render(),
		Problems: m.Segmentation.Assess(),
	}
	for seg := range m.Segmentation.All() {
		info := SegmentInfo{
			Start: seg.Start().String(),
			After: seg.After().String(),
			Exits: make(map[string]string, len(ports)),
		}
		for i, p := range ports {
			label := "∅"
			if n := seg.Attachment().At(i); !n.IsEmpty() {
				label = n.Label()
			}
			info.Exits[string(p)] = label
		}
		out.Segments = append(out.Segments, info)
	}
	return out
}

func writeSegmentsText(w io.Writer, out SegmentsOutput) {
	fmt.Fprintf(w, "%s %s\n", out.Fixture, out.Render)
	for _, s := range out.Segments {
		exits := make([]string, 0, len(s.Exits))
		for port, node := range s.Exits {
			exits = append(exits, port+"="+node)
		}
		slices.Sort(exits)
		fmt.Fprintf(w, "  [%s, %s)  %s\n", s.Start, s.After, strings.Join(exits, " "))
	}
	for _, p := range out.Problems {
		fmt.Fprintf(w, "  ! %s\n", p)
	}
}
