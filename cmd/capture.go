package cmd

import (
	"github.com/spf13/cobra"

	"github.com/termtap/termtap/internal/engine"
)

var (
	captureFull   bool
	captureWindow string
	capturePane   int
	captureStart  int
	captureEnd    int
)

var captureCmd = &cobra.Command{
	Use:   "capture <session-name>",
	Short: "Read the output of the session's most recent command",
	Long: `Capture the output produced since the session's most recent marker.

Short output (20 lines or fewer) is returned in full. Longer output is
triaged: recognized error idioms (Python tracebacks, compiler errors,
test failures, generic error lines) are extracted with surrounding
context; otherwise the first and last 10 lines are returned. --full
bypasses triage and returns every line regardless of size.

When the session has no marker yet, or --start/--end request a literal
pane history range, capture degrades to a snapshot of the pane buffer,
tagged extraction_method "capture_pane". Capturing never consumes
output; the same segment can be read again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := args[0]

		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		opts := engine.CaptureOpts{
			Target:    paneTarget(session, captureWindow, capturePane),
			ForceFull: captureFull,
		}
		if cmd.Flags().Changed("start") {
			opts.StartLine = &captureStart
		}
		if cmd.Flags().Changed("end") {
			opts.EndLine = &captureEnd
		}

		result, err := eng.Capture(ctx, session, opts)
		if err != nil {
			return err
		}
		emitJSON(result)
		return nil
	},
}

func init() {
	captureCmd.Flags().BoolVar(&captureFull, "full", false, "return all lines, bypassing extraction triage")
	captureCmd.Flags().StringVar(&captureWindow, "window", "", "target window (default: active window)")
	captureCmd.Flags().IntVar(&capturePane, "pane", 0, "target pane index within the window")
	captureCmd.Flags().IntVar(&captureStart, "start", 0, "first pane history line to capture (negative reaches into scrollback)")
	captureCmd.Flags().IntVar(&captureEnd, "end", 0, "last pane history line to capture")
	rootCmd.AddCommand(captureCmd)
}
