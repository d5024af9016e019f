package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	execWindow string
	execPane   int
)

var execCmd = &cobra.Command{
	Use:   "exec <session-name> <command...>",
	Short: "Run a command in a session's pane behind a fresh marker",
	Long: `Send a command to the session's pane. A unique marker line is appended
to the session log before the keys are sent, so a later capture or wait
can isolate exactly this command's output. exec returns immediately; it
never waits for the command to finish.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := args[0]
		command := strings.Join(args[1:], " ")

		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		target := paneTarget(session, execWindow, execPane)
		result, err := eng.Execute(ctx, session, target, command)
		if err != nil {
			return err
		}
		emitJSON(result)
		return nil
	},
}

func init() {
	execCmd.Flags().StringVar(&execWindow, "window", "", "target window (default: active window)")
	execCmd.Flags().IntVar(&execPane, "pane", 0, "target pane index within the window")
	rootCmd.AddCommand(execCmd)
}
