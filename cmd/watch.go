package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/termtap/termtap/internal/watch"
)

var watchRefresh time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Interactively monitor sessions in a terminal UI",
	Long: `Open a full-screen monitor showing every session, its task type, and a
live preview of its most recent command output. From the monitor you can
run a command in a session (e), kill one (x), or refresh (r).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		tui := &watch.TUI{
			Engine:          eng,
			RefreshInterval: watchRefresh,
		}
		return tui.Run(ctx)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchRefresh, "refresh", 3*time.Second, "auto-refresh interval (0 disables)")
	rootCmd.AddCommand(watchCmd)
}
