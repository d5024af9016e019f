package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/termtap/termtap/internal/engine"
)

var (
	waitTimeout    time.Duration
	waitNoMetadata bool
	waitWindow     string
	waitPane       int
)

var waitCmd = &cobra.Command{
	Use:   "wait <session-name>",
	Short: "Wait for the session's current command to complete",
	Long: `Poll the session until its current command completes, honoring the
session's task type. Oneshot sessions are polled until the shell prompt
returns or the timeout expires; background and watcher sessions return
immediately with status "running"; interactive sessions are polled
briefly, then handed off.

A timeout never kills or disturbs the command. The marker is not
regenerated, so calling wait again resumes waiting on the same command
and returns its full output once it finishes. A pane that has died is
reported as an error, never as a timeout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session := args[0]

		ctx := cmd.Context()
		eng, cfg, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		timeout := waitTimeout
		if !cmd.Flags().Changed("timeout") {
			timeout = cfg.DefaultTimeoutDuration
		}

		result, err := eng.Wait(ctx, session, engine.WaitOpts{
			Target:          paneTarget(session, waitWindow, waitPane),
			Timeout:         timeout,
			RespectMetadata: !waitNoMetadata,
		})
		if err != nil {
			return err
		}
		emitJSON(result)
		return nil
	},
}

func init() {
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 30*time.Second, "maximum time to poll before returning (default from config)")
	waitCmd.Flags().BoolVar(&waitNoMetadata, "no-respect-metadata", false, "ignore the session's task type and wait as if oneshot")
	waitCmd.Flags().StringVar(&waitWindow, "window", "", "target window (default: active window)")
	waitCmd.Flags().IntVar(&waitPane, "pane", 0, "target pane index within the window")
	rootCmd.AddCommand(waitCmd)
}
