package cmd

import (
	"github.com/spf13/cobra"
)

var killKeepLog bool

var killCmd = &cobra.Command{
	Use:   "kill <session-name>",
	Short: "Terminate a session and clean up its log and metadata",
	Long: `Kill the session, stop piping its output, delete its log file, and drop
its metadata record. --keep-log preserves the log file for post-mortem
inspection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := eng.Kill(ctx, args[0], killKeepLog)
		if err != nil {
			return err
		}
		emitJSON(result)
		return nil
	},
}

func init() {
	killCmd.Flags().BoolVar(&killKeepLog, "keep-log", false, "preserve the session log file")
	rootCmd.AddCommand(killCmd)
}
