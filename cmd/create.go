package cmd

import (
	"github.com/spf13/cobra"

	"github.com/termtap/termtap/internal/model"
)

var (
	createTaskType    string
	createDescription string
)

var createCmd = &cobra.Command{
	Use:   "create [session-name]",
	Short: "Create a detached session (or attach to an existing one)",
	Long: `Create a new detached session. With no name, a unique agent-<id> name
is generated. If the named session already exists it is reused rather
than failing, so callers can treat create as idempotent.

The optional task type records how this session should be waited on:

  oneshot      command runs to completion (default)
  background   server or daemon; wait returns immediately
  watcher      restart loop (file watcher); treated like background
  interactive  REPL or TUI; wait polls briefly then hands off`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var taskType model.TaskType
		if createTaskType != "" {
			tt, err := model.ParseTaskType(createTaskType)
			if err != nil {
				return err
			}
			taskType = tt
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}

		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := eng.Create(ctx, name, taskType, createDescription)
		if err != nil {
			return err
		}
		emitJSON(result)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createTaskType, "task-type", "", "task type: oneshot, background, watcher, interactive")
	createCmd.Flags().StringVar(&createDescription, "description", "", "human-readable note stored with the session")
	rootCmd.AddCommand(createCmd)
}
