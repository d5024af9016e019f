package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/termtap/termtap/internal/meta"
	"github.com/termtap/termtap/internal/model"
)

var (
	metaTaskType    string
	metaDescription string
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Read or write a session's task type and description",
}

var metadataGetCmd = &cobra.Command{
	Use:   "get <session-name>",
	Short: "Print a session's metadata record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		md, err := eng.Meta.Get(ctx, args[0])
		if errors.Is(err, meta.ErrNotFound) {
			// Absence of metadata is not an error: the session simply
			// defaults to oneshot behavior.
			emitJSON(map[string]any{
				"status":       "success",
				"session_name": args[0],
				"task_type":    model.TaskOneshot,
				"message":      "no metadata recorded; session defaults to oneshot",
			})
			return nil
		}
		if err != nil {
			return err
		}
		emitJSON(md)
		return nil
	},
}

var metadataSetCmd = &cobra.Command{
	Use:   "set <session-name>",
	Short: "Record a session's task type and/or description",
	Long: `Record how a session should be waited on. The task type must be one of
interactive, background, watcher, or oneshot; anything else is rejected
without touching the stored record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if metaTaskType == "" && metaDescription == "" {
			return fmt.Errorf("nothing to set: provide --task-type and/or --description")
		}

		taskType := model.TaskOneshot
		if metaTaskType != "" {
			tt, err := model.ParseTaskType(metaTaskType)
			if err != nil {
				return err
			}
			taskType = tt
		}

		ctx := cmd.Context()
		eng, _, cleanup, err := buildEngine(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if metaTaskType == "" {
			// Description-only update: keep the stored task type.
			if md, err := eng.Meta.Get(ctx, args[0]); err == nil && md.TaskType != "" {
				taskType = md.TaskType
			}
		}
		if err := eng.Meta.Set(ctx, args[0], taskType, metaDescription); err != nil {
			return err
		}

		md, err := eng.Meta.Get(ctx, args[0])
		if err != nil {
			return err
		}
		emitJSON(md)
		return nil
	},
}

func init() {
	metadataSetCmd.Flags().StringVar(&metaTaskType, "task-type", "", "task type: oneshot, background, watcher, interactive")
	metadataSetCmd.Flags().StringVar(&metaDescription, "description", "", "human-readable note stored with the session")
	metadataCmd.AddCommand(metadataGetCmd)
	metadataCmd.AddCommand(metadataSetCmd)
	rootCmd.AddCommand(metadataCmd)
}
