package main

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a comparison task and its files on the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			a, err := loadApp(root, taskID)
			if err != nil {
				return err
			}
			client, err := a.taskClient()
			if err != nil {
				return err
			}
			if err := client.DeleteTask(cmd.Context(), taskID); err != nil {
				return err
			}
			a.logger.Info().Str("task_id", taskID).Msg("Deleted comparison task")
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"task_id": taskID, "status": "deleted"})
			}
			_, err = successColor.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", taskID)
			return err
		},
	}
}
