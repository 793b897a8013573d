package main

import (
	"github.com/spf13/cobra"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Follow a comparison task and write its report",
		Long: `Polls the task until the backend finishes OCR and comparison, logging
progress along the way, then renders the result into an HTML report and
records the run in the history database.`,
		Args: cobra.ExactArgs(1),
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
			orch, cleanup, err := a.orchestrator(cmd.Context(), client)
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := orch.Watch(cmd.Context(), taskID)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), root.jsonOutput, outcome)
		},
	}
}
