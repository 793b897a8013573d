package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/datastore"
	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded comparison runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root, "")
			if err != nil {
				return err
			}
			db, err := a.history(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.StorageConfig.HistoryListLimit
			}
			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), runViews(runs))
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultHistoryListLimit, "Maximum number of runs to list (0 for all)")
	return cmd
}

type runView struct {
	TaskID      string    `json:"task_id"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"started_at"`
	Duration    string    `json:"duration,omitempty"`
	OldFileName string    `json:"old_file_name,omitempty"`
	NewFileName string    `json:"new_file_name,omitempty"`
	Total       int       `json:"total"`
	Deletes     int       `json:"deletes"`
	Inserts     int       `json:"inserts"`
	ReportPath  string    `json:"report_path,omitempty"`
	Error       string    `json:"error,omitempty"`
}

func runViews(runs []datastore.RunRecord) []runView {
	views := make([]runView, 0, len(runs))
	for _, r := range runs {
		v := runView{
			TaskID:      r.TaskID,
			Status:      r.Status,
			StartedAt:   r.StartedAt,
			OldFileName: r.OldFileName,
			NewFileName: r.NewFileName,
			Total:       r.TotalCount,
			Deletes:     r.DeleteCount,
			Inserts:     r.InsertCount,
			ReportPath:  r.ReportPath.String,
			Error:       r.ErrorMessage.String,
		}
		if d := r.Duration(); d > 0 {
			v.Duration = d.Round(time.Second).String()
		}
		views = append(views, v)
	}
	return views
}

func printRuns(w io.Writer, runs []datastore.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSTATUS\tSTARTED\tDURATION\tDIFFS (-/+)\tREPORT")
	for _, v := range runViews(runs) {
		report := v.ReportPath
		if report == "" {
			report = v.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d (%d/%d)\t%s\n",
			v.TaskID, statusColor(v.Status).Sprint(v.Status), v.StartedAt.Local().Format("2006-01-02 15:04:05"),
			orDash(v.Duration), v.Total, v.Deletes, v.Inserts, orDash(report))
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
