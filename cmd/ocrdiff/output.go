package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/aleister1102/ocrdiff/internal/orchestrator"
	"github.com/fatih/color"
)

// fatih/color disables itself when stdout is not a terminal.
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	dimColor     = color.New(color.FgHiBlack)
)

func statusColor(status string) *color.Color {
	switch models.TaskState(status) {
	case models.TaskCompleted:
		return successColor
	case models.TaskFailed, models.TaskTimeout:
		return errorColor
	case models.TaskCancelled:
		return warningColor
	default:
		return dimColor
	}
}

type outcomeView struct {
	TaskID      string `json:"task_id"`
	OldFileName string `json:"old_file_name"`
	NewFileName string `json:"new_file_name"`
	Total       int    `json:"total"`
	Deletes     int    `json:"deletes"`
	Inserts     int    `json:"inserts"`
	ReportPath  string `json:"report_path"`
}

func printOutcome(w io.Writer, asJSON bool, outcome *orchestrator.RunOutcome) error {
	view := outcomeView{
		TaskID:      outcome.TaskID,
		OldFileName: outcome.Result.OldFileName,
		NewFileName: outcome.Result.NewFileName,
		Total:       outcome.Counts.Total,
		Deletes:     outcome.Counts.Deletes,
		Inserts:     outcome.Counts.Inserts,
		ReportPath:  outcome.ReportPath,
	}
	if asJSON {
		return writeJSON(w, view)
	}
	if _, err := fmt.Fprintf(w, "%s vs %s: %d differences (%d deleted, %d inserted)\n",
		view.OldFileName, view.NewFileName, view.Total, view.Deletes, view.Inserts); err != nil {
		return err
	}
	_, err := successColor.Fprintf(w, "Report: %s\n", view.ReportPath)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
