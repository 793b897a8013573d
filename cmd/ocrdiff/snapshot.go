package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/aleister1102/ocrdiff/internal/orchestrator"
	"github.com/spf13/cobra"
)

type snapshotOptions struct {
	diff       int
	filter     string
	resultFile string
	imagesDir  string
	pngPath    string
	svgPath    string
}

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	opts := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot [task-id]",
		Short: "Write the viewport with one difference selected",
		Long: `Selects a difference the way a gutter click would, then writes the
composed viewport as PNG and the connector overlay as SVG. The result is
fetched from the backend, or read from --result for offline use.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.resultFile == "" {
				return common.NewValidationError("task_id", "", "a task id or --result is required")
			}
			taskID := ""
			if len(args) == 1 {
				taskID = args[0]
			}
			a, err := loadApp(root, taskID)
			if err != nil {
				return err
			}

			var result *models.CompareResult
			if opts.resultFile != "" {
				if result, err = loadResultFile(opts.resultFile); err != nil {
					return err
				}
				render := renderOptions{imagesDir: opts.imagesDir, oldDir: "old", newDir: "new"}
				render.apply(a.cfg, result)
			} else {
				client, err := a.taskClient()
				if err != nil {
					return err
				}
				if result, err = client.GetCompareResult(cmd.Context(), taskID); err != nil {
					return err
				}
			}

			orch, cleanup, err := a.orchestrator(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			session, err := orch.OpenSession(cmd.Context(), result)
			if err != nil {
				return err
			}
			defer session.Close()

			if opts.filter != "" && opts.filter != string(models.FilterAll) {
				if err := session.SetFilter(cmd.Context(), models.FilterMode(opts.filter)); err != nil {
					return err
				}
			}
			return opts.write(cmd, session)
		},
	}
	cmd.Flags().IntVarP(&opts.diff, "diff", "d", 1, "1-based difference number to select")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Difference filter: ALL, DELETE or INSERT")
	cmd.Flags().StringVarP(&opts.resultFile, "result", "r", "", "Read the result from a saved JSON file")
	cmd.Flags().StringVarP(&opts.imagesDir, "images", "i", ".", "Page image directory used with --result")
	cmd.Flags().StringVarP(&opts.pngPath, "out", "o", "snapshot.png", "PNG output path")
	cmd.Flags().StringVar(&opts.svgPath, "svg", "", "Connector overlay SVG output path")
	return cmd
}

func (o *snapshotOptions) write(cmd *cobra.Command, session *orchestrator.Session) error {
	pngFile, err := os.Create(o.pngPath)
	if err != nil {
		return common.WrapErrorf(err, "failed to create %s", o.pngPath)
	}
	defer pngFile.Close()

	var svgFile *os.File
	if o.svgPath != "" {
		if svgFile, err = os.Create(o.svgPath); err != nil {
			return common.WrapErrorf(err, "failed to create %s", o.svgPath)
		}
		defer svgFile.Close()
	}

	var svgOut io.Writer
	if svgFile != nil {
		svgOut = svgFile
	}
	if err := session.WriteSnapshot(cmd.Context(), o.diff-1, pngFile, svgOut); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot of difference %d written to %s\n", o.diff, o.pngPath)
	if o.svgPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Connector overlay written to %s\n", o.svgPath)
	}
	return nil
}
