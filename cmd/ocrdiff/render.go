package main

import (
	"os"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/aleister1102/ocrdiff/internal/models"
	"github.com/aleister1102/ocrdiff/internal/taskapi"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	resultFile string
	imagesDir  string
	oldDir     string
	newDir     string
	outputDir  string
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a saved comparison result offline",
		Long: `Reads a canvas-result payload saved to disk and renders it with page
images from a local directory. No request is sent to the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(root, "")
			if err != nil {
				return err
			}
			result, err := loadResultFile(opts.resultFile)
			if err != nil {
				return err
			}
			opts.apply(a.cfg, result)

			orch, cleanup, err := a.orchestrator(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := orch.Render(cmd.Context(), result)
			if err != nil {
				return err
			}
			return printOutcome(cmd.OutOrStdout(), root.jsonOutput, outcome)
		},
	}
	cmd.Flags().StringVarP(&opts.resultFile, "result", "r", "", "Path to the saved comparison result JSON")
	cmd.Flags().StringVarP(&opts.imagesDir, "images", "i", ".", "Directory holding the page images")
	cmd.Flags().StringVar(&opts.oldDir, "old-dir", "old", "Old document page directory, relative to --images")
	cmd.Flags().StringVar(&opts.newDir, "new-dir", "new", "New document page directory, relative to --images")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "Report output directory (overrides the config file)")
	_ = cmd.MarkFlagRequired("result")
	return cmd
}

// apply switches the image source to the local directory and points both
// documents at their page folders.
func (o *renderOptions) apply(cfg *config.GlobalConfig, result *models.CompareResult) {
	cfg.ImageConfig.Mode = config.ImageModeEmbedded
	cfg.ImageConfig.LocalDir = o.imagesDir
	result.OldImageBaseURL = o.oldDir
	result.NewImageBaseURL = o.newDir
	if o.outputDir != "" {
		cfg.ReporterConfig.OutputDir = o.outputDir
	}
}

func loadResultFile(path string) (*models.CompareResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read result file %s", path)
	}
	result, err := taskapi.DecodeCompareResult(data)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to parse result file %s", path)
	}
	return result, nil
}
