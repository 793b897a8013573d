package main

import (
	"os"

	"github.com/aleister1102/ocrdiff/internal/common"
	"github.com/aleister1102/ocrdiff/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(root))
	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file filled with the defaults",
		Long: `Writes every configuration section with its default values. The format
follows the extension: .yaml/.yml for YAML, anything else for JSON.
--base-url and --log-level are applied before writing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return common.NewValidationError("path", path, "file already exists, use --force to overwrite")
			}

			cfg := config.NewDefaultGlobalConfig()
			if root.baseURL != "" {
				cfg.APIConfig.BaseURL = root.baseURL
			}
			if root.logLevel != "" {
				cfg.LogConfig.LogLevel = root.logLevel
			}
			if err := config.ValidateConfig(cfg); err != nil {
				return err
			}

			bootstrap := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
			if err := config.SaveGlobalConfig(cfg, path, bootstrap); err != nil {
				return err
			}
			_, err := successColor.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
