package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/project-packager/internal/config"
	"github.com/oshokin/project-packager/internal/logger"
	"github.com/oshokin/project-packager/internal/service/packager"
	"github.com/oshokin/project-packager/internal/version"
)

var (
	// configPath to the optional settings YAML file.
	configPath string
	// outputDir overrides the directory receiving the archive.
	outputDir string
	// logLevel is the minimum level of printed messages.
	logLevel string
	// dryRun lists entries without writing the archive.
	dryRun bool
	// force skips the running-instance check.
	force bool

	// rootCmd represents the base command for packaging a project directory.
	rootCmd = &cobra.Command{
		Use:          "project-packager [root]",
		Short:        "Archive a project directory into a timestamped ZIP file",
		Long:         "Regenerate README.md, requirements.txt and uploads/.gitkeep, then pack the project tree into <prefix>_YYYYMMDD_HHMMSS.zip, leaving out version control metadata, caches, hidden directories and local environment files.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath: configPath,
				DryRun:     dryRun,
				Force:      force,
			}

			if len(args) > 0 {
				options.Root = args[0]
			}

			// The flag is relative to the caller, not to the packaged root.
			if outputDir != "" {
				abs, err := filepath.Abs(outputDir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}

				options.OutputDir = abs
			}

			_, err := packager.CreatePackage(ctx, options)

			return err
		},
	}

	// initConfigCmd writes the built-in settings so they can be edited.
	initConfigCmd = &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default settings file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", path)

			return nil
		},
	}
)

// Execute runs the project-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(initConfigCmd)

	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings file (built-in defaults when empty)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory receiving the archive (defaults to the root)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "regenerate project files and list entries without writing the archive")
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "run even if another packager process is alive")
}
