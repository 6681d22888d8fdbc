// Command fedigraph collects Mastodon activity, builds diffusion and
// friendship graphs from it and reports their structure.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dd0wney/fedigraph/pkg/config"
	"github.com/dd0wney/fedigraph/pkg/logging"
	"github.com/dd0wney/fedigraph/pkg/metrics"
	"github.com/dd0wney/fedigraph/pkg/pipeline"
)

// Build-time variables set via ldflags.
var (
	version   = "0.1.0"
	commit    = ""
	buildDate = ""
)

var (
	flagConfig   string
	flagLogLevel string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("fedigraph version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("fedigraph version %s-dev", version)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "fedigraph",
		Short:        "Diffusion and friendship graph analysis for Mastodon",
		Version:      versionString(),
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug|info|warn|error (env: LOG_LEVEL)")

	rootCmd.AddCommand(newCollectCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config and applies --log-level.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// newPipeline wires configuration, logging and metrics into a pipeline.
// The returned closer flushes the log file.
func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, io.Closer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := logging.Open(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	p, err := pipeline.New(cfg, logger.With(logging.Component("cli"), logging.Operation(cmd.Name())), metrics.DefaultRegistry())
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return p, closer, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}
