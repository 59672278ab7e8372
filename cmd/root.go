package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jjenkins/clinicmap/internal/config"
	"github.com/jjenkins/clinicmap/internal/logging"
	"github.com/jjenkins/clinicmap/internal/service"
)

var (
	configFile string
	verbose    bool
	quiet      bool
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
)

// errWritesFailed signals a batch in which at least one remote write failed
var errWritesFailed = errors.New("one or more writes failed")

var rootCmd = &cobra.Command{
	Use:   "clinicmap",
	Short: "Maintain the clinic directory dataset",
	Long: `clinicmap audits and repairs the clinic records in Airtable, enriches
them with coordinates and nearby transit, regenerates the published map
dataset, and serves the clinic filters over HTTP.

Commands that write to Airtable preview their changes unless --execute is given.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./.clinicmap.yaml or $HOME/.clinicmap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
}

// setupCommand loads configuration and builds the logger before any command runs
func setupCommand(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	level := logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	logger = logging.New(logging.Options{
		Level:   level,
		Verbose: verbose,
		Quiet:   quiet,
		Format:  cfg.LogFormat,
		Output:  cfg.LogOutput,
	})
	return nil
}

// newAirtableClient validates the credential before any network activity
func newAirtableClient() (*service.AirtableClient, error) {
	client, err := service.NewAirtableClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return client, nil
}

// checkWrites turns per-record failures into a non-zero exit
func checkWrites(stats *service.WriteStats) error {
	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errWritesFailed, stats.Failed, stats.Total)
	}
	return nil
}
