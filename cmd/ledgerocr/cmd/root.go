package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/petropage/ledgerocr/internal/config"
	"github.com/petropage/ledgerocr/internal/ocr"
	"github.com/petropage/ledgerocr/internal/store"
	"github.com/petropage/ledgerocr/internal/version"
	"github.com/petropage/ledgerocr/internal/workflow"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledgerocr",
	Short: "Digitize handwritten petrol pump ledgers",
	Long: `ledgerocr turns photographs of handwritten petrol pump sales ledgers
into structured sales entries and daily reports.

The pipeline preprocesses the photograph, detects the table grid, reads
each cell with OCR, validates the extracted figures against business
rules and scores how much the result can be trusted.

Examples:
  ledgerocr page process photo.jpg
  ledgerocr batch ./uploads --workers 4 --format json
  ledgerocr report daily 2026-08-27`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().String("database-dsn", "", "postgres DSN; empty runs without a database")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		v, commit, date := version.Info()
		fmt.Fprintf(cmd.OutOrStdout(), "ledgerocr %s (commit: %s, built: %s)\n", v, commit, date)
	},
}

// loadConfig reads configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Logging.Level = "debug"
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	if dsn, _ := cmd.Flags().GetString("database-dsn"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildOrchestrator assembles the pipeline from configuration. The returned
// cleanup closes the store and the OCR engine.
func buildOrchestrator(ctx context.Context, cmd *cobra.Command) (*workflow.Orchestrator, store.Store, *slog.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := config.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	var st store.Store
	if cfg.Database.DSN != "" {
		st, err = store.NewPostgres(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	} else {
		st = store.NewMemory()
		logger.Debug("no database configured, using in-memory store")
	}

	engine, err := ocr.NewEngine(ocr.Config{
		Languages:   cfg.OCR.Languages,
		Whitelist:   cfg.OCR.Whitelist,
		PageSegMode: cfg.OCR.PageSegMode,
	})
	if err != nil {
		st.Close()
		return nil, nil, nil, nil, fmt.Errorf("initialize OCR engine: %w", err)
	}
	if !ocr.BackendAvailable() {
		logger.Warn("no OCR backend compiled in; cell contents will not be recognized")
	}

	cleanup := func() {
		if err := engine.Close(); err != nil {
			logger.Error("closing OCR engine", "error", err)
		}
		st.Close()
	}
	return workflow.New(cfg, st, engine, logger), st, logger, cleanup, nil
}
