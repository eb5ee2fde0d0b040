// Package cli implements the midas command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries the configuration and logger built by the root command's
// PersistentPreRunE. Subcommands read it inside RunE.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
		output   string
		a        app
	)

	rootCmd := &cobra.Command{
		Use:           "midas",
		Short:         "Knowledge-graph ingestion toolkit",
		Long:          "Extracts CIViC, cBioPortal and 1000 Genomes data, normalises identifiers and therapies, and exports KGX and bulk-load graph files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(output); err != nil {
				return err
			}
			if err := config.LoadDotEnv(envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// Apply precedence: flag > env > default
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg)
			for _, w := range cfg.Warnings {
				a.logger.Warn(w)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (env: MIDAS_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format: table, json")

	rootCmd.AddGroup(
		&cobra.Group{ID: "extract", Title: "Extraction:"},
		&cobra.Group{ID: "graph", Title: "Graph building:"},
		&cobra.Group{ID: "ops", Title: "Operations:"},
	)

	for _, c := range []*cobra.Command{newCIViCCmd(&a), newTherapyCmd(&a), newCBioPortalCmd(&a), newVariantsCmd(&a)} {
		c.GroupID = "extract"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{newKGXCmd(&a), newBulkCmd(&a), newFixHeadersCmd(&a), newNormalizeCmd()} {
		c.GroupID = "graph"
		rootCmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{newPipelineCmd(&a), newRunsCmd(&a), newPublishCmd(&a), newLoadCmd(&a)} {
		c.GroupID = "ops"
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(newVersionCmd(), newConfigCmd(&a), newCommandsCmd())

	return rootCmd
}

// newLogger builds the root logger: text on w by default, JSON when
// MIDAS_LOG_FORMAT=json.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.JSONLogs() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
