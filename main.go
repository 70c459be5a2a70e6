// package main is the entry point for the pivotal-to-linear migration tool
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alan/pivotal-to-linear/cmd/assign"
	"github.com/alan/pivotal-to-linear/cmd/migrate"
)

func main() {
	var verbose bool
	var logFormat string

	rootCmd := &cobra.Command{
		Use:   "pivotal-to-linear",
		Short: "Migrate a Pivotal Tracker project into a Linear team",
		Long: `pivotal-to-linear replays a Pivotal Tracker project (epics, stories,
comments, labels, states and attachments) into a Linear team, reading
either the live Tracker API or a CSV export. Reruns are idempotent.

Configuration comes from the environment (a local .env file is honored):
PIVOTAL_API_TOKEN, PIVOTAL_PROJECT_ID, LINEAR_API_TOKEN, LINEAR_TEAM_NAME,
and optionally LINEAR_TIMEZONE, PIVOTAL_CSV_PATH and GITHUB_TOKEN.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger(verbose, logFormat)
		},
	}

	// Add global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "text", "Log format (text, json)")

	rootCmd.AddCommand(migrate.NewMigrateCmd())
	rootCmd.AddCommand(assign.NewAssignCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(verbose bool, format string) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}

	slog.SetDefault(slog.New(handler))
}
