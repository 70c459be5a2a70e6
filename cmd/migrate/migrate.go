// Package migrate implements the full migration command.
package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alan/pivotal-to-linear/internal/config"
	"github.com/alan/pivotal-to-linear/internal/export"
	"github.com/alan/pivotal-to-linear/internal/github"
	"github.com/alan/pivotal-to-linear/internal/linear"
	"github.com/alan/pivotal-to-linear/internal/migration"
	"github.com/alan/pivotal-to-linear/internal/pivotal"
	"github.com/alan/pivotal-to-linear/internal/source"
)

// NewMigrateCmd creates and returns the migrate command
func NewMigrateCmd() *cobra.Command {
	var dryRun bool
	var reportPath string

	command := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the Pivotal Tracker project into Linear",
		Long: `Migrate epics, stories, comments, labels, states and attachments from
the configured Pivotal Tracker project into the configured Linear team.

The source is the live Tracker API, or a CSV export when PIVOTAL_CSV_PATH is
set. Reruns are safe: items already carrying a back-reference in Linear are
skipped.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			return run(cobraCmd.Context(), dryRun, reportPath)
		},
	}

	command.Flags().BoolVar(&dryRun, "dry-run", false, "Log every mutation without performing it")
	command.Flags().StringVar(&reportPath, "report", "", "Write a YAML run summary to this path")

	return command
}

func run(ctx context.Context, dryRun bool, reportPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	src, err := buildSource(cfg)
	if err != nil {
		return err
	}

	opts := migration.Options{
		Team:     cfg.LinearTeam,
		Timezone: cfg.Timezone,
		DryRun:   dryRun,
	}
	if cfg.GitHubToken != "" {
		opts.GitHub = github.NewClient(ctx, cfg.GitHubToken)
	}

	migrator := migration.New(src, linear.NewClient(cfg.LinearToken), opts)
	runErr := migrator.Run(ctx)

	if reportPath != "" {
		if err := migrator.Report().Write(reportPath); err != nil {
			slog.Error("Failed to write run report", "path", reportPath, "error", err)
		}
	}
	return runErr
}

// buildSource picks the item source: the CSV export when configured, the
// live API otherwise. The CSV source keeps the API underneath for comment
// threads and attachment downloads the export cannot answer.
func buildSource(cfg *config.Config) (source.Source, error) {
	api := source.NewAPISource(pivotal.NewClient(cfg.PivotalToken, cfg.PivotalProject))
	if cfg.CSVPath == "" {
		slog.Info("Reading from the live Tracker API", "project", cfg.PivotalProject)
		return api, nil
	}

	exp, err := export.Normalize(cfg.CSVPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load CSV export: %w", err)
	}
	sidecars, err := export.AttachmentDirs(cfg.CSVPath)
	if err != nil {
		return nil, err
	}

	slog.Info("Reading from CSV export", "path", cfg.CSVPath,
		"records", len(exp.Records), "attachment_dirs", len(sidecars))
	return source.NewCSVSource(exp, cfg.CSVPath, sidecars, api), nil
}
