// Package assign implements the second-pass assignment command.
package assign

import (
	"github.com/spf13/cobra"

	"github.com/alan/pivotal-to-linear/internal/config"
	"github.com/alan/pivotal-to-linear/internal/linear"
	"github.com/alan/pivotal-to-linear/internal/migration"
)

// NewAssignCmd creates and returns the assign command
func NewAssignCmd() *cobra.Command {
	var dryRun bool

	command := &cobra.Command{
		Use:   "assign",
		Short: "Assign migrated issues that are still unassigned",
		Long: `Walk the team's unassigned issues, read the owner line the migration
wrote into each description, and assign the matching Linear user. Useful
when owners joined the Linear workspace after the migration ran.`,
		SilenceUsage: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			migrator := migration.New(nil, linear.NewClient(cfg.LinearToken), migration.Options{
				Team:     cfg.LinearTeam,
				Timezone: cfg.Timezone,
				DryRun:   dryRun,
			})
			return migrator.Assign(cobraCmd.Context())
		},
	}

	command.Flags().BoolVar(&dryRun, "dry-run", false, "Log every assignment without performing it")

	return command
}
