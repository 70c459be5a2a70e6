package migration

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/alan/pivotal-to-linear/internal/linear"
)

// ownerLine finds the owner header the migration wrote into each issue
// description.
var ownerLine = regexp.MustCompile(`(?m)^\*\*Owner:\*\* (.+)$`)

// Assign is the second pass: walk the team's unassigned issues, parse the
// owner line out of each migrated description, and assign the matching
// Linear user. Issues without an owner line or a matching user are left
// alone.
func (m *Migrator) Assign(ctx context.Context) error {
	defer m.report.finish()

	if err := m.prepare(ctx); err != nil {
		return err
	}

	issues, err := m.dest.UnassignedIssues(ctx, m.teamID)
	if err != nil {
		return err
	}
	slog.Info("Assigning issues", "unassigned", len(issues))

	for _, issue := range issues {
		owner := parseOwnerLine(issue.Description)
		if owner == "" {
			slog.Debug("Issue has no owner line, skipping", "issue", issue.Identifier)
			m.report.Assignments.Skipped++
			continue
		}

		userID := m.matchUser(owner)
		if userID == "" {
			slog.Warn("No Linear user matches owner", "issue", issue.Identifier, "owner", owner)
			m.report.Assignments.Skipped++
			continue
		}

		if m.opts.DryRun {
			slog.Info("Dry run: would assign issue", "issue", issue.Identifier, "owner", owner)
			m.report.Assignments.Created++
			continue
		}

		if err := m.dest.UpdateIssue(ctx, issue.ID, linear.IssueUpdateInput{AssigneeID: userID}); err != nil {
			slog.Error("Failed to assign issue", "issue", issue.Identifier, "error", err)
			m.report.Assignments.Failed++
			continue
		}
		slog.Info("Assigned issue", "issue", issue.Identifier, "owner", owner)
		m.report.Assignments.Created++
	}
	return nil
}

// parseOwnerLine extracts the owner string from a migrated description, or
// "" when the description has none.
func parseOwnerLine(description string) string {
	match := ownerLine.FindStringSubmatch(description)
	if match == nil {
		return ""
	}
	return match[1]
}
