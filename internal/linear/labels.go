package linear

import (
	"context"
	"fmt"
	"log/slog"
)

const labelsQuery = `
query($teamId: String!) {
  team(id: $teamId) {
    labels(first: 250) {
      nodes { id name }
    }
  }
}`

const labelCreateMutation = `
mutation($input: IssueLabelCreateInput!) {
  issueLabelCreate(input: $input) {
    success
    issueLabel { id name }
  }
}`

// Labels lists the team's issue labels.
func (c *Client) Labels(ctx context.Context, teamID string) ([]Label, error) {
	slog.Debug("Linear API: Listing labels", "team", teamID)
	var resp struct {
		Team struct {
			Labels struct {
				Nodes []Label `json:"nodes"`
			} `json:"labels"`
		} `json:"team"`
	}
	if err := c.post(ctx, labelsQuery, map[string]any{"teamId": teamID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return resp.Team.Labels.Nodes, nil
}

// CreateLabel creates an issue label on the team.
func (c *Client) CreateLabel(ctx context.Context, teamID, name string) (*Label, error) {
	slog.Info("Linear API: Creating label", "team", teamID, "name", name)
	var resp struct {
		IssueLabelCreate struct {
			Success    bool  `json:"success"`
			IssueLabel Label `json:"issueLabel"`
		} `json:"issueLabelCreate"`
	}
	err := c.post(ctx, labelCreateMutation, map[string]any{
		"input": map[string]any{
			"teamId": teamID,
			"name":   name,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	if !resp.IssueLabelCreate.Success {
		return nil, fmt.Errorf("label %q was not created", name)
	}
	return &resp.IssueLabelCreate.IssueLabel, nil
}
