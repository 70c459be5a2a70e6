package linear

import (
	"context"
	"fmt"
	"log/slog"
)

const issueByBackRefQuery = `
query($teamId: ID!, $ref: String!) {
  issues(first: 1, filter: {team: {id: {eq: $teamId}}, description: {contains: $ref}}) {
    nodes { id identifier title url sortOrder }
  }
}`

const issueCreateMutation = `
mutation($input: IssueCreateInput!) {
  issueCreate(input: $input) {
    success
    issue { id identifier title url sortOrder }
  }
}`

const issueUpdateMutation = `
mutation($id: String!, $input: IssueUpdateInput!) {
  issueUpdate(id: $id, input: $input) {
    success
    issue { id identifier sortOrder }
  }
}`

const unassignedIssuesQuery = `
query($teamId: ID!, $cursor: String) {
  issues(first: 50, after: $cursor, filter: {team: {id: {eq: $teamId}}, assignee: {null: true}}) {
    nodes { id identifier title description }
    pageInfo { hasNextPage endCursor }
  }
}`

// IssueCreateInput carries the fields set at issue creation.
type IssueCreateInput struct {
	TeamID      string   `json:"teamId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	LabelIDs    []string `json:"labelIds,omitempty"`
	Estimate    *int     `json:"estimate,omitempty"`
	AssigneeID  string   `json:"assigneeId,omitempty"`
}

// IssueUpdateInput carries a partial issue update; nil and empty fields are
// left untouched.
type IssueUpdateInput struct {
	StateID    string   `json:"stateId,omitempty"`
	SortOrder  *float64 `json:"sortOrder,omitempty"`
	AssigneeID string   `json:"assigneeId,omitempty"`
	ProjectID  string   `json:"projectId,omitempty"`
}

// FindIssueByBackRef is the explicit "already migrated?" check: one filtered
// search for a team issue whose description contains the back-reference URL.
// It costs one round trip per item and that is the design: the destination
// itself is the migration ledger. Returns nil when no issue matches.
func (c *Client) FindIssueByBackRef(ctx context.Context, teamID, ref string) (*Issue, error) {
	slog.Debug("Linear API: Searching issue by back-reference", "team", teamID, "ref", ref)
	var resp struct {
		Issues struct {
			Nodes []Issue `json:"nodes"`
		} `json:"issues"`
	}
	err := c.post(ctx, issueByBackRefQuery, map[string]any{"teamId": teamID, "ref": ref}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to search issues: %w", err)
	}

	if len(resp.Issues.Nodes) == 0 {
		return nil, nil
	}
	return &resp.Issues.Nodes[0], nil
}

// CreateIssue creates an issue and returns it with its assigned identifier
// and sort order.
func (c *Client) CreateIssue(ctx context.Context, input IssueCreateInput) (*Issue, error) {
	slog.Info("Linear API: Creating issue", "title", input.Title)
	var resp struct {
		IssueCreate struct {
			Success bool  `json:"success"`
			Issue   Issue `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := c.post(ctx, issueCreateMutation, map[string]any{"input": input}, &resp); err != nil {
		return nil, fmt.Errorf("failed to create issue %q: %w", input.Title, err)
	}
	if !resp.IssueCreate.Success {
		return nil, fmt.Errorf("issue %q was not created", input.Title)
	}
	return &resp.IssueCreate.Issue, nil
}

// UpdateIssue applies a partial update to an existing issue.
func (c *Client) UpdateIssue(ctx context.Context, id string, input IssueUpdateInput) error {
	slog.Debug("Linear API: Updating issue", "issue", id)
	var resp struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}
	if err := c.post(ctx, issueUpdateMutation, map[string]any{"id": id, "input": input}, &resp); err != nil {
		return fmt.Errorf("failed to update issue %s: %w", id, err)
	}
	if !resp.IssueUpdate.Success {
		return fmt.Errorf("issue %s was not updated", id)
	}
	return nil
}

// UnassignedIssues lists every team issue with no assignee, for the assign
// pass.
func (c *Client) UnassignedIssues(ctx context.Context, teamID string) ([]Issue, error) {
	var all []Issue
	var cursor *string

	for {
		slog.Debug("Linear API: Listing unassigned issues", "team", teamID, "fetched", len(all))
		var resp struct {
			Issues struct {
				Nodes    []Issue  `json:"nodes"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"issues"`
		}
		variables := map[string]any{"teamId": teamID}
		if cursor != nil {
			variables["cursor"] = *cursor
		}
		if err := c.post(ctx, unassignedIssuesQuery, variables, &resp); err != nil {
			return nil, fmt.Errorf("failed to list unassigned issues: %w", err)
		}

		all = append(all, resp.Issues.Nodes...)
		if !resp.Issues.PageInfo.HasNextPage {
			return all, nil
		}
		cursor = &resp.Issues.PageInfo.EndCursor
	}
}
