package linear

import (
	"context"
	"fmt"
	"log/slog"
)

const projectsQuery = `
query($cursor: String) {
  projects(first: 50, after: $cursor) {
    nodes { id name description }
    pageInfo { hasNextPage endCursor }
  }
}`

const projectCreateMutation = `
mutation($input: ProjectCreateInput!) {
  projectCreate(input: $input) {
    success
    project { id name description }
  }
}`

// Projects lists every project in the workspace, descriptions included, so
// callers can scan for migration back-references.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var all []Project
	var cursor *string

	for {
		slog.Debug("Linear API: Listing projects", "fetched", len(all))
		var resp struct {
			Projects struct {
				Nodes    []Project `json:"nodes"`
				PageInfo pageInfo  `json:"pageInfo"`
			} `json:"projects"`
		}
		variables := map[string]any{}
		if cursor != nil {
			variables["cursor"] = *cursor
		}
		if err := c.post(ctx, projectsQuery, variables, &resp); err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}

		all = append(all, resp.Projects.Nodes...)
		if !resp.Projects.PageInfo.HasNextPage {
			return all, nil
		}
		cursor = &resp.Projects.PageInfo.EndCursor
	}
}

// CreateProject creates a project attached to the team.
func (c *Client) CreateProject(ctx context.Context, teamID, name, description string) (*Project, error) {
	slog.Info("Linear API: Creating project", "team", teamID, "name", name)
	var resp struct {
		ProjectCreate struct {
			Success bool    `json:"success"`
			Project Project `json:"project"`
		} `json:"projectCreate"`
	}
	err := c.post(ctx, projectCreateMutation, map[string]any{
		"input": map[string]any{
			"teamIds":     []string{teamID},
			"name":        name,
			"description": description,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create project %q: %w", name, err)
	}
	if !resp.ProjectCreate.Success {
		return nil, fmt.Errorf("project %q was not created", name)
	}
	return &resp.ProjectCreate.Project, nil
}
