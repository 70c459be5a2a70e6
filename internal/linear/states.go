package linear

import (
	"context"
	"fmt"
	"log/slog"
)

const statesQuery = `
query($teamId: String!) {
  team(id: $teamId) {
    states(first: 100) {
      nodes { id name type position }
    }
  }
}`

const stateCreateMutation = `
mutation($input: WorkflowStateCreateInput!) {
  workflowStateCreate(input: $input) {
    success
    workflowState { id name type position }
  }
}`

// stateColor is the fixed color assigned to workflow states this tool
// creates.
const stateColor = "#95a2b3"

// States lists the team's workflow states.
func (c *Client) States(ctx context.Context, teamID string) ([]WorkflowState, error) {
	slog.Debug("Linear API: Listing workflow states", "team", teamID)
	var resp struct {
		Team struct {
			States struct {
				Nodes []WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}
	if err := c.post(ctx, statesQuery, map[string]any{"teamId": teamID}, &resp); err != nil {
		return nil, fmt.Errorf("failed to list workflow states: %w", err)
	}
	return resp.Team.States.Nodes, nil
}

// CreateState creates a workflow state with the given name and type. Callers
// are expected to have checked that no state of that name exists.
func (c *Client) CreateState(ctx context.Context, teamID, name, stateType string) (*WorkflowState, error) {
	slog.Info("Linear API: Creating workflow state", "team", teamID, "name", name, "type", stateType)
	var resp struct {
		WorkflowStateCreate struct {
			Success       bool          `json:"success"`
			WorkflowState WorkflowState `json:"workflowState"`
		} `json:"workflowStateCreate"`
	}
	err := c.post(ctx, stateCreateMutation, map[string]any{
		"input": map[string]any{
			"teamId": teamID,
			"name":   name,
			"type":   stateType,
			"color":  stateColor,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow state %q: %w", name, err)
	}
	if !resp.WorkflowStateCreate.Success {
		return nil, fmt.Errorf("workflow state %q was not created", name)
	}
	return &resp.WorkflowStateCreate.WorkflowState, nil
}
