package linear

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const teamsQuery = `
query {
  teams(first: 100) {
    nodes { id name key }
  }
}`

// TeamByName resolves a team id by name, case-insensitively. A missing team
// is an error; everything downstream needs the id.
func (c *Client) TeamByName(ctx context.Context, name string) (*Team, error) {
	slog.Debug("Linear API: Listing teams")
	var resp struct {
		Teams struct {
			Nodes []Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := c.post(ctx, teamsQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	for _, team := range resp.Teams.Nodes {
		if strings.EqualFold(team.Name, name) || strings.EqualFold(team.Key, name) {
			return &team, nil
		}
	}
	return nil, fmt.Errorf("no Linear team named %q", name)
}
