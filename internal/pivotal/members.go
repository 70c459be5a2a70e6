package pivotal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ListMembers fetches the project's memberships and returns the people
// behind them, used to resolve owner and requester ids to names and emails.
func (c *Client) ListMembers(ctx context.Context) ([]Person, error) {
	slog.Debug("Pivotal API: Listing memberships", "project", c.projectID)
	body, _, err := c.get(ctx, c.buildURL(c.projectPath("/memberships"), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	var memberships []Membership
	if err := json.Unmarshal(body, &memberships); err != nil {
		return nil, fmt.Errorf("failed to decode memberships: %w", err)
	}

	people := make([]Person, 0, len(memberships))
	for _, m := range memberships {
		people = append(people, m.Person)
	}

	slog.Info("Fetched project members", "count", len(people))
	return people, nil
}
