package linear

import (
	"context"
	"fmt"
	"log/slog"
)

const usersQuery = `
query($cursor: String) {
  users(first: 100, after: $cursor) {
    nodes { id name displayName email active }
    pageInfo { hasNextPage endCursor }
  }
}`

// Users lists every workspace member, for assignee resolution.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var all []User
	var cursor *string

	for {
		slog.Debug("Linear API: Listing users", "fetched", len(all))
		var resp struct {
			Users struct {
				Nodes    []User   `json:"nodes"`
				PageInfo pageInfo `json:"pageInfo"`
			} `json:"users"`
		}
		variables := map[string]any{}
		if cursor != nil {
			variables["cursor"] = *cursor
		}
		if err := c.post(ctx, usersQuery, variables, &resp); err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}

		all = append(all, resp.Users.Nodes...)
		if !resp.Users.PageInfo.HasNextPage {
			return all, nil
		}
		cursor = &resp.Users.PageInfo.EndCursor
	}
}
