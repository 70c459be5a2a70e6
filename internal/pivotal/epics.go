package pivotal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// ListEpics fetches the project's epics. The epics collection is small and
// the API returns it whole, so there is no pagination here.
func (c *Client) ListEpics(ctx context.Context) ([]Epic, error) {
	slog.Debug("Pivotal API: Listing epics", "project", c.projectID)
	body, _, err := c.get(ctx, c.buildURL(c.projectPath("/epics"), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to list epics: %w", err)
	}

	var epics []Epic
	if err := json.Unmarshal(body, &epics); err != nil {
		return nil, fmt.Errorf("failed to decode epics: %w", err)
	}

	slog.Info("Fetched epics", "count", len(epics))
	return epics, nil
}
