package pivotal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// commentFields asks for the default comment shape plus attachment metadata,
// which only the API exposes.
const commentFields = ":default,file_attachments"

// ListStoryComments fetches one story's comments with attachment metadata.
func (c *Client) ListStoryComments(ctx context.Context, storyID int) ([]Comment, error) {
	return c.listComments(ctx, fmt.Sprintf("/stories/%d/comments", storyID))
}

// ListEpicComments fetches one epic's comments with attachment metadata.
func (c *Client) ListEpicComments(ctx context.Context, epicID int) ([]Comment, error) {
	return c.listComments(ctx, fmt.Sprintf("/epics/%d/comments", epicID))
}

func (c *Client) listComments(ctx context.Context, path string) ([]Comment, error) {
	slog.Debug("Pivotal API: Listing comments", "project", c.projectID, "path", path)
	body, _, err := c.get(ctx, c.buildURL(c.projectPath(path), map[string]string{
		"fields": commentFields,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	var comments []Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}

	return comments, nil
}
