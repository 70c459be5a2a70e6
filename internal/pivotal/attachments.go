package pivotal

import (
	"context"
	"fmt"
	"log/slog"
)

// DownloadAttachment fetches an attachment's bytes. The whole file is held
// in memory; callers upload it once and let it go.
func (c *Client) DownloadAttachment(ctx context.Context, att Attachment) ([]byte, error) {
	if att.DownloadURL == "" {
		return nil, fmt.Errorf("attachment %d has no download URL", att.ID)
	}

	slog.Debug("Pivotal API: Downloading attachment", "attachment", att.ID, "filename", att.Filename)
	body, _, err := c.get(ctx, c.siteURL(att.DownloadURL))
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %d: %w", att.ID, err)
	}

	return body, nil
}
