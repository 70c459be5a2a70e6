package linear

import (
	"context"
	"fmt"
	"log/slog"
)

const commentCreateMutation = `
mutation($input: CommentCreateInput!) {
  commentCreate(input: $input) {
    success
  }
}`

const attachmentCreateMutation = `
mutation($input: AttachmentCreateInput!) {
  attachmentCreate(input: $input) {
    success
  }
}`

// CreateComment posts a Markdown comment on an issue.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) error {
	slog.Debug("Linear API: Creating comment", "issue", issueID)
	var resp struct {
		CommentCreate struct {
			Success bool `json:"success"`
		} `json:"commentCreate"`
	}
	err := c.post(ctx, commentCreateMutation, map[string]any{
		"input": map[string]any{
			"issueId": issueID,
			"body":    body,
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("failed to create comment on issue %s: %w", issueID, err)
	}
	if !resp.CommentCreate.Success {
		return fmt.Errorf("comment on issue %s was not created", issueID)
	}
	return nil
}

// CreateAttachment links an external URL to an issue, shown in the issue's
// attachment rail.
func (c *Client) CreateAttachment(ctx context.Context, issueID, url, title, subtitle string) error {
	slog.Debug("Linear API: Creating attachment", "issue", issueID, "url", url)
	var resp struct {
		AttachmentCreate struct {
			Success bool `json:"success"`
		} `json:"attachmentCreate"`
	}
	err := c.post(ctx, attachmentCreateMutation, map[string]any{
		"input": map[string]any{
			"issueId":  issueID,
			"url":      url,
			"title":    title,
			"subtitle": subtitle,
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("failed to attach %s to issue %s: %w", url, issueID, err)
	}
	if !resp.AttachmentCreate.Success {
		return fmt.Errorf("attachment %s on issue %s was not created", url, issueID)
	}
	return nil
}
