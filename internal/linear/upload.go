package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

const fileUploadMutation = `
mutation($contentType: String!, $filename: String!, $size: Int!) {
  fileUpload(contentType: $contentType, filename: $filename, size: $size) {
    success
    uploadFile {
      uploadUrl
      assetUrl
      contentType
      headers { key value }
    }
  }
}`

// uploadMaxRetries bounds the exponential backoff around the pre-signed PUT.
const uploadMaxRetries = 4

// RequestUpload asks Linear for a pre-signed upload slot. The slot request
// goes through the normal rate-limited gate; the PUT itself does not, it
// targets cloud storage rather than the API.
func (c *Client) RequestUpload(ctx context.Context, filename, contentType string, size int) (*UploadSlot, error) {
	slog.Debug("Linear API: Requesting upload slot", "filename", filename, "size", size)
	var resp struct {
		FileUpload struct {
			Success    bool        `json:"success"`
			UploadFile *UploadSlot `json:"uploadFile"`
		} `json:"fileUpload"`
	}
	err := c.post(ctx, fileUploadMutation, map[string]any{
		"contentType": contentType,
		"filename":    filename,
		"size":        size,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to request upload slot for %s: %w", filename, err)
	}
	if !resp.FileUpload.Success || resp.FileUpload.UploadFile == nil {
		return nil, fmt.Errorf("no upload slot returned for %s", filename)
	}
	return resp.FileUpload.UploadFile, nil
}

// UploadFile PUTs the bytes to the slot's pre-signed URL, carrying the
// slot's extra headers. Transient failures are retried with exponential
// backoff.
func (c *Client) UploadFile(ctx context.Context, slot *UploadSlot, data []byte) error {
	upload := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, slot.UploadURL, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create upload request: %w", err))
		}
		req.Header.Set("Content-Type", slot.ContentType)
		for _, h := range slot.Headers {
			req.Header.Set(h.Key, h.Value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("upload request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("upload failed: %s (status %d)", bytes.TrimSpace(body), resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uploadMaxRetries), ctx)
	if err := backoff.Retry(upload, policy); err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}
