// Package pivotal is a read-only client for the Pivotal Tracker v5 REST API,
// covering the surface a migration needs: epics, stories, comments, tasks,
// members and attachment downloads.
package pivotal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Tracker v5 REST API base URL.
	DefaultEndpoint = "https://www.pivotaltracker.com/services/v5"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxPageSize is the page size used for story pagination.
	MaxPageSize = 100

	// paginationTotalHeader carries the total row count of a paginated
	// collection; used for progress reporting only.
	paginationTotalHeader = "X-Tracker-Pagination-Total"
)

// Client calls the Tracker API for a single project.
type Client struct {
	token      string
	projectID  int
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given project using the default
// endpoint and timeout.
func NewClient(token string, projectID int) *Client {
	return &Client{
		token:     token,
		projectID: projectID,
		endpoint:  DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithEndpoint returns a copy of the client pointed at a different API base.
func (c *Client) WithEndpoint(endpoint string) *Client {
	clone := *c
	clone.endpoint = strings.TrimSuffix(endpoint, "/")
	return &clone
}

// WithHTTPClient returns a copy of the client using the given HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	clone := *c
	clone.httpClient = httpClient
	return &clone
}

// projectPath prefixes a resource path with the project scope.
func (c *Client) projectPath(path string) string {
	return fmt.Sprintf("/projects/%d%s", c.projectID, path)
}

func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.endpoint + path
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}
	return u
}

// get performs an authenticated GET and returns the body and headers. Any
// non-2xx status is surfaced as an error carrying status and body; there is
// no retry here, per-item tolerance belongs to the caller.
func (c *Client) get(ctx context.Context, urlStr string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-TrackerToken", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("API error: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
	}

	return body, resp.Header, nil
}

// siteURL resolves a Tracker path against the site root. Attachment download
// paths are rooted at the site, not at the API base.
func (c *Client) siteURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(c.endpoint, "/services/v5") + path
}
