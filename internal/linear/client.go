// Package linear is a client for the Linear GraphQL API. Every query and
// mutation funnels through a single rate-limited post entry point that
// tracks Linear's dual request/complexity budgets.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the Linear GraphQL API URL.
	DefaultEndpoint = "https://api.linear.app/graphql"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 60 * time.Second
)

// Client calls the Linear API with a personal API key.
type Client struct {
	token      string
	endpoint   string
	httpClient *http.Client
	limiter    *rateLimiter
}

// NewClient creates a client using the default endpoint and timeout.
func NewClient(token string) *Client {
	return &Client{
		token:    token,
		endpoint: DefaultEndpoint,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: newRateLimiter(),
	}
}

// WithEndpoint returns a copy of the client pointed at a different API URL.
func (c *Client) WithEndpoint(endpoint string) *Client {
	clone := *c
	clone.endpoint = endpoint
	return &clone
}

// WithHTTPClient returns a copy of the client using the given HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	clone := *c
	clone.httpClient = httpClient
	return &clone
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// post executes one GraphQL request and decodes the data payload into out.
// It waits on the rate-limit gate before sending, feeds the response headers
// back to the gate, and transparently retries rate-limited responses (HTTP
// 429 or a RATELIMITED error code) instead of surfacing them. Any other
// failure returns an error carrying the status code and response body.
func (c *Client) post(ctx context.Context, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	for {
		c.limiter.wait()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		c.limiter.update(resp.Header)

		if resp.StatusCode == http.StatusTooManyRequests || isRateLimitedBody(resp.StatusCode, body) {
			slog.Debug("Linear API rate limited, retrying", "status", resp.StatusCode)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("Linear API error: %s (status %d)", strings.TrimSpace(string(body)), resp.StatusCode)
		}

		var gql graphQLResponse
		if err := json.Unmarshal(body, &gql); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}

		if rateLimitedErrors(gql.Errors) {
			slog.Debug("Linear API rate limited, retrying", "status", resp.StatusCode)
			continue
		}
		if len(gql.Errors) > 0 {
			return fmt.Errorf("Linear API error: %s (status %d)", gql.Errors[0].Message, resp.StatusCode)
		}

		if out != nil {
			if err := json.Unmarshal(gql.Data, out); err != nil {
				return fmt.Errorf("failed to decode response data: %w", err)
			}
		}
		return nil
	}
}

// isRateLimitedBody catches rate-limit rejections that arrive as a 4xx with
// a RATELIMITED error code instead of a 429 status.
func isRateLimitedBody(status int, body []byte) bool {
	if status < 400 || status >= 500 {
		return false
	}

	var gql graphQLResponse
	if err := json.Unmarshal(body, &gql); err != nil {
		return false
	}
	return rateLimitedErrors(gql.Errors)
}

func rateLimitedErrors(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Extensions.Code == "RATELIMITED" {
			return true
		}
	}
	return false
}
