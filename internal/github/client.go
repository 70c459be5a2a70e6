// Package github decorates story pull-request references with live state
// and title from the GitHub API. It is optional: without a token the
// migration renders raw URLs.
package github

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API client
type Client struct {
	client *github.Client
}

// PRInfo is the slice of a pull request the migration renders.
type PRInfo struct {
	Owner  string
	Repo   string
	Number int
	Title  string
	// State is "merged", "open" or "closed".
	State string
	URL   string
}

// pullURLPattern matches github.com pull request URLs.
var pullURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// NewClient creates a new GitHub client with token authentication
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		client: github.NewClient(tc),
	}
}

// ParsePullURL extracts owner, repo and number from a pull request URL.
func ParsePullURL(rawURL string) (owner, repo string, number int, err error) {
	m := pullURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", 0, fmt.Errorf("not a GitHub pull request URL: %s", rawURL)
	}
	number, err = strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("not a GitHub pull request URL: %s", rawURL)
	}
	return m[1], m[2], number, nil
}

// PullRequest looks up a pull request by its URL.
func (c *Client) PullRequest(ctx context.Context, rawURL string) (*PRInfo, error) {
	owner, repo, number, err := ParsePullURL(rawURL)
	if err != nil {
		return nil, err
	}

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PR %s/%s#%d: %w", owner, repo, number, err)
	}

	info := &PRInfo{
		Owner:  owner,
		Repo:   repo,
		Number: number,
		Title:  pr.GetTitle(),
		State:  pr.GetState(),
		URL:    pr.GetHTMLURL(),
	}
	if pr.GetMerged() {
		info.State = "merged"
	}
	if info.URL == "" {
		info.URL = rawURL
	}
	return info, nil
}
