package pivotal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
)

// storyFields asks for the default story shape plus the pull request and
// branch associations.
const storyFields = ":default,pull_requests,branches"

// ListStories fetches every story in the project, page by page, until a page
// comes back short. The expected total is read from the pagination header
// when present, else estimated from the first page; it feeds progress
// logging only and never affects what gets fetched.
func (c *Client) ListStories(ctx context.Context) ([]Story, error) {
	var allStories []Story
	total := -1

	for offset := 0; ; {
		slog.Debug("Pivotal API: Listing stories", "project", c.projectID, "offset", offset)
		body, headers, err := c.get(ctx, c.buildURL(c.projectPath("/stories"), map[string]string{
			"limit":  strconv.Itoa(MaxPageSize),
			"offset": strconv.Itoa(offset),
			"fields": storyFields,
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to list stories: %w", err)
		}

		var page []Story
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode stories: %w", err)
		}
		for i := range page {
			normalizeStory(&page[i])
		}
		allStories = append(allStories, page...)

		if total < 0 {
			if parsed, err := strconv.Atoi(headers.Get(paginationTotalHeader)); err == nil {
				total = parsed
			} else {
				total = len(page)
			}
		}
		slog.Info("Fetched stories", "count", len(allStories), "total", total)

		if len(page) < MaxPageSize {
			break
		}
		offset += len(page)
	}

	return allStories, nil
}

// GetStory fetches one story with its pull request and branch associations.
func (c *Client) GetStory(ctx context.Context, storyID int) (*Story, error) {
	slog.Debug("Pivotal API: Getting story", "project", c.projectID, "story", storyID)
	body, _, err := c.get(ctx, c.buildURL(c.projectPath(fmt.Sprintf("/stories/%d", storyID)), map[string]string{
		"fields": storyFields,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to get story %d: %w", storyID, err)
	}

	var story Story
	if err := json.Unmarshal(body, &story); err != nil {
		return nil, fmt.Errorf("failed to decode story %d: %w", storyID, err)
	}
	normalizeStory(&story)

	return &story, nil
}

// ListStoryTasks fetches the checklist tasks of one story.
func (c *Client) ListStoryTasks(ctx context.Context, storyID int) ([]Task, error) {
	slog.Debug("Pivotal API: Listing story tasks", "project", c.projectID, "story", storyID)
	body, _, err := c.get(ctx, c.buildURL(c.projectPath(fmt.Sprintf("/stories/%d/tasks", storyID)), nil))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks for story %d: %w", storyID, err)
	}

	var tasks []Task
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks for story %d: %w", storyID, err)
	}

	return tasks, nil
}

// normalizeStory replaces absent association arrays with empty slices so
// callers can range over them without nil checks.
func normalizeStory(s *Story) {
	if s.PullRequests == nil {
		s.PullRequests = []PullRequest{}
	}
	if s.Branches == nil {
		s.Branches = []Branch{}
	}
	if s.OwnerIDs == nil {
		s.OwnerIDs = []int{}
	}
	if s.Labels == nil {
		s.Labels = []Label{}
	}
}
