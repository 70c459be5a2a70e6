package pivotal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeStories(from, to int) []Story {
	stories := make([]Story, 0, to-from+1)
	for id := from; id <= to; id++ {
		stories = append(stories, Story{ID: id, Name: fmt.Sprintf("Story %d", id), StoryType: "feature"})
	}
	return stories
}

func TestListStoriesPaginates(t *testing.T) {
	var offsets []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/99/stories", r.URL.Path)
		assert.Equal(t, strconv.Itoa(MaxPageSize), r.URL.Query().Get("limit"))
		assert.Equal(t, storyFields, r.URL.Query().Get("fields"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		w.Header().Set(paginationTotalHeader, "150")
		var page []Story
		if offset == 0 {
			page = makeStories(1, MaxPageSize)
		} else {
			page = makeStories(offset+1, 150)
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer server.Close()

	client := NewClient("token", 99).WithEndpoint(server.URL)

	stories, err := client.ListStories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []int{0, MaxPageSize}, offsets, "should stop after the short page")
	require.Len(t, stories, 150)
	assert.Equal(t, 1, stories[0].ID)
	assert.Equal(t, 150, stories[149].ID)

	// Absent association arrays come back as empty slices, not nil.
	assert.NotNil(t, stories[0].PullRequests)
	assert.NotNil(t, stories[0].Branches)
	assert.Empty(t, stories[0].PullRequests)
}

func TestListStoriesSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("tracker is down"))
	}))
	defer server.Close()

	client := NewClient("token", 99).WithEndpoint(server.URL)

	_, err := client.ListStories(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list stories")
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "tracker is down")
}

func TestGetStory(t *testing.T) {
	const storyJSON = `{
		"id": 555,
		"project_id": 99,
		"name": "Checkout flow",
		"description": "Rework the checkout",
		"story_type": "feature",
		"current_state": "started",
		"estimate": 2,
		"requested_by_id": 7,
		"owner_ids": [8],
		"labels": [{"id": 1, "name": "payments"}],
		"pull_requests": [{"id": 10, "story_id": 555, "owner": "acme", "repo": "shop", "host_url": "https://github.com/", "number": 42}],
		"created_at": "2023-03-17T09:30:00Z",
		"url": "https://www.pivotaltracker.com/story/show/555"
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/99/stories/555", r.URL.Path)
		assert.Equal(t, storyFields, r.URL.Query().Get("fields"))
		_, _ = w.Write([]byte(storyJSON))
	}))
	defer server.Close()

	client := NewClient("token", 99).WithEndpoint(server.URL)

	story, err := client.GetStory(context.Background(), 555)

	require.NoError(t, err)
	assert.Equal(t, "Checkout flow", story.Name)
	assert.Equal(t, "started", story.CurrentState)
	require.NotNil(t, story.Estimate)
	assert.Equal(t, 2, *story.Estimate)
	require.Len(t, story.PullRequests, 1)
	assert.Equal(t, "https://github.com/acme/shop/pull/42", story.PullRequests[0].URL())
	assert.NotNil(t, story.Branches, "absent branches should normalize to an empty slice")
}

func TestListStoryTasks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/projects/99/stories/555/tasks", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "story_id": 555, "description": "write tests", "complete": true, "position": 1},
			{"id": 2, "story_id": 555, "description": "ship it", "complete": false, "position": 2}
		]`))
	}))
	defer server.Close()

	client := NewClient("token", 99).WithEndpoint(server.URL)

	tasks, err := client.ListStoryTasks(context.Background(), 555)

	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "write tests", tasks[0].Description)
	assert.True(t, tasks[0].Complete)
	assert.False(t, tasks[1].Complete)
}

func TestPullRequestURL(t *testing.T) {
	tests := []struct {
		name string
		pr   PullRequest
		want string
	}{
		{
			name: "host with trailing slash",
			pr:   PullRequest{Owner: "acme", Repo: "shop", HostURL: "https://github.com/", Number: 42},
			want: "https://github.com/acme/shop/pull/42",
		},
		{
			name: "empty host defaults to github",
			pr:   PullRequest{Owner: "acme", Repo: "shop", Number: 7},
			want: "https://github.com/acme/shop/pull/7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pr.URL())
		})
	}
}
