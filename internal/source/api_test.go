package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan/pivotal-to-linear/internal/pivotal"
)

// newTrackerStub serves just enough of the Tracker API for the source tests.
func newTrackerStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/projects/99/memberships", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":1,"person":{"id":10,"name":"Alice Smith","email":"alice@example.com"},"role":"owner"},
			{"id":2,"person":{"id":11,"name":"Bob Jones","email":"bob@example.com"},"role":"member"}]`))
	})
	mux.HandleFunc("/projects/99/epics", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":500,"name":"Payments","description":"All payments work","label":{"id":7,"name":"payments"},
			 "created_at":"2023-03-01T09:00:00Z","url":"https://www.pivotaltracker.com/epic/show/500"}]`))
	})
	mux.HandleFunc("/projects/99/stories", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id":100,"name":"Checkout flow","description":"Rework","story_type":"feature",
			 "current_state":"started","estimate":2,"requested_by_id":10,"owner_ids":[11],
			 "labels":[{"id":7,"name":"payments"}],
			 "pull_requests":[{"id":1,"owner":"acme","repo":"shop","host_url":"https://github.com/","number":42}],
			 "created_at":"2023-03-17T12:00:00Z"}]`))
	})
	mux.HandleFunc("/projects/99/stories/100/tasks", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"description":"write tests","complete":true,"position":1}]`))
	})
	mux.HandleFunc("/projects/99/stories/100/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "file_attachments")
		_, _ = w.Write([]byte(`[
			{"id":1,"story_id":100,"text":"Looks good","person_id":10,"created_at":"2023-03-18T10:30:00Z",
			 "file_attachments":[{"id":77,"filename":"shot.png","content_type":"image/png",
			 "size":4,"download_url":"/file_attachments/77/download"}]}]`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return httptest.NewServer(mux)
}

func TestAPISourceStories(t *testing.T) {
	server := newTrackerStub(t)
	defer server.Close()

	src := NewAPISource(pivotal.NewClient("token", 99).WithEndpoint(server.URL))

	stories, err := src.Stories(context.Background())

	require.NoError(t, err)
	require.Len(t, stories, 1)

	story := stories[0]
	assert.Equal(t, 100, story.ID)
	assert.Equal(t, "Checkout flow", story.Title)
	assert.Equal(t, "started", story.State)
	assert.Equal(t, []string{"payments"}, story.Labels)
	require.NotNil(t, story.Estimate)
	assert.Equal(t, 2, *story.Estimate)
	assert.Equal(t, "Bob Jones <bob@example.com>", story.Owner, "owner id resolves through memberships")
	assert.Equal(t, "Alice Smith <alice@example.com>", story.Requester)
	assert.Equal(t, []string{"https://github.com/acme/shop/pull/42"}, story.PullRequests)
	require.Len(t, story.Tasks, 1)
	assert.Equal(t, Task{Description: "write tests", Complete: true}, story.Tasks[0])
}

func TestAPISourceEpics(t *testing.T) {
	server := newTrackerStub(t)
	defer server.Close()

	src := NewAPISource(pivotal.NewClient("token", 99).WithEndpoint(server.URL))

	epics, err := src.Epics(context.Background())

	require.NoError(t, err)
	require.Len(t, epics, 1)
	assert.Equal(t, 500, epics[0].ID)
	assert.Equal(t, "Payments", epics[0].Title)
	assert.Equal(t, []string{"payments"}, epics[0].Labels)
}

func TestAPISourceStoryComments(t *testing.T) {
	server := newTrackerStub(t)
	defer server.Close()

	src := NewAPISource(pivotal.NewClient("token", 99).WithEndpoint(server.URL))

	comments, err := src.StoryComments(context.Background(), 100)

	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Alice Smith <alice@example.com>", comments[0].Author)
	assert.Equal(t, "Looks good", comments[0].Body)
	assert.False(t, comments[0].CreatedAt.IsZero(), "API comments carry exact timestamps")
	assert.Empty(t, comments[0].RawDate)
	require.Len(t, comments[0].Attachments, 1)
	assert.Equal(t, "shot.png", comments[0].Attachments[0].Filename)
	assert.Equal(t, "image/png", comments[0].Attachments[0].ContentType)
}

func TestBackReferenceURLs(t *testing.T) {
	assert.Equal(t, "https://www.pivotaltracker.com/story/show/100", StoryURL(100))
	assert.Equal(t, "https://www.pivotaltracker.com/epic/show/500", EpicURL(500))
}
