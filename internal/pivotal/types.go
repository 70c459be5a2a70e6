package pivotal

import (
	"fmt"
	"strings"
	"time"
)

// Story is a Pivotal Tracker story as returned by the v5 API. PullRequests
// and Branches are only populated when the request asks for those fields.
type Story struct {
	ID            int           `json:"id"`
	ProjectID     int           `json:"project_id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	StoryType     string        `json:"story_type"`
	CurrentState  string        `json:"current_state"`
	Estimate      *int          `json:"estimate"`
	RequestedByID int           `json:"requested_by_id"`
	OwnerIDs      []int         `json:"owner_ids"`
	Labels        []Label       `json:"labels"`
	PullRequests  []PullRequest `json:"pull_requests"`
	Branches      []Branch      `json:"branches"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	URL           string        `json:"url"`
}

// Epic is a Pivotal Tracker epic. Its Label is what links stories to it.
type Epic struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Label       Label     `json:"label"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
}

// Label is a named tag on a story or epic.
type Label struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Comment is a story or epic comment, optionally carrying file attachments
// when the request asks for the file_attachments field.
type Comment struct {
	ID          int          `json:"id"`
	StoryID     int          `json:"story_id"`
	EpicID      int          `json:"epic_id"`
	Text        string       `json:"text"`
	PersonID    int          `json:"person_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Attachments []Attachment `json:"file_attachments"`
}

// Attachment is file metadata attached to a comment. DownloadURL is a path
// relative to the Tracker site root, not the API base.
type Attachment struct {
	ID          int    `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	DownloadURL string `json:"download_url"`
}

// Task is a story checklist entry.
type Task struct {
	ID          int    `json:"id"`
	StoryID     int    `json:"story_id"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
	Position    int    `json:"position"`
}

// PullRequest is a GitHub pull request associated with a story.
type PullRequest struct {
	ID      int    `json:"id"`
	StoryID int    `json:"story_id"`
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	HostURL string `json:"host_url"`
	Number  int    `json:"number"`
}

// Branch is a source branch associated with a story.
type Branch struct {
	ID      int    `json:"id"`
	StoryID int    `json:"story_id"`
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	HostURL string `json:"host_url"`
	Name    string `json:"name"`
}

// Person is a project member.
type Person struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
	Username string `json:"username"`
}

// Membership wraps a person with their project role.
type Membership struct {
	ID     int    `json:"id"`
	Person Person `json:"person"`
	Role   string `json:"role"`
}

// URL reconstructs the pull request's web URL from its parts.
func (pr PullRequest) URL() string {
	host := strings.TrimSuffix(pr.HostURL, "/")
	if host == "" {
		host = "https://github.com"
	}
	return fmt.Sprintf("%s/%s/%s/pull/%d", host, pr.Owner, pr.Repo, pr.Number)
}

// Display renders a person as "Name <email>" for descriptions and assignee
// matching.
func (p Person) Display() string {
	if p.Email == "" {
		return p.Name
	}
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}
