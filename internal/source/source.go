// Package source defines the common item shape the migration consumes and
// the Source capability that produces it. Two implementations exist: one
// backed by the live Pivotal Tracker API and one backed by an offline CSV
// export. Both yield identical field access so the migration never branches
// on provenance.
package source

import (
	"context"
	"fmt"
	"time"
)

// Source yields normalized Pivotal data regardless of where it comes from.
type Source interface {
	// Epics returns the project's epics in source order.
	Epics(ctx context.Context) ([]Item, error)
	// Stories returns every story in the project, unsorted.
	Stories(ctx context.Context) ([]Item, error)
	// EpicComments returns one epic's comment thread in posting order.
	EpicComments(ctx context.Context, epicID int) ([]Comment, error)
	// StoryComments returns one story's comment thread in posting order.
	StoryComments(ctx context.Context, storyID int) ([]Comment, error)
	// Download fetches an attachment's bytes. The item id locates sidecar
	// files when the source is an export directory.
	Download(ctx context.Context, itemID int, att Attachment) ([]byte, error)
}

// Item is an epic or story in the shape the migration works with.
type Item struct {
	ID          int
	Title       string
	Description string
	// State is the Pivotal lifecycle state (unscheduled, unstarted,
	// started, finished, delivered, accepted, rejected). Empty for epics.
	State string
	// Labels holds label names in source order. For an epic the first
	// label is the one that links stories to it.
	Labels    []string
	CreatedAt time.Time
	// Owner and Requester are display strings; "Name <email>" when the
	// source knows the email, a bare name otherwise.
	Owner     string
	Requester string
	// Estimate is nil for unestimated stories.
	Estimate     *int
	Tasks        []Task
	Reviews      []Review
	Blockers     []Blocker
	PullRequests []string
}

// Comment is one thread entry. Exactly one of CreatedAt and RawDate is
// meaningful: the API gives exact timestamps, the CSV export only a coarse
// "Mon DD, YYYY" string. Both shapes are preserved as-is.
type Comment struct {
	Author      string
	Body        string
	CreatedAt   time.Time
	RawDate     string
	Attachments []Attachment
}

// Task is a story checklist entry.
type Task struct {
	Description string
	Complete    bool
}

// Review is a story review entry.
type Review struct {
	Type     string
	Reviewer string
	Status   string
}

// Blocker is a story blocker entry.
type Blocker struct {
	Description string
	Status      string
}

// Attachment is comment-file metadata. Bytes are fetched on demand through
// Source.Download and held only for one upload.
type Attachment struct {
	ID          int
	Filename    string
	ContentType string
	DownloadURL string
}

// StoryURL is the permanent Pivotal story URL embedded in migrated issues
// as the back-reference.
func StoryURL(id int) string {
	return fmt.Sprintf("https://www.pivotaltracker.com/story/show/%d", id)
}

// EpicURL is the permanent Pivotal epic URL embedded in migrated projects
// as the back-reference.
func EpicURL(id int) string {
	return fmt.Sprintf("https://www.pivotaltracker.com/epic/show/%d", id)
}
