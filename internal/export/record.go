// Package export parses Pivotal Tracker CSV exports into normalized
// per-story records, folding the export's repeated column groups back into
// ordered sub-lists.
package export

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Record is one source item reassembled from the export's repeated rows.
// Scalar columns land in Fields keyed by normalized header name; the
// recognized repeating groups land in the ordered sub-lists.
type Record struct {
	ID           int
	Fields       map[string]string
	Labels       []string
	Comments     []Comment
	Tasks        []Task
	Reviews      []Review
	Blockers     []Blocker
	PullRequests []string
}

// Comment is a CSV-provenance comment. Author and Date stay empty when the
// cell carries no parsable trailing "(Author - Mon DD, YYYY)" suffix.
type Comment struct {
	Text   string
	Author string
	Date   string
}

// Task is a checklist entry with its completion flag.
type Task struct {
	Description string
	Complete    bool
}

// Review is a code-review entry folded from the review_type/reviewer/review_status triple.
type Review struct {
	Type     string
	Reviewer string
	Status   string
}

// Blocker is a blocker entry folded from the blocker/blocker_status pair.
type Blocker struct {
	Description string
	Status      string
}

// Field returns a scalar column value by normalized header name.
func (r *Record) Field(name string) string {
	return r.Fields[name]
}

// Title returns the item's title column.
func (r *Record) Title() string {
	return r.Fields["title"]
}

// Description returns the description column, already stripped of its
// leading tab by the normalizer.
func (r *Record) Description() string {
	return r.Fields["description"]
}

// Type returns the item type column (epic, feature, bug, chore, release).
func (r *Record) Type() string {
	return strings.ToLower(r.Fields["type"])
}

// State returns the lifecycle state column.
func (r *Record) State() string {
	return strings.ToLower(r.Fields["current_state"])
}

// IsEpic reports whether the record is an epic row rather than a story.
func (r *Record) IsEpic() bool {
	return r.Type() == "epic"
}

// Estimate returns the story's point estimate, or nil when the story is
// unestimated.
func (r *Record) Estimate() *int {
	value := strings.TrimSpace(r.Fields["estimate"])
	if value == "" {
		return nil
	}

	points, err := strconv.Atoi(value)
	if err != nil || points < 0 {
		return nil
	}
	return &points
}

// CreatedAt parses the created_at column. Unparseable values log a warning
// and yield the zero time, which sorts ahead of real timestamps.
func (r *Record) CreatedAt() time.Time {
	return parseDate(r.ID, r.Fields["created_at"])
}

// dateFormats lists the creation-date layouts seen across export versions,
// tried in order.
var dateFormats = []string{
	"Jan 2, 2006",
	"2006-01-02",
	time.RFC3339,
	"Jan 2, 2006 15:04",
}

func parseDate(id int, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}

	slog.Warn("Unparseable date in export", "id", id, "value", value)
	return time.Time{}
}
