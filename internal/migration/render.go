package migration

import (
	"fmt"
	"strings"
	"time"

	"github.com/alan/pivotal-to-linear/internal/source"
)

const (
	// descriptionLimit caps an issue description. A story whose header,
	// body and comment thread exceed it gets the thread posted as issue
	// comments instead.
	descriptionLimit = 60000

	// commentsSeparateMarker replaces an inline thread that overflowed
	// the description.
	commentsSeparateMarker = "_Comments migrated separately._"

	// truncatedMarker closes a single comment that is itself too large.
	truncatedMarker = "… _(truncated)_"

	// commentsHeading opens a rendered comment thread.
	commentsHeading = "## Comments"

	// commentDateFormat renders exact API timestamps. CSV dates stay the
	// coarse strings the export carries.
	commentDateFormat = "Jan 2, 2006 3:04 PM"
)

// storyHeader renders the structured block above the story body: source
// link, people, estimate, pull requests, and the literal task, review and
// blocker sections when the item carries them.
func storyHeader(item source.Item, prLines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Original story](%s)\n", source.StoryURL(item.ID))

	if item.Owner != "" {
		fmt.Fprintf(&b, "\n**Owner:** %s", item.Owner)
	}
	if item.Requester != "" {
		fmt.Fprintf(&b, "\n**Requester:** %s", item.Requester)
	}
	if item.Estimate != nil {
		fmt.Fprintf(&b, "\n**Estimate:** %d", *item.Estimate)
	}
	b.WriteString("\n")

	if len(prLines) > 0 {
		b.WriteString("\n**Pull requests:**\n")
		for _, line := range prLines {
			b.WriteString(line + "\n")
		}
	}

	if len(item.Tasks) > 0 {
		b.WriteString("\n**Tasks:**\n")
		for _, task := range item.Tasks {
			box := " "
			if task.Complete {
				box = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", box, task.Description)
		}
	}

	if len(item.Reviews) > 0 {
		b.WriteString("\n**Reviews:**\n")
		for _, review := range item.Reviews {
			fmt.Fprintf(&b, "- %s by %s: %s\n", review.Type, review.Reviewer, review.Status)
		}
	}

	if len(item.Blockers) > 0 {
		b.WriteString("\n**Blockers:**\n")
		for _, blocker := range item.Blockers {
			fmt.Fprintf(&b, "- %s (%s)\n", blocker.Description, blocker.Status)
		}
	}

	return b.String()
}

// epicHeader renders the top of a project description: source link and the
// epic's linking label.
func epicHeader(epic source.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Original epic](%s)\n", source.EpicURL(epic.ID))
	if len(epic.Labels) > 0 {
		fmt.Fprintf(&b, "\n**Label:** %s\n", epic.Labels[0])
	}
	return b.String()
}

// renderComment renders one thread entry. attachmentLines are the already
// uploaded Markdown references for the comment's files.
func renderComment(c source.Comment, tz *time.Location, attachmentLines []string) string {
	author := c.Author
	if author == "" {
		author = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s):\n%s", author, commentDate(c, tz), c.Body)
	for _, line := range attachmentLines {
		b.WriteString("\n" + line)
	}
	return b.String()
}

// commentDate picks the provenance-appropriate date rendering: the coarse
// export string when present, else the exact API timestamp in the
// configured timezone.
func commentDate(c source.Comment, tz *time.Location) string {
	if c.RawDate != "" {
		return c.RawDate
	}
	if !c.CreatedAt.IsZero() {
		return c.CreatedAt.In(tz).Format(commentDateFormat)
	}
	return "unknown date"
}

// attachmentMarkdown renders an uploaded attachment reference: image syntax
// for image/* content, a plain link for everything else.
func attachmentMarkdown(filename, contentType, url string) string {
	if strings.HasPrefix(contentType, "image/") {
		return fmt.Sprintf("![%s](%s)", filename, url)
	}
	return fmt.Sprintf("[%s](%s)", filename, url)
}

// assembleDescription joins header, body and rendered comments into one
// description. When the whole exceeds the description limit, the thread is
// returned as overflow for posting as issue comments and the description
// carries a marker instead.
func assembleDescription(header, body string, comments []string) (string, []string) {
	base := header
	if body != "" {
		base += "\n" + body + "\n"
	}

	if len(comments) == 0 {
		return base, nil
	}

	full := base + "\n" + commentsHeading + "\n"
	for _, c := range comments {
		full += "\n" + c + "\n"
	}
	if len(full) <= descriptionLimit {
		return full, nil
	}

	overflow := make([]string, 0, len(comments))
	for _, c := range comments {
		if len(c) > descriptionLimit {
			c = c[:descriptionLimit-len(truncatedMarker)] + truncatedMarker
		}
		overflow = append(overflow, c)
	}
	return base + "\n" + commentsSeparateMarker + "\n", overflow
}
