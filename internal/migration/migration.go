// Package migration is the one-shot state machine that replays a Pivotal
// Tracker project into a Linear team: epics become projects, stories become
// issues, and comments, labels, states, attachments and ordering follow.
// Idempotency comes from back-reference lookups against the destination, not
// from any local state.
package migration

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alan/pivotal-to-linear/internal/github"
	"github.com/alan/pivotal-to-linear/internal/linear"
	"github.com/alan/pivotal-to-linear/internal/source"
)

// pivotalTag is added to every migrated issue's labels.
const pivotalTag = "pivotal"

// epicBackRef finds epic back-reference URLs inside existing project
// descriptions.
var epicBackRef = regexp.MustCompile(`https://www\.pivotaltracker\.com/epic/show/(\d+)`)

// Destination is the slice of the Linear client the migration uses.
type Destination interface {
	TeamByName(ctx context.Context, name string) (*linear.Team, error)
	States(ctx context.Context, teamID string) ([]linear.WorkflowState, error)
	CreateState(ctx context.Context, teamID, name, stateType string) (*linear.WorkflowState, error)
	Labels(ctx context.Context, teamID string) ([]linear.Label, error)
	CreateLabel(ctx context.Context, teamID, name string) (*linear.Label, error)
	Projects(ctx context.Context) ([]linear.Project, error)
	CreateProject(ctx context.Context, teamID, name, description string) (*linear.Project, error)
	FindIssueByBackRef(ctx context.Context, teamID, ref string) (*linear.Issue, error)
	CreateIssue(ctx context.Context, input linear.IssueCreateInput) (*linear.Issue, error)
	UpdateIssue(ctx context.Context, id string, input linear.IssueUpdateInput) error
	CreateComment(ctx context.Context, issueID, body string) error
	CreateAttachment(ctx context.Context, issueID, url, title, subtitle string) error
	Users(ctx context.Context) ([]linear.User, error)
	UnassignedIssues(ctx context.Context, teamID string) ([]linear.Issue, error)
	RequestUpload(ctx context.Context, filename, contentType string, size int) (*linear.UploadSlot, error)
	UploadFile(ctx context.Context, slot *linear.UploadSlot, data []byte) error
}

// Options configure a migration run.
type Options struct {
	// Team is the destination team name.
	Team string
	// Timezone renders API comment timestamps.
	Timezone *time.Location
	// DryRun turns every mutation into a logged no-op; reads still run.
	DryRun bool
	// GitHub decorates pull-request references when non-nil.
	GitHub *github.Client
}

// issueCursor tracks the most recently migrated issue and its sort
// position; the next created issue chains at position+1.
type issueCursor struct {
	id   string
	sort float64
}

// Migrator replays one source project into one destination team.
type Migrator struct {
	src    source.Source
	dest   Destination
	opts   Options
	report *Report

	teamID string
	users  []linear.User
	// states and labels map lowercased names to destination ids.
	states map[string]string
	labels map[string]string
	// projectByLabel maps a lowercased epic label to its project id.
	projectByLabel map[string]string
	cursor         *issueCursor
}

// New creates a migrator over a source and a destination.
func New(src source.Source, dest Destination, opts Options) *Migrator {
	if opts.Timezone == nil {
		opts.Timezone = time.UTC
	}
	return &Migrator{
		src:            src,
		dest:           dest,
		opts:           opts,
		report:         newReport(opts.Team, opts.DryRun),
		states:         make(map[string]string),
		labels:         make(map[string]string),
		projectByLabel: make(map[string]string),
	}
}

// Report returns the run summary, complete once Run or Assign has returned.
func (m *Migrator) Report() *Report {
	return m.report
}

// Run executes the full migration: team and state setup, the epic pass,
// then the story pass. Individual epic and story failures are logged and
// counted; only setup failures abort the run.
func (m *Migrator) Run(ctx context.Context) error {
	defer m.report.finish()

	if err := m.prepare(ctx); err != nil {
		return err
	}
	if err := m.loadLabels(ctx); err != nil {
		return err
	}
	if err := m.ensureStates(ctx); err != nil {
		return err
	}

	if err := m.migrateEpics(ctx); err != nil {
		return err
	}
	return m.migrateStories(ctx)
}

// prepare resolves the team and loads the user list; shared by the migrate
// and assign passes.
func (m *Migrator) prepare(ctx context.Context) error {
	team, err := m.dest.TeamByName(ctx, m.opts.Team)
	if err != nil {
		return err
	}
	m.teamID = team.ID
	slog.Info("Resolved destination team", "team", team.Name, "id", team.ID)

	if m.users, err = m.dest.Users(ctx); err != nil {
		return err
	}
	return nil
}

func (m *Migrator) loadLabels(ctx context.Context) error {
	labels, err := m.dest.Labels(ctx, m.teamID)
	if err != nil {
		return err
	}
	for _, label := range labels {
		m.labels[strings.ToLower(label.Name)] = label.ID
	}
	return nil
}

// ensureStates makes every mapped workflow-state name exist on the team,
// creating the missing ones. Existing states are matched by name,
// case-insensitively, and never touched.
func (m *Migrator) ensureStates(ctx context.Context) error {
	existing, err := m.dest.States(ctx, m.teamID)
	if err != nil {
		return err
	}
	for _, state := range existing {
		m.states[strings.ToLower(state.Name)] = state.ID
	}

	for _, name := range []string{"Triage", "Backlog", "Todo", "In Progress", "Finished", "Ready to Merge", "Done"} {
		key := strings.ToLower(name)
		if _, ok := m.states[key]; ok {
			continue
		}
		if m.opts.DryRun {
			slog.Info("Dry run: would create workflow state", "name", name)
			m.states[key] = "dry-run-state-" + key
			continue
		}
		state, err := m.dest.CreateState(ctx, m.teamID, name, stateTypes[name])
		if err != nil {
			return err
		}
		m.states[key] = state.ID
	}
	return nil
}

// migrateEpics creates one project per epic that has no back-referenced
// project yet, and fills the label → project map the story pass links
// through.
func (m *Migrator) migrateEpics(ctx context.Context) error {
	epics, err := m.src.Epics(ctx)
	if err != nil {
		return err
	}

	projects, err := m.dest.Projects(ctx)
	if err != nil {
		return err
	}
	// Existing projects are the ledger: scan their descriptions for epic
	// back-references.
	migrated := make(map[int]string)
	for _, project := range projects {
		if match := epicBackRef.FindStringSubmatch(project.Description); match != nil {
			if id, err := strconv.Atoi(match[1]); err == nil {
				migrated[id] = project.ID
			}
		}
	}

	for _, epic := range epics {
		label := ""
		if len(epic.Labels) > 0 {
			label = strings.ToLower(epic.Labels[0])
		}

		if projectID, ok := migrated[epic.ID]; ok {
			slog.Info("Epic already migrated, skipping", "epic", epic.ID, "project", projectID)
			if label != "" {
				m.projectByLabel[label] = projectID
			}
			m.report.Epics.Skipped++
			continue
		}

		projectID, err := m.migrateEpic(ctx, epic)
		if err != nil {
			slog.Error("Failed to migrate epic", "epic", epic.ID, "title", epic.Title, "error", err)
			m.report.fail("epic", epic.ID, err)
			continue
		}
		if label != "" {
			m.projectByLabel[label] = projectID
		}
		m.report.Epics.Created++
	}
	return nil
}

func (m *Migrator) migrateEpic(ctx context.Context, epic source.Item) (string, error) {
	comments, err := m.src.EpicComments(ctx, epic.ID)
	if err != nil {
		slog.Warn("Failed to fetch epic comments", "epic", epic.ID, "error", err)
	}

	thread := m.renderThread(ctx, epic.ID, comments)
	description := epicHeader(epic)
	if epic.Description != "" {
		description += "\n" + epic.Description + "\n"
	}
	if len(thread) > 0 {
		description += "\n" + commentsHeading + "\n"
		for _, c := range thread {
			description += "\n" + c + "\n"
		}
	}

	if m.opts.DryRun {
		slog.Info("Dry run: would create project", "epic", epic.ID, "name", epic.Title)
		return fmt.Sprintf("dry-run-project-%d", epic.ID), nil
	}

	project, err := m.dest.CreateProject(ctx, m.teamID, epic.Title, description)
	if err != nil {
		return "", err
	}
	slog.Info("Migrated epic", "epic", epic.ID, "project", project.ID, "name", epic.Title)
	return project.ID, nil
}

// migrateStories runs the ordered story pass. The deterministic sort plus
// the cursor chain reproduce the source board order in the destination.
func (m *Migrator) migrateStories(ctx context.Context) error {
	stories, err := m.src.Stories(ctx)
	if err != nil {
		return err
	}
	SortStories(stories)
	slog.Info("Migrating stories", "count", len(stories))

	for _, story := range stories {
		if err := m.migrateStory(ctx, story); err != nil {
			slog.Error("Failed to migrate story", "story", story.ID, "title", story.Title, "error", err)
			m.report.fail("story", story.ID, err)
		}
	}
	return nil
}

func (m *Migrator) migrateStory(ctx context.Context, story source.Item) error {
	ref := source.StoryURL(story.ID)

	existing, err := m.dest.FindIssueByBackRef(ctx, m.teamID, ref)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("Story already migrated, skipping", "story", story.ID, "issue", existing.Identifier)
		// The skipped issue still becomes the chain predecessor.
		m.cursor = &issueCursor{id: existing.ID, sort: existing.SortOrder}
		m.report.Stories.Skipped++
		return nil
	}

	prLines, prAttachments := m.decoratePullRequests(ctx, story.PullRequests)

	comments, err := m.src.StoryComments(ctx, story.ID)
	if err != nil {
		slog.Warn("Failed to fetch story comments", "story", story.ID, "error", err)
	}
	thread := m.renderThread(ctx, story.ID, comments)

	description, overflow := assembleDescription(storyHeader(story, prLines), story.Description, thread)

	labelIDs, err := m.resolveLabels(ctx, append(append([]string{}, story.Labels...), pivotalTag))
	if err != nil {
		return err
	}

	assigneeID := m.matchUser(story.Owner)
	if story.Owner != "" && assigneeID == "" {
		slog.Warn("No Linear user matches story owner", "story", story.ID, "owner", story.Owner)
	}

	stateID := m.states[strings.ToLower(destinationStateName(story.State))]

	if m.opts.DryRun {
		slog.Info("Dry run: would create issue", "story", story.ID, "title", story.Title,
			"state", destinationStateName(story.State), "labels", len(labelIDs), "comments", len(overflow))
		if m.cursor != nil {
			m.cursor = &issueCursor{id: "dry-run", sort: m.cursor.sort + 1}
		}
		m.report.Stories.Created++
		return nil
	}

	issue, err := m.dest.CreateIssue(ctx, linear.IssueCreateInput{
		TeamID:      m.teamID,
		Title:       story.Title,
		Description: description,
		LabelIDs:    labelIDs,
		Estimate:    story.Estimate,
		AssigneeID:  assigneeID,
	})
	if err != nil {
		return err
	}
	// The issue exists from here on: it becomes the chain predecessor even
	// if a follow-up step fails.
	next := &issueCursor{id: issue.ID, sort: issue.SortOrder}

	update := linear.IssueUpdateInput{StateID: stateID}
	if m.cursor != nil {
		position := m.cursor.sort + 1
		update.SortOrder = &position
		next.sort = position
	}
	if err := m.dest.UpdateIssue(ctx, issue.ID, update); err != nil {
		m.cursor = next
		return err
	}
	m.cursor = next

	for _, body := range overflow {
		if err := m.dest.CreateComment(ctx, issue.ID, body); err != nil {
			slog.Warn("Failed to post overflow comment", "issue", issue.Identifier, "error", err)
		}
	}

	for _, pr := range prAttachments {
		if err := m.dest.CreateAttachment(ctx, issue.ID, pr.url, pr.title, "pull request"); err != nil {
			slog.Warn("Failed to attach pull request", "issue", issue.Identifier, "url", pr.url, "error", err)
		}
	}

	m.linkProject(ctx, issue, story.Labels)

	slog.Info("Migrated story", "story", story.ID, "issue", issue.Identifier)
	m.report.Stories.Created++
	m.report.CreatedIssues = append(m.report.CreatedIssues, issue.Identifier)
	return nil
}

// linkProject attaches the issue to the project of the first story label
// that maps to a migrated epic. Remaining matches are ignored.
func (m *Migrator) linkProject(ctx context.Context, issue *linear.Issue, labels []string) {
	for _, label := range labels {
		projectID, ok := m.projectByLabel[strings.ToLower(label)]
		if !ok {
			continue
		}
		if err := m.dest.UpdateIssue(ctx, issue.ID, linear.IssueUpdateInput{ProjectID: projectID}); err != nil {
			slog.Warn("Failed to link issue to project", "issue", issue.Identifier, "project", projectID, "error", err)
		}
		return
	}
}

// resolveLabels maps label names to destination ids, creating missing
// labels. Matching is case-insensitive and cached for the run.
func (m *Migrator) resolveLabels(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		id, ok := m.labels[key]
		if !ok {
			if m.opts.DryRun {
				slog.Info("Dry run: would create label", "name", name)
				id = "dry-run-label-" + key
			} else {
				label, err := m.dest.CreateLabel(ctx, m.teamID, name)
				if err != nil {
					return nil, err
				}
				id = label.ID
			}
			m.labels[key] = id
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ownerPattern splits "Name <email>" owner strings.
var ownerPattern = regexp.MustCompile(`^(.*?)\s*<([^>]+)>$`)

// matchUser resolves an owner string against the destination users, by
// email first, then by name or display name. Returns "" when nothing
// matches.
func (m *Migrator) matchUser(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return ""
	}

	name, email := owner, ""
	if match := ownerPattern.FindStringSubmatch(owner); match != nil {
		name, email = strings.TrimSpace(match[1]), match[2]
	}

	if email != "" {
		for _, user := range m.users {
			if strings.EqualFold(user.Email, email) {
				return user.ID
			}
		}
	}
	for _, user := range m.users {
		if strings.EqualFold(user.Name, name) || strings.EqualFold(user.DisplayName, name) {
			return user.ID
		}
	}
	return ""
}

type prAttachment struct {
	url   string
	title string
}

// decoratePullRequests renders the story's pull-request list. With a GitHub
// client each PR shows its live state and attaches with its title; without
// one, or when a lookup fails, the raw URL is used.
func (m *Migrator) decoratePullRequests(ctx context.Context, urls []string) ([]string, []prAttachment) {
	lines := make([]string, 0, len(urls))
	attachments := make([]prAttachment, 0, len(urls))

	for _, url := range urls {
		line := "- " + url
		title := url
		if m.opts.GitHub != nil {
			if info, err := m.opts.GitHub.PullRequest(ctx, url); err != nil {
				slog.Warn("Failed to decorate pull request", "url", url, "error", err)
			} else {
				line = fmt.Sprintf("- %s (%s)", url, info.State)
				title = info.Title
			}
		}
		lines = append(lines, line)
		attachments = append(attachments, prAttachment{url: url, title: title})
	}
	return lines, attachments
}

// renderThread renders an item's comments, uploading each attachment and
// inlining it as Markdown. Failed downloads or uploads drop only the
// affected attachment.
func (m *Migrator) renderThread(ctx context.Context, itemID int, comments []source.Comment) []string {
	rendered := make([]string, 0, len(comments))
	for _, comment := range comments {
		var attachmentLines []string
		for _, att := range comment.Attachments {
			contentType := att.ContentType
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(att.Filename))
			}
			url, err := m.uploadAttachment(ctx, itemID, att, contentType)
			if err != nil {
				slog.Warn("Skipping attachment", "item", itemID, "filename", att.Filename, "error", err)
				continue
			}
			attachmentLines = append(attachmentLines, attachmentMarkdown(att.Filename, contentType, url))
		}
		rendered = append(rendered, renderComment(comment, m.opts.Timezone, attachmentLines))
	}
	return rendered
}

// uploadAttachment moves one file from the source to Linear's storage and
// returns its permanent asset URL. Dry runs skip the copy and reference the
// source URL instead.
func (m *Migrator) uploadAttachment(ctx context.Context, itemID int, att source.Attachment, contentType string) (string, error) {
	if m.opts.DryRun {
		slog.Info("Dry run: would upload attachment", "item", itemID, "filename", att.Filename)
		return att.DownloadURL, nil
	}

	data, err := m.src.Download(ctx, itemID, att)
	if err != nil {
		return "", err
	}

	slot, err := m.dest.RequestUpload(ctx, att.Filename, contentType, len(data))
	if err != nil {
		return "", err
	}
	if err := m.dest.UploadFile(ctx, slot, data); err != nil {
		return "", err
	}
	return slot.AssetURL, nil
}
