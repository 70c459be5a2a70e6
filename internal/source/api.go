package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alan/pivotal-to-linear/internal/pivotal"
)

// APISource reads everything from the live Pivotal Tracker API.
type APISource struct {
	client *pivotal.Client

	// people caches the membership list; owner, requester and comment
	// authors all resolve through it.
	people map[int]pivotal.Person
}

// NewAPISource wraps a Pivotal client.
func NewAPISource(client *pivotal.Client) *APISource {
	return &APISource{client: client}
}

// Epics fetches the project's epics.
func (s *APISource) Epics(ctx context.Context) ([]Item, error) {
	epics, err := s.client.ListEpics(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(epics))
	for _, epic := range epics {
		items = append(items, Item{
			ID:          epic.ID,
			Title:       epic.Name,
			Description: epic.Description,
			Labels:      []string{epic.Label.Name},
			CreatedAt:   epic.CreatedAt,
		})
	}
	return items, nil
}

// Stories fetches every story with its checklist tasks; owner and requester
// ids resolve to "Name <email>" through the membership list.
func (s *APISource) Stories(ctx context.Context) ([]Item, error) {
	if err := s.loadPeople(ctx); err != nil {
		return nil, err
	}

	stories, err := s.client.ListStories(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(stories))
	for _, story := range stories {
		item := Item{
			ID:          story.ID,
			Title:       story.Name,
			Description: story.Description,
			State:       story.CurrentState,
			CreatedAt:   story.CreatedAt,
			Estimate:    story.Estimate,
			Requester:   s.person(story.RequestedByID),
		}
		if len(story.OwnerIDs) > 0 {
			item.Owner = s.person(story.OwnerIDs[0])
		}
		for _, label := range story.Labels {
			item.Labels = append(item.Labels, label.Name)
		}
		for _, pr := range story.PullRequests {
			item.PullRequests = append(item.PullRequests, pr.URL())
		}

		tasks, err := s.client.ListStoryTasks(ctx, story.ID)
		if err != nil {
			slog.Warn("Failed to fetch story tasks", "story", story.ID, "error", err)
		}
		for _, task := range tasks {
			item.Tasks = append(item.Tasks, Task{Description: task.Description, Complete: task.Complete})
		}

		items = append(items, item)
	}
	return items, nil
}

// EpicComments fetches one epic's comments with attachment metadata.
func (s *APISource) EpicComments(ctx context.Context, epicID int) ([]Comment, error) {
	comments, err := s.client.ListEpicComments(ctx, epicID)
	if err != nil {
		return nil, err
	}
	return s.convertComments(ctx, comments)
}

// StoryComments fetches one story's comments with attachment metadata.
func (s *APISource) StoryComments(ctx context.Context, storyID int) ([]Comment, error) {
	comments, err := s.client.ListStoryComments(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return s.convertComments(ctx, comments)
}

// Download fetches attachment bytes from the API.
func (s *APISource) Download(ctx context.Context, _ int, att Attachment) ([]byte, error) {
	return s.client.DownloadAttachment(ctx, pivotal.Attachment{
		ID:          att.ID,
		Filename:    att.Filename,
		ContentType: att.ContentType,
		DownloadURL: att.DownloadURL,
	})
}

func (s *APISource) convertComments(ctx context.Context, comments []pivotal.Comment) ([]Comment, error) {
	if err := s.loadPeople(ctx); err != nil {
		return nil, err
	}

	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		comment := Comment{
			Author:    s.person(c.PersonID),
			Body:      c.Text,
			CreatedAt: c.CreatedAt,
		}
		for _, att := range c.Attachments {
			comment.Attachments = append(comment.Attachments, Attachment{
				ID:          att.ID,
				Filename:    att.Filename,
				ContentType: att.ContentType,
				DownloadURL: att.DownloadURL,
			})
		}
		out = append(out, comment)
	}
	return out, nil
}

// loadPeople fetches the membership list once per run.
func (s *APISource) loadPeople(ctx context.Context) error {
	if s.people != nil {
		return nil
	}

	members, err := s.client.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load project members: %w", err)
	}

	s.people = make(map[int]pivotal.Person, len(members))
	for _, person := range members {
		s.people[person.ID] = person
	}
	return nil
}

// person renders a person id as "Name <email>". An id outside the
// membership list is a data-quality gap, not an error.
func (s *APISource) person(id int) string {
	if id == 0 {
		return ""
	}
	person, ok := s.people[id]
	if !ok {
		slog.Warn("Person not found in project memberships", "person", id)
		return ""
	}
	return person.Display()
}
