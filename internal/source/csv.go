package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/alan/pivotal-to-linear/internal/export"
)

// CSVSource reads items from a normalized export. Comment threads fall back
// to the live API for items with a sidecar attachment directory, because
// only the API reveals which comment owns which file; attachment bytes
// prefer the sidecar file on disk and fall back to the API download.
type CSVSource struct {
	export  *export.Export
	csvPath string
	// sidecars holds the item ids with a numerically-named attachment
	// directory next to the export.
	sidecars map[int]bool
	api      *APISource
}

// NewCSVSource builds a source over a parsed export. The API source backs
// comment and attachment fetches that the export cannot answer.
func NewCSVSource(exp *export.Export, csvPath string, sidecars map[int]bool, api *APISource) *CSVSource {
	return &CSVSource{
		export:   exp,
		csvPath:  csvPath,
		sidecars: sidecars,
		api:      api,
	}
}

// Epics returns the export's epic records in file order.
func (s *CSVSource) Epics(_ context.Context) ([]Item, error) {
	records := s.export.Epics()
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			ID:          rec.ID,
			Title:       rec.Title(),
			Description: rec.Description(),
			Labels:      rec.Labels,
			CreatedAt:   rec.CreatedAt(),
		})
	}
	return items, nil
}

// Stories returns the export's story records in file order, sub-lists
// included.
func (s *CSVSource) Stories(_ context.Context) ([]Item, error) {
	records := s.export.Stories()
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		item := Item{
			ID:           rec.ID,
			Title:        rec.Title(),
			Description:  rec.Description(),
			State:        rec.State(),
			Labels:       rec.Labels,
			CreatedAt:    rec.CreatedAt(),
			Owner:        rec.Field("owned_by"),
			Requester:    rec.Field("requested_by"),
			Estimate:     rec.Estimate(),
			PullRequests: rec.PullRequests,
		}
		for _, task := range rec.Tasks {
			item.Tasks = append(item.Tasks, Task{Description: task.Description, Complete: task.Complete})
		}
		for _, review := range rec.Reviews {
			item.Reviews = append(item.Reviews, Review{Type: review.Type, Reviewer: review.Reviewer, Status: review.Status})
		}
		for _, blocker := range rec.Blockers {
			item.Blockers = append(item.Blockers, Blocker{Description: blocker.Description, Status: blocker.Status})
		}
		items = append(items, item)
	}
	return items, nil
}

// EpicComments returns an epic's thread, live when a sidecar directory
// exists for the epic.
func (s *CSVSource) EpicComments(ctx context.Context, epicID int) ([]Comment, error) {
	if s.sidecars[epicID] {
		slog.Debug("Epic has an attachment directory, fetching comments live", "epic", epicID)
		return s.api.EpicComments(ctx, epicID)
	}
	return s.recordComments(epicID), nil
}

// StoryComments returns a story's thread, live when a sidecar directory
// exists for the story.
func (s *CSVSource) StoryComments(ctx context.Context, storyID int) ([]Comment, error) {
	if s.sidecars[storyID] {
		slog.Debug("Story has an attachment directory, fetching comments live", "story", storyID)
		return s.api.StoryComments(ctx, storyID)
	}
	return s.recordComments(storyID), nil
}

// Download reads the sidecar file for the item when one exists, else falls
// back to the API download.
func (s *CSVSource) Download(ctx context.Context, itemID int, att Attachment) ([]byte, error) {
	path := export.SidecarPath(s.csvPath, itemID, att.Filename)
	data, err := os.ReadFile(path) //nolint:gosec // Sidecar path is derived from the configured export
	if err == nil {
		slog.Debug("Read attachment from sidecar directory", "item", itemID, "path", path)
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read sidecar attachment %s: %w", path, err)
	}

	return s.api.Download(ctx, itemID, att)
}

func (s *CSVSource) recordComments(id int) []Comment {
	rec := s.export.Records[id]
	if rec == nil {
		return nil
	}

	comments := make([]Comment, 0, len(rec.Comments))
	for _, c := range rec.Comments {
		comments = append(comments, Comment{
			Author:  c.Author,
			Body:    c.Text,
			RawDate: c.Date,
		})
	}
	return comments
}
