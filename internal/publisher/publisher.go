// Package publisher fans approved stories out to the external work-item
// tracker, one create call per story, collecting itemized outcomes.
package publisher

import (
	"context"
	"log/slog"

	"github.com/agilehq/storyforge/internal/transcript"
)

// WorkItemCreator is the narrow crossing into the work-tracking
// collaborator.
type WorkItemCreator interface {
	CreateWorkItem(ctx context.Context, title string) (id, url string, err error)
}

type Publisher struct {
	tracker WorkItemCreator
	logger  *slog.Logger
}

func New(tracker WorkItemCreator, logger *slog.Logger) *Publisher {
	return &Publisher{tracker: tracker, logger: logger}
}

// Publish creates one work item per approved story. Stories without a title
// are skipped silently. A failed create becomes an error entry in the
// results; it never aborts the rest of the batch. Result order follows the
// input order, minus skipped entries.
func (p *Publisher) Publish(ctx context.Context, stories []transcript.Story) []transcript.PublishResult {
	results := make([]transcript.PublishResult, 0, len(stories))

	for _, story := range stories {
		if story.Title == "" {
			p.logger.Warn("skipping approved story without title")
			continue
		}

		id, url, err := p.tracker.CreateWorkItem(ctx, story.Title)
		if err != nil {
			p.logger.Error("work item creation failed", "title", story.Title, "error", err)
			results = append(results, transcript.PublishResult{
				StoryTitle: story.Title,
				Error:      err.Error(),
			})
			continue
		}

		results = append(results, transcript.PublishResult{
			StoryTitle: story.Title,
			WorkItemID: id,
			URL:        url,
		})
	}

	return results
}
