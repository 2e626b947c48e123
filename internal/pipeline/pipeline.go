// Package pipeline coordinates the transcript lifecycle: intake and
// normalization, story extraction, and the publish fan-out, advancing each
// record through Submitted -> ReadyForReview -> Published.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agilehq/storyforge/internal/events"
	"github.com/agilehq/storyforge/internal/store"
	"github.com/agilehq/storyforge/internal/transcript"
)

var (
	// ErrNoApprovedStories means a publish request carried an empty
	// approved-story list.
	ErrNoApprovedStories = errors.New("no approved stories")

	// ErrNotReviewable means the record has not reached ReadyForReview, so
	// there is nothing a human could have approved yet.
	ErrNotReviewable = errors.New("transcript not ready for review")
)

// RecordStore is the keyed persistence collaborator. Get must distinguish
// "not found" from an empty record; Update must reject stale writes.
type RecordStore interface {
	Save(ctx context.Context, rec *transcript.Record) error
	Get(ctx context.Context, id string) (*transcript.Record, error)
	Update(ctx context.Context, rec *transcript.Record) error
}

// StoryExtractor derives candidate stories from a normalized transcript.
type StoryExtractor interface {
	Extract(ctx context.Context, normalized string) ([]transcript.Story, error)
}

// StoryPublisher fans approved stories out to the work-item tracker.
type StoryPublisher interface {
	Publish(ctx context.Context, stories []transcript.Story) []transcript.PublishResult
}

type Pipeline struct {
	store     RecordStore
	extractor StoryExtractor
	publisher StoryPublisher
	events    *events.Client
	logger    *slog.Logger
}

func New(s RecordStore, ext StoryExtractor, pub StoryPublisher, ev *events.Client, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:     s,
		extractor: ext,
		publisher: pub,
		events:    ev,
		logger:    logger,
	}
}

// Intake normalizes a raw transcript, persists it as Submitted, runs
// extraction synchronously, and advances the record to ReadyForReview with
// whatever stories came back. Extraction failure is not fatal: the record
// still reaches ReadyForReview, with an empty story list, so a human can
// always review it. The two persists are separate writes; a crash between
// them leaves a Submitted record that callers treat as incomplete.
func (p *Pipeline) Intake(ctx context.Context, rawTranscript string) (*transcript.Record, error) {
	rec := &transcript.Record{
		ID:         uuid.New().String(),
		Transcript: transcript.Normalize(rawTranscript),
		Status:     transcript.StatusSubmitted,
		Stories:    []transcript.Story{},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	if err := p.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save submitted record: %w", err)
	}

	p.logger.Info("transcript submitted", "transcript_id", rec.ID, "transcript_len", len(rec.Transcript))
	p.publishEvent(events.SubjectTranscriptSubmitted, map[string]any{
		"transcript_id": rec.ID,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})

	stories, err := p.extractor.Extract(ctx, rec.Transcript)
	if err != nil {
		// Degrade to an empty story list; the record must still reach a
		// reviewable state.
		p.logger.Error("extraction degraded to empty story list",
			"transcript_id", rec.ID,
			"error", err,
		)
		stories = []transcript.Story{}
	}

	rec.Status = transcript.StatusReadyForReview
	rec.Stories = stories
	if err := p.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("advance record to review: %w", err)
	}

	p.logger.Info("transcript ready for review", "transcript_id", rec.ID, "stories", len(stories))
	p.publishEvent(events.SubjectStoriesExtracted, map[string]any{
		"transcript_id": rec.ID,
		"stories":       len(stories),
	})

	return rec, nil
}

// Get fetches a record by id with no status filtering. Unknown ids surface
// store.ErrNotFound.
func (p *Pipeline) Get(ctx context.Context, id string) (*transcript.Record, error) {
	return p.store.Get(ctx, id)
}

// Publish fans the approved stories out to the tracker and advances the
// record to Published with the itemized results. Individual item failures
// appear inline in the results; they never fail the batch. Publishing a
// still-Submitted record is rejected, re-publishing an already Published
// one is allowed and overwrites the results.
func (p *Pipeline) Publish(ctx context.Context, id string, approved []transcript.Story) (*transcript.Record, error) {
	if len(approved) == 0 {
		return nil, ErrNoApprovedStories
	}

	rec, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.Status.AtLeast(transcript.StatusReadyForReview) {
		return nil, ErrNotReviewable
	}

	results := p.publisher.Publish(ctx, approved)

	rec.Status = transcript.StatusPublished
	rec.PublishedResults = results
	if err := p.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("advance record to published: %w", err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	p.logger.Info("stories published",
		"transcript_id", rec.ID,
		"published", succeeded,
		"failed", len(results)-succeeded,
	)
	p.publishEvent(events.SubjectStoriesPublished, map[string]any{
		"transcript_id": rec.ID,
		"published":     succeeded,
		"failed":        len(results) - succeeded,
	})

	return rec, nil
}

func (p *Pipeline) publishEvent(subject string, data any) {
	if err := p.events.Publish(subject, data); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// IsNotFound reports whether err means the transcript id is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
