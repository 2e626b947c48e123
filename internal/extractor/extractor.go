// Package extractor turns a normalized transcript into candidate user
// stories by prompting a generative model and parsing its completion.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agilehq/storyforge/internal/transcript"
)

const maxCompletionTokens = 1500

// ErrCollaborator marks a failed call to the completion collaborator. The
// pipeline recovers from it by degrading to an empty story list.
var ErrCollaborator = errors.New("completion collaborator failed")

// Completer is the narrow crossing into the generative-model collaborator:
// given a prompt, return a raw text completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Extractor struct {
	llm    Completer
	logger *slog.Logger
}

func New(llm Completer, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract prompts the model with the normalized transcript and parses the
// completion into stories. Collaborator and parse failures come back as
// typed errors (ErrCollaborator, ErrMalformedResponse) so callers can tell
// "model returned nothing" from "model call or output broke"; neither is a
// hard failure for the pipeline.
func (e *Extractor) Extract(ctx context.Context, normalized string) ([]transcript.Story, error) {
	prompt := BuildPrompt(normalized)

	e.logger.Info("extracting stories from transcript", "transcript_len", len(normalized))

	raw, err := e.llm.Complete(ctx, prompt, maxCompletionTokens)
	if err != nil {
		e.logger.Error("completion call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}

	stories, err := ParseStories(raw)
	if err != nil {
		e.logger.Error("failed to parse extraction response", "error", err, "raw", raw)
		return nil, err
	}

	e.logger.Info("extraction complete", "stories", len(stories))
	return stories, nil
}
