package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/agilehq/storyforge/internal/transcript"
)

// ErrMalformedResponse marks a completion that could not be parsed as the
// expected stories JSON. Callers distinguish it from a well-formed response
// that simply contained no stories.
var ErrMalformedResponse = errors.New("malformed extraction response")

type storiesEnvelope struct {
	Stories []transcript.Story `json:"stories"`
}

// ParseStories extracts the story list from a raw model completion. Models
// often prepend commentary, so everything before the first '{' is discarded.
// A payload that fails to parse, or parses to something other than the
// expected envelope, returns ErrMalformedResponse; a valid envelope with a
// missing or empty stories key returns an empty list. Story fields are not
// validated beyond shape.
func ParseStories(raw string) ([]transcript.Story, error) {
	start := strings.IndexByte(raw, '{')
	if start == -1 {
		return nil, fmt.Errorf("%w: no JSON object in completion", ErrMalformedResponse)
	}

	var envelope storiesEnvelope
	if err := json.Unmarshal([]byte(raw[start:]), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if envelope.Stories == nil {
		return []transcript.Story{}, nil
	}
	return envelope.Stories, nil
}
