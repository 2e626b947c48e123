// Package transcript holds the domain types for the transcript-to-work-item
// pipeline: the persisted record, its status lifecycle, extracted stories,
// and per-story publish outcomes.
package transcript

import "time"

// Status is the lifecycle state of a transcript record. Transitions only
// move forward: Submitted -> ReadyForReview -> Published.
type Status string

const (
	StatusSubmitted      Status = "Submitted"
	StatusReadyForReview Status = "ReadyForReview"
	StatusPublished      Status = "Published"
)

// rank orders statuses for monotonicity checks. Unknown statuses rank below
// Submitted so a corrupted record can never block a forward transition.
func (s Status) rank() int {
	switch s {
	case StatusSubmitted:
		return 1
	case StatusReadyForReview:
		return 2
	case StatusPublished:
		return 3
	}
	return 0
}

// AtLeast reports whether s has reached other in the forward-only
// lifecycle. Equal statuses count as reached, so idempotent re-application
// of a step is allowed while regression is not.
func (s Status) AtLeast(other Status) bool {
	return s.rank() >= other.rank()
}

// Record is the persisted state of one submitted transcript. The transcript
// text is normalized once at intake and immutable afterwards. Version is an
// optimistic-concurrency token: every successful update increments it, and
// stale writers are rejected instead of silently overwriting each other.
type Record struct {
	ID               string          `json:"id"`
	Transcript       string          `json:"transcript"`
	Status           Status          `json:"status"`
	Stories          []Story         `json:"stories"`
	PublishedResults []PublishResult `json:"published_results,omitempty"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Story is a candidate agile user story extracted from a transcript. Fields
// are advisory: the model is asked for storyPoints from {1,2,3,5,8} and a
// priority of High/Medium/Low, but out-of-set values pass through rather
// than being rejected.
type Story struct {
	Title              string   `json:"title"`
	UserStory          string   `json:"userStory,omitempty"`
	AcceptanceCriteria []string `json:"acceptanceCriteria,omitempty"`
	StoryPoints        float64  `json:"storyPoints,omitempty"`
	Priority           string   `json:"priority,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

// PublishResult is the per-story outcome of a publish fan-out. Exactly one
// of (WorkItemID, URL) or Error is populated.
type PublishResult struct {
	StoryTitle string `json:"story_title"`
	WorkItemID string `json:"work_item_id,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Succeeded reports whether the result carries a created work item.
func (r PublishResult) Succeeded() bool {
	return r.Error == ""
}
