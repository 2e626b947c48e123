package extractor

import (
	"errors"
	"testing"
)

func TestParseStories_SingleTitleOnly(t *testing.T) {
	stories, err := ParseStories(`{"stories":[{"title":"A User Login Feature"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("expected 1 story, got %d", len(stories))
	}
	s := stories[0]
	if s.Title != "A User Login Feature" {
		t.Errorf("expected title, got %q", s.Title)
	}
	if s.UserStory != "" || s.Priority != "" || s.StoryPoints != 0 {
		t.Errorf("expected absent fields to default, got %+v", s)
	}
	if len(s.AcceptanceCriteria) != 0 || len(s.Tags) != 0 {
		t.Errorf("expected empty criteria and tags, got %+v", s)
	}
}

func TestParseStories_FullStory(t *testing.T) {
	raw := `{
		"stories": [
			{
				"title": "User Login Feature",
				"userStory": "As a user, I want to log in so that I can access personalized content.",
				"acceptanceCriteria": ["Valid credentials allow login", "Invalid credentials show error"],
				"storyPoints": 3,
				"priority": "High",
				"tags": ["Authentication", "UI"]
			}
		]
	}`
	stories, err := ParseStories(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("expected 1 story, got %d", len(stories))
	}
	if stories[0].StoryPoints != 3 {
		t.Errorf("expected 3 story points, got %v", stories[0].StoryPoints)
	}
	if stories[0].Priority != "High" {
		t.Errorf("expected High priority, got %q", stories[0].Priority)
	}
	if len(stories[0].AcceptanceCriteria) != 2 {
		t.Errorf("expected 2 acceptance criteria, got %d", len(stories[0].AcceptanceCriteria))
	}
}

func TestParseStories_LeadingCommentary(t *testing.T) {
	raw := "Sure! Here are the stories you asked for:\n" +
		`{"stories":[{"title":"Search"},{"title":"Export"}]}`
	stories, err := ParseStories(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(stories))
	}
}

func TestParseStories_OutOfSetValuesPassThrough(t *testing.T) {
	stories, err := ParseStories(`{"stories":[{"title":"Odd","storyPoints":13,"priority":"Urgent"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stories[0].StoryPoints != 13 {
		t.Errorf("expected out-of-set points to pass through, got %v", stories[0].StoryPoints)
	}
	if stories[0].Priority != "Urgent" {
		t.Errorf("expected out-of-set priority to pass through, got %q", stories[0].Priority)
	}
}

func TestParseStories_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"plain garbage", "this is not json"},
		{"truncated object", `{"stories":[{"title":"A"`},
		{"stories not a sequence", `{"stories":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stories, err := ParseStories(tt.raw)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
			if len(stories) != 0 {
				t.Errorf("expected no stories, got %d", len(stories))
			}
		})
	}
}

func TestParseStories_MissingStoriesKey(t *testing.T) {
	stories, err := ParseStories(`{"something":"else"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stories) != 0 {
		t.Errorf("expected empty list for missing stories key, got %d", len(stories))
	}
}
