package publisher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/agilehq/storyforge/internal/transcript"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTracker fails any title listed in failTitles and numbers successful
// work items in call order.
type fakeTracker struct {
	failTitles map[string]bool
	calls      int
}

func (f *fakeTracker) CreateWorkItem(_ context.Context, title string) (string, string, error) {
	f.calls++
	if f.failTitles[title] {
		return "", "", errors.New("tracker unavailable")
	}
	id := fmt.Sprintf("%d", f.calls)
	return id, "https://dev.azure.com/acme/web/_workitems/edit/" + id, nil
}

func TestPublish_AllSucceed(t *testing.T) {
	tracker := &fakeTracker{}
	p := New(tracker, discardLogger())

	results := p.Publish(context.Background(), []transcript.Story{
		{Title: "Login"},
		{Title: "Search"},
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.Succeeded() {
			t.Errorf("result %d should succeed: %+v", i, r)
		}
	}
	if results[0].StoryTitle != "Login" || results[1].StoryTitle != "Search" {
		t.Errorf("result order should follow input order: %+v", results)
	}
}

func TestPublish_MiddleFailureKeepsOrder(t *testing.T) {
	tracker := &fakeTracker{failTitles: map[string]bool{"Search": true}}
	p := New(tracker, discardLogger())

	results := p.Publish(context.Background(), []transcript.Story{
		{Title: "Login"},
		{Title: "Search"},
		{Title: "Export"},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Succeeded() {
		t.Errorf("expected success at position 0: %+v", results[0])
	}
	if results[1].Succeeded() {
		t.Errorf("expected error at position 1: %+v", results[1])
	}
	if results[1].Error == "" || results[1].StoryTitle != "Search" {
		t.Errorf("error entry should carry title and message: %+v", results[1])
	}
	if !results[2].Succeeded() {
		t.Errorf("expected success at position 2: %+v", results[2])
	}
	if tracker.calls != 3 {
		t.Errorf("one failure must not abort the batch, got %d calls", tracker.calls)
	}
}

func TestPublish_SkipsEmptyTitles(t *testing.T) {
	tracker := &fakeTracker{}
	p := New(tracker, discardLogger())

	results := p.Publish(context.Background(), []transcript.Story{
		{Title: ""},
		{Title: "Login"},
		{},
	})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].StoryTitle != "Login" {
		t.Errorf("unexpected result: %+v", results[0])
	}
	if tracker.calls != 1 {
		t.Errorf("empty titles must not reach the tracker, got %d calls", tracker.calls)
	}
}

func TestPublish_EmptyInput(t *testing.T) {
	p := New(&fakeTracker{}, discardLogger())

	results := p.Publish(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
