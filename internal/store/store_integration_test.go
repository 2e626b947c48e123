//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/agilehq/storyforge/internal/transcript"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SaveGetUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := &transcript.Record{
		ID:         uuid.New().String(),
		Transcript: "Hello, everyone! Hi, John!",
		Status:     transcript.StatusSubmitted,
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != transcript.StatusSubmitted {
		t.Errorf("expected Submitted, got %s", got.Status)
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
	if len(got.Stories) != 0 {
		t.Errorf("expected empty stories, got %d", len(got.Stories))
	}

	got.Status = transcript.StatusReadyForReview
	got.Stories = []transcript.Story{{Title: "Search", StoryPoints: 5, Priority: "Medium"}}
	if err := s.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	again, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if again.Status != transcript.StatusReadyForReview {
		t.Errorf("expected ReadyForReview, got %s", again.Status)
	}
	if again.Version != 2 {
		t.Errorf("expected version 2, got %d", again.Version)
	}
	if len(again.Stories) != 1 || again.Stories[0].Title != "Search" {
		t.Errorf("unexpected stories: %+v", again.Stories)
	}
}

func TestIntegration_GetUnknown(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(context.Background(), uuid.New().String())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegration_StaleWriteRejected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	rec := &transcript.Record{
		ID:         uuid.New().String(),
		Transcript: "race me",
		Status:     transcript.StatusSubmitted,
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, _ := s.Get(ctx, rec.ID)
	second, _ := s.Get(ctx, rec.ID)

	first.Status = transcript.StatusReadyForReview
	if err := s.Update(ctx, first); err != nil {
		t.Fatalf("first update failed: %v", err)
	}

	second.Status = transcript.StatusReadyForReview
	if err := s.Update(ctx, second); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict for stale write, got %v", err)
	}
}
