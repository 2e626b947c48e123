package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agilehq/storyforge/internal/pipeline"
	"github.com/agilehq/storyforge/internal/store"
	"github.com/agilehq/storyforge/internal/transcript"
)

type submitRequest struct {
	Transcript string `json:"transcript"`
}

type submitResponse struct {
	TranscriptID string            `json:"transcript_id"`
	Status       transcript.Status `json:"status"`
}

type storiesResponse struct {
	TranscriptID string             `json:"transcript_id"`
	Status       transcript.Status  `json:"status"`
	Stories      []transcript.Story `json:"stories"`
}

type publishRequest struct {
	TranscriptID    string             `json:"transcript_id"`
	ApprovedStories []transcript.Story `json:"approved_stories"`
}

type publishResponse struct {
	TranscriptID     string                     `json:"transcript_id"`
	PublishedResults []transcript.PublishResult `json:"published_results"`
}

// submitTranscript handles POST /api/v1/transcripts. The transcript is
// normalized and extracted synchronously; 202 signals that the record has
// already advanced to ReadyForReview by the time the response lands.
func (s *Server) submitTranscript(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "missing 'transcript' field")
		return
	}

	rec, err := s.pipeline.Intake(r.Context(), req.Transcript)
	if err != nil {
		slog.Error("transcript intake failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process transcript")
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		TranscriptID: rec.ID,
		Status:       rec.Status,
	})
}

// getStories handles GET /api/v1/stories?transcript_id=. Records are
// returned at any status; callers treat Submitted as still in flight.
func (s *Server) getStories(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("transcript_id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing 'transcript_id' parameter")
		return
	}

	rec, err := s.pipeline.Get(r.Context(), id)
	if pipeline.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "transcript not found")
		return
	}
	if err != nil {
		slog.Error("fetch stories failed", "transcript_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch transcript")
		return
	}

	writeJSON(w, http.StatusOK, storiesResponse{
		TranscriptID: rec.ID,
		Status:       rec.Status,
		Stories:      rec.Stories,
	})
}

// publishStories handles POST /api/v1/stories/publish. Per-item tracker
// failures are not request errors; they appear inline in published_results.
func (s *Server) publishStories(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.TranscriptID == "" || len(req.ApprovedStories) == 0 {
		writeError(w, http.StatusBadRequest, "both 'transcript_id' and 'approved_stories' are required")
		return
	}

	if !s.trackerReady {
		writeError(w, http.StatusInternalServerError, "work-item tracker is not configured")
		return
	}

	rec, err := s.pipeline.Publish(r.Context(), req.TranscriptID, req.ApprovedStories)
	switch {
	case pipeline.IsNotFound(err):
		writeError(w, http.StatusNotFound, "transcript not found")
		return
	case errors.Is(err, pipeline.ErrNoApprovedStories):
		writeError(w, http.StatusBadRequest, "approved stories list is empty")
		return
	case errors.Is(err, pipeline.ErrNotReviewable):
		writeError(w, http.StatusConflict, "transcript has not finished extraction")
		return
	case errors.Is(err, store.ErrVersionConflict):
		writeError(w, http.StatusConflict, "transcript was modified concurrently, retry")
		return
	case err != nil:
		slog.Error("publish failed", "transcript_id", req.TranscriptID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to publish stories")
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{
		TranscriptID:     rec.ID,
		PublishedResults: rec.PublishedResults,
	})
}
