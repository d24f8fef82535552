package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-simeval/internal/analysis"
	"github.com/nerrad567/gray-logic-simeval/internal/evaluation"
	"github.com/nerrad567/gray-logic-simeval/internal/movement"
	"github.com/nerrad567/gray-logic-simeval/internal/timeline"
)

// maxListLimit caps the limit query parameter on GET /runs.
const maxListLimit = 200

// startRunRequest is the POST /runs body. Paths are resolved on the server.
type startRunRequest struct {
	TimelineFile  string           `json:"timeline_file"`
	ItineraryFile string           `json:"itinerary_file,omitempty"`
	Events        []timeline.Event `json:"events,omitempty"`
}

// runResult is the POST /runs response.
type runResult struct {
	ID               string             `json:"id"`
	ReportPath       string             `json:"report_path"`
	EventCount       int                `json:"event_count"`
	SynthesizedCount int                `json:"synthesized_count"`
	ReplacedCount    int                `json:"replaced_count"`
	RuleEventCount   int                `json:"rule_event_count"`
	DurationMS       int64              `json:"duration_ms"`
	Report           *evaluation.Report `json:"report"`
}

// handleListRuns returns recent runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		writeInternalError(w, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []evaluation.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleStartRun executes an analysis run synchronously and returns its
// result.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeUnavailable(w, "run execution is not enabled")
		return
	}

	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.TimelineFile == "" && len(req.Events) == 0 {
		writeValidationError(w, "timeline_file or events is required")
		return
	}
	for i, ev := range req.Events {
		if err := ev.Validate(); err != nil {
			writeValidationError(w, "event "+strconv.Itoa(i)+": "+err.Error())
			return
		}
	}

	res, err := s.runner.Run(r.Context(), analysis.Input{
		Events:        req.Events,
		TimelineFile:  req.TimelineFile,
		ItineraryFile: req.ItineraryFile,
	})
	if err != nil {
		if isInputError(err) {
			writeValidationError(w, err.Error())
			return
		}
		s.logger.Error("run failed", "error", err)
		writeInternalError(w, "run failed")
		return
	}

	writeJSON(w, http.StatusCreated, runResult{
		ID:               res.RunID,
		ReportPath:       res.ReportPath,
		EventCount:       res.EventCount,
		SynthesizedCount: res.SynthesizedCount,
		ReplacedCount:    res.ReplacedCount,
		RuleEventCount:   res.RuleEventCount,
		DurationMS:       res.Duration.Round(time.Millisecond).Milliseconds(),
		Report:           res.Report,
	})
}

// isInputError reports whether err was caused by the request's inputs rather
// than by the server.
func isInputError(err error) bool {
	for _, target := range []error{
		analysis.ErrNoInput,
		fs.ErrNotExist,
		timeline.ErrMalformedIdentifier,
		timeline.ErrInvalidEvent,
		timeline.ErrEmptyTimeline,
		movement.ErrInvalidItinerary,
		movement.ErrDuplicateWaypoint,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleGetRun returns a run with its full breakdown.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleGetReport returns the run's report in the text artifact format.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(run.Report.Format())
}

// handleGetEvents returns the stored post-pipeline timeline of a run.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	if s.timelines == nil {
		writeNotFound(w, "event storage is not enabled")
		return
	}

	id := chi.URLParam(r, "id")
	events, err := s.timelines.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, timeline.ErrRunNotFound) {
			writeNotFound(w, "run not found")
			return
		}
		s.logger.Error("failed to load events", "run_id", id, "error", err)
		writeInternalError(w, "failed to load events")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := timeline.WriteJSON(w, events); err != nil {
		s.logger.Warn("failed to write events", "run_id", id, "error", err)
	}
}

// lookupRun fetches the run named by the {id} URL parameter, writing the
// error response itself when it fails.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*evaluation.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, evaluation.ErrRunNotFound) {
			writeNotFound(w, "run not found")
			return nil, false
		}
		s.logger.Error("failed to get run", "run_id", id, "error", err)
		writeInternalError(w, "failed to get run")
		return nil, false
	}
	return run, true
}
