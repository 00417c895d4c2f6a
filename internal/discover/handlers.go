package discover

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/HerbHall/netseed/internal/server"
	"github.com/HerbHall/netseed/internal/targets"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// runRequest is the body of POST /api/v1/discover/run.
type runRequest struct {
	IPs  []string `json:"ips"`
	CIDR string   `json:"cidr"`

	// NamePrefix is accepted for forward compatibility with device naming
	// customization; the reconciliation algorithm does not use it yet.
	NamePrefix string `json:"name_prefix"`
}

// handleRun executes one reconciliation run and returns the aggregate report.
func (m *Module) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body: "+err.Error(), r.URL.Path)
		return
	}

	targetAddrs, err := targets.Expand(req.IPs, req.CIDR, m.maxTargets)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}

	if req.NamePrefix != "" {
		m.logger.Debug("name_prefix accepted but not applied", zap.String("name_prefix", req.NamePrefix))
	}

	started := time.Now().UTC()
	report := m.engine.Run(r.Context(), targetAddrs)
	finished := time.Now().UTC()

	report.RunID = uuid.New().String()
	m.metrics.RunDuration.Observe(finished.Sub(started).Seconds())

	run := &Run{
		ID:           report.RunID,
		StartedAt:    started,
		FinishedAt:   finished,
		TargetCount:  len(report.Scanned),
		CreatedCount: len(report.Created),
		UpdatedCount: len(report.Updated),
		SkippedCount: len(report.Skipped),
		ErrorCount:   len(report.Errors),
		Report:       report,
	}
	if m.runs != nil {
		if err := m.runs.Create(r.Context(), run); err != nil {
			// History is best-effort; the report still goes back to the caller.
			m.logger.Error("failed to persist run", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	m.logger.Info("reconciliation run finished",
		zap.String("run_id", report.RunID),
		zap.Int("scanned", len(report.Scanned)),
		zap.Int("created", len(report.Created)),
		zap.Int("updated", len(report.Updated)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("errors", len(report.Errors)),
	)

	writeJSON(w, http.StatusOK, report)
}

// handleListRuns returns recent runs, newest first, without full reports.
func (m *Module) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if m.runs == nil {
		server.InternalError(w, "run history not available", r.URL.Path)
		return
	}

	runs, err := m.runs.List(r.Context(), parseLimit(r, 50))
	if err != nil {
		m.logger.Error("failed to list runs", zap.Error(err))
		server.InternalError(w, "failed to list runs", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one run including its full report.
func (m *Module) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		server.BadRequest(w, "id is required", r.URL.Path)
		return
	}
	if m.runs == nil {
		server.InternalError(w, "run history not available", r.URL.Path)
		return
	}

	run, err := m.runs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			server.NotFound(w, "run not found", r.URL.Path)
			return
		}
		m.logger.Error("failed to get run", zap.String("id", id), zap.Error(err))
		server.InternalError(w, "failed to get run", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// parseLimit extracts a limit query parameter with a default value.
func parseLimit(r *http.Request, defaultLimit int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return defaultLimit
}
