package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/export"
	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/service"
)

// pipelineTimeout bounds one background pipeline run.
const pipelineTimeout = 10 * time.Minute

// researchTargetLimit caps /api/research-targets.
const researchTargetLimit = 10

// Handler serves the dashboard API. RunPipeline is single-flight: a second
// trigger while one is in progress gets a 409.
type Handler struct {
	storage  service.Storage
	writer   *export.Writer
	pipeline func(ctx context.Context) error
	logger   *slog.Logger
	running  atomic.Bool
}

// NewHandler creates the dashboard handler set. pipeline runs the full
// fetch/analyze/research cycle and is invoked in a background goroutine.
func NewHandler(storage service.Storage, writer *export.Writer, pipeline func(ctx context.Context) error, logger *slog.Logger) *Handler {
	return &Handler{
		storage:  storage,
		writer:   writer,
		pipeline: pipeline,
		logger:   logger,
	}
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Status reports the last run and whether a pipeline is in flight.
// GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"pipeline_running": h.running.Load(),
		"has_research":     fileExists(h.writer.ResearchJSONPath()),
	}

	run, err := h.storage.GetLatestRun(r.Context())
	switch {
	case err == nil:
		status["last_run"] = map[string]any{
			"id":         run.ID,
			"status":     string(run.Status),
			"started_at": run.StartedAt.UTC().Format(time.RFC3339),
			"stats":      run.Stats,
		}
	case errors.Is(err, common.ErrNotFound):
		status["last_run"] = nil
	default:
		h.logger.Error("Failed to load latest run", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load run status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// RunPipeline starts one full pipeline cycle in the background.
// POST /api/run-pipeline
func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	if !h.running.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"success": false,
			"message": "a pipeline run is already in progress",
		})
		return
	}

	go func() {
		defer h.running.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
		defer cancel()

		if err := h.pipeline(ctx); err != nil {
			h.logger.Error("Pipeline run failed", "error", err)
			return
		}
		h.logger.Info("Pipeline run finished")
	}()

	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"message": "pipeline started",
	})
}

// Opportunities returns the latest completed run's opportunity set.
// GET /api/opportunities
func (h *Handler) Opportunities(w http.ResponseWriter, r *http.Request) {
	opportunities, err := h.storage.GetLatestOpportunities(r.Context())
	if errors.Is(err, common.ErrNotFound) {
		writeJSON(w, http.StatusOK, []model.Opportunity{})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load opportunities", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load opportunities")
		return
	}
	writeJSON(w, http.StatusOK, opportunities)
}

// ResearchData returns the latest research report.
// GET /api/research-data
func (h *Handler) ResearchData(w http.ResponseWriter, r *http.Request) {
	report, err := h.loadReport()
	if err != nil {
		writeError(w, http.StatusNotFound, "no research data available")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ResearchTargets returns the top combined opportunities that have a live
// price, for manual research.
// GET /api/research-targets
func (h *Handler) ResearchTargets(w http.ResponseWriter, r *http.Request) {
	report, err := h.loadReport()
	if err != nil {
		writeJSON(w, http.StatusOK, []model.EnrichedOpportunity{})
		return
	}

	targets := make([]model.EnrichedOpportunity, 0, researchTargetLimit)
	for _, opp := range report.CombinedTop {
		if opp.CurrentPrice <= 0 {
			continue
		}
		targets = append(targets, opp)
		if len(targets) == researchTargetLimit {
			break
		}
	}
	writeJSON(w, http.StatusOK, targets)
}

// DownloadOpportunities streams the opportunities CSV.
// GET /download/opportunities
func (h *Handler) DownloadOpportunities(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.writer.OpportunitiesPath(), "insider_opportunities.csv")
}

// DownloadResearch streams the research CSV.
// GET /download/research
func (h *Handler) DownloadResearch(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.writer.ResearchCSVPath(), "weekly_research_report.csv")
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, path, name string) {
	if !fileExists(path) {
		writeError(w, http.StatusNotFound, "no data available")
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	w.Header().Set("Content-Type", "text/csv")
	http.ServeFile(w, r, path)
}

func (h *Handler) loadReport() (*model.Report, error) {
	data, err := os.ReadFile(h.writer.ResearchJSONPath())
	if err != nil {
		return nil, err
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// writeJSON marshals v and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
