package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfuentes/insider-scout/internal/common"
	"github.com/mfuentes/insider-scout/internal/export"
	"github.com/mfuentes/insider-scout/internal/model"
	"github.com/mfuentes/insider-scout/internal/service"
)

type stubStorage struct {
	service.Storage

	latestRun     *model.Run
	opportunities []model.Opportunity
}

func (s *stubStorage) GetLatestRun(_ context.Context) (*model.Run, error) {
	if s.latestRun == nil {
		return nil, common.ErrNotFound
	}
	return s.latestRun, nil
}

func (s *stubStorage) GetLatestOpportunities(_ context.Context) ([]model.Opportunity, error) {
	if s.opportunities == nil {
		return nil, common.ErrNotFound
	}
	return s.opportunities, nil
}

func newTestHandler(t *testing.T, storage *stubStorage, pipeline func(ctx context.Context) error) (*Handler, *export.Writer) {
	t.Helper()

	writer, err := export.NewWriter(t.TempDir())
	require.NoError(t, err)

	if pipeline == nil {
		pipeline = func(context.Context) error { return nil }
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(storage, writer, pipeline, logger), writer
}

func TestHealth(t *testing.T) {
	handler, _ := newTestHandler(t, &stubStorage{}, nil)

	rec := httptest.NewRecorder()
	handler.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatusNoRuns(t *testing.T) {
	handler, _ := newTestHandler(t, &stubStorage{}, nil)

	rec := httptest.NewRecorder()
	handler.Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["last_run"])
	assert.Equal(t, false, body["pipeline_running"])
	assert.Equal(t, false, body["has_research"])
}

func TestStatusWithRun(t *testing.T) {
	storage := &stubStorage{
		latestRun: &model.Run{
			ID:        "run-1",
			Status:    model.RunCompleted,
			StartedAt: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
			Stats:     model.RunStats{ClustersDetected: 3},
		},
	}
	handler, _ := newTestHandler(t, storage, nil)

	rec := httptest.NewRecorder()
	handler.Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	lastRun, ok := body["last_run"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "run-1", lastRun["id"])
	assert.Equal(t, "completed", lastRun["status"])
}

func TestRunPipelineSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})

	pipeline := func(context.Context) error {
		close(started)
		<-release
		close(done)
		return nil
	}
	handler, _ := newTestHandler(t, &stubStorage{}, pipeline)

	rec := httptest.NewRecorder()
	handler.RunPipeline(rec, httptest.NewRequest(http.MethodPost, "/api/run-pipeline", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	<-started

	// A second trigger while the first is in flight is rejected.
	rec = httptest.NewRecorder()
	handler.RunPipeline(rec, httptest.NewRequest(http.MethodPost, "/api/run-pipeline", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(release)
	<-done

	// The flag clears once the goroutine finishes.
	assert.Eventually(t, func() bool { return !handler.running.Load() },
		time.Second, 5*time.Millisecond)
}

func TestOpportunitiesEmpty(t *testing.T) {
	handler, _ := newTestHandler(t, &stubStorage{}, nil)

	rec := httptest.NewRecorder()
	handler.Opportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestOpportunities(t *testing.T) {
	storage := &stubStorage{
		opportunities: []model.Opportunity{
			model.NewClusterOpportunity(&model.ClusterOpportunity{Ticker: "ACME", Score: 90}),
		},
	}
	handler, _ := newTestHandler(t, storage, nil)

	rec := httptest.NewRecorder()
	handler.Opportunities(rec, httptest.NewRequest(http.MethodGet, "/api/opportunities", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body []model.Opportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "ACME", body[0].Ticker())
}

func TestResearchData(t *testing.T) {
	handler, writer := newTestHandler(t, &stubStorage{}, nil)

	rec := httptest.NewRecorder()
	handler.ResearchData(rec, httptest.NewRequest(http.MethodGet, "/api/research-data", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	report := &model.Report{Summary: model.ReportSummary{TotalOpportunities: 4}}
	require.NoError(t, writer.WriteResearchReport(report))

	rec = httptest.NewRecorder()
	handler.ResearchData(rec, httptest.NewRequest(http.MethodGet, "/api/research-data", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var decoded model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, 4, decoded.Summary.TotalOpportunities)
}

func TestResearchTargets(t *testing.T) {
	handler, writer := newTestHandler(t, &stubStorage{}, nil)

	// No report yet: empty list, not an error.
	rec := httptest.NewRecorder()
	handler.ResearchTargets(rec, httptest.NewRequest(http.MethodGet, "/api/research-targets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	report := &model.Report{
		CombinedTop: []model.EnrichedOpportunity{
			{
				Opportunity:  model.NewClusterOpportunity(&model.ClusterOpportunity{Ticker: "ACME"}),
				CurrentPrice: 11.85,
			},
			{
				// No live price, filtered out.
				Opportunity: model.NewClusterOpportunity(&model.ClusterOpportunity{Ticker: "NOPX"}),
			},
			{
				Opportunity:  model.NewWhaleOpportunity(&model.WhaleOpportunity{Ticker: "GLOB"}),
				CurrentPrice: 44.10,
			},
		},
	}
	require.NoError(t, writer.WriteResearchReport(report))

	rec = httptest.NewRecorder()
	handler.ResearchTargets(rec, httptest.NewRequest(http.MethodGet, "/api/research-targets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var targets []model.EnrichedOpportunity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &targets))
	require.Len(t, targets, 2)
	assert.Equal(t, "ACME", targets[0].Ticker())
	assert.Equal(t, "GLOB", targets[1].Ticker())
}

func TestDownloads(t *testing.T) {
	handler, writer := newTestHandler(t, &stubStorage{}, nil)

	rec := httptest.NewRecorder()
	handler.DownloadOpportunities(rec, httptest.NewRequest(http.MethodGet, "/download/opportunities", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, writer.WriteOpportunities([]model.Opportunity{
		model.NewClusterOpportunity(&model.ClusterOpportunity{Ticker: "ACME", Score: 90}),
	}))

	rec = httptest.NewRecorder()
	handler.DownloadOpportunities(rec, httptest.NewRequest(http.MethodGet, "/download/opportunities", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "insider_opportunities.csv")
	assert.Contains(t, rec.Body.String(), "ACME")
}

func TestRoutes(t *testing.T) {
	handler, _ := newTestHandler(t, &stubStorage{}, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewServer(Config{Port: 0}, handler, logger)

	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Method not allowed on the pipeline trigger.
	resp2, err := http.Get(ts.URL + "/api/run-pipeline")
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}
