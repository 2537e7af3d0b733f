package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/strata/internal/core/consultation"
	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/threshold"
	"github.com/example/strata/internal/core/trace"
	"github.com/example/strata/internal/ctxutil"
	"github.com/example/strata/internal/ports/primary"
)

type stubTrace struct {
	res      *primary.TraceResult
	err      error
	lastOpts primary.TraceOptions
	lastID   string
	lastCtx  context.Context
}

func (s *stubTrace) TraceUp(ctx context.Context, id string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	s.lastCtx, s.lastID, s.lastOpts = ctx, id, opts
	return s.res, s.err
}

func (s *stubTrace) TraceDown(ctx context.Context, id string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	s.lastCtx, s.lastID, s.lastOpts = ctx, id, opts
	return s.res, s.err
}

func (s *stubTrace) TraceObjective(ctx context.Context, id string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	s.lastCtx, s.lastID, s.lastOpts = ctx, id, opts
	return s.res, s.err
}

type stubKPIs struct {
	primary.KPIService
	status *primary.KPIStatus
	err    error
}

func (s *stubKPIs) GetStatus(ctx context.Context, id string) (*primary.KPIStatus, error) {
	return s.status, s.err
}

type stubKeyResults struct {
	primary.KeyResultService
	err error
}

func (s *stubKeyResults) SyncKeyResult(ctx context.Context, id string) (*primary.SyncResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &primary.SyncResponse{KeyResultID: id, CurrentValue: 460, Progress: 60, Changed: true}, nil
}

type stubWorkflows struct {
	primary.WorkflowService
}

func (s *stubWorkflows) GetProgress(ctx context.Context, id string) (*consultation.Progress, error) {
	if id != "WF-001" {
		return nil, errs.NotFound("workflow", id)
	}
	return &consultation.Progress{WorkflowID: id, Stats: consultation.Stats{Total: 2, Completed: 1, CompletionRate: 50}}, nil
}

func newTestServer(tr *stubTrace, kpis *stubKPIs, krs *stubKeyResults) *httptest.Server {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "strata_up 1\n")
	})
	srv := NewServer(Services{KPIs: kpis, KeyResults: krs, Trace: tr, Workflows: &stubWorkflows{}}, metrics, 3, nil)
	return httptest.NewServer(srv.Router())
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&stubTrace{}, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestMetricsMounted(t *testing.T) {
	ts := newTestServer(&stubTrace{}, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "strata_up 1\n", string(b))
}

func TestTraceUp_DefaultAndExplicitHops(t *testing.T) {
	tr := &stubTrace{res: &primary.TraceResult{
		Direction: trace.DirectionUp, RootType: "task", RootID: "TASK-1",
		Nodes: []trace.Node{{Type: trace.NodeTask, ID: "TASK-1"}},
	}}
	ts := newTestServer(tr, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/trace/up/TASK-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "TASK-1", tr.lastID)
	assert.Equal(t, 3, tr.lastOpts.Hops)
	assert.Equal(t, "TASK-1", body["root_id"])

	resp, _ = get(t, ts.URL+"/api/trace/down/KPI-1?hops=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "KPI-1", tr.lastID)
	assert.Equal(t, 1, tr.lastOpts.Hops)
}

func TestTrace_InvalidHops(t *testing.T) {
	ts := newTestServer(&stubTrace{}, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	for _, q := range []string{"x", "-1"} {
		resp, body := get(t, ts.URL+"/api/trace/objective/OBJ-1?hops="+q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
		assert.Contains(t, body["error"], "invalid hops")
	}
}

func TestTrace_EmptyNodesEncodedAsArray(t *testing.T) {
	tr := &stubTrace{res: &primary.TraceResult{Direction: trace.DirectionDown, RootType: "kpi", RootID: "KPI-9"}}
	ts := newTestServer(tr, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/trace/down/KPI-9")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["nodes"])
}

func TestRequestContext(t *testing.T) {
	tr := &stubTrace{res: &primary.TraceResult{}}
	ts := newTestServer(tr, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/trace/up/TASK-1", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "req-42")
	req.Header.Set(HeaderActor, "dean@example.edu")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, "req-42", ctxutil.RequestIDFromContext(tr.lastCtx))
	assert.Equal(t, "dean@example.edu", ctxutil.ActorFromContext(tr.lastCtx))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.NotFound("kpi", "KPI-404"), http.StatusNotFound},
		{"invalid state", errs.InvalidState("kpi", "KPI-1", "bad", nil), http.StatusConflict},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&stubTrace{}, &stubKPIs{err: tt.err}, &stubKeyResults{})
			defer ts.Close()

			resp, body := get(t, ts.URL+"/api/kpis/KPI-1/status")
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

func TestKPIStatus(t *testing.T) {
	kpis := &stubKPIs{status: &primary.KPIStatus{ID: "KPI-1", Evaluation: threshold.Evaluation{Status: threshold.StatusGreen}}}
	ts := newTestServer(&stubTrace{}, kpis, &stubKeyResults{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/kpis/KPI-1/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	ev, ok := body["evaluation"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "green", ev["status"])
}

func TestSyncKeyResult(t *testing.T) {
	ts := newTestServer(&stubTrace{}, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/key-results/KR-001/sync", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body primary.SyncResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "KR-001", body.KeyResultID)
	assert.InDelta(t, 60, body.Progress, 0.001)

	resp2, err := http.Get(ts.URL + "/api/key-results/KR-001/sync")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp2.StatusCode)
}

func TestSyncKeyResult_NotKPIBased(t *testing.T) {
	krs := &stubKeyResults{err: errs.InvalidState("key result", "KR-002", "custom key results are updated manually", errs.ErrNotKPIBased)}
	ts := newTestServer(&stubTrace{}, &stubKPIs{}, krs)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/key-results/KR-002/sync", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWorkflowProgress(t *testing.T) {
	ts := newTestServer(&stubTrace{}, &stubKPIs{}, &stubKeyResults{})
	defer ts.Close()

	resp, body := get(t, ts.URL+"/api/workflows/WF-001/progress")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	stats, ok := body["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(50), stats["completion_rate"])

	resp, _ = get(t, ts.URL+"/api/workflows/WF-404/progress")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
