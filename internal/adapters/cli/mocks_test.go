package cli

import (
	"context"

	"github.com/example/strata/internal/core/causal"
	"github.com/example/strata/internal/core/consultation"
	"github.com/example/strata/internal/ports/primary"
)

type mockKPIService struct {
	status     *primary.KPIStatus
	report     *primary.KPIStatusReport
	history    *primary.KPIHistory
	err        error
	lastRecord primary.RecordValueRequest
	lastMark   primary.SetExceptionRequest
}

func (m *mockKPIService) GetStatus(ctx context.Context, kpiID string) (*primary.KPIStatus, error) {
	return m.status, m.err
}

func (m *mockKPIService) ListStatuses(ctx context.Context) (*primary.KPIStatusReport, error) {
	return m.report, m.err
}

func (m *mockKPIService) GetHistory(ctx context.Context, kpiID string) (*primary.KPIHistory, error) {
	return m.history, m.err
}

func (m *mockKPIService) RecordValue(ctx context.Context, req primary.RecordValueRequest) error {
	m.lastRecord = req
	return m.err
}

func (m *mockKPIService) SetException(ctx context.Context, req primary.SetExceptionRequest) error {
	m.lastMark = req
	return m.err
}

type mockKeyResultService struct {
	sync *primary.SyncResponse
	kr   *primary.KeyResult
	okr  *primary.OKR
	err  error

	lastOKROpts primary.GetOKROptions
}

func (m *mockKeyResultService) SyncKeyResult(ctx context.Context, keyResultID string) (*primary.SyncResponse, error) {
	return m.sync, m.err
}

func (m *mockKeyResultService) UpdateKeyResult(ctx context.Context, req primary.UpdateKeyResultRequest) (*primary.KeyResult, error) {
	return m.kr, m.err
}

func (m *mockKeyResultService) AddKeyResult(ctx context.Context, req primary.AddKeyResultRequest) (*primary.KeyResult, error) {
	return m.kr, m.err
}

func (m *mockKeyResultService) GetOKR(ctx context.Context, okrID string, opts primary.GetOKROptions) (*primary.OKR, error) {
	m.lastOKROpts = opts
	return m.okr, m.err
}

type mockTraceService struct {
	result   *primary.TraceResult
	err      error
	lastOpts primary.TraceOptions
}

func (m *mockTraceService) TraceUp(ctx context.Context, taskID string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockTraceService) TraceDown(ctx context.Context, kpiID string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

func (m *mockTraceService) TraceObjective(ctx context.Context, objectiveID string, opts primary.TraceOptions) (*primary.TraceResult, error) {
	m.lastOpts = opts
	return m.result, m.err
}

type mockCausalMapService struct {
	objectives []*primary.Objective
	links      *primary.LinkList
	link       *primary.LinkResponse
	reach      *causal.Reach
	cycles     []causal.CycleWarning
	err        error
}

func (m *mockCausalMapService) ListObjectives(ctx context.Context) ([]*primary.Objective, error) {
	return m.objectives, m.err
}

func (m *mockCausalMapService) Link(ctx context.Context, req primary.LinkRequest) (*primary.LinkResponse, error) {
	return m.link, m.err
}

func (m *mockCausalMapService) Unlink(ctx context.Context, linkID string) error {
	return m.err
}

func (m *mockCausalMapService) ListLinks(ctx context.Context) (*primary.LinkList, error) {
	return m.links, m.err
}

func (m *mockCausalMapService) Reach(ctx context.Context, objectiveID string, dir causal.Direction) (*causal.Reach, error) {
	return m.reach, m.err
}

func (m *mockCausalMapService) Cycles(ctx context.Context) ([]causal.CycleWarning, error) {
	return m.cycles, m.err
}

type mockWorkflowService struct {
	progress   *consultation.Progress
	err        error
	lastSubmit primary.SubmitRecordRequest
}

func (m *mockWorkflowService) GetProgress(ctx context.Context, workflowID string) (*consultation.Progress, error) {
	return m.progress, m.err
}

func (m *mockWorkflowService) SubmitRecord(ctx context.Context, req primary.SubmitRecordRequest) (*primary.SubmitRecordResponse, error) {
	m.lastSubmit = req
	if m.err != nil {
		return nil, m.err
	}
	return &primary.SubmitRecordResponse{RecordID: "REC-1"}, nil
}

func (m *mockWorkflowService) RecordActivity(ctx context.Context, workflowID, userID string) error {
	return m.err
}

func ptr(f float64) *float64 { return &f }
