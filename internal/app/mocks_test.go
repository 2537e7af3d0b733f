package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/strata/internal/core/effects"
	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockObjectiveRepository implements secondary.ObjectiveRepository for testing.
type mockObjectiveRepository struct {
	objectives []*secondary.ObjectiveRecord
	listErr    error
}

func (m *mockObjectiveRepository) Create(ctx context.Context, o *secondary.ObjectiveRecord) error {
	m.objectives = append(m.objectives, o)
	return nil
}

func (m *mockObjectiveRepository) GetByID(ctx context.Context, id string) (*secondary.ObjectiveRecord, error) {
	for _, o := range m.objectives {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errs.NotFound("objective", id)
}

func (m *mockObjectiveRepository) List(ctx context.Context) ([]*secondary.ObjectiveRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.objectives, nil
}

// mockCausalLinkRepository implements secondary.CausalLinkRepository for testing.
type mockCausalLinkRepository struct {
	links     []*secondary.CausalLinkRecord
	createErr error
}

func (m *mockCausalLinkRepository) Create(ctx context.Context, l *secondary.CausalLinkRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.links = append(m.links, l)
	return nil
}

func (m *mockCausalLinkRepository) GetByID(ctx context.Context, id string) (*secondary.CausalLinkRecord, error) {
	for _, l := range m.links {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, errs.NotFound("causal link", id)
}

func (m *mockCausalLinkRepository) List(ctx context.Context) ([]*secondary.CausalLinkRecord, error) {
	return m.links, nil
}

func (m *mockCausalLinkRepository) Delete(ctx context.Context, id string) error {
	for i, l := range m.links {
		if l.ID == id {
			m.links = append(m.links[:i], m.links[i+1:]...)
			return nil
		}
	}
	return errs.NotFound("causal link", id)
}

func (m *mockCausalLinkRepository) Exists(ctx context.Context, fromID, toID string) (bool, error) {
	for _, l := range m.links {
		if l.FromObjectiveID == fromID && l.ToObjectiveID == toID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCausalLinkRepository) GetNextID(ctx context.Context) (string, error) {
	return "LINK-900", nil
}

// mockKPIRepository implements secondary.KPIRepository for testing.
type mockKPIRepository struct {
	mu         sync.Mutex
	kpis       map[string]*secondary.KPIRecord
	order      []string
	values     map[string][]*secondary.KPIValueRecord
	thresholds map[string][]*secondary.ThresholdRecord
	objPairs   []secondary.PairRecord
	appendErr  error

	listValuesCalls int
}

func newMockKPIRepository() *mockKPIRepository {
	return &mockKPIRepository{
		kpis:       make(map[string]*secondary.KPIRecord),
		values:     make(map[string][]*secondary.KPIValueRecord),
		thresholds: make(map[string][]*secondary.ThresholdRecord),
	}
}

func (m *mockKPIRepository) Create(ctx context.Context, k *secondary.KPIRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kpis[k.ID] = k
	m.order = append(m.order, k.ID)
	return nil
}

func (m *mockKPIRepository) GetByID(ctx context.Context, id string) (*secondary.KPIRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.kpis[id]; ok {
		return k, nil
	}
	return nil, errs.NotFound("kpi", id)
}

func (m *mockKPIRepository) List(ctx context.Context) ([]*secondary.KPIRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.KPIRecord, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.kpis[id])
	}
	return out, nil
}

func (m *mockKPIRepository) ListValues(ctx context.Context, kpiID string) ([]*secondary.KPIValueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listValuesCalls++
	out := append([]*secondary.KPIValueRecord(nil), m.values[kpiID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (m *mockKPIRepository) GetValue(ctx context.Context, kpiID, period string) (*secondary.KPIValueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.values[kpiID] {
		if v.Period == period {
			return v, nil
		}
	}
	return nil, errs.NotFound("kpi value", kpiID+"/"+period)
}

func (m *mockKPIRepository) AppendValue(ctx context.Context, v *secondary.KPIValueRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[v.KPIID] = append(m.values[v.KPIID], v)
	return nil
}

func (m *mockKPIRepository) SetMark(ctx context.Context, kpiID, period string, exception bool, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.values[kpiID] {
		if v.Period == period {
			v.IsException = exception
			v.ExceptionReason = reason
			if !exception {
				v.ExceptionReason = ""
			}
			return nil
		}
	}
	return errs.NotFound("kpi value", kpiID+"/"+period)
}

func (m *mockKPIRepository) ListThresholds(ctx context.Context, kpiID string) ([]*secondary.ThresholdRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thresholds[kpiID], nil
}

func (m *mockKPIRepository) AddThreshold(ctx context.Context, t *secondary.ThresholdRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds[t.KPIID] = append(m.thresholds[t.KPIID], t)
	return nil
}

func (m *mockKPIRepository) LinkObjective(ctx context.Context, kpiID, objectiveID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objPairs = append(m.objPairs, secondary.PairRecord{Left: kpiID, Right: objectiveID})
	return nil
}

func (m *mockKPIRepository) ListObjectivePairs(ctx context.Context) ([]secondary.PairRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objPairs, nil
}

// mockInitiativeRepository implements secondary.InitiativeRepository for testing.
type mockInitiativeRepository struct {
	initiatives []*secondary.InitiativeRecord
	kpiPairs    []secondary.PairRecord
	objPairs    []secondary.PairRecord
}

func (m *mockInitiativeRepository) Create(ctx context.Context, i *secondary.InitiativeRecord) error {
	m.initiatives = append(m.initiatives, i)
	return nil
}

func (m *mockInitiativeRepository) GetByID(ctx context.Context, id string) (*secondary.InitiativeRecord, error) {
	for _, i := range m.initiatives {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, errs.NotFound("initiative", id)
}

func (m *mockInitiativeRepository) List(ctx context.Context) ([]*secondary.InitiativeRecord, error) {
	return m.initiatives, nil
}

func (m *mockInitiativeRepository) LinkKPI(ctx context.Context, initiativeID, kpiID string) error {
	m.kpiPairs = append(m.kpiPairs, secondary.PairRecord{Left: initiativeID, Right: kpiID})
	return nil
}

func (m *mockInitiativeRepository) LinkObjective(ctx context.Context, initiativeID, objectiveID string) error {
	m.objPairs = append(m.objPairs, secondary.PairRecord{Left: initiativeID, Right: objectiveID})
	return nil
}

func (m *mockInitiativeRepository) ListKPIPairs(ctx context.Context) ([]secondary.PairRecord, error) {
	return m.kpiPairs, nil
}

func (m *mockInitiativeRepository) ListObjectivePairs(ctx context.Context) ([]secondary.PairRecord, error) {
	return m.objPairs, nil
}

// mockOKRRepository implements secondary.OKRRepository for testing.
type mockOKRRepository struct {
	okrs   []*secondary.OKRRecord
	getErr error
}

func (m *mockOKRRepository) Create(ctx context.Context, o *secondary.OKRRecord) error {
	m.okrs = append(m.okrs, o)
	return nil
}

func (m *mockOKRRepository) GetByID(ctx context.Context, id string) (*secondary.OKRRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, o := range m.okrs {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errs.NotFound("okr", id)
}

func (m *mockOKRRepository) List(ctx context.Context, filters secondary.OKRFilters) ([]*secondary.OKRRecord, error) {
	var out []*secondary.OKRRecord
	for _, o := range m.okrs {
		if filters.InitiativeID != "" && o.InitiativeID != filters.InitiativeID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// mockKeyResultRepository implements secondary.KeyResultRepository for testing.
type mockKeyResultRepository struct {
	mu      sync.Mutex
	krs     []*secondary.KeyResultRecord
	nextID  string
	snapErr error
}

func (m *mockKeyResultRepository) Create(ctx context.Context, kr *secondary.KeyResultRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.krs = append(m.krs, kr)
	return nil
}

func (m *mockKeyResultRepository) GetByID(ctx context.Context, id string) (*secondary.KeyResultRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kr := range m.krs {
		if kr.ID == id {
			copied := *kr
			return &copied, nil
		}
	}
	return nil, errs.NotFound("key result", id)
}

func (m *mockKeyResultRepository) List(ctx context.Context, filters secondary.KeyResultFilters) ([]*secondary.KeyResultRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.KeyResultRecord
	for _, kr := range m.krs {
		if filters.OKRID != "" && kr.OKRID != filters.OKRID {
			continue
		}
		if filters.KPIID != "" && kr.KPIID != filters.KPIID {
			continue
		}
		copied := *kr
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockKeyResultRepository) UpdateSnapshot(ctx context.Context, id string, current, progress float64, sourcePeriod, syncedAt string) error {
	if m.snapErr != nil {
		return m.snapErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kr := range m.krs {
		if kr.ID == id {
			kr.CurrentValue = current
			kr.ProgressPercentage = progress
			kr.SourcePeriod = sourcePeriod
			kr.LastSyncedAt = syncedAt
			return nil
		}
	}
	return errs.NotFound("key result", id)
}

func (m *mockKeyResultRepository) UpdateCurrent(ctx context.Context, id string, current, progress float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kr := range m.krs {
		if kr.ID == id {
			kr.CurrentValue = current
			kr.ProgressPercentage = progress
			return nil
		}
	}
	return errs.NotFound("key result", id)
}

func (m *mockKeyResultRepository) CountByOKR(ctx context.Context, okrID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, kr := range m.krs {
		if kr.OKRID == okrID {
			n++
		}
	}
	return n, nil
}

func (m *mockKeyResultRepository) GetNextID(ctx context.Context) (string, error) {
	if m.nextID != "" {
		return m.nextID, nil
	}
	return "KR-900", nil
}

// mockTaskRepository implements secondary.TaskRepository for testing.
type mockTaskRepository struct {
	tasks   []*secondary.TaskRecord
	listErr error
}

func (m *mockTaskRepository) Create(ctx context.Context, t *secondary.TaskRecord) error {
	m.tasks = append(m.tasks, t)
	return nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*secondary.TaskRecord, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errs.NotFound("task", id)
}

func (m *mockTaskRepository) List(ctx context.Context, filters secondary.TaskFilters) ([]*secondary.TaskRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.tasks, nil
}

// mockWorkflowRepository implements secondary.WorkflowRepository for testing.
type mockWorkflowRepository struct {
	workflows map[string]*secondary.WorkflowRecord
	assignees map[string][]*secondary.AssigneeRecord
	records   map[string][]*secondary.ConsultationRecord
}

func newMockWorkflowRepository() *mockWorkflowRepository {
	return &mockWorkflowRepository{
		workflows: make(map[string]*secondary.WorkflowRecord),
		assignees: make(map[string][]*secondary.AssigneeRecord),
		records:   make(map[string][]*secondary.ConsultationRecord),
	}
}

func (m *mockWorkflowRepository) Create(ctx context.Context, wf *secondary.WorkflowRecord) error {
	m.workflows[wf.ID] = wf
	return nil
}

func (m *mockWorkflowRepository) GetByID(ctx context.Context, id string) (*secondary.WorkflowRecord, error) {
	if wf, ok := m.workflows[id]; ok {
		return wf, nil
	}
	return nil, errs.NotFound("workflow", id)
}

func (m *mockWorkflowRepository) List(ctx context.Context) ([]*secondary.WorkflowRecord, error) {
	var out []*secondary.WorkflowRecord
	for _, wf := range m.workflows {
		out = append(out, wf)
	}
	return out, nil
}

func (m *mockWorkflowRepository) AddAssignee(ctx context.Context, a *secondary.AssigneeRecord) error {
	m.assignees[a.WorkflowID] = append(m.assignees[a.WorkflowID], a)
	return nil
}

func (m *mockWorkflowRepository) ListAssignees(ctx context.Context, workflowID string) ([]*secondary.AssigneeRecord, error) {
	return m.assignees[workflowID], nil
}

func (m *mockWorkflowRepository) TouchAssignee(ctx context.Context, workflowID, userID, at string) error {
	for _, a := range m.assignees[workflowID] {
		if a.UserID == userID {
			a.LastActivityAt = at
			return nil
		}
	}
	return errs.NotFound("assignee", workflowID+"/"+userID)
}

func (m *mockWorkflowRepository) CreateRecord(ctx context.Context, r *secondary.ConsultationRecord) error {
	m.records[r.WorkflowID] = append(m.records[r.WorkflowID], r)
	return nil
}

func (m *mockWorkflowRepository) ListRecords(ctx context.Context, workflowID string) ([]*secondary.ConsultationRecord, error) {
	return m.records[workflowID], nil
}

// mockEffectExecutor records effects instead of executing them.
type mockEffectExecutor struct {
	executed []effects.Effect
	err      error
}

func (m *mockEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	if m.err != nil {
		return m.err
	}
	m.executed = append(m.executed, effs...)
	return nil
}

// mockMetrics counts observations.
type mockMetrics struct {
	mu       sync.Mutex
	statuses map[string]int
	syncs    map[string]int
	cycles   int
	traces   []string
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{statuses: map[string]int{}, syncs: map[string]int{}}
}

func (m *mockMetrics) ObserveStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[status]++
}

func (m *mockMetrics) ObserveSync(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncs[outcome]++
}

func (m *mockMetrics) ObserveCycleWarnings(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles += count
}

func (m *mockMetrics) ObserveTrace(direction string, nodes int, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces = append(m.traces, direction)
}

func ptr(f float64) *float64 { return &f }
