// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// PairRecord is one row of a many-to-many join table.
type PairRecord struct {
	Left  string
	Right string
}

// ObjectiveRepository defines the secondary port for BSC objective persistence.
type ObjectiveRepository interface {
	// Create persists a new objective.
	Create(ctx context.Context, objective *ObjectiveRecord) error

	// GetByID retrieves an objective by its ID.
	GetByID(ctx context.Context, id string) (*ObjectiveRecord, error)

	// List retrieves all objectives in creation order.
	List(ctx context.Context) ([]*ObjectiveRecord, error)
}

// ObjectiveRecord represents a BSC objective as stored in persistence.
type ObjectiveRecord struct {
	ID          string
	Name        string
	Perspective string // financial, customer, internal_process, learning_growth
	Description string // Empty string means null
	CreatedAt   string
}

// CausalLinkRepository defines the secondary port for causal link persistence.
type CausalLinkRepository interface {
	// Create persists a new causal link.
	Create(ctx context.Context, link *CausalLinkRecord) error

	// GetByID retrieves a link by its ID.
	GetByID(ctx context.Context, id string) (*CausalLinkRecord, error)

	// List retrieves all links in insertion order.
	List(ctx context.Context) ([]*CausalLinkRecord, error)

	// Delete removes a link.
	Delete(ctx context.Context, id string) error

	// Exists checks whether a from -> to link is already stored.
	Exists(ctx context.Context, fromID, toID string) (bool, error)

	// GetNextID returns the next available link ID.
	GetNextID(ctx context.Context) (string, error)
}

// CausalLinkRecord represents a directed causal link as stored in persistence.
type CausalLinkRecord struct {
	ID              string
	FromObjectiveID string
	ToObjectiveID   string
	CreatedAt       string
}

// KPIRepository defines the secondary port for KPI, value history and
// threshold persistence.
type KPIRepository interface {
	// Create persists a new KPI.
	Create(ctx context.Context, kpi *KPIRecord) error

	// GetByID retrieves a KPI by its ID.
	GetByID(ctx context.Context, id string) (*KPIRecord, error)

	// List retrieves all KPIs.
	List(ctx context.Context) ([]*KPIRecord, error)

	// ListValues retrieves a KPI's value history ordered by period, oldest first.
	ListValues(ctx context.Context, kpiID string) ([]*KPIValueRecord, error)

	// GetValue retrieves one period of a KPI's history.
	GetValue(ctx context.Context, kpiID, period string) (*KPIValueRecord, error)

	// AppendValue stores a new period value. Existing periods are never overwritten.
	AppendValue(ctx context.Context, value *KPIValueRecord) error

	// SetMark toggles the manual-exception mark of one value row.
	SetMark(ctx context.Context, kpiID, period string, exception bool, reason string) error

	// ListThresholds retrieves a KPI's threshold versions ordered by version.
	ListThresholds(ctx context.Context, kpiID string) ([]*ThresholdRecord, error)

	// AddThreshold stores a new threshold version.
	AddThreshold(ctx context.Context, threshold *ThresholdRecord) error

	// LinkObjective records that a KPI measures an objective.
	LinkObjective(ctx context.Context, kpiID, objectiveID string) error

	// ListObjectivePairs retrieves every (kpi, objective) pair.
	ListObjectivePairs(ctx context.Context) ([]PairRecord, error)
}

// KPIRecord represents a KPI as stored in persistence.
type KPIRecord struct {
	ID          string
	Name        string
	Unit        string // Empty string means null
	TargetValue float64
	CreatedAt   string
}

// KPIValueRecord represents one period of a KPI's history.
type KPIValueRecord struct {
	KPIID           string
	Period          string
	Value           float64
	TargetValue     float64 // 0 means "use the KPI target"
	IsException     bool
	ExceptionReason string // Empty string means null
	RecordedAt      string
}

// ThresholdRecord represents one threshold version of a KPI.
// Nil bounds are unbounded.
type ThresholdRecord struct {
	KPIID         string
	Version       int
	Mode          string // fixed, dynamic
	EffectiveFrom string // Empty string means always
	GreenMin      *float64
	GreenMax      *float64
	YellowMin     *float64
	YellowMax     *float64
	RedMin        *float64
	RedMax        *float64
	CreatedAt     string
}

// InitiativeRepository defines the secondary port for initiative persistence.
type InitiativeRepository interface {
	// Create persists a new initiative.
	Create(ctx context.Context, initiative *InitiativeRecord) error

	// GetByID retrieves an initiative by its ID.
	GetByID(ctx context.Context, id string) (*InitiativeRecord, error)

	// List retrieves all initiatives.
	List(ctx context.Context) ([]*InitiativeRecord, error)

	// LinkKPI records that an initiative references a KPI.
	LinkKPI(ctx context.Context, initiativeID, kpiID string) error

	// LinkObjective records that an initiative serves an objective directly.
	LinkObjective(ctx context.Context, initiativeID, objectiveID string) error

	// ListKPIPairs retrieves every (initiative, kpi) pair.
	ListKPIPairs(ctx context.Context) ([]PairRecord, error)

	// ListObjectivePairs retrieves every (initiative, objective) pair.
	ListObjectivePairs(ctx context.Context) ([]PairRecord, error)
}

// InitiativeRecord represents an initiative as stored in persistence.
type InitiativeRecord struct {
	ID        string
	Name      string
	Status    string
	CreatedAt string
}

// OKRRepository defines the secondary port for OKR persistence.
type OKRRepository interface {
	// Create persists a new OKR.
	Create(ctx context.Context, okr *OKRRecord) error

	// GetByID retrieves an OKR by its ID.
	GetByID(ctx context.Context, id string) (*OKRRecord, error)

	// List retrieves OKRs matching the given filters.
	List(ctx context.Context, filters OKRFilters) ([]*OKRRecord, error)
}

// OKRRecord represents an OKR as stored in persistence.
type OKRRecord struct {
	ID           string
	InitiativeID string
	Quarter      string
	Objective    string
	CreatedAt    string
}

// OKRFilters contains filter options for querying OKRs.
type OKRFilters struct {
	InitiativeID string
}

// KeyResultRepository defines the secondary port for key result persistence.
type KeyResultRepository interface {
	// Create persists a new key result.
	Create(ctx context.Context, kr *KeyResultRecord) error

	// GetByID retrieves a key result by its ID.
	GetByID(ctx context.Context, id string) (*KeyResultRecord, error)

	// List retrieves key results matching the given filters.
	List(ctx context.Context, filters KeyResultFilters) ([]*KeyResultRecord, error)

	// UpdateSnapshot stores a sync result and its sync time.
	UpdateSnapshot(ctx context.Context, id string, current, progress float64, sourcePeriod, syncedAt string) error

	// UpdateCurrent stores a manual current value for a custom key result.
	UpdateCurrent(ctx context.Context, id string, current, progress float64) error

	// CountByOKR returns the number of key results owned by an OKR.
	CountByOKR(ctx context.Context, okrID string) (int, error)

	// GetNextID returns the next available key result ID.
	GetNextID(ctx context.Context) (string, error)
}

// KeyResultRecord represents a key result as stored in persistence.
// kpi_based rows populate KPIID, KPIBaselineValue and KPITargetValue;
// custom rows populate TargetValue.
type KeyResultRecord struct {
	ID                 string
	OKRID              string
	Title              string
	KRType             string // custom, kpi_based
	KPIID              string // Empty string means null
	KPIBaselineValue   *float64
	KPITargetValue     *float64
	TargetValue        *float64
	CurrentValue       float64
	ProgressPercentage float64
	SourcePeriod       string // Empty string means null
	LastSyncedAt       string // Empty string means never synced
	CreatedAt          string
}

// KeyResultFilters contains filter options for querying key results.
type KeyResultFilters struct {
	OKRID string
	KPIID string
}

// TaskRepository defines the secondary port for task persistence.
type TaskRepository interface {
	// Create persists a new task.
	Create(ctx context.Context, task *TaskRecord) error

	// GetByID retrieves a task by its ID.
	GetByID(ctx context.Context, id string) (*TaskRecord, error)

	// List retrieves tasks matching the given filters.
	List(ctx context.Context, filters TaskFilters) ([]*TaskRecord, error)
}

// TaskRecord represents a task as stored in persistence.
type TaskRecord struct {
	ID          string
	Title       string
	Status      string
	KeyResultID string // Empty string means null
	KPIID       string // Empty string means null
	CreatedAt   string
}

// TaskFilters contains filter options for querying tasks.
type TaskFilters struct {
	KeyResultID string
	KPIID       string
	Status      string
}

// WorkflowRepository defines the secondary port for RACI workflow persistence.
type WorkflowRepository interface {
	// Create persists a new workflow.
	Create(ctx context.Context, wf *WorkflowRecord) error

	// GetByID retrieves a workflow by its ID.
	GetByID(ctx context.Context, id string) (*WorkflowRecord, error)

	// List retrieves all workflows.
	List(ctx context.Context) ([]*WorkflowRecord, error)

	// AddAssignee adds a participant to the workflow's current step.
	AddAssignee(ctx context.Context, assignee *AssigneeRecord) error

	// ListAssignees retrieves a workflow's assignees.
	ListAssignees(ctx context.Context, workflowID string) ([]*AssigneeRecord, error)

	// TouchAssignee records partial activity by an assignee.
	TouchAssignee(ctx context.Context, workflowID, userID, at string) error

	// CreateRecord persists a consultation record.
	CreateRecord(ctx context.Context, record *ConsultationRecord) error

	// ListRecords retrieves a workflow's consultation records.
	ListRecords(ctx context.Context, workflowID string) ([]*ConsultationRecord, error)
}

// WorkflowRecord represents a RACI workflow as stored in persistence.
type WorkflowRecord struct {
	ID            string
	TemplateID    string // Empty string means null
	Name          string
	StepName      string
	StepStartedAt string
	SLADays       int
	CreatedAt     string
}

// AssigneeRecord represents a workflow participant.
type AssigneeRecord struct {
	WorkflowID     string
	UserID         string
	Name           string
	Role           string // R, A, C, I
	AssignedAt     string // Empty string means at step start
	LastActivityAt string // Empty string means no activity
}

// ConsultationRecord represents a submitted consultation response.
type ConsultationRecord struct {
	ID          string
	WorkflowID  string
	UserID      string
	Status      string
	Comment     string
	SubmittedAt string
}
