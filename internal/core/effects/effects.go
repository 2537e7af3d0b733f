// Package effects defines effect types as data structures representing writes.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a structured log line.
type LogEffect struct {
	Level   string // "debug", "info", "warn", "error"
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// KeyResultSnapshotEffect stores a synchronized key-result snapshot.
type KeyResultSnapshotEffect struct {
	KeyResultID  string
	CurrentValue float64
	Progress     float64
	SourcePeriod string
	SyncedAt     time.Time
}

func (e KeyResultSnapshotEffect) EffectType() string { return "key_result_snapshot" }

// ValueMarkEffect toggles the manual-exception mark of one KPI value row.
type ValueMarkEffect struct {
	KPIID     string
	Period    string
	Exception bool
	Reason    string
}

func (e ValueMarkEffect) EffectType() string { return "value_mark" }

// ConsultationRecordEffect appends a consultation record to a workflow.
type ConsultationRecordEffect struct {
	RecordID    string
	WorkflowID  string
	UserID      string
	Status      string
	Comment     string
	SubmittedAt time.Time
}

func (e ConsultationRecordEffect) EffectType() string { return "consultation_record" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
