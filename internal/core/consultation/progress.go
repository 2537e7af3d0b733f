// Package consultation computes RACI workflow progress against an SLA.
// This is part of the Functional Core - no I/O; the caller supplies "now".
package consultation

import (
	"time"
)

// Role is a RACI role.
type Role string

// RACI roles.
const (
	RoleResponsible Role = "R"
	RoleAccountable Role = "A"
	RoleConsulted   Role = "C"
	RoleInformed    Role = "I"
)

// ValidRole reports whether r is one of the RACI roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleResponsible, RoleAccountable, RoleConsulted, RoleInformed:
		return true
	}
	return false
}

// Status is an assignee's consultation state.
type Status string

// Assignee statuses.
const (
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
	StatusInProgress Status = "in_progress"
	StatusPending    Status = "pending"
)

const day = 24 * time.Hour

// Assignee is a participant of the current workflow step.
type Assignee struct {
	UserID         string
	Name           string
	Role           Role
	LastActivityAt *time.Time
}

// Record is a submitted consultation response.
type Record struct {
	ID          string
	UserID      string
	Status      string
	Comment     string
	SubmittedAt time.Time
}

// Workflow is the tracker's view of a RACI workflow's current step.
type Workflow struct {
	ID            string
	TemplateID    string
	Name          string
	StepName      string
	StepStartedAt time.Time
	SLADays       int // <= 0 means the step has no deadline
	Assignees     []Assignee
	Records       []Record
}

// Options tune the computation.
type Options struct {
	// ExcludeInformed keeps Informed assignees out of the stats.
	ExcludeInformed bool
}

// AssigneeProgress is one assignee's row of the report.
type AssigneeProgress struct {
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Role        Role       `json:"role"`
	Status      Status     `json:"status"`
	DaysElapsed int        `json:"days_elapsed"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	Counted     bool       `json:"counted"`
}

// Stats are plain counts over the counted assignees.
type Stats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Pending        int     `json:"pending"`
	Overdue        int     `json:"overdue"`
	CompletionRate float64 `json:"completion_rate"`
}

// Progress is the report for one workflow step.
type Progress struct {
	WorkflowID    string             `json:"workflow_id"`
	Name          string             `json:"name"`
	StepName      string             `json:"step_name"`
	StepStartedAt time.Time          `json:"step_started_at"`
	SLADays       int                `json:"sla_days"`
	Deadline      *time.Time         `json:"deadline,omitempty"`
	DaysElapsed   int                `json:"days_elapsed"`
	Assignees     []AssigneeProgress `json:"assignees"`
	Stats         Stats              `json:"stats"`
}

// ComputeProgress derives each assignee's status at now:
// completed if a record exists; else overdue when the SLA has run out;
// else in_progress when activity was recorded during the step; else pending.
func ComputeProgress(wf Workflow, now time.Time, opts Options) Progress {
	p := Progress{
		WorkflowID:    wf.ID,
		Name:          wf.Name,
		StepName:      wf.StepName,
		StepStartedAt: wf.StepStartedAt,
		SLADays:       wf.SLADays,
		DaysElapsed:   DaysElapsed(wf.StepStartedAt, now),
		Assignees:     make([]AssigneeProgress, 0, len(wf.Assignees)),
	}
	if wf.SLADays > 0 {
		d := Deadline(wf.StepStartedAt, wf.SLADays)
		p.Deadline = &d
	}

	records := make(map[string]Record, len(wf.Records))
	for _, r := range wf.Records {
		// Latest submission wins.
		if prev, ok := records[r.UserID]; !ok || r.SubmittedAt.After(prev.SubmittedAt) {
			records[r.UserID] = r
		}
	}

	// Every assignee is measured from the step start, whenever they joined.
	start := wf.StepStartedAt
	for _, a := range wf.Assignees {
		ap := AssigneeProgress{
			UserID:      a.UserID,
			Name:        a.Name,
			Role:        a.Role,
			DaysElapsed: p.DaysElapsed,
			Counted:     !(opts.ExcludeInformed && a.Role == RoleInformed),
		}

		rec, hasRecord := records[a.UserID]
		switch {
		case hasRecord:
			ap.Status = StatusCompleted
			submitted := rec.SubmittedAt
			ap.SubmittedAt = &submitted
			ap.Comment = rec.Comment
		case wf.SLADays > 0 && now.Sub(start) > time.Duration(wf.SLADays)*day:
			ap.Status = StatusOverdue
		case a.LastActivityAt != nil && !a.LastActivityAt.Before(start):
			ap.Status = StatusInProgress
		default:
			ap.Status = StatusPending
		}
		p.Assignees = append(p.Assignees, ap)

		if ap.Counted {
			p.Stats.add(ap.Status)
		}
	}

	if p.Stats.Total > 0 {
		p.Stats.CompletionRate = float64(p.Stats.Completed) / float64(p.Stats.Total) * 100
	}
	return p
}

func (s *Stats) add(status Status) {
	s.Total++
	switch status {
	case StatusCompleted:
		s.Completed++
	case StatusInProgress:
		s.InProgress++
	case StatusPending:
		s.Pending++
	case StatusOverdue:
		s.Overdue++
	}
}

// DaysElapsed is the number of whole days from start to now, never negative.
func DaysElapsed(start, now time.Time) int {
	if !now.After(start) {
		return 0
	}
	return int(now.Sub(start) / day)
}

// Deadline is the moment the SLA runs out.
func Deadline(start time.Time, slaDays int) time.Time {
	return start.Add(time.Duration(slaDays) * day)
}
