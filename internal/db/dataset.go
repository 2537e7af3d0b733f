package db

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/core/threshold"
)

//go:embed fixtures/university.yaml
var defaultDataset []byte

// Dataset is a YAML description of a strategy map and everything hanging
// off it, used to seed databases.
type Dataset struct {
	Objectives  []DatasetObjective  `yaml:"objectives"`
	Links       []DatasetLink       `yaml:"links"`
	KPIs        []DatasetKPI        `yaml:"kpis"`
	Initiatives []DatasetInitiative `yaml:"initiatives"`
	OKRs        []DatasetOKR        `yaml:"okrs"`
	KeyResults  []DatasetKeyResult  `yaml:"key_results"`
	Tasks       []DatasetTask       `yaml:"tasks"`
	Workflows   []DatasetWorkflow   `yaml:"workflows"`
}

type DatasetObjective struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Perspective string `yaml:"perspective"`
	Description string `yaml:"description"`
}

type DatasetLink struct {
	ID   string `yaml:"id"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type DatasetKPI struct {
	ID         string             `yaml:"id"`
	Name       string             `yaml:"name"`
	Unit       string             `yaml:"unit"`
	Target     float64            `yaml:"target"`
	Objectives []string           `yaml:"objectives"`
	Thresholds []DatasetThreshold `yaml:"thresholds"`
	Values     []DatasetValue     `yaml:"values"`
}

type DatasetThreshold struct {
	Version       int             `yaml:"version"`
	Mode          string          `yaml:"mode"`
	EffectiveFrom string          `yaml:"effective_from"`
	Green         *threshold.Band `yaml:"green"`
	Yellow        *threshold.Band `yaml:"yellow"`
	Red           *threshold.Band `yaml:"red"`
}

// DatasetValue is one period of history. A non-empty Exception flags the
// period as a manual exception with that reason.
type DatasetValue struct {
	Period    string   `yaml:"period"`
	Value     float64  `yaml:"value"`
	Target    *float64 `yaml:"target"`
	Exception string   `yaml:"exception"`
}

type DatasetInitiative struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Status     string   `yaml:"status"`
	KPIs       []string `yaml:"kpis"`
	Objectives []string `yaml:"objectives"`
}

type DatasetOKR struct {
	ID         string `yaml:"id"`
	Initiative string `yaml:"initiative"`
	Quarter    string `yaml:"quarter"`
	Objective  string `yaml:"objective"`
}

type DatasetKeyResult struct {
	ID        string   `yaml:"id"`
	OKR       string   `yaml:"okr"`
	Title     string   `yaml:"title"`
	Type      string   `yaml:"type"`
	KPI       string   `yaml:"kpi"`
	Baseline  *float64 `yaml:"baseline"`
	KPITarget *float64 `yaml:"kpi_target"`
	Target    *float64 `yaml:"target"`
	Current   float64  `yaml:"current"`
}

type DatasetTask struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Status    string `yaml:"status"`
	KeyResult string `yaml:"key_result"`
	KPI       string `yaml:"kpi"`
}

// DatasetWorkflow times are given relative to the moment the dataset is applied.
type DatasetWorkflow struct {
	ID                 string            `yaml:"id"`
	Template           string            `yaml:"template"`
	Name               string            `yaml:"name"`
	Step               string            `yaml:"step"`
	StepStartedDaysAgo int               `yaml:"step_started_days_ago"`
	SLADays            int               `yaml:"sla_days"`
	Assignees          []DatasetAssignee `yaml:"assignees"`
	Records            []DatasetRecord   `yaml:"records"`
}

type DatasetAssignee struct {
	User            string `yaml:"user"`
	Name            string `yaml:"name"`
	Role            string `yaml:"role"`
	AssignedDaysAgo *int   `yaml:"assigned_days_ago"`
	ActivityDaysAgo *int   `yaml:"activity_days_ago"`
}

type DatasetRecord struct {
	ID               string `yaml:"id"`
	User             string `yaml:"user"`
	Status           string `yaml:"status"`
	Comment          string `yaml:"comment"`
	SubmittedDaysAgo int    `yaml:"submitted_days_ago"`
}

// ParseDataset decodes a YAML dataset. Unknown keys are rejected.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks the KPI periods and threshold effective_from values.
func (ds *Dataset) Validate() error {
	for _, k := range ds.KPIs {
		for _, t := range k.Thresholds {
			if t.EffectiveFrom == "" {
				continue
			}
			if err := threshold.CheckPeriod("effective_from", t.EffectiveFrom); err != nil {
				return errs.InvalidState("kpi", k.ID, err.Error(), nil)
			}
		}
		for _, v := range k.Values {
			if err := threshold.CheckPeriod("period", v.Period); err != nil {
				return errs.InvalidState("kpi", k.ID, err.Error(), nil)
			}
		}
	}
	return nil
}

// LoadDataset reads a YAML dataset from disk.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseDataset(data)
}

// DefaultDataset returns the built-in development fixtures.
func DefaultDataset() *Dataset {
	ds, err := ParseDataset(defaultDataset)
	if err != nil {
		panic(err)
	}
	return ds
}

// SeedFixtures populates the database with the built-in development fixtures.
func SeedFixtures(database *sql.DB) error {
	return DefaultDataset().Apply(context.Background(), database, time.Now())
}

// Apply inserts the dataset in a single transaction.
// Relative workflow times are resolved against now.
func (ds *Dataset) Apply(ctx context.Context, database *sql.DB, now time.Time) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stamp := now.UTC().Format(time.RFC3339)
	daysAgo := func(n int) string {
		return now.UTC().AddDate(0, 0, -n).Format(time.RFC3339)
	}

	for _, o := range ds.Objectives {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO objectives (id, name, perspective, description, created_at) VALUES (?, ?, ?, ?, ?)",
			o.ID, o.Name, o.Perspective, nullString(o.Description), stamp,
		); err != nil {
			return fmt.Errorf("seed objectives: %w", err)
		}
	}

	for _, l := range ds.Links {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO causal_links (id, from_objective_id, to_objective_id, created_at) VALUES (?, ?, ?, ?)",
			l.ID, l.From, l.To, stamp,
		); err != nil {
			return fmt.Errorf("seed causal links: %w", err)
		}
	}

	for _, k := range ds.KPIs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO kpis (id, name, unit, target_value, created_at) VALUES (?, ?, ?, ?, ?)",
			k.ID, k.Name, nullString(k.Unit), k.Target, stamp,
		); err != nil {
			return fmt.Errorf("seed kpis: %w", err)
		}
		for _, objID := range k.Objectives {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO kpi_objectives (kpi_id, objective_id) VALUES (?, ?)",
				k.ID, objID,
			); err != nil {
				return fmt.Errorf("seed kpi objectives: %w", err)
			}
		}
		for _, t := range k.Thresholds {
			g, y, r := bounds(t.Green), bounds(t.Yellow), bounds(t.Red)
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kpi_thresholds (kpi_id, version, mode, effective_from,
					green_min, green_max, yellow_min, yellow_max, red_min, red_max, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				k.ID, t.Version, t.Mode, nullString(t.EffectiveFrom),
				g[0], g[1], y[0], y[1], r[0], r[1], stamp,
			); err != nil {
				return fmt.Errorf("seed kpi thresholds: %w", err)
			}
		}
		for _, v := range k.Values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kpi_values (kpi_id, period, value, target_value, is_manual_exception, exception_reason, recorded_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				k.ID, v.Period, v.Value, v.Target, v.Exception != "", nullString(v.Exception), stamp,
			); err != nil {
				return fmt.Errorf("seed kpi values: %w", err)
			}
		}
	}

	for _, i := range ds.Initiatives {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO initiatives (id, name, status, created_at) VALUES (?, ?, ?, ?)",
			i.ID, i.Name, i.Status, stamp,
		); err != nil {
			return fmt.Errorf("seed initiatives: %w", err)
		}
		for _, kpiID := range i.KPIs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO initiative_kpis (initiative_id, kpi_id) VALUES (?, ?)",
				i.ID, kpiID,
			); err != nil {
				return fmt.Errorf("seed initiative kpis: %w", err)
			}
		}
		for _, objID := range i.Objectives {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO initiative_objectives (initiative_id, objective_id) VALUES (?, ?)",
				i.ID, objID,
			); err != nil {
				return fmt.Errorf("seed initiative objectives: %w", err)
			}
		}
	}

	for _, o := range ds.OKRs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO okrs (id, initiative_id, quarter, objective, created_at) VALUES (?, ?, ?, ?, ?)",
			o.ID, o.Initiative, o.Quarter, o.Objective, stamp,
		); err != nil {
			return fmt.Errorf("seed okrs: %w", err)
		}
	}

	for _, kr := range ds.KeyResults {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO key_results (id, okr_id, title, kr_type, kpi_id, kpi_baseline_value, kpi_target_value,
				target_value, current_value, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			kr.ID, kr.OKR, kr.Title, kr.Type, nullString(kr.KPI), kr.Baseline, kr.KPITarget,
			kr.Target, kr.Current, stamp,
		); err != nil {
			return fmt.Errorf("seed key results: %w", err)
		}
	}

	for _, t := range ds.Tasks {
		status := t.Status
		if status == "" {
			status = "todo"
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO tasks (id, title, status, key_result_id, kpi_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			t.ID, t.Title, status, nullString(t.KeyResult), nullString(t.KPI), stamp,
		); err != nil {
			return fmt.Errorf("seed tasks: %w", err)
		}
	}

	for _, wf := range ds.Workflows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO raci_workflows (id, template_id, name, step_name, step_started_at, sla_days, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			wf.ID, nullString(wf.Template), wf.Name, wf.Step, daysAgo(wf.StepStartedDaysAgo), wf.SLADays, stamp,
		); err != nil {
			return fmt.Errorf("seed workflows: %w", err)
		}
		for _, a := range wf.Assignees {
			var assignedAt, activityAt sql.NullString
			if a.AssignedDaysAgo != nil {
				assignedAt = sql.NullString{String: daysAgo(*a.AssignedDaysAgo), Valid: true}
			}
			if a.ActivityDaysAgo != nil {
				activityAt = sql.NullString{String: daysAgo(*a.ActivityDaysAgo), Valid: true}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO raci_assignees (workflow_id, user_id, name, role, assigned_at, last_activity_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				wf.ID, a.User, a.Name, a.Role, assignedAt, activityAt,
			); err != nil {
				return fmt.Errorf("seed workflow assignees: %w", err)
			}
		}
		for _, r := range wf.Records {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO consultation_records (id, workflow_id, user_id, status, comment, submitted_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				r.ID, wf.ID, r.User, r.Status, nullString(r.Comment), daysAgo(r.SubmittedDaysAgo),
			); err != nil {
				return fmt.Errorf("seed consultation records: %w", err)
			}
		}
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func bounds(b *threshold.Band) [2]*float64 {
	if b == nil {
		return [2]*float64{}
	}
	return [2]*float64{b.Min, b.Max}
}
