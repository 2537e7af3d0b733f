package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh strata installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(); if repository code references a column that
// doesn't exist here, tests fail immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- BSC objectives
CREATE TABLE IF NOT EXISTS objectives (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	perspective TEXT NOT NULL CHECK(perspective IN ('financial', 'customer', 'internal_process', 'learning_growth')),
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Causal links between objectives (from drives to)
CREATE TABLE IF NOT EXISTS causal_links (
	id TEXT PRIMARY KEY,
	from_objective_id TEXT NOT NULL,
	to_objective_id TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	CHECK(from_objective_id <> to_objective_id),
	UNIQUE(from_objective_id, to_objective_id),
	FOREIGN KEY (from_objective_id) REFERENCES objectives(id) ON DELETE CASCADE,
	FOREIGN KEY (to_objective_id) REFERENCES objectives(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_causal_links_to ON causal_links(to_objective_id);

-- KPIs
CREATE TABLE IF NOT EXISTS kpis (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	unit TEXT,
	target_value REAL NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- KPI value history, one row per period. Only the exception mark is mutable.
CREATE TABLE IF NOT EXISTS kpi_values (
	kpi_id TEXT NOT NULL,
	period TEXT NOT NULL,
	value REAL NOT NULL,
	target_value REAL,
	is_manual_exception INTEGER NOT NULL DEFAULT 0 CHECK(is_manual_exception IN (0, 1)),
	exception_reason TEXT,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kpi_id, period),
	FOREIGN KEY (kpi_id) REFERENCES kpis(id) ON DELETE CASCADE
);

-- Versioned thresholds
CREATE TABLE IF NOT EXISTS kpi_thresholds (
	kpi_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	mode TEXT NOT NULL CHECK(mode IN ('fixed', 'dynamic')) DEFAULT 'fixed',
	effective_from TEXT,
	green_min REAL,
	green_max REAL,
	yellow_min REAL,
	yellow_max REAL,
	red_min REAL,
	red_max REAL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kpi_id, version),
	FOREIGN KEY (kpi_id) REFERENCES kpis(id) ON DELETE CASCADE
);

-- KPI measures objective
CREATE TABLE IF NOT EXISTS kpi_objectives (
	kpi_id TEXT NOT NULL,
	objective_id TEXT NOT NULL,
	PRIMARY KEY (kpi_id, objective_id),
	FOREIGN KEY (kpi_id) REFERENCES kpis(id) ON DELETE CASCADE,
	FOREIGN KEY (objective_id) REFERENCES objectives(id) ON DELETE CASCADE
);

-- Initiatives
CREATE TABLE IF NOT EXISTS initiatives (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('planned', 'active', 'completed', 'cancelled')) DEFAULT 'planned',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS initiative_kpis (
	initiative_id TEXT NOT NULL,
	kpi_id TEXT NOT NULL,
	PRIMARY KEY (initiative_id, kpi_id),
	FOREIGN KEY (initiative_id) REFERENCES initiatives(id) ON DELETE CASCADE,
	FOREIGN KEY (kpi_id) REFERENCES kpis(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS initiative_objectives (
	initiative_id TEXT NOT NULL,
	objective_id TEXT NOT NULL,
	PRIMARY KEY (initiative_id, objective_id),
	FOREIGN KEY (initiative_id) REFERENCES initiatives(id) ON DELETE CASCADE,
	FOREIGN KEY (objective_id) REFERENCES objectives(id) ON DELETE CASCADE
);

-- OKRs
CREATE TABLE IF NOT EXISTS okrs (
	id TEXT PRIMARY KEY,
	initiative_id TEXT NOT NULL,
	quarter TEXT NOT NULL,
	objective TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (initiative_id) REFERENCES initiatives(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_okrs_initiative ON okrs(initiative_id);

-- Key results: exactly one of the two shapes is populated
CREATE TABLE IF NOT EXISTS key_results (
	id TEXT PRIMARY KEY,
	okr_id TEXT NOT NULL,
	title TEXT NOT NULL,
	kr_type TEXT NOT NULL CHECK(kr_type IN ('custom', 'kpi_based')),
	kpi_id TEXT,
	kpi_baseline_value REAL,
	kpi_target_value REAL,
	target_value REAL,
	current_value REAL NOT NULL DEFAULT 0,
	progress_percentage REAL NOT NULL DEFAULT 0,
	source_period TEXT,
	last_synced_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	CHECK(
		(kr_type = 'kpi_based' AND kpi_id IS NOT NULL AND kpi_baseline_value IS NOT NULL AND kpi_target_value IS NOT NULL AND target_value IS NULL)
		OR
		(kr_type = 'custom' AND kpi_id IS NULL AND kpi_baseline_value IS NULL AND kpi_target_value IS NULL AND target_value IS NOT NULL)
	),
	FOREIGN KEY (okr_id) REFERENCES okrs(id) ON DELETE CASCADE,
	FOREIGN KEY (kpi_id) REFERENCES kpis(id)
);

CREATE INDEX IF NOT EXISTS idx_key_results_okr ON key_results(okr_id);
CREATE INDEX IF NOT EXISTS idx_key_results_kpi ON key_results(kpi_id);

-- Tasks
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('todo', 'in_progress', 'done')) DEFAULT 'todo',
	key_result_id TEXT,
	kpi_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (key_result_id) REFERENCES key_results(id) ON DELETE SET NULL,
	FOREIGN KEY (kpi_id) REFERENCES kpis(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_key_result ON tasks(key_result_id);
CREATE INDEX IF NOT EXISTS idx_tasks_kpi ON tasks(kpi_id);

-- RACI workflows (current step only)
CREATE TABLE IF NOT EXISTS raci_workflows (
	id TEXT PRIMARY KEY,
	template_id TEXT,
	name TEXT NOT NULL,
	step_name TEXT NOT NULL,
	step_started_at DATETIME NOT NULL,
	sla_days INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS raci_assignees (
	workflow_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('R', 'A', 'C', 'I')),
	assigned_at DATETIME,
	last_activity_at DATETIME,
	PRIMARY KEY (workflow_id, user_id),
	FOREIGN KEY (workflow_id) REFERENCES raci_workflows(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS consultation_records (
	id TEXT PRIMARY KEY,
	workflow_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	comment TEXT,
	submitted_at DATETIME NOT NULL,
	FOREIGN KEY (workflow_id) REFERENCES raci_workflows(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_consultation_records_workflow ON consultation_records(workflow_id);
`

// InitSchema brings the database to the current schema.
// A fresh database gets SchemaSQL directly with every migration marked applied;
// an existing one runs its pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to mark migration %d applied: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
