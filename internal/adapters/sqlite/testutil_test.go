// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/strata/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every connection to :memory: is its own database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedObjective inserts a test objective and returns its ID.
func seedObjective(t *testing.T, db *sql.DB, id, perspective string) string {
	t.Helper()
	if perspective == "" {
		perspective = "customer"
	}
	_, err := db.Exec("INSERT INTO objectives (id, name, perspective) VALUES (?, ?, ?)", id, "Objective "+id, perspective)
	if err != nil {
		t.Fatalf("failed to seed objective: %v", err)
	}
	return id
}

// seedKPI inserts a test KPI and returns its ID.
func seedKPI(t *testing.T, db *sql.DB, id string, target float64) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO kpis (id, name, unit, target_value) VALUES (?, ?, '%', ?)", id, "KPI "+id, target)
	if err != nil {
		t.Fatalf("failed to seed kpi: %v", err)
	}
	return id
}

// seedInitiative inserts a test initiative and returns its ID.
func seedInitiative(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO initiatives (id, name, status) VALUES (?, ?, 'active')", id, "Initiative "+id)
	if err != nil {
		t.Fatalf("failed to seed initiative: %v", err)
	}
	return id
}

// seedOKR inserts a test OKR and returns its ID.
func seedOKR(t *testing.T, db *sql.DB, id, initiativeID string) string {
	t.Helper()
	_, err := db.Exec("INSERT INTO okrs (id, initiative_id, quarter, objective) VALUES (?, ?, '2024-Q1', ?)", id, initiativeID, "OKR "+id)
	if err != nil {
		t.Fatalf("failed to seed okr: %v", err)
	}
	return id
}

// seedWorkflow inserts a test workflow and returns its ID.
func seedWorkflow(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO raci_workflows (id, name, step_name, step_started_at, sla_days) VALUES (?, 'Budget', 'Review', '2024-04-10T09:00:00Z', 7)",
		id,
	)
	if err != nil {
		t.Fatalf("failed to seed workflow: %v", err)
	}
	return id
}

func ptr(f float64) *float64 { return &f }
