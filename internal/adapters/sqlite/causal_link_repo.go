package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/strata/internal/core/errs"
	"github.com/example/strata/internal/ports/secondary"
)

// CausalLinkRepository implements secondary.CausalLinkRepository with SQLite.
type CausalLinkRepository struct {
	db *sql.DB
}

// NewCausalLinkRepository creates a new SQLite causal link repository.
func NewCausalLinkRepository(db *sql.DB) *CausalLinkRepository {
	return &CausalLinkRepository{db: db}
}

const causalLinkSelectCols = "id, from_objective_id, to_objective_id, created_at"

func scanCausalLink(s scanner) (*secondary.CausalLinkRecord, error) {
	var createdAt sql.NullTime
	record := &secondary.CausalLinkRecord{}
	if err := s.Scan(&record.ID, &record.FromObjectiveID, &record.ToObjectiveID, &createdAt); err != nil {
		return nil, err
	}
	record.CreatedAt = formatTime(createdAt)
	return record, nil
}

// Create persists a new causal link.
func (r *CausalLinkRepository) Create(ctx context.Context, link *secondary.CausalLinkRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO causal_links (id, from_objective_id, to_objective_id) VALUES (?, ?, ?)",
		link.ID, link.FromObjectiveID, link.ToObjectiveID,
	)
	if err != nil {
		return fmt.Errorf("failed to create causal link: %w", err)
	}
	return nil
}

// GetByID retrieves a link by its ID.
func (r *CausalLinkRepository) GetByID(ctx context.Context, id string) (*secondary.CausalLinkRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+causalLinkSelectCols+" FROM causal_links WHERE id = ?", id)
	record, err := scanCausalLink(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("causal link", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get causal link: %w", err)
	}
	return record, nil
}

// List retrieves all links in insertion order.
func (r *CausalLinkRepository) List(ctx context.Context) ([]*secondary.CausalLinkRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+causalLinkSelectCols+" FROM causal_links ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list causal links: %w", err)
	}
	defer rows.Close()

	var links []*secondary.CausalLinkRecord
	for rows.Next() {
		record, err := scanCausalLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan causal link: %w", err)
		}
		links = append(links, record)
	}
	return links, rows.Err()
}

// Delete removes a link.
func (r *CausalLinkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM causal_links WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete causal link: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return errs.NotFound("causal link", id)
	}
	return nil
}

// Exists checks whether a from -> to link is already stored.
func (r *CausalLinkRepository) Exists(ctx context.Context, fromID, toID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM causal_links WHERE from_objective_id = ? AND to_objective_id = ?",
		fromID, toID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check causal link: %w", err)
	}
	return count > 0, nil
}

// GetNextID returns the next available link ID.
func (r *CausalLinkRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM causal_links WHERE id LIKE 'LINK-%'",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next causal link ID: %w", err)
	}
	return fmt.Sprintf("LINK-%03d", maxID+1), nil
}

// Ensure CausalLinkRepository implements the interface
var _ secondary.CausalLinkRepository = (*CausalLinkRepository)(nil)
