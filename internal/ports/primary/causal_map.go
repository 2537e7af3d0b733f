package primary

import (
	"context"

	"github.com/example/strata/internal/core/causal"
)

// CausalMapService defines the primary port for strategy map operations.
type CausalMapService interface {
	// ListObjectives retrieves all BSC objectives.
	ListObjectives(ctx context.Context) ([]*Objective, error)

	// Link creates a causal link between two objectives.
	Link(ctx context.Context, req LinkRequest) (*LinkResponse, error)

	// Unlink deletes a causal link.
	Unlink(ctx context.Context, linkID string) error

	// ListLinks retrieves all causal links and reports the ones the graph ignores.
	ListLinks(ctx context.Context) (*LinkList, error)

	// Reach lists the objectives reachable from an objective in one direction.
	Reach(ctx context.Context, objectiveID string, dir causal.Direction) (*causal.Reach, error)

	// Cycles lists every cycle in the strategy map.
	Cycles(ctx context.Context) ([]causal.CycleWarning, error)
}

// Objective represents a BSC objective at the port boundary.
type Objective struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Perspective string `json:"perspective"`
	Description string `json:"description,omitempty"`
}

// LinkRequest contains parameters for creating a causal link.
type LinkRequest struct {
	FromObjectiveID string
	ToObjectiveID   string
}

// LinkResponse contains the result of creating a causal link.
type LinkResponse struct {
	LinkID  string `json:"link_id"`
	Warning string `json:"warning,omitempty"`
}

// CausalLink represents a causal link at the port boundary.
type CausalLink struct {
	ID       string `json:"id"`
	FromID   string `json:"from_objective_id"`
	FromName string `json:"from_name"`
	ToID     string `json:"to_objective_id"`
	ToName   string `json:"to_name"`
}

// SkippedLink is a stored link the graph ignores.
type SkippedLink struct {
	LinkID string `json:"link_id"`
	Reason string `json:"reason"`
}

// LinkList is every stored link plus the ones left out of the graph.
type LinkList struct {
	Links   []*CausalLink `json:"links"`
	Skipped []SkippedLink `json:"skipped,omitempty"`
}
