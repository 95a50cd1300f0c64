// Package store persists the pipeline's working tables and run history.
package store

import (
	"context"

	"github.com/sells-group/namepairs/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// NameKeys carries the derived comparison keys of one name row. A nil Norm
// marks the name as excluded.
type NameKeys struct {
	ID          int64
	Norm        *string
	Fingerprint string
}

// Store defines the persistence interface for the pair generation pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, stages []string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error
	ListPhases(ctx context.Context, runID string) ([]model.RunPhase, error)

	// Ingest
	ResetInputs(ctx context.Context) error
	InsertStatements(ctx context.Context, stmts []model.Statement) (int64, error)
	InsertResolverEdges(ctx context.Context, edges []model.ResolverEdge) (int64, error)

	// Resolver
	ListResolverEdges(ctx context.Context) ([]model.ResolverEdge, error)
	ListCanonicalEdges(ctx context.Context) ([]model.ResolverEdge, error)
	ReplaceCanonicalEdges(ctx context.Context, edges []model.ResolverEdge) error
	ReplaceCanonicalIDs(ctx context.Context, mapping map[string]string) error

	// Names
	BuildNames(ctx context.Context) (int64, error)
	ListNames(ctx context.Context) ([]model.NameRecord, error)
	UpdateNameKeys(ctx context.Context, keys []NameKeys) error
	DeleteExcludedNames(ctx context.Context) (int64, error)
	ListEntityIDs(ctx context.Context, prefix string) ([]string, error)

	// Pairs
	ReplaceNonPairs(ctx context.Context, pairs []model.IDPair) error
	ListNonPairs(ctx context.Context) ([]model.IDPair, error)
	ReplacePairs(ctx context.Context, pairs []model.NamePair) (int64, error)
	ListPairs(ctx context.Context) ([]model.NamePair, error)
	UpdatePairScores(ctx context.Context, pairs []model.NamePair) error

	// Introspection
	CountRows(ctx context.Context, table string) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
