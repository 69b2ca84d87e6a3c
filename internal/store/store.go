package store

import (
	"context"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// Store persists the history of setup invocations.
// It is an audit trail only; tool resolution never reads from it.
type Store interface {
	RecordSetup(ctx context.Context, rec *pipeline.SetupRecord) error
	GetSetup(ctx context.Context, id string) (*pipeline.SetupRecord, error)
	ListSetups(ctx context.Context, limit int) ([]*pipeline.SetupRecord, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
