package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// PendingResolution model related methods.
	CreatePendingResolution(ctx context.Context, create *PendingResolution) (*PendingResolution, error)
	ListPendingResolutions(ctx context.Context, find *FindPendingResolution) ([]*PendingResolution, error)
	DeletePendingResolution(ctx context.Context, delete *DeletePendingResolution) (int64, error)
}
