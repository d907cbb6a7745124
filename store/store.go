package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/kronos/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// CreatePendingResolution assigns an ID and creation time when they are unset.
func (s *Store) CreatePendingResolution(ctx context.Context, create *PendingResolution) (*PendingResolution, error) {
	if create.ID == "" {
		create.ID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreatePendingResolution(ctx, create)
}

func (s *Store) ListPendingResolutions(ctx context.Context, find *FindPendingResolution) ([]*PendingResolution, error) {
	return s.driver.ListPendingResolutions(ctx, find)
}

// GetPendingResolution returns nil when no row matches.
func (s *Store) GetPendingResolution(ctx context.Context, find *FindPendingResolution) (*PendingResolution, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.driver.ListPendingResolutions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeletePendingResolution(ctx context.Context, delete *DeletePendingResolution) (int64, error) {
	return s.driver.DeletePendingResolution(ctx, delete)
}

// PrunePendingResolutions deletes rows older than maxAge.
func (s *Store) PrunePendingResolutions(ctx context.Context, maxAge time.Duration) (int64, error) {
	before := time.Now().Add(-maxAge).Unix()
	return s.driver.DeletePendingResolution(ctx, &DeletePendingResolution{CreatedTsBefore: &before})
}
