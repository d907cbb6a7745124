package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/kronos/internal/profile"
	"github.com/hrygo/kronos/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "kronos_test.db")}
	driver, err := NewDB(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	initialized, err := s.GetDriver().IsInitialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized)
	require.NoError(t, s.Migrate(ctx))
}

func TestPendingResolution_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePendingResolution(ctx, &store.PendingResolution{
		Text:        "next week",
		ReferenceTs: 15839290,
		Payload:     []byte(`{"spans":[],"resolutions":[]}`),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.NotZero(t, created.CreatedTs)

	got, err := s.GetPendingResolution(ctx, &store.FindPendingResolution{ID: &created.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.Text, got.Text)
	assert.Equal(t, created.ReferenceTs, got.ReferenceTs)
	assert.Equal(t, created.Payload, got.Payload)

	missing := "does-not-exist"
	got, err = s.GetPendingResolution(ctx, &store.FindPendingResolution{ID: &missing})
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := s.DeletePendingResolution(ctx, &store.DeletePendingResolution{ID: &created.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := s.ListPendingResolutions(ctx, &store.FindPendingResolution{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPendingResolution_Prune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour).Unix()
	for _, p := range []*store.PendingResolution{
		{ID: "old", Text: "tomorrow", Payload: []byte("{}"), CreatedTs: old},
		{ID: "new", Text: "today", Payload: []byte("{}")},
	} {
		_, err := s.CreatePendingResolution(ctx, p)
		require.NoError(t, err)
	}

	n, err := s.PrunePendingResolutions(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	list, err := s.ListPendingResolutions(ctx, &store.FindPendingResolution{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)
}

func TestDeletePendingResolution_RequiresCondition(t *testing.T) {
	s := newTestStore(t)
	_, err := s.DeletePendingResolution(context.Background(), &store.DeletePendingResolution{})
	assert.Error(t, err)
}

func TestNewDB_RequiresDSN(t *testing.T) {
	_, err := NewDB(&profile.Profile{Driver: "sqlite"})
	assert.Error(t, err)
}
