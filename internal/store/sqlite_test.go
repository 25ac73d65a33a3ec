package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwcapparel/catalog-sync/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, model.RunKindRebuild, false)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	err = s.CompleteRun(ctx, run.ID, model.RunStatusComplete, []byte(`{"total_records":42}`))
	require.NoError(t, err)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.JSONEq(t, `{"total_records":42}`, string(got.Report))
	assert.NotNil(t, got.FinishedAt)
}

func TestSQLiteCompleteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	err := s.CompleteRun(context.Background(), "no-such-run", model.RunStatusFailed, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)
	_, err := s.GetRun(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteListRunsFilterAndOrder(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	r1, err := s.CreateRun(ctx, model.RunKindRebuild, false)
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, model.RunKindAudit, false)
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, r1.ID, model.RunStatusComplete, nil))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rebuilds, err := s.ListRuns(ctx, RunFilter{Kind: model.RunKindRebuild})
	require.NoError(t, err)
	require.Len(t, rebuilds, 1)
	assert.Equal(t, r1.ID, rebuilds[0].ID)

	complete, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)
}

func TestSQLiteListRunsLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	for range 5 {
		_, err := s.CreateRun(ctx, model.RunKindBackfill, false)
		require.NoError(t, err)
	}
	runs, err := s.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
