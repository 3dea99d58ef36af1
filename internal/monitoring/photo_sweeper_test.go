package monitoring

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/isdelr/budget-manager-be/internal/files"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRefs struct {
	paths map[string]struct{}
	err   error
}

func (r staticRefs) ReferencedPhotoPaths(context.Context) (map[string]struct{}, error) {
	return r.paths, r.err
}

type recordedActivity struct {
	types []string
}

func (a *recordedActivity) CreateActivity(_ context.Context, activityType, _, _ string, _ *int64) error {
	a.types = append(a.types, activityType)
	return nil
}

func (a *recordedActivity) GetRecentForUser(context.Context, int64, int) ([]models.Activity, error) {
	return nil, nil
}

func saveAged(t *testing.T, store *files.Store, user string, age time.Duration) string {
	t.Helper()
	rel, err := store.Save(user, "p.png", strings.NewReader("x"))
	require.NoError(t, err)
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(filepath.Join(store.Root(), filepath.FromSlash(rel)), old, old))
	return rel
}

func exists(store *files.Store, rel string) bool {
	_, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(rel)))
	return err == nil
}

func TestSweepRemovesOnlyOldOrphans(t *testing.T) {
	store, err := files.New(t.TempDir())
	require.NoError(t, err)

	kept := saveAged(t, store, "alice", 48*time.Hour)
	orphan := saveAged(t, store, "alice", 48*time.Hour)
	fresh := saveAged(t, store, "bob", time.Minute)

	activity := &recordedActivity{}
	sweeper := NewPhotoSweeper(store, staticRefs{paths: map[string]struct{}{kept: {}}}, activity, time.Hour)

	removed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, exists(store, kept))
	assert.False(t, exists(store, orphan))
	assert.True(t, exists(store, fresh), "files inside the grace period are kept")
	assert.Equal(t, []string{"system.photo_sweep"}, activity.types)

	removed, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Len(t, activity.types, 1, "nothing removed, nothing recorded")
}

func TestSweepStopsOnReferenceError(t *testing.T) {
	store, err := files.New(t.TempDir())
	require.NoError(t, err)
	orphan := saveAged(t, store, "alice", 48*time.Hour)

	sweeper := NewPhotoSweeper(store, staticRefs{err: errors.New("db down")}, &recordedActivity{}, time.Hour)
	_, err = sweeper.Sweep(context.Background())
	assert.Error(t, err)
	assert.True(t, exists(store, orphan))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	store, err := files.New(t.TempDir())
	require.NoError(t, err)
	sweeper := NewPhotoSweeper(store, staticRefs{}, &recordedActivity{}, time.Hour)

	assert.Error(t, sweeper.Start("not a cron spec"))

	require.NoError(t, sweeper.Start("@every 1h"))
	assert.Error(t, sweeper.Start("@every 1h"), "double start")
	sweeper.Stop()
	sweeper.Stop()
}

func writeAged(t *testing.T, store *files.Store, rel string, age time.Duration) string {
	t.Helper()
	full := filepath.Join(store.Root(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte("x"), 0644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(full, old, old))
	return rel
}

func TestSweepIgnoresFilesOutsideUserFolders(t *testing.T) {
	store, err := files.New(t.TempDir())
	require.NoError(t, err)

	topLevel := writeAged(t, store, ".gitkeep", 48*time.Hour)
	nested := writeAged(t, store, "alice/archive/old.png", 48*time.Hour)
	orphan := saveAged(t, store, "alice", 48*time.Hour)

	sweeper := NewPhotoSweeper(store, staticRefs{paths: map[string]struct{}{}}, &recordedActivity{}, time.Hour)
	removed, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.True(t, exists(store, topLevel))
	assert.True(t, exists(store, nested))
	assert.False(t, exists(store, orphan))
}
