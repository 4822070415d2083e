package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tors/internal/config"
	"tors/internal/storage"
)

func testApp(t *testing.T) *app {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tors.db"))
	require.NoError(t, err)
	a := newApp(config.Default(), zap.NewNop(), store)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestAddListDone(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	var out bytes.Buffer

	require.NoError(t, runAdd(ctx, a, &out, []string{"Buy", "milk"}))
	assert.Contains(t, out.String(), "Buy milk")

	out.Reset()
	require.NoError(t, runList(ctx, a, &out, nil))
	assert.Contains(t, out.String(), "  1. [ ] Buy milk")

	out.Reset()
	require.NoError(t, runDone(ctx, a, &out, []string{"1"}))
	assert.Equal(t, "Done: Buy milk (+25 exp)\n", out.String())

	out.Reset()
	require.NoError(t, runStats(ctx, a, &out, nil))
	assert.Equal(t, "Level: 0\nExp: 25\nExp to next level: 15\n", out.String())

	out.Reset()
	require.NoError(t, runDone(ctx, a, &out, []string{"1"}))
	assert.Equal(t, "Reopened: Buy milk\n", out.String())
}

func TestAddRejectsBlankTitle(t *testing.T) {
	a := testApp(t)
	err := runAdd(context.Background(), a, &bytes.Buffer{}, []string{"  "})
	assert.Error(t, err)
}

func TestRemoveByID(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	task := storage.NewTask(time.Now())
	task.Title = "gone"
	id, err := a.tracker.Save(ctx, "", task)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runRemove(ctx, a, &out, []string{id}))
	assert.Equal(t, "Deleted: gone\n", out.String())

	_, err = a.store.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	base := time.Now()
	for i, id := range []string{"abc1", "abc2", "xyz"} {
		task := storage.NewTask(base.Add(time.Duration(i) * time.Second))
		task.Title = id
		require.NoError(t, a.store.Put(ctx, id, task))
	}
	require.NoError(t, a.cache.Refresh(ctx))

	e, err := resolve(a.cache, "2")
	require.NoError(t, err)
	assert.Equal(t, "abc2", e.ID)

	e, err = resolve(a.cache, "xy")
	require.NoError(t, err)
	assert.Equal(t, "xyz", e.ID)

	e, err = resolve(a.cache, "abc1")
	require.NoError(t, err)
	assert.Equal(t, "abc1", e.ID)

	_, err = resolve(a.cache, "abc")
	assert.ErrorContains(t, err, "matches 2 tasks")

	_, err = resolve(a.cache, "4")
	assert.ErrorIs(t, err, errNoTask)
	_, err = resolve(a.cache, "0")
	assert.ErrorIs(t, err, errNoTask)
	_, err = resolve(a.cache, "nope")
	assert.ErrorIs(t, err, errNoTask)
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	a := testApp(t)
	past := time.Now().AddDate(0, 0, -3)

	stale := storage.NewTask(past)
	stale.Title = "stale"
	stale.Preferences.Expire = past.Add(time.Hour)
	require.NoError(t, a.store.Put(ctx, "stale", stale))

	live := storage.NewTask(time.Now())
	live.Title = "live"
	require.NoError(t, a.store.Put(ctx, "live", live))

	var out bytes.Buffer
	require.NoError(t, runPurge(ctx, a, &out, nil))
	assert.Equal(t, "Purged 1 expired task\n", out.String())

	_, err := a.store.Get(ctx, "stale")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = a.store.Get(ctx, "live")
	assert.NoError(t, err)
}
