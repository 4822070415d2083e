package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTask(title string, created time.Time) Task {
	task := NewTask(created)
	task.Title = title
	task.Description = "first line\nsecond line"
	return task
}

func assertSameTask(t *testing.T, want, got Task) {
	t.Helper()
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Description, got.Description)
	assert.Equal(t, want.Done, got.Done)
	assert.Equal(t, want.ExpAwarded, got.ExpAwarded)
	assert.True(t, want.CreationDate.Equal(got.CreationDate), "creation date %v != %v", want.CreationDate, got.CreationDate)
	assert.Equal(t, want.Preferences.DailyRepeat, got.Preferences.DailyRepeat)
	assert.True(t, want.Preferences.Expire.Equal(got.Preferences.Expire), "expire %v != %v", want.Preferences.Expire, got.Preferences.Expire)
	assert.Equal(t, want.Preferences.ExpReward, got.Preferences.ExpReward)
}

func collect(t *testing.T, s *Store) []Entry {
	t.Helper()
	var out []Entry
	for e, err := range s.Tasks(context.Background()) {
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestStore_PutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	task := sampleTask("Buy milk", time.Now())
	task.Done = true
	task.ExpAwarded = true
	task.Preferences.DailyRepeat = true
	task.Preferences.ExpReward = 40

	require.NoError(t, s.Put(ctx, "id-1", task))

	got, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assertSameTask(t, task, got)
}

func TestStore_PutReplacesWholeRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleTask("first", time.Now())
	require.NoError(t, s.Put(ctx, "id-1", first))

	second := NewTask(time.Now())
	second.Title = "second"
	require.NoError(t, s.Put(ctx, "id-1", second))

	got, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assertSameTask(t, second, got)
	assert.Empty(t, got.Description)
	assert.Len(t, collect(t, s), 1)
}

func TestStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "keep", sampleTask("keep", time.Now())))

	assert.NoError(t, s.Delete(ctx, "missing"))
	entries := collect(t, s)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep", entries[0].ID)

	assert.NoError(t, s.Delete(ctx, "keep"))
	assert.NoError(t, s.Delete(ctx, "keep"))
	assert.Empty(t, collect(t, s))
}

func TestStore_InsertRefusesCollision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, "id-1", sampleTask("a", time.Now())))
	err := s.Insert(ctx, "id-1", sampleTask("b", time.Now()))
	assert.ErrorIs(t, err, ErrExists)

	got, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)
}

func TestStore_CreateRetriesOnCollision(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "taken", sampleTask("old", time.Now())))

	ids := []string{"taken", "taken", "fresh"}
	calls := 0
	s.newID = func() (string, error) {
		id := ids[calls]
		calls++
		return id, nil
	}

	id, err := s.Create(ctx, sampleTask("new", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "fresh", id)
	assert.Equal(t, 3, calls)

	got, err := s.Get(ctx, "taken")
	require.NoError(t, err)
	assert.Equal(t, "old", got.Title)
}

func TestStore_CreateGivesUp(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "taken", sampleTask("old", time.Now())))
	s.newID = func() (string, error) { return "taken", nil }

	_, err := s.Create(ctx, sampleTask("new", time.Now()))
	assert.ErrorIs(t, err, ErrExists)
}

func TestStore_CreateGeneratesDistinctIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for range 20 {
		id, err := s.Create(ctx, sampleTask("t", time.Now()))
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, collect(t, s), 20)
}

func TestStore_TasksInKeyOrderAndRestartable(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	// key order deliberately differs from creation order
	require.NoError(t, s.Put(ctx, "c", sampleTask("oldest", now.Add(-3*time.Hour))))
	require.NoError(t, s.Put(ctx, "a", sampleTask("newest", now)))
	require.NoError(t, s.Put(ctx, "b", sampleTask("middle", now.Add(-time.Hour))))

	first := collect(t, s)
	second := collect(t, s)

	require.Len(t, first, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{first[0].ID, first[1].ID, first[2].ID})
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestStore_TasksStopsEarly(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, id, sampleTask(id, time.Now())))
	}

	n := 0
	for range s.Tasks(ctx) {
		n++
		break
	}
	assert.Equal(t, 1, n)

	// the connection was released, so writes still work
	assert.NoError(t, s.Delete(ctx, "a"))
}

func TestStore_TasksReportsCorruptRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", sampleTask("good", time.Now())))
	_, err := s.db.Exec(`INSERT INTO tasks (id, value) VALUES (?, ?);`, "b", []byte{0x01, 0x02})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "c", sampleTask("also good", time.Now())))

	var good []string
	var bad []string
	for e, err := range s.Tasks(ctx) {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			bad = append(bad, decodeErr.ID)
			continue
		}
		require.NoError(t, err)
		good = append(good, e.ID)
	}
	assert.Equal(t, []string{"a", "c"}, good)
	assert.Equal(t, []string{"b"}, bad)

	_, err = s.Get(ctx, "b")
	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestStore_Account(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Account(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.PutAccount(ctx, Account{Experience: 125}))
	a, err := s.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(125), a.Experience)

	// the account lives outside the task namespace
	assert.Empty(t, collect(t, s))
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tors.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	task := sampleTask("persisted", time.Now())
	require.NoError(t, s.Put(ctx, "id-1", task))
	require.NoError(t, s.PutAccount(ctx, Account{Experience: 7}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assertSameTask(t, task, got)

	a, err := s.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), a.Experience)
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
