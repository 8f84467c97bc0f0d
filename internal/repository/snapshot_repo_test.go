package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expense-share/client/internal/db"
)

func newTestRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	conn, err := db.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSnapshotRepository(conn)
}

// snapshotByKey returns the snapshot stored under exactly key, or nil.
func snapshotByKey(t *testing.T, repo *SnapshotRepository, key string) *Snapshot {
	t.Helper()
	all, err := repo.List(context.Background(), key)
	require.NoError(t, err)
	for _, s := range all {
		if s.Key == key {
			return s
		}
	}
	return nil
}

func TestSnapshotRepository_PutReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.Nil(t, snapshotByKey(t, repo, "groups"))

	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "groups", Payload: []byte(`[]`)}))
	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "groups", Payload: []byte(`[{"id":1}]`)}))

	got := snapshotByKey(t, repo, "groups")
	require.NotNil(t, got)
	assert.Equal(t, `[{"id":1}]`, string(got.Payload))
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)
}

func TestSnapshotRepository_ListByPrefix(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, key := range []string{"expenses/2", "expenses/1", "settlements/1", "expenses_x"} {
		require.NoError(t, repo.Put(ctx, &Snapshot{Key: key, Payload: []byte(`[]`)}))
	}

	got, err := repo.List(ctx, "expenses/")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "expenses/1", got[0].Key)
	assert.Equal(t, "expenses/2", got[1].Key)

	// "_" is matched literally.
	got, err = repo.List(ctx, "expenses_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "expenses_x", got[0].Key)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestSnapshotRepository_DeleteAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrSnapshotNotFound)

	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "invites", Payload: []byte(`[]`)}))
	require.NoError(t, repo.Put(ctx, &Snapshot{Key: "profile/summary", Payload: []byte(`null`)}))
	require.NoError(t, repo.Delete(ctx, "invites"))

	assert.Nil(t, snapshotByKey(t, repo, "invites"))
	assert.NotNil(t, snapshotByKey(t, repo, "profile/summary"))

	require.NoError(t, repo.Clear(ctx))
	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
