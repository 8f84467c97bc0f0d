package repository

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/expense-share/client/internal/db"
)

// The last payload put under a key is the one read back, on a file-backed
// database opened through InitDB.
func TestSnapshotLastWriteWinsProperty(t *testing.T) {
	db.ResetDB()
	testDB, err := db.InitDB(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	defer db.ResetDB()

	repo := NewSnapshotRepository(testDB)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	key := gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0 && len(s) <= 40
	})

	properties.Property("list returns the last put payload", prop.ForAll(
		func(key string, payloads []string) bool {
			if err := repo.Clear(ctx); err != nil {
				t.Logf("clear: %v", err)
				return false
			}
			for _, p := range payloads {
				if err := repo.Put(ctx, &Snapshot{Key: key, Payload: []byte(p)}); err != nil {
					t.Logf("put: %v", err)
					return false
				}
			}

			got, err := repo.List(ctx, key)
			if err != nil {
				t.Logf("list: %v", err)
				return false
			}
			if len(payloads) == 0 {
				return len(got) == 0
			}
			// Alphabetic keys have no LIKE wildcards, so only key itself matches.
			return len(got) == 1 && got[0].Key == key &&
				bytes.Equal(got[0].Payload, []byte(payloads[len(payloads)-1]))
		},
		key,
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
