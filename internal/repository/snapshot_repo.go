package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot is stored under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is the last successfully fetched payload for a cache key.
type Snapshot struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

// SnapshotRepository provides data access for cached snapshots.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Put stores a snapshot, replacing any previous payload for its key.
func (r *SnapshotRepository) Put(ctx context.Context, s *Snapshot) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO snapshots (key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, s.Key, s.Payload, s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}
	return nil
}

// List retrieves all snapshots whose key starts with prefix, ordered by key.
func (r *SnapshotRepository) List(ctx context.Context, prefix string) ([]*Snapshot, error) {
	query := `
		SELECT key, payload, updated_at
		FROM snapshots
		WHERE key LIKE ? ESCAPE '\'
		ORDER BY key
	`

	rows, err := r.db.QueryContext(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*Snapshot
	for rows.Next() {
		s := &Snapshot{}
		if err := rows.Scan(&s.Key, &s.Payload, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Delete removes the snapshot stored under key.
func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}

// Clear removes every snapshot.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
