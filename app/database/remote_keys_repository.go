package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RemoteKeyRepository handles database operations for page bookmarks.
type RemoteKeyRepository struct {
	db      dbtx
	tracker *Tracker
}

// NewRemoteKeyRepository creates a new remote key repository.
func NewRemoteKeyRepository(db *DB) *RemoteKeyRepository {
	return &RemoteKeyRepository{db: db, tracker: db.Tracker()}
}

// WithTx returns a copy of the repository bound to tx. Tx-bound repositories
// do not notify the tracker; the transaction owner notifies after commit.
func (r *RemoteKeyRepository) WithTx(tx *sql.Tx) *RemoteKeyRepository {
	return &RemoteKeyRepository{db: tx}
}

// InsertRemoteKeys upserts keys by id, replacing existing rows on conflict.
func (r *RemoteKeyRepository) InsertRemoteKeys(ctx context.Context, keys []RemoteKey) error {
	for _, k := range keys {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO remote_keys (id, prev_key, next_key)
			VALUES (?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				prev_key = excluded.prev_key,
				next_key = excluded.next_key
		`, k.ID, nullInt(k.PrevKey), nullInt(k.NextKey))
		if err != nil {
			return fmt.Errorf("failed to insert remote key %s: %w", k.ID, err)
		}
	}

	r.notify()
	return nil
}

// GetRemoteKeyByID returns the key or nil when absent.
func (r *RemoteKeyRepository) GetRemoteKeyByID(ctx context.Context, id string) (*RemoteKey, error) {
	var key RemoteKey
	var prev, next sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, prev_key, next_key
		FROM remote_keys
		WHERE id = ?
	`, id).Scan(&key.ID, &prev, &next)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get remote key: %w", err)
	}

	if prev.Valid {
		v := int(prev.Int64)
		key.PrevKey = &v
	}
	if next.Valid {
		v := int(next.Int64)
		key.NextKey = &v
	}
	return &key, nil
}

// GetRemoteKeyCount returns the total number of stored keys.
func (r *RemoteKeyRepository) GetRemoteKeyCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM remote_keys").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get remote key count: %w", err)
	}
	return count, nil
}

// ClearRemoteKeys deletes all stored keys.
func (r *RemoteKeyRepository) ClearRemoteKeys(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM remote_keys"); err != nil {
		return fmt.Errorf("failed to clear remote keys: %w", err)
	}

	r.notify()
	return nil
}

func (r *RemoteKeyRepository) notify() {
	if r.tracker != nil {
		r.tracker.Notify(TableRemoteKeys)
	}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
