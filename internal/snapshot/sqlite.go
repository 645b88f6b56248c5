package snapshot

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite catalog at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	layer      TEXT NOT NULL,
	street     TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL,
	etag       TEXT NOT NULL DEFAULT '',
	sha256     TEXT NOT NULL,
	bytes      INTEGER NOT NULL,
	records    INTEGER NOT NULL,
	document   BLOB NOT NULL,
	fetched_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_layer ON snapshots(layer);
CREATE INDEX IF NOT EXISTS idx_snapshots_fetched_at ON snapshots(fetched_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, meta Meta, doc []byte) (*Snapshot, error) {
	if meta.Layer == "" {
		return nil, eris.New("sqlite: snapshot has no layer")
	}

	sum := sha256.Sum256(doc)
	snap := &Snapshot{
		ID:        uuid.New().String(),
		Layer:     meta.Layer,
		Street:    meta.Street,
		Source:    meta.Source,
		ETag:      meta.ETag,
		SHA256:    hex.EncodeToString(sum[:]),
		Bytes:     int64(len(doc)),
		Records:   meta.Records,
		FetchedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, layer, street, source, etag, sha256, bytes, records, document, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Layer, snap.Street, snap.Source, snap.ETag,
		snap.SHA256, snap.Bytes, snap.Records, doc, snap.FetchedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}
	return snap, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, []byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, layer, street, source, etag, sha256, bytes, records, document, fetched_at
		 FROM snapshots WHERE id = ?`,
		id,
	)
	return scanSnapshot(row, "id "+id)
}

func (s *SQLiteStore) Latest(ctx context.Context, layer string) (*Snapshot, []byte, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, layer, street, source, etag, sha256, bytes, records, document, fetched_at
		 FROM snapshots WHERE layer = ?
		 ORDER BY fetched_at DESC, id DESC LIMIT 1`,
		layer,
	)
	return scanSnapshot(row, "layer "+layer)
}

func (s *SQLiteStore) List(ctx context.Context, layer string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, layer, street, source, etag, sha256, bytes, records, fetched_at
	          FROM snapshots WHERE 1=1`
	var args []any
	if layer != "" {
		query += ` AND layer = ?`
		args = append(args, layer)
	}
	query += ` ORDER BY fetched_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Layer, &snap.Street, &snap.Source, &snap.ETag,
			&snap.SHA256, &snap.Bytes, &snap.Records, &snap.FetchedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snaps = append(snaps, snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete snapshot %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "id %s", id)
	}
	return nil
}

func (s *SQLiteStore) Prune(ctx context.Context, layer string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE layer = ? AND id NOT IN (
		   SELECT id FROM snapshots WHERE layer = ?
		   ORDER BY fetched_at DESC, id DESC LIMIT ?
		 )`,
		layer, layer, keep,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune snapshots")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable, what string) (*Snapshot, []byte, error) {
	var snap Snapshot
	var doc []byte

	err := row.Scan(&snap.ID, &snap.Layer, &snap.Street, &snap.Source, &snap.ETag,
		&snap.SHA256, &snap.Bytes, &snap.Records, &doc, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil, eris.Wrapf(ErrNotFound, "%s", what)
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: scan snapshot")
	}
	return &snap, doc, nil
}
