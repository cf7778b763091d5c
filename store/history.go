// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/history.go
// Summary: SQLite-backed archive of past workspace snapshots.
// Usage: Attached to the snapshot store; every save is also appended here,
//        giving a recovery trail beyond the single current-state file.

package store

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const historySchemaVersion = 1

// History archives snapshot envelopes in a local SQLite database.
type History struct {
	db *sql.DB
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=cache_size(-8000)&_pragma=temp_store(MEMORY)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	h := &History{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *History) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at  INTEGER NOT NULL,
		version     INTEGER NOT NULL,
		fingerprint TEXT NOT NULL DEFAULT '',
		hash        TEXT NOT NULL,
		payload     BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("create history schema: %w", err)
	}

	var version int
	err := h.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, err := h.db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, historySchemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != historySchemaVersion:
		return fmt.Errorf("history schema version %d not supported (want %d)", version, historySchemaVersion)
	}
	return nil
}

// Append archives one snapshot envelope.
func (h *History) Append(meta SnapshotMeta, payload []byte) error {
	_, err := h.db.Exec(
		`INSERT INTO snapshots (created_at, version, fingerprint, hash, payload) VALUES (?, ?, ?, ?, ?)`,
		meta.Timestamp.UnixMilli(), meta.Version, meta.SessionFingerprint, meta.Hash, payload,
	)
	if err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent archived snapshot, or (zero, nil, nil)
// when the archive is empty.
func (h *History) Latest() (SnapshotMeta, []byte, error) {
	var (
		meta      SnapshotMeta
		createdAt int64
		payload   []byte
	)
	err := h.db.QueryRow(
		`SELECT created_at, version, fingerprint, hash, payload FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&createdAt, &meta.Version, &meta.SessionFingerprint, &meta.Hash, &payload)
	if err == sql.ErrNoRows {
		return SnapshotMeta{}, nil, nil
	}
	if err != nil {
		return SnapshotMeta{}, nil, fmt.Errorf("read latest snapshot: %w", err)
	}
	meta.Timestamp = time.UnixMilli(createdAt).UTC()
	return meta, payload, nil
}

// List returns metadata for up to limit archived snapshots, newest first.
func (h *History) List(limit int) ([]SnapshotMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.Query(
		`SELECT created_at, version, fingerprint, hash FROM snapshots ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var metas []SnapshotMeta
	for rows.Next() {
		var (
			meta      SnapshotMeta
			createdAt int64
		)
		if err := rows.Scan(&createdAt, &meta.Version, &meta.SessionFingerprint, &meta.Hash); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		meta.Timestamp = time.UnixMilli(createdAt).UTC()
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Prune deletes all but the newest keep snapshots, returning how many were
// removed.
func (h *History) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := h.db.Exec(
		`DELETE FROM snapshots WHERE id NOT IN (SELECT id FROM snapshots ORDER BY id DESC LIMIT ?)`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	if n > 0 {
		log.Printf("History: Pruned %d archived snapshots", n)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (h *History) Close() error {
	return h.db.Close()
}
