// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: store/snapshot.go
// Summary: File-backed persistence for workspace snapshots.
// Usage: The session saves through the store on every effective change;
//        startup loads the last snapshot back, or falls back to a fresh
//        workspace when nothing usable is on disk.

package store

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"prism/workspace"
)

// SnapshotVersion is bumped whenever the persisted shape changes in a way
// old readers cannot handle. Mismatched snapshots are discarded, not migrated.
const SnapshotVersion = 1

// SnapshotMeta describes one persisted snapshot.
type SnapshotMeta struct {
	Version            int       `json:"version"`
	Timestamp          time.Time `json:"timestamp"`
	SessionFingerprint string    `json:"sessionFingerprint,omitempty"`
	Hash               string    `json:"hash"`
}

// storedSnapshot is the serialized envelope written to disk.
type storedSnapshot struct {
	Meta      SnapshotMeta    `json:"meta"`
	Workspace json.RawMessage `json:"workspace"`
}

// SnapshotStore persists workspace snapshots to a JSON file with a content
// hash for integrity checks. A load that fails any check behaves exactly
// like no snapshot existing at all.
type SnapshotStore struct {
	path        string
	fingerprint string
	ids         workspace.IDGenerator
	history     *History
	mu          sync.Mutex
}

// NewSnapshotStore creates a store writing to path. The fingerprint ties
// snapshots to one host deployment; an empty fingerprint disables the check.
func NewSnapshotStore(path, fingerprint string, ids workspace.IDGenerator) *SnapshotStore {
	if ids == nil {
		ids = workspace.NewUUIDGenerator()
	}
	return &SnapshotStore{path: path, fingerprint: fingerprint, ids: ids}
}

// AttachHistory archives every saved snapshot into the given history as well.
func (s *SnapshotStore) AttachHistory(h *History) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = h
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save writes the workspace to disk, computing a SHA-1 hash for integrity.
func (s *SnapshotStore) Save(ws *workspace.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(ws)
	if err != nil {
		return err
	}

	hasher := sha1.New()
	hasher.Write(payload)

	stored := storedSnapshot{
		Meta: SnapshotMeta{
			Version:            SnapshotVersion,
			Timestamp:          time.Now().UTC(),
			SessionFingerprint: s.fingerprint,
			Hash:               hex.EncodeToString(hasher.Sum(nil)),
		},
		Workspace: payload,
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return err
	}

	if s.history != nil {
		if err := s.history.Append(stored.Meta, payload); err != nil {
			log.Printf("Store: Failed to archive snapshot: %v", err)
		}
	}
	return nil
}

// Load retrieves the stored workspace from disk. It returns (nil, nil) when
// no usable snapshot exists: missing file, version or fingerprint mismatch,
// corrupted payload, or a snapshot that fails validation. Tabs get fresh
// mount keys so restored content remounts cleanly.
func (s *SnapshotStore) Load() (*workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var stored storedSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("Store: Discarding unreadable snapshot %s: %v", s.path, err)
		return nil, nil
	}

	if stored.Meta.Version != SnapshotVersion {
		log.Printf("Store: Discarding snapshot with version %d (want %d)", stored.Meta.Version, SnapshotVersion)
		return nil, nil
	}
	if s.fingerprint != "" && stored.Meta.SessionFingerprint != s.fingerprint {
		log.Printf("Store: Discarding snapshot from another session fingerprint")
		return nil, nil
	}

	// The envelope is written indented, so compact the payload back to its
	// canonical form before comparing hashes.
	var compact bytes.Buffer
	if err := json.Compact(&compact, stored.Workspace); err != nil {
		log.Printf("Store: Discarding snapshot with corrupt workspace payload: %v", err)
		return nil, nil
	}
	hasher := sha1.New()
	hasher.Write(compact.Bytes())
	if hex.EncodeToString(hasher.Sum(nil)) != stored.Meta.Hash {
		log.Printf("Store: Discarding snapshot with bad content hash")
		return nil, nil
	}

	var raw any
	if err := json.Unmarshal(stored.Workspace, &raw); err != nil {
		log.Printf("Store: Discarding snapshot with corrupt workspace payload: %v", err)
		return nil, nil
	}
	ws, errs := workspace.ValidateSnapshot(raw)
	if len(errs) > 0 {
		for _, e := range errs {
			log.Printf("Store: Snapshot rejected: %s", e.Error())
		}
		return nil, nil
	}

	for i := range ws.Tabs {
		ws.Tabs[i].MountKey = s.ids.NewID()
	}
	return ws, nil
}
