// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"prism/workspace"
)

type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

func tempStore(t *testing.T, fingerprint string) *SnapshotStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workspace.json")
	return NewSnapshotStore(path, fingerprint, &seqIDs{prefix: "mk"})
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := tempStore(t, "host-a")
	ws := workspace.New(&seqIDs{prefix: "id"})

	if err := s.Save(ws); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a snapshot back")
	}
	if loaded.ActivePanelID != ws.ActivePanelID || len(loaded.Tabs) != 1 {
		t.Fatalf("round-trip drift: %+v", loaded)
	}
	// Restored tabs must carry fresh mount keys.
	if loaded.Tabs[0].MountKey == "" {
		t.Fatal("mount key was not regenerated on load")
	}
}

func TestLoadWithoutSnapshotIsNil(t *testing.T) {
	s := tempStore(t, "")
	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatalf("missing file should load as nil, got %+v", loaded)
	}
}

func TestLoadDiscardsTamperedPayload(t *testing.T) {
	s := tempStore(t, "")
	if err := s.Save(workspace.New(&seqIDs{prefix: "id"})); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var stored storedSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// Rewrite the payload without updating the hash.
	tampered := workspace.New(&seqIDs{prefix: "zz"})
	stored.Workspace, _ = json.Marshal(tampered)
	data, _ = json.MarshalIndent(stored, "", "  ")
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Fatal("hash mismatch must discard the snapshot")
	}
}

func TestLoadDiscardsVersionMismatch(t *testing.T) {
	s := tempStore(t, "")
	payload, _ := json.Marshal(workspace.New(&seqIDs{prefix: "id"}))
	hasher := sha1.New()
	hasher.Write(payload)
	stored := storedSnapshot{
		Meta: SnapshotMeta{
			Version: SnapshotVersion + 1,
			Hash:    hex.EncodeToString(hasher.Sum(nil)),
		},
		Workspace: payload,
	}
	data, _ := json.Marshal(stored)
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if loaded, _ := s.Load(); loaded != nil {
		t.Fatal("newer snapshot version must be discarded")
	}
}

func TestLoadDiscardsForeignFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.json")
	writer := NewSnapshotStore(path, "host-a", &seqIDs{prefix: "mk"})
	if err := writer.Save(workspace.New(&seqIDs{prefix: "id"})); err != nil {
		t.Fatalf("save: %v", err)
	}

	reader := NewSnapshotStore(path, "host-b", &seqIDs{prefix: "mk"})
	if loaded, _ := reader.Load(); loaded != nil {
		t.Fatal("snapshot from another fingerprint must be discarded")
	}

	// An empty fingerprint disables the check.
	open := NewSnapshotStore(path, "", &seqIDs{prefix: "mk"})
	if loaded, _ := open.Load(); loaded == nil {
		t.Fatal("fingerprint-less store should accept the snapshot")
	}
}

func TestLoadDiscardsInvalidWorkspace(t *testing.T) {
	s := tempStore(t, "")
	payload := []byte(`{"tabs":[]}`)
	hasher := sha1.New()
	hasher.Write(payload)
	stored := storedSnapshot{
		Meta: SnapshotMeta{
			Version: SnapshotVersion,
			Hash:    hex.EncodeToString(hasher.Sum(nil)),
		},
		Workspace: payload,
	}
	data, _ := json.Marshal(stored)
	if err := os.WriteFile(s.Path(), data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if loaded, _ := s.Load(); loaded != nil {
		t.Fatal("a snapshot failing validation must be discarded")
	}
}

func TestAutosaverImmediateMode(t *testing.T) {
	s := tempStore(t, "")
	a := NewAutosaver(s, 0)
	defer a.Close()

	a.StateChanged(workspace.New(&seqIDs{prefix: "id"}))
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("zero debounce should flush immediately: %v", err)
	}
}

func TestAutosaverFlushAndClose(t *testing.T) {
	s := tempStore(t, "")
	a := NewAutosaver(s, time.Hour) // never fires on its own during the test

	a.StateChanged(workspace.New(&seqIDs{prefix: "a"}))
	a.StateChanged(workspace.New(&seqIDs{prefix: "b"}))
	if _, err := os.Stat(s.Path()); err == nil {
		t.Fatal("nothing should hit disk before the debounce elapses")
	}

	if err := a.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	loaded, err := s.Load()
	if err != nil || loaded == nil {
		t.Fatalf("load after flush: %v, %v", loaded, err)
	}
	// Only the newest pending state survives a burst.
	if loaded.ActivePanelID != "b1" {
		t.Fatalf("expected the last state to win, got %q", loaded.ActivePanelID)
	}

	a.StateChanged(workspace.New(&seqIDs{prefix: "c"}))
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	loaded, _ = s.Load()
	if loaded == nil || loaded.ActivePanelID != "c1" {
		t.Fatalf("close must flush pending state, got %+v", loaded)
	}
}
