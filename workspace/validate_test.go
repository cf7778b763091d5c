// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/validate_test.go
// Summary: Exercises the snapshot validator's rejection and normalization paths.

package workspace

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return v
}

const validSnapshot = `{
	"tabs": [
		{"id": "t1", "name": "Home", "panelId": "p1", "createdAt": "2025-06-01T10:00:00Z"},
		{"id": "t2", "name": "Chart", "panelId": "p2", "layoutId": "chart", "locked": true}
	],
	"panel": {
		"id": "root", "direction": "vertical", "size": 100,
		"children": [
			{"id": "p1", "order": 0, "size": 50},
			{"id": "p2", "order": 1, "size": 50}
		]
	},
	"panelTabs": {"p1": ["t1"], "p2": ["t2"]},
	"activeTabIds": {"p1": "t1", "p2": "t2"},
	"activePanelId": "p1",
	"favoriteLayouts": ["chart"],
	"theme": "dark"
}`

func TestValidateAcceptsConsistentSnapshot(t *testing.T) {
	ws, errs := ValidateSnapshot(decode(t, validSnapshot))
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(ws.Tabs) != 2 || ws.ActivePanelID != "p1" {
		t.Fatalf("bad normalization: %+v", ws)
	}
	if !ws.Tabs[1].Locked {
		t.Fatal("locked flag lost")
	}
	if got := LeafIDs(ws.Panel); len(got) != 2 {
		t.Fatalf("panel tree lost: %v", got)
	}
	if violations := CheckInvariants(ws); len(violations) > 0 {
		t.Fatalf("validated snapshot must satisfy invariants: %v", violations)
	}
}

func TestValidateRoundTrip(t *testing.T) {
	ids := &seqIDs{prefix: "id"}
	original := New(ids)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ws, errs := ValidateSnapshot(raw)
	if len(errs) > 0 {
		t.Fatalf("round-trip rejected: %v", errs)
	}
	if ws.ActivePanelID != original.ActivePanelID || len(ws.Tabs) != len(original.Tabs) {
		t.Fatalf("round-trip drift: %+v", ws)
	}
}

func TestValidateRejectsUnknownTabReference(t *testing.T) {
	raw := strings.Replace(validSnapshot, `"p2": ["t2"]`, `"p2": ["t2", "ghost"]`, 1)
	_, errs := ValidateSnapshot(decode(t, raw))
	if len(errs) == 0 {
		t.Fatal("expected rejection")
	}
	found := false
	for _, e := range errs {
		if strings.Contains(e.Path, "p2") && strings.Contains(e.Message, "ghost") {
			found = true
		}
	}
	if !found {
		t.Fatalf("error should name the tab and panel: %v", errs)
	}
}

func TestValidateRejectsNonLeafActivePanel(t *testing.T) {
	raw := strings.Replace(validSnapshot, `"activePanelId": "p1"`, `"activePanelId": "root"`, 1)
	_, errs := ValidateSnapshot(decode(t, raw))
	if len(errs) == 0 {
		t.Fatal("expected rejection")
	}
	found := false
	for _, e := range errs {
		if e.Path == "activePanelId" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an activePanelId error: %v", errs)
	}
}

func TestValidateRejectsOrphanTab(t *testing.T) {
	raw := strings.Replace(validSnapshot, `"p1": ["t1"]`, `"p1": []`, 1)
	raw = strings.Replace(raw, `"p1": "t1", `, ``, 1)
	_, errs := ValidateSnapshot(decode(t, raw))
	if len(errs) == 0 {
		t.Fatal("a tab missing from every panelTabs list must be rejected")
	}
}

func TestValidateRejectsDuplicateMembership(t *testing.T) {
	raw := strings.Replace(validSnapshot, `"p1": ["t1"]`, `"p1": ["t1", "t2"]`, 1)
	_, errs := ValidateSnapshot(decode(t, raw))
	if len(errs) == 0 {
		t.Fatal("a tab listed in two panels must be rejected")
	}
}

func TestValidateEmptyObjectListsEveryMissingField(t *testing.T) {
	_, errs := ValidateSnapshot(decode(t, `{}`))
	missing := map[string]bool{}
	for _, e := range errs {
		if strings.Contains(e.Message, "missing") {
			missing[e.Path] = true
		}
	}
	for _, field := range []string{"tabs", "panel", "panelTabs", "activeTabIds", "activePanelId"} {
		if !missing[field] {
			t.Fatalf("expected a missing-field error for %q, got %v", field, errs)
		}
	}
}

func TestValidateItemizesTypeErrors(t *testing.T) {
	raw := `{
		"tabs": [{"id": 7, "name": "x", "panelId": "p1"}],
		"panel": {"id": "p1"},
		"panelTabs": {"p1": "not-a-list"},
		"activeTabIds": {},
		"activePanelId": ""
	}`
	_, errs := ValidateSnapshot(decode(t, raw))
	if len(errs) < 3 {
		t.Fatalf("expected itemized errors for every offending path, got %v", errs)
	}
	paths := map[string]bool{}
	for _, e := range errs {
		paths[e.Path] = true
	}
	if !paths["tabs[0].id"] || !paths[`panelTabs["p1"]`] || !paths["activePanelId"] {
		t.Fatalf("paths not itemized: %v", errs)
	}
}

func TestValidateRejectsSingleChildContainer(t *testing.T) {
	raw := `{
		"tabs": [{"id": "t1", "name": "x", "panelId": "p1"}],
		"panel": {"id": "root", "children": [{"id": "p1"}]},
		"panelTabs": {"p1": ["t1"]},
		"activeTabIds": {"p1": "t1"},
		"activePanelId": "p1"
	}`
	_, errs := ValidateSnapshot(decode(t, raw))
	if len(errs) == 0 {
		t.Fatal("degenerate one-child containers must be rejected")
	}
}

func TestValidateRejectsNonObject(t *testing.T) {
	if _, errs := ValidateSnapshot("just a string"); len(errs) == 0 {
		t.Fatal("non-object snapshot must be rejected")
	}
}
