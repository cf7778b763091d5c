// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import "testing"

func TestTabLookupHelpers(t *testing.T) {
	ws := &Workspace{
		Tabs: []Tab{
			{ID: "t1", Name: "A", PanelID: "p1"},
			{ID: "t2", Name: "B", PanelID: "p1", Locked: true},
			{ID: "t3", Name: "C", PanelID: "p2"},
		},
		PanelTabs:    map[string][]string{"p1": {"t2", "t1"}, "p2": {"t3"}},
		ActiveTabIDs: map[string]string{"p1": "t1"},
	}

	if ws.FindTab("t2") == nil || ws.FindTab("nope") != nil {
		t.Fatal("FindTab misbehaves")
	}
	if ws.TabIndex("t3") != 2 || ws.TabIndex("nope") != -1 {
		t.Fatal("TabIndex misbehaves")
	}
	if !ws.TabLocked("t2") || ws.TabLocked("t1") || ws.TabLocked("nope") {
		t.Fatal("TabLocked misbehaves")
	}
	if ws.CountTabsInPanel("p1") != 2 || ws.CountTabsInPanel("p9") != 0 {
		t.Fatal("CountTabsInPanel misbehaves")
	}

	inPanel := ws.TabsInPanel("p1")
	if len(inPanel) != 2 || inPanel[0].ID != "t2" {
		t.Fatalf("TabsInPanel should follow tab-bar order: %+v", inPanel)
	}

	if active := ws.ActiveTabOf("p1"); active == nil || active.ID != "t1" {
		t.Fatalf("ActiveTabOf(p1) = %+v", active)
	}
	if ws.ActiveTabOf("p2") != nil {
		t.Fatal("panel without selection should return nil")
	}
}
