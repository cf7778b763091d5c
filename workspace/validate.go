// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/validate.go
// Summary: Snapshot validator — the only path by which untrusted data enters
//          the typed model.
// Usage: Persistence and host-push collaborators run every external snapshot
//        through ValidateSnapshot before trusting it.

package workspace

import (
	"fmt"
	"time"
)

// ValidationError describes one offending field or cross-key violation in an
// external snapshot. The validator always reports the complete list rather
// than failing on the first problem.
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateSnapshot checks an untyped value (e.g. freshly JSON-decoded from
// storage or pushed by the host) against the Workspace shape and the
// cross-key invariants. A value failing either pass is rejected as a whole;
// on success a normalized Workspace safe for reducer use is returned.
func ValidateSnapshot(raw any) (*Workspace, []ValidationError) {
	v := &snapshotValidator{}
	ws := v.validate(raw)
	if len(v.errs) > 0 {
		return nil, v.errs
	}
	return ws, nil
}

type snapshotValidator struct {
	errs []ValidationError
}

func (v *snapshotValidator) fail(path, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *snapshotValidator) validate(raw any) *Workspace {
	root, ok := raw.(map[string]any)
	if !ok {
		v.fail("workspace", "expected an object, got %T", raw)
		return nil
	}

	ws := &Workspace{
		PanelTabs:    map[string][]string{},
		ActiveTabIDs: map[string]string{},
	}

	// Pass (a): structural and type validation, one error per offending path.
	ws.Tabs = v.validateTabs(root)
	ws.Panel = v.validatePanelTree(root)
	v.validatePanelTabs(root, ws)
	v.validateActiveTabIDs(root, ws)
	ws.ActivePanelID = v.requireString(root, "activePanelId")
	v.validateOptionals(root, ws)

	if len(v.errs) > 0 {
		return nil
	}

	// Pass (b): cross-key invariants over the now well-typed value.
	v.validateInvariants(ws)
	if len(v.errs) > 0 {
		return nil
	}
	return ws
}

func (v *snapshotValidator) requireString(obj map[string]any, key string) string {
	raw, ok := obj[key]
	if !ok {
		v.fail(key, "required field is missing")
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(key, "expected a string, got %T", raw)
		return ""
	}
	if s == "" {
		v.fail(key, "must not be empty")
	}
	return s
}

func (v *snapshotValidator) validateTabs(root map[string]any) []Tab {
	raw, ok := root["tabs"]
	if !ok {
		v.fail("tabs", "required field is missing")
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		v.fail("tabs", "expected an array, got %T", raw)
		return nil
	}

	tabs := make([]Tab, 0, len(list))
	for i, item := range list {
		path := fmt.Sprintf("tabs[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			v.fail(path, "expected an object, got %T", item)
			continue
		}
		tab := Tab{
			ID:      v.tabString(obj, path, "id", true),
			Name:    v.tabString(obj, path, "name", true),
			PanelID: v.tabString(obj, path, "panelId", true),
		}
		tab.LayoutID = v.tabString(obj, path, "layoutId", false)
		tab.LayoutOption = v.tabString(obj, path, "layoutOption", false)
		tab.MountKey = v.tabString(obj, path, "mountKey", false)
		tab.Icon = v.tabString(obj, path, "icon", false)
		tab.Style = v.tabString(obj, path, "style", false)
		tab.Locked = v.optionalBool(obj, path, "locked")
		if rawParams, ok := obj["layoutParams"]; ok && rawParams != nil {
			params, ok := rawParams.(map[string]any)
			if !ok {
				v.fail(path+".layoutParams", "expected an object, got %T", rawParams)
			} else {
				tab.LayoutParams = params
			}
		}
		if rawCreated, ok := obj["createdAt"]; ok && rawCreated != nil {
			s, ok := rawCreated.(string)
			if !ok {
				v.fail(path+".createdAt", "expected an RFC 3339 string, got %T", rawCreated)
			} else if ts, err := time.Parse(time.RFC3339, s); err != nil {
				v.fail(path+".createdAt", "invalid timestamp %q", s)
			} else {
				tab.CreatedAt = ts
			}
		}
		tabs = append(tabs, tab)
	}
	return tabs
}

func (v *snapshotValidator) tabString(obj map[string]any, path, key string, required bool) string {
	raw, ok := obj[key]
	if !ok || raw == nil {
		if required {
			v.fail(path+"."+key, "required field is missing")
		}
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		v.fail(path+"."+key, "expected a string, got %T", raw)
		return ""
	}
	if required && s == "" {
		v.fail(path+"."+key, "must not be empty")
	}
	return s
}

func (v *snapshotValidator) optionalBool(obj map[string]any, path, key string) bool {
	raw, ok := obj[key]
	if !ok || raw == nil {
		// Absent means false-equivalent by omission; no coercion is stored.
		return false
	}
	b, ok := raw.(bool)
	if !ok {
		v.fail(path+"."+key, "expected a boolean, got %T", raw)
		return false
	}
	return b
}

func (v *snapshotValidator) validatePanelTree(root map[string]any) *Panel {
	raw, ok := root["panel"]
	if !ok {
		v.fail("panel", "required field is missing")
		return nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		v.fail("panel", "expected an object, got %T", raw)
		return nil
	}
	return v.validatePanelNode(obj, "panel")
}

func (v *snapshotValidator) validatePanelNode(obj map[string]any, path string) *Panel {
	p := &Panel{}
	p.ID = v.tabString(obj, path, "id", true)
	p.Pinned = v.optionalBool(obj, path, "pinned")

	if rawOrder, ok := obj["order"]; ok && rawOrder != nil {
		n, ok := rawOrder.(float64)
		if !ok {
			v.fail(path+".order", "expected a number, got %T", rawOrder)
		} else {
			p.Order = int(n)
		}
	}
	if rawSize, ok := obj["size"]; ok && rawSize != nil {
		n, ok := rawSize.(float64)
		if !ok {
			v.fail(path+".size", "expected a number, got %T", rawSize)
		} else {
			p.Size = n
		}
	}
	if rawDir, ok := obj["direction"]; ok && rawDir != nil {
		s, ok := rawDir.(string)
		if !ok {
			v.fail(path+".direction", "expected a string, got %T", rawDir)
		} else if s != "" && s != string(SplitHorizontal) && s != string(SplitVertical) {
			v.fail(path+".direction", "must be %q or %q, got %q", SplitHorizontal, SplitVertical, s)
		} else {
			p.Direction = SplitDirection(s)
		}
	}

	rawChildren, ok := obj["children"]
	if !ok || rawChildren == nil {
		return p
	}
	children, ok := rawChildren.([]any)
	if !ok {
		v.fail(path+".children", "expected an array, got %T", rawChildren)
		return p
	}
	if len(children) == 1 {
		// Bubble-up never leaves one-child containers behind.
		v.fail(path+".children", "container must have at least two children, got 1")
	}
	for i, rawChild := range children {
		childPath := fmt.Sprintf("%s.children[%d]", path, i)
		childObj, ok := rawChild.(map[string]any)
		if !ok {
			v.fail(childPath, "expected an object, got %T", rawChild)
			continue
		}
		p.Children = append(p.Children, v.validatePanelNode(childObj, childPath))
	}
	return p
}

func (v *snapshotValidator) validatePanelTabs(root map[string]any, ws *Workspace) {
	raw, ok := root["panelTabs"]
	if !ok {
		v.fail("panelTabs", "required field is missing")
		return
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		v.fail("panelTabs", "expected an object, got %T", raw)
		return
	}
	for panelID, rawList := range obj {
		path := fmt.Sprintf("panelTabs[%q]", panelID)
		list, ok := rawList.([]any)
		if !ok {
			v.fail(path, "expected an array, got %T", rawList)
			continue
		}
		order := make([]string, 0, len(list))
		for i, rawID := range list {
			id, ok := rawID.(string)
			if !ok {
				v.fail(fmt.Sprintf("%s[%d]", path, i), "expected a string, got %T", rawID)
				continue
			}
			order = append(order, id)
		}
		ws.PanelTabs[panelID] = order
	}
}

func (v *snapshotValidator) validateActiveTabIDs(root map[string]any, ws *Workspace) {
	raw, ok := root["activeTabIds"]
	if !ok {
		v.fail("activeTabIds", "required field is missing")
		return
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		v.fail("activeTabIds", "expected an object, got %T", raw)
		return
	}
	for panelID, rawID := range obj {
		id, ok := rawID.(string)
		if !ok {
			v.fail(fmt.Sprintf("activeTabIds[%q]", panelID), "expected a string, got %T", rawID)
			continue
		}
		ws.ActiveTabIDs[panelID] = id
	}
}

func (v *snapshotValidator) validateOptionals(root map[string]any, ws *Workspace) {
	if raw, ok := root["favoriteLayouts"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			v.fail("favoriteLayouts", "expected an array, got %T", raw)
		} else {
			for i, rawID := range list {
				id, ok := rawID.(string)
				if !ok {
					v.fail(fmt.Sprintf("favoriteLayouts[%d]", i), "expected a string, got %T", rawID)
					continue
				}
				ws.FavoriteLayouts = append(ws.FavoriteLayouts, id)
			}
		}
	}
	if raw, ok := root["theme"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			v.fail("theme", "expected a string, got %T", raw)
		} else {
			ws.Theme = s
		}
	}
	if raw, ok := root["searchBarsHidden"]; ok && raw != nil {
		b, ok := raw.(bool)
		if !ok {
			v.fail("searchBarsHidden", "expected a boolean, got %T", raw)
		} else {
			ws.SearchBarsHidden = b
		}
	}
}

// validateInvariants is pass (b): the cross-key rules of the data model.
// Invariant 6 (≥1 leaf) holds structurally — a panel object with no valid
// children is itself a leaf — so it needs no separate check here.
func (v *snapshotValidator) validateInvariants(ws *Workspace) {
	leaves := LeafIDs(ws.Panel)
	leafSet := make(map[string]bool, len(leaves))
	for _, id := range leaves {
		if leafSet[id] {
			v.fail("panel", "leaf panel id %q appears more than once in the tree", id)
		}
		leafSet[id] = true
	}

	for _, id := range leaves {
		if _, ok := ws.PanelTabs[id]; !ok {
			v.fail("panelTabs", "leaf panel %q has no panelTabs entry", id)
		}
	}
	for id := range ws.PanelTabs {
		if !leafSet[id] {
			v.fail(fmt.Sprintf("panelTabs[%q]", id), "key is not a leaf panel id")
		}
	}

	byID := make(map[string]*Tab, len(ws.Tabs))
	for i := range ws.Tabs {
		if _, dup := byID[ws.Tabs[i].ID]; dup {
			v.fail(fmt.Sprintf("tabs[%d].id", i), "duplicate tab id %q", ws.Tabs[i].ID)
			continue
		}
		byID[ws.Tabs[i].ID] = &ws.Tabs[i]
	}

	seen := make(map[string]string)
	for panelID, order := range ws.PanelTabs {
		for _, tabID := range order {
			if prev, dup := seen[tabID]; dup {
				v.fail(fmt.Sprintf("panelTabs[%q]", panelID), "tab %q is already listed in panel %q", tabID, prev)
				continue
			}
			seen[tabID] = panelID
			tab, ok := byID[tabID]
			if !ok {
				v.fail(fmt.Sprintf("panelTabs[%q]", panelID), "references tab %q which is not in tabs", tabID)
				continue
			}
			if tab.PanelID != panelID {
				v.fail(fmt.Sprintf("panelTabs[%q]", panelID), "tab %q declares panelId %q", tabID, tab.PanelID)
			}
		}
	}
	for i := range ws.Tabs {
		if _, ok := seen[ws.Tabs[i].ID]; !ok {
			v.fail(fmt.Sprintf("tabs[%d]", i), "tab %q is not listed in any panelTabs entry", ws.Tabs[i].ID)
		}
	}

	if !leafSet[ws.ActivePanelID] {
		v.fail("activePanelId", "%q is not a leaf panel id", ws.ActivePanelID)
	}

	for panelID, tabID := range ws.ActiveTabIDs {
		order, ok := ws.PanelTabs[panelID]
		if !ok {
			v.fail(fmt.Sprintf("activeTabIds[%q]", panelID), "key is not a known panel")
			continue
		}
		if indexOf(order, tabID) < 0 {
			v.fail(fmt.Sprintf("activeTabIds[%q]", panelID), "tab %q is not a member of the panel's tab list", tabID)
		}
	}
}
