// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/tree.go
// Summary: Pure algorithms over the recursive panel tree.
// Usage: Used by the reducer and the snapshot validator; no dependency on tabs.

package workspace

import "fmt"

// LeafIDs returns the ids of all leaf panels in depth-first order. This
// order is the canonical enumeration order used when a collapsed panel's
// tabs need an absorbing leaf.
func LeafIDs(root *Panel) []string {
	var ids []string
	walkPanels(root, func(p *Panel) {
		if p.IsLeaf() {
			ids = append(ids, p.ID)
		}
	})
	return ids
}

// FindPanel returns the node with the given id, or nil.
func FindPanel(root *Panel, id string) *Panel {
	var found *Panel
	walkPanels(root, func(p *Panel) {
		if found == nil && p.ID == id {
			found = p
		}
	})
	return found
}

// FindParent returns the parent of the node with the given id and the
// child's index within the parent. The root has no parent; absence and the
// root case both return (nil, -1).
func FindParent(root *Panel, id string) (*Panel, int) {
	if root == nil || root.ID == id {
		return nil, -1
	}
	var parent *Panel
	index := -1
	walkPanels(root, func(p *Panel) {
		if parent != nil {
			return
		}
		for i, child := range p.Children {
			if child.ID == id {
				parent = p
				index = i
				return
			}
		}
	})
	return parent, index
}

// UpdatePanel locates the node with the given id and applies the mutator to
// it in place. Returns false when the id is absent.
func UpdatePanel(root *Panel, id string, mutate func(*Panel)) bool {
	target := FindPanel(root, id)
	if target == nil {
		return false
	}
	mutate(target)
	return true
}

// RemovePanel removes the node with the given id from its parent's child
// list and returns the (possibly new) root. When the parent is left with a
// single child, that survivor is promoted to occupy the parent's position,
// so degenerate one-child containers never persist. Removing the root, or an
// unknown id, is refused.
func RemovePanel(root *Panel, id string) (*Panel, bool) {
	if root == nil || root.ID == id {
		return root, false
	}
	parent, index := FindParent(root, id)
	if parent == nil {
		return root, false
	}
	parent.Children = append(parent.Children[:index], parent.Children[index+1:]...)

	if len(parent.Children) == 1 {
		survivor := parent.Children[0]
		if parent == root {
			return survivor, true
		}
		// Promote the survivor into the parent's slot.
		grand, parentIdx := FindParent(root, parent.ID)
		if grand != nil {
			grand.Children[parentIdx] = survivor
		}
	}
	return root, true
}

// SplitResult reports the ids produced by SplitLeaf.
type SplitResult struct {
	ContainerID string // fresh id of the container that replaced the leaf
	NewLeafID   string // fresh id of the created sibling leaf
}

// SplitLeaf converts the leaf with the given id into a container of two
// leaves. The container gets a fresh id; one child keeps the original panel
// id so references held elsewhere (mounted content, panelTabs keys) stay
// valid, the other child is the freshly created sibling. PositionBefore
// places the new sibling at order 0 (left or top), PositionAfter at order 1.
// Only the root panel carries a size, so a non-root container drops the
// leaf's size field.
func SplitLeaf(root *Panel, id string, direction SplitDirection, position SplitPosition, ids IDGenerator) (SplitResult, error) {
	target := FindPanel(root, id)
	if target == nil {
		return SplitResult{}, fmt.Errorf("split panel %q: not found", id)
	}
	if !target.IsLeaf() {
		return SplitResult{}, fmt.Errorf("split panel %q: not a leaf", id)
	}

	original := &Panel{ID: target.ID, Pinned: target.Pinned, Size: 50}
	sibling := &Panel{ID: ids.NewID(), Size: 50}

	var children []*Panel
	if position == PositionBefore {
		sibling.Order, original.Order = 0, 1
		children = []*Panel{sibling, original}
	} else {
		original.Order, sibling.Order = 0, 1
		children = []*Panel{original, sibling}
	}

	target.ID = ids.NewID()
	target.Direction = direction
	target.Pinned = false
	target.Children = children
	if target != root {
		target.Size = 0
	}
	return SplitResult{ContainerID: target.ID, NewLeafID: sibling.ID}, nil
}

// walkPanels visits every node depth-first. The tree is acyclic by
// construction, so traversal always terminates.
func walkPanels(p *Panel, visit func(*Panel)) {
	if p == nil {
		return
	}
	visit(p)
	for _, child := range p.Children {
		walkPanels(child, visit)
	}
}
