// Copyright © 2025 Prism contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: workspace/tree_test.go
// Summary: Exercises the panel-tree algorithms in isolation.

package workspace

import (
	"fmt"
	"testing"
)

type seqIDs struct {
	prefix string
	n      int
}

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

func sampleTree() *Panel {
	// root(v): [a, mid(h): [b, c]]
	return &Panel{
		ID:        "root",
		Direction: SplitVertical,
		Size:      100,
		Children: []*Panel{
			{ID: "a", Order: 0, Size: 50},
			{
				ID:        "mid",
				Order:     1,
				Direction: SplitHorizontal,
				Children: []*Panel{
					{ID: "b", Order: 0, Size: 50},
					{ID: "c", Order: 1, Size: 50},
				},
			},
		},
	}
}

func TestLeafIDsDepthFirstOrder(t *testing.T) {
	got := LeafIDs(sampleTree())
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("LeafIDs returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LeafIDs returned %v, want %v", got, want)
		}
	}
}

func TestFindPanelAndParent(t *testing.T) {
	root := sampleTree()
	if p := FindPanel(root, "c"); p == nil || p.ID != "c" {
		t.Fatalf("FindPanel(c) = %v", p)
	}
	if p := FindPanel(root, "missing"); p != nil {
		t.Fatalf("FindPanel(missing) should be nil, got %v", p)
	}
	parent, idx := FindParent(root, "b")
	if parent == nil || parent.ID != "mid" || idx != 0 {
		t.Fatalf("FindParent(b) = %v, %d", parent, idx)
	}
	if parent, idx := FindParent(root, "root"); parent != nil || idx != -1 {
		t.Fatalf("root must have no parent, got %v, %d", parent, idx)
	}
}

func TestUpdatePanel(t *testing.T) {
	root := sampleTree()
	if !UpdatePanel(root, "a", func(p *Panel) { p.Size = 70 }) {
		t.Fatal("UpdatePanel(a) reported not-found")
	}
	if FindPanel(root, "a").Size != 70 {
		t.Fatal("mutation was not applied")
	}
	if UpdatePanel(root, "missing", func(p *Panel) {}) {
		t.Fatal("UpdatePanel(missing) should report not-found")
	}
}

func TestRemovePanelBubbleUp(t *testing.T) {
	root := sampleTree()
	root, ok := RemovePanel(root, "b")
	if !ok {
		t.Fatal("RemovePanel(b) failed")
	}
	// mid was left with only c; c must now occupy mid's slot in root.
	if len(root.Children) != 2 || root.Children[1].ID != "c" {
		t.Fatalf("survivor was not promoted: %+v", root.Children)
	}
	leaves := LeafIDs(root)
	if len(leaves) != 2 || leaves[0] != "a" || leaves[1] != "c" {
		t.Fatalf("leaves after bubble-up = %v", leaves)
	}
}

func TestRemovePanelPromotesNewRoot(t *testing.T) {
	root := &Panel{
		ID:        "root",
		Direction: SplitHorizontal,
		Children: []*Panel{
			{ID: "x", Order: 0},
			{ID: "y", Order: 1},
		},
	}
	root, ok := RemovePanel(root, "x")
	if !ok {
		t.Fatal("RemovePanel(x) failed")
	}
	if root.ID != "y" || !root.IsLeaf() {
		t.Fatalf("survivor should become the root, got %+v", root)
	}
}

func TestRemovePanelRefusals(t *testing.T) {
	root := sampleTree()
	if _, ok := RemovePanel(root, "root"); ok {
		t.Fatal("removing the root must be refused")
	}
	if _, ok := RemovePanel(root, "missing"); ok {
		t.Fatal("removing an unknown id must be refused")
	}
}

func TestSplitLeafAfter(t *testing.T) {
	ids := &seqIDs{prefix: "n"}
	root := &Panel{ID: "solo", Size: 100}
	res, err := SplitLeaf(root, "solo", SplitHorizontal, PositionAfter, ids)
	if err != nil {
		t.Fatalf("SplitLeaf failed: %v", err)
	}
	if root.ID != res.ContainerID {
		t.Fatalf("container id %q should replace the leaf id", res.ContainerID)
	}
	if root.Direction != SplitHorizontal || len(root.Children) != 2 {
		t.Fatalf("bad container: %+v", root)
	}
	// The original id must be preserved on the order-0 child.
	if root.Children[0].ID != "solo" || root.Children[0].Order != 0 {
		t.Fatalf("original leaf lost its identity: %+v", root.Children[0])
	}
	if root.Children[1].ID != res.NewLeafID || root.Children[1].Order != 1 {
		t.Fatalf("new sibling misplaced: %+v", root.Children[1])
	}
	if root.Children[0].Size != 50 || root.Children[1].Size != 50 {
		t.Fatal("both new leaves should start at 50%")
	}
}

func TestSplitLeafBefore(t *testing.T) {
	ids := &seqIDs{prefix: "n"}
	root := sampleTree()
	res, err := SplitLeaf(root, "b", SplitVertical, PositionBefore, ids)
	if err != nil {
		t.Fatalf("SplitLeaf failed: %v", err)
	}
	container := FindPanel(root, res.ContainerID)
	if container == nil {
		t.Fatal("container not reachable in the tree")
	}
	if container.Children[0].ID != res.NewLeafID {
		t.Fatal("position=before must place the new sibling at order 0")
	}
	if container.Children[1].ID != "b" {
		t.Fatal("original leaf must keep its id")
	}
	if container.Size != 0 {
		t.Fatal("a non-root container must not carry a size")
	}
}

func TestSplitLeafErrors(t *testing.T) {
	ids := &seqIDs{prefix: "n"}
	root := sampleTree()
	if _, err := SplitLeaf(root, "missing", SplitVertical, PositionAfter, ids); err == nil {
		t.Fatal("splitting an unknown panel must fail")
	}
	if _, err := SplitLeaf(root, "mid", SplitVertical, PositionAfter, ids); err == nil {
		t.Fatal("splitting a container must fail")
	}
}
