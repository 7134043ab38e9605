package permission

import (
	"context"
	"errors"
	"testing"
)

type groupMap map[string]*Group

func (g groupMap) Group(_ context.Context, _, groupID string) (*Group, error) {
	return g[groupID], nil
}

func newTestHierarchy(t *testing.T, groups groupMap) *Hierarchy {
	t.Helper()
	return NewHierarchy(groups)
}

func TestSetParentRejectsSelf(t *testing.T) {
	g := &Group{ID: "g1", TenantID: "acme", Active: true}
	h := newTestHierarchy(t, groupMap{"g1": g})

	if err := h.SetParent(context.Background(), g, "g1"); !errors.Is(err, ErrCyclicGroupReference) {
		t.Fatalf("expected ErrCyclicGroupReference, got %v", err)
	}
	if g.ParentID != "" {
		t.Fatal("rejected reparent must not mutate the group")
	}
}

func TestSetParentRejectsDescendant(t *testing.T) {
	root := &Group{ID: "root", TenantID: "acme", Active: true}
	child := &Group{ID: "child", TenantID: "acme", ParentID: "root", Active: true}
	leaf := &Group{ID: "leaf", TenantID: "acme", ParentID: "child", Active: true}
	h := newTestHierarchy(t, groupMap{"root": root, "child": child, "leaf": leaf})

	if err := h.SetParent(context.Background(), root, "leaf"); !errors.Is(err, ErrCyclicGroupReference) {
		t.Fatalf("expected ErrCyclicGroupReference, got %v", err)
	}
	if root.ParentID != "" {
		t.Fatal("rejected reparent must not mutate the group")
	}
}

func TestSetParentAllowsValidMove(t *testing.T) {
	root := &Group{ID: "root", TenantID: "acme", Active: true}
	a := &Group{ID: "a", TenantID: "acme", ParentID: "root", Active: true}
	b := &Group{ID: "b", TenantID: "acme", ParentID: "root", Active: true}
	h := newTestHierarchy(t, groupMap{"root": root, "a": a, "b": b})

	if err := h.SetParent(context.Background(), b, "a"); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}
	if b.ParentID != "a" {
		t.Fatalf("expected parent a, got %q", b.ParentID)
	}
}

func TestSetParentDetachesOnEmpty(t *testing.T) {
	root := &Group{ID: "root", TenantID: "acme", Active: true}
	child := &Group{ID: "child", TenantID: "acme", ParentID: "root", Active: true}
	h := newTestHierarchy(t, groupMap{"root": root, "child": child})

	if err := h.SetParent(context.Background(), child, ""); err != nil {
		t.Fatalf("SetParent failed: %v", err)
	}
	if child.ParentID != "" {
		t.Fatal("expected detached group")
	}
}

func TestSetParentRejectsCrossTenantParent(t *testing.T) {
	g := &Group{ID: "g1", TenantID: "acme", Active: true}
	other := &Group{ID: "g2", TenantID: "globex", Active: true}
	h := newTestHierarchy(t, groupMap{"g1": g, "g2": other})

	if err := h.SetParent(context.Background(), g, "g2"); !errors.Is(err, ErrGroupTenantMismatch) {
		t.Fatalf("expected ErrGroupTenantMismatch, got %v", err)
	}
}

func TestSetParentUnknownParent(t *testing.T) {
	g := &Group{ID: "g1", TenantID: "acme", Active: true}
	h := newTestHierarchy(t, groupMap{"g1": g})

	if err := h.SetParent(context.Background(), g, "missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestWalkReportsPersistedCycle(t *testing.T) {
	// a -> b -> a was somehow persisted; the walk must fail loudly rather
	// than loop or silently allow the reparent.
	a := &Group{ID: "a", TenantID: "acme", ParentID: "b", Active: true}
	b := &Group{ID: "b", TenantID: "acme", ParentID: "a", Active: true}
	outsider := &Group{ID: "c", TenantID: "acme", Active: true}
	h := newTestHierarchy(t, groupMap{"a": a, "b": b, "c": outsider})

	if err := h.SetParent(context.Background(), outsider, "a"); !errors.Is(err, ErrCorruptHierarchy) {
		t.Fatalf("expected ErrCorruptHierarchy, got %v", err)
	}
}

func TestIsDescendantOf(t *testing.T) {
	root := &Group{ID: "root", TenantID: "acme", Active: true}
	child := &Group{ID: "child", TenantID: "acme", ParentID: "root", Active: true}
	leaf := &Group{ID: "leaf", TenantID: "acme", ParentID: "child", Active: true}
	h := newTestHierarchy(t, groupMap{"root": root, "child": child, "leaf": leaf})

	got, err := h.IsDescendantOf(context.Background(), leaf, "root")
	if err != nil {
		t.Fatalf("IsDescendantOf failed: %v", err)
	}
	if !got {
		t.Fatal("expected leaf to be a descendant of root")
	}

	got, err = h.IsDescendantOf(context.Background(), root, "leaf")
	if err != nil {
		t.Fatalf("IsDescendantOf failed: %v", err)
	}
	if got {
		t.Fatal("expected root not to be a descendant of leaf")
	}

	got, err = h.IsDescendantOf(context.Background(), leaf, "leaf")
	if err != nil {
		t.Fatalf("IsDescendantOf failed: %v", err)
	}
	if got {
		t.Fatal("a group is never its own descendant")
	}
}

func TestIsDescendantOfDanglingParent(t *testing.T) {
	orphan := &Group{ID: "orphan", TenantID: "acme", ParentID: "gone", Active: true}
	h := newTestHierarchy(t, groupMap{"orphan": orphan})

	got, err := h.IsDescendantOf(context.Background(), orphan, "root")
	if err != nil {
		t.Fatalf("IsDescendantOf failed: %v", err)
	}
	if got {
		t.Fatal("dangling parent reference must terminate the walk")
	}
}
