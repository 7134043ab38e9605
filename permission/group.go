package permission

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrCyclicGroupReference is an exported constant or variable used by the access control core.
	ErrCyclicGroupReference = errors.New("cyclic group reference")
	// ErrCorruptHierarchy is an exported constant or variable used by the access control core.
	ErrCorruptHierarchy = errors.New("persisted group hierarchy contains a cycle")
	// ErrGroupNotFound is an exported constant or variable used by the access control core.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupTenantMismatch is an exported constant or variable used by the access control core.
	ErrGroupTenantMismatch = errors.New("group tenant mismatch")
)

// Group defines a public type used by accesscore APIs.
//
// Group instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Group struct {
	ID       string
	TenantID string
	Name     string

	// ParentID is a weak reference by identifier. Groups never hold a
	// back-pointer to the parent object, so a persisted cycle cannot keep
	// objects alive; it is detected and reported by the walk instead.
	ParentID string

	Grants []Grant
	Active bool
}

// GroupDirectory looks up groups by identifier within a tenant. Implemented
// by the embedder's persistence gateway.
type GroupDirectory interface {
	Group(ctx context.Context, tenantID, groupID string) (*Group, error)
}

// Hierarchy maintains the per-tenant group tree: parent reassignment with
// proactive cycle rejection, and bounded ancestor walks.
//
// Hierarchy instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hierarchy struct {
	dir GroupDirectory
}

// NewHierarchy creates a [Hierarchy] over the given group directory.
func NewHierarchy(dir GroupDirectory) *Hierarchy {
	return &Hierarchy{dir: dir}
}

// SetParent reassigns the group's parent after verifying the change cannot
// introduce a cycle. It fails with [ErrCyclicGroupReference] when newParentID
// is the group itself or a descendant of it, with [ErrCorruptHierarchy] when
// the ancestor walk revisits a node (a cycle that was somehow persisted), and
// with [ErrGroupTenantMismatch] when the parent belongs to another tenant.
// An empty newParentID detaches the group and always succeeds.
func (h *Hierarchy) SetParent(ctx context.Context, group *Group, newParentID string) error {
	if group == nil || group.ID == "" {
		return ErrGroupNotFound
	}
	if newParentID == "" {
		group.ParentID = ""
		return nil
	}
	if strings.EqualFold(newParentID, group.ID) {
		return ErrCyclicGroupReference
	}

	parent, err := h.dir.Group(ctx, group.TenantID, newParentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return ErrGroupNotFound
	}
	if !strings.EqualFold(parent.TenantID, group.TenantID) {
		return ErrGroupTenantMismatch
	}

	reaches, err := h.walkReaches(ctx, group.TenantID, newParentID, group.ID)
	if err != nil {
		return err
	}
	if reaches {
		return ErrCyclicGroupReference
	}

	group.ParentID = parent.ID
	return nil
}

// IsDescendantOf walks the parent chain from the group and reports whether
// candidateAncestorID is reached. The walk is bounded by a visited set; it is
// used by the cycle guard and exposed for administrative queries, not for
// automatic grant inheritance.
func (h *Hierarchy) IsDescendantOf(ctx context.Context, group *Group, candidateAncestorID string) (bool, error) {
	if group == nil || group.ID == "" {
		return false, ErrGroupNotFound
	}
	if candidateAncestorID == "" {
		return false, nil
	}
	if strings.EqualFold(group.ID, candidateAncestorID) {
		// A group is never its own descendant.
		return false, nil
	}
	if group.ParentID == "" {
		return false, nil
	}
	return h.walkReaches(ctx, group.TenantID, group.ParentID, candidateAncestorID)
}

// walkReaches walks ancestor links starting at startID and reports whether
// targetID appears on the chain. Revisiting a node means the persisted tree
// already contains a cycle, which is a fatal consistency error distinct from
// the new-cycle rejection.
func (h *Hierarchy) walkReaches(ctx context.Context, tenantID, startID, targetID string) (bool, error) {
	visited := map[string]struct{}{}
	currentID := startID

	for currentID != "" {
		if strings.EqualFold(currentID, targetID) {
			return true, nil
		}

		key := strings.ToLower(currentID)
		if _, seen := visited[key]; seen {
			return false, ErrCorruptHierarchy
		}
		visited[key] = struct{}{}

		node, err := h.dir.Group(ctx, tenantID, currentID)
		if err != nil {
			return false, err
		}
		if node == nil {
			// Dangling parent reference terminates the walk.
			return false, nil
		}
		currentID = node.ParentID
	}

	return false, nil
}
