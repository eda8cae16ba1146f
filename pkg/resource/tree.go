package resource

import (
	"context"

	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/rbac"
)

// Node is a resource with its resolved children, used for tree responses.
type Node struct {
	Resource *Resource `json:"resource"`
	Children []*Node   `json:"children,omitempty"`
}

// Tree returns the subtree rooted at rootID. The user needs RESOURCE_READ on
// the root; inherited bindings cover the descendants.
func (s *Service) Tree(ctx context.Context, userID, rootID uuid.UUID) (*Node, error) {
	if err := s.authz.CheckPermission(ctx, userID, rootID, rbac.PermResourceRead); err != nil {
		return nil, err
	}

	root, err := s.store.Get(ctx, rootID)
	if err != nil {
		return nil, err
	}

	// The visited set caps the recursion on a corrupt cyclic graph.
	return s.buildTree(ctx, root, map[uuid.UUID]struct{}{})
}

func (s *Service) buildTree(ctx context.Context, res *Resource, visited map[uuid.UUID]struct{}) (*Node, error) {
	if _, ok := visited[res.ID]; ok {
		return nil, ErrCycleDetected
	}
	visited[res.ID] = struct{}{}

	node := &Node{Resource: res}

	children, err := s.store.ListChildren(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		childNode, err := s.buildTree(ctx, child, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}
	return node, nil
}
