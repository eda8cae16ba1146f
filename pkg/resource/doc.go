// Package resource models the hierarchical resource tree each tenant owns
// and implements its lifecycle operations.
//
// A Resource is a node addressed by id; the parent link is a weak reference,
// not ownership, so tree validation (cycle and cross-tenant checks) is a pure
// lookup. Every resource's ancestor chain terminates at a root node
// (ParentID nil) belonging to the same tenant.
//
// The Service wraps a Store with authorization checks and audit records:
// create-child, move and delete each consult the permission checker first,
// then mutate the store, then emit an audit event, all inside one
// request-scoped transaction. Moves reject cross-tenant targets and moves
// under the node's own subtree, rewrite descendant paths, and guard against
// concurrent writers with an optimistic version check.
package resource
