// Package tenant models tenants and implements tenant bootstrap: creating a
// tenant, its root resource and the creator's TENANT_ADMIN binding as one
// atomic unit. A tenant persisted without its root or its admin binding is
// unreachable through normal authorization paths, so the three writes plus
// the audit record run inside a single transaction.
//
// The package also carries tenant context plumbing and a pluggable cache
// (no-op, in-memory TTL, Redis) for request-scoped tenant lookups.
package tenant
