// Package postgres implements the persistence contracts of pkg/tenant,
// pkg/resource, pkg/authz, pkg/user, pkg/rbac and pkg/audit on PostgreSQL
// using pgx/v5.
//
// Every store resolves its querier per call: when the context carries a
// transaction opened by TxRunner the statement runs on that transaction,
// otherwise on the shared pool. Services stay storage-agnostic; they only
// depend on the txn.Runner contract.
//
// Driver errors are mapped to the packages' sentinel errors via pkg/pg:
// pgx.ErrNoRows becomes the not-found sentinel, SQLSTATE 23505 the
// conflict sentinel of the affected store.
//
// Schema migrations live in storage/migrations and are applied with
// pg.Migrate (goose) at startup.
package postgres
