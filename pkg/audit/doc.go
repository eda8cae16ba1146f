// Package audit records structured events for every authorization-sensitive
// mutation: tenant bootstrap, resource lifecycle changes, and role grants.
//
// Events are written through a Logger into a pluggable Storage. The package
// ships a memory storage for tests, a slog-backed storage for deployments
// that treat the application log as the audit trail, and an async wrapper
// that batches writes behind a buffered channel. A PostgreSQL storage lives
// in storage/postgres.
//
// Writers never fail the audited operation on storage errors alone; the
// caller decides whether an audit failure is fatal. The one exception is
// tenant bootstrap, which includes its audit write in the bootstrap
// transaction so the four writes stay atomic.
package audit
