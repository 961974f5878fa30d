// Package runs persists upscale runs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, and status updates that mirror the workflow enum. Run items
// capture the computed plan, per-pass progress, and the file paths each
// stage produces so stages can coordinate without additional state.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package runs
