// Package adapters provide database adapter implementations for the PostgreSQL ledger store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the ledger store to work seamlessly with any
// supported database connection type.
//
// Besides plain query execution, the adapters expose transactions (DBTx) because every
// lending transition runs inside a single store transaction, and they normalize driver
// error details (SQLSTATE code, constraint name) across pgx and lib/pq so the store can
// classify constraint violations uniformly.
package adapters
