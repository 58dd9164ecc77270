// Package postgreswrapper provides test utilities for LedgerStore testing
// with multi-adapter support.
//
// Adapter selection is controlled via the ADAPTER_TYPE environment variable
// (pgx.pool, sql.db, sqlx.db), so the same test suite runs against every
// database implementation.
package postgreswrapper
