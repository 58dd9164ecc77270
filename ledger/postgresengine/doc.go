// Package postgresengine provides the PostgreSQL implementation of the lending ledger.
//
// This package implements the ledger store, the lending state machine
// (borrow/return), and the catalog operations (create, lookup, paginated
// listing, partial update with identifier reassignment, soft delete) as
// transaction-scoped operations, supporting multiple database adapters
// (pgx, sql.DB, sqlx).
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Atomic conditional borrow insert with a partial unique index as the
//     store-side guard, so exactly one of N concurrent borrow attempts on
//     the same book succeeds
//   - Row-level locking (SELECT ... FOR UPDATE) on books and active
//     borrowings so every branch-deciding read happens against a locked view
//   - Soft deletion with identifiers reserved for the lifetime of the store
//   - Driver error classification onto the ledger failure taxonomy
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewLedgerStoreFromPGXPool(db)
//
//	// With operational logging
//	store, _ := postgresengine.NewLedgerStoreFromPGXPool(
//		db,
//		postgresengine.WithLogger(logger),
//	)
//
//	borrowing, err := store.BorrowBook(ctx, "005001", "357192")
package postgresengine
