// Package ledger provides the core abstractions and types for the library
// lending ledger.
//
// This package defines the domain records (Book, Card, Borrowing), the
// identifier format shared by books and cards, and the typed failure
// taxonomy used across store implementations and the HTTP boundary.
//
// Identifiers are always 6-character digit strings with preserved leading
// zeros. They are never treated as numeric types anywhere in the ledger,
// since numeric coercion would destroy leading-zero identifiers.
//
// Key types:
//   - Book / Card / Borrowing: the persistent records
//   - BookView: a book together with its live lending state
//   - Failure: a machine-checkable failure kind plus a human-readable message
//
// Common usage pattern:
//
//	id, err := ledger.ParseID(raw)
//	if err != nil {
//		// malformed identifier, never reaches the store
//	}
//
//	view, err := store.GetBookByID(ctx, id)
//	if ledger.IsKind(err, ledger.KindNotFound) {
//		// respond with 404
//	}
package ledger
