package httpapi

import (
	"context"

	"github.com/cardcat/library-lending-go/ledger"
)

// Store is what the HTTP boundary needs from the lending ledger.
// *postgresengine.LedgerStore satisfies it.
type Store interface {
	CreateBook(ctx context.Context, id string, title string, author string) error
	GetBookByID(ctx context.Context, id string) (ledger.BookView, error)
	ListBooks(ctx context.Context, page int, size int) (ledger.BookPage, error)
	UpdateBook(ctx context.Context, id string, patch ledger.BookPatch) (ledger.BookView, error)
	SoftDeleteBook(ctx context.Context, id string) error
	BorrowBook(ctx context.Context, bookID string, cardID string) (ledger.Borrowing, error)
	ReturnBook(ctx context.Context, bookID string, cardID string) error
}
