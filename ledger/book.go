package ledger

import "time"

// Field length limits for book attributes, enforced at the boundary and
// mirrored by the store's column definitions.
const (
	MaxTitleLength  = 255
	MaxAuthorLength = 255
)

// Book is the persistent book record. The identifier is the primary key and
// is unique for the lifetime of the store, soft-deleted books included.
type Book struct {
	ID        string
	Title     string
	Author    string
	CreatedAt time.Time
	DeletedAt *time.Time
}

// Deleted reports whether the book is soft-deleted.
func (b Book) Deleted() bool {
	return b.DeletedAt != nil
}

// BookView is a book together with its live lending state, derived from the
// active borrowing (if any) at query time. It is never cached separately
// from the ledger.
type BookView struct {
	ID        string
	Title     string
	Author    string
	CreatedAt time.Time
	Borrowed  bool
	BorrowID  *int64
	CardID    *string
}

// BookPatch is a partial update of a book. Nil fields are left unchanged.
// NewID, when set, reassigns the book's identifier; dependent borrowing rows
// follow via the store's referential update rule.
type BookPatch struct {
	NewID  *string
	Title  *string
	Author *string
}

// IsEmpty reports whether the patch changes nothing.
func (p BookPatch) IsEmpty() bool {
	return p.NewID == nil && p.Title == nil && p.Author == nil
}
