package ledger

import "time"

// Borrowing is one row of the append-only lending ledger. A borrowing is
// created only by a successful borrow transition, its ReturnedAt is set only
// by a successful return transition, and it is never deleted. A nil
// ReturnedAt means the borrowing is active (the book is on loan).
type Borrowing struct {
	ID         int64
	BookID     string
	CardID     string
	BorrowedAt time.Time
	ReturnedAt *time.Time
}

// Active reports whether the borrowing is outstanding.
func (b Borrowing) Active() bool {
	return b.ReturnedAt == nil
}

// HeldBy reports whether the borrowing belongs to the given card.
func (b Borrowing) HeldBy(cardID string) bool {
	return b.CardID == cardID
}
