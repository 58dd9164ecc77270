package ledger

// Card represents a borrowing entity. Existence of a card is a precondition
// for borrowing and returning; cards carry no other mutable attributes.
type Card struct {
	ID string
}
