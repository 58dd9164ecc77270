package ledger

import "errors"

// FailureKind classifies a Failure into one of the outcome categories the
// boundary layer maps to HTTP statuses.
type FailureKind int

const (
	// KindNotFound means a referenced book or card does not exist, or is soft-deleted.
	KindNotFound FailureKind = iota

	// KindConflict means an identifier collision, a duplicate active-borrow attempt,
	// or a return-state mismatch.
	KindConflict

	// KindValidation means a malformed identifier or payload shape,
	// caught before the store is invoked.
	KindValidation

	// KindTransientStore means a lock timeout or connection failure.
	// Retryable by the caller, not a business outcome.
	KindTransientStore
)

// String provides a string representation of FailureKind for logging and debugging.
func (k FailureKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	case KindTransientStore:
		return "transient_store"
	default:
		return "unknown"
	}
}

// Failure is a typed failure raised by the core. It carries a machine-checkable
// kind plus a human-readable message. The core never logs or serializes
// failures - that is the boundary layer's job.
type Failure struct {
	kind    FailureKind
	message string
}

// NewFailure creates a Failure with the given kind and message.
func NewFailure(kind FailureKind, message string) *Failure {
	return &Failure{kind: kind, message: message}
}

// Error implements the error interface, returning the human-readable message.
func (f *Failure) Error() string {
	return f.message
}

// Kind returns the failure's machine-checkable kind.
func (f *Failure) Kind() FailureKind {
	return f.kind
}

// The business outcomes of the ledger. Messages are part of the external
// contract and must not change.
var (
	ErrBookNotFound            = NewFailure(KindNotFound, "Book not found")
	ErrCardNotFound            = NewFailure(KindNotFound, "Library card not found")
	ErrBookIDAlreadyExists     = NewFailure(KindConflict, "Book with given id already exists")
	ErrBookAlreadyBorrowed     = NewFailure(KindConflict, "Book is already borrowed")
	ErrBookNotBorrowed         = NewFailure(KindConflict, "Book is not borrowed")
	ErrBorrowedByDifferentCard = NewFailure(KindConflict, "Book is borrowed by a different card")
	ErrInvalidID               = NewFailure(KindValidation, "id must be a 6-digit string")
	ErrTransientStore          = NewFailure(KindTransientStore, "temporary store failure, retry the request")
)

// FailureFrom unwraps err looking for a Failure, including through joined errors.
func FailureFrom(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}

	return nil, false
}

// IsKind reports whether err carries a Failure of the given kind.
func IsKind(err error, kind FailureKind) bool {
	if failure, ok := FailureFrom(err); ok {
		return failure.Kind() == kind
	}

	return false
}
