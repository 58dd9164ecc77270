package postgresengine

import (
	"context"
	"errors"
	"strings"

	"github.com/cardcat/library-lending-go/ledger"
	"github.com/cardcat/library-lending-go/ledger/postgresengine/internal/adapters"
)

const (
	sqlstateUniqueViolation      = "23505"
	sqlstateLockNotAvailable     = "55P03"
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
	sqlstateClassConnection      = "08"

	constraintActiveBorrow = "ux_borrowings_book_active"
	constraintBooksPKey    = "books_pkey"
)

// classifyStoreError maps a driver error onto the ledger failure taxonomy.
//
// A unique violation on the partial active-borrow index is the store-side
// loser of a borrow race and becomes the same Conflict the conditional
// insert reports. Lock timeouts, serialization failures, deadlocks, and
// connection failures become TransientStore failures, retryable by the
// caller. Anything else passes through unchanged and surfaces as an
// internal error at the boundary.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(ledger.ErrTransientStore, err)
	}

	code := adapters.SQLState(err)

	switch {
	case code == sqlstateUniqueViolation:
		switch adapters.ConstraintName(err) {
		case constraintActiveBorrow:
			return ledger.ErrBookAlreadyBorrowed
		case constraintBooksPKey:
			return ledger.ErrBookIDAlreadyExists
		}

		return err

	case code == sqlstateLockNotAvailable,
		code == sqlstateSerializationFailure,
		code == sqlstateDeadlockDetected:
		return errors.Join(ledger.ErrTransientStore, err)

	case strings.HasPrefix(code, sqlstateClassConnection):
		return errors.Join(ledger.ErrTransientStore, err)
	}

	return err
}
