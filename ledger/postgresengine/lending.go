package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/cardcat/library-lending-go/ledger"
	"github.com/cardcat/library-lending-go/ledger/postgresengine/internal/adapters"
)

// BorrowBook lends the book to the card, creating a new active borrowing.
//
// The whole transition runs in one transaction: the book row is locked,
// the card's existence is verified, and then a conditional insert creates
// the borrowing only if no active borrowing exists for the book. The
// existence check and the insert are one atomic statement, not a separate
// read-then-write, which closes the race window between check and insert;
// the partial unique index backs the same invariant store-side.
//
// Failure outcomes, existence checks first:
//   - "Book not found" if the book is absent or soft-deleted
//   - "Library card not found" if the card is absent
//   - "Book is already borrowed" if an active borrowing exists
func (ls LedgerStore) BorrowBook(ctx context.Context, bookID string, cardID string) (ledger.Borrowing, error) {
	var borrowing ledger.Borrowing

	txErr := ls.withinTx(ctx, func(tx adapters.DBTx) error {
		if _, lockErr := ls.lockBookForUpdate(ctx, tx, bookID); lockErr != nil {
			return lockErr
		}

		if cardErr := ls.cardExists(ctx, tx, cardID); cardErr != nil {
			return cardErr
		}

		inserted, insertErr := ls.insertBorrowingIfNoneActive(ctx, tx, bookID, cardID)
		if insertErr != nil {
			return insertErr
		}

		borrowing = inserted

		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, ledger.ErrBookAlreadyBorrowed) {
			ls.logOperation(logMsgBorrowConflict, logAttrBookID, bookID, logAttrCardID, cardID)
		}

		return ledger.Borrowing{}, txErr
	}

	ls.logOperation(logMsgBookBorrowed, logAttrBookID, bookID, logAttrCardID, cardID)

	return borrowing, nil
}

// ReturnBook ends the active borrowing of the book by the card.
//
// The transition locks the book row and then the active borrowing row for
// the duration of the transaction, so a concurrent return or a concurrent
// borrow cannot observe a stale "active" state.
//
// Failure outcomes, existence checks first (consistent with BorrowBook):
//   - "Book not found" if the book is absent or soft-deleted
//   - "Library card not found" if the card is absent
//   - "Book is not borrowed" if no active borrowing exists
//   - "Book is borrowed by a different card" on a card mismatch
func (ls LedgerStore) ReturnBook(ctx context.Context, bookID string, cardID string) error {
	txErr := ls.withinTx(ctx, func(tx adapters.DBTx) error {
		if _, lockErr := ls.lockBookForUpdate(ctx, tx, bookID); lockErr != nil {
			return lockErr
		}

		if cardErr := ls.cardExists(ctx, tx, cardID); cardErr != nil {
			return cardErr
		}

		borrowing, lockErr := ls.lockActiveBorrowingForUpdate(ctx, tx, bookID)
		if lockErr != nil {
			return lockErr
		}

		if !borrowing.HeldBy(cardID) {
			return ledger.ErrBorrowedByDifferentCard
		}

		return ls.stampBorrowingReturned(ctx, tx, borrowing.ID)
	})

	if txErr != nil {
		return txErr
	}

	ls.logOperation(logMsgBookReturned, logAttrBookID, bookID, logAttrCardID, cardID)

	return nil
}

// insertBorrowingIfNoneActive performs the atomic conditional insert that
// guards the "at most one active borrowing per book" invariant. It reports
// ledger.ErrBookAlreadyBorrowed when the guard rejects the insert, whether
// by the WHERE NOT EXISTS clause or by the partial unique index under a race.
func (ls LedgerStore) insertBorrowingIfNoneActive(
	ctx context.Context,
	tx adapters.DBTx,
	bookID string,
	cardID string,
) (ledger.Borrowing, error) {

	var empty ledger.Borrowing

	noneActiveStmt := builder().
		From(tableBorrowings).
		Select(goqu.L("1")).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colReturnedAt).IsNull(),
		)

	selectStmt := builder().
		Select(goqu.V(bookID), goqu.V(cardID), goqu.L("now()")).
		Where(goqu.L("NOT EXISTS ?", noneActiveStmt))

	insertStmt := builder().
		Insert(tableBorrowings).
		Cols(colBookID, colCardID, colBorrowedAt).
		FromQuery(selectStmt).
		Returning(colID, colBorrowedAt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return empty, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, tx, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer ls.closeRows(rows)

	if !rows.Next() {
		return empty, ledger.ErrBookAlreadyBorrowed
	}

	borrowing := ledger.Borrowing{BookID: bookID, CardID: cardID}
	if scanErr := rows.Scan(&borrowing.ID, &borrowing.BorrowedAt); scanErr != nil {
		ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, classifyStoreError(scanErr)
	}

	return borrowing, nil
}

// lockActiveBorrowingForUpdate locks the book's active borrowing row, or
// reports ledger.ErrBookNotBorrowed when there is none.
func (ls LedgerStore) lockActiveBorrowingForUpdate(
	ctx context.Context,
	tx adapters.DBTx,
	bookID string,
) (ledger.Borrowing, error) {

	var empty ledger.Borrowing

	selectStmt := builder().
		From(tableBorrowings).
		Select(colID, colCardID, colBorrowedAt).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colReturnedAt).IsNull(),
		).
		ForUpdate(exp.Wait)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return empty, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, tx, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer ls.closeRows(rows)

	if !rows.Next() {
		return empty, ledger.ErrBookNotBorrowed
	}

	borrowing := ledger.Borrowing{BookID: bookID}
	if scanErr := rows.Scan(&borrowing.ID, &borrowing.CardID, &borrowing.BorrowedAt); scanErr != nil {
		ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, classifyStoreError(scanErr)
	}

	return borrowing, nil
}

// stampBorrowingReturned sets the return timestamp of the locked borrowing.
func (ls LedgerStore) stampBorrowingReturned(ctx context.Context, tx adapters.DBTx, borrowingID int64) error {
	updateStmt := builder().
		Update(tableBorrowings).
		Set(goqu.Record{colReturnedAt: goqu.L("now()")}).
		Where(goqu.C(colID).Eq(borrowingID))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := ls.executeExec(ctx, tx, sqlQuery); execErr != nil {
		return execErr
	}

	return nil
}
