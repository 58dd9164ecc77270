package postgresengine

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/cardcat/library-lending-go/ledger"
	"github.com/cardcat/library-lending-go/ledger/postgresengine/internal/adapters"
)

const (
	qualBooksID              = tableBooks + "." + colID
	qualBooksTitle           = tableBooks + "." + colTitle
	qualBooksAuthor          = tableBooks + "." + colAuthor
	qualBooksCreatedAt       = tableBooks + "." + colCreatedAt
	qualBooksDeletedAt       = tableBooks + "." + colDeletedAt
	qualBorrowingsID         = tableBorrowings + "." + colID
	qualBorrowingsBookID     = tableBorrowings + "." + colBookID
	qualBorrowingsCardID     = tableBorrowings + "." + colCardID
	qualBorrowingsReturnedAt = tableBorrowings + "." + colReturnedAt
)

// CreateBook atomically inserts a new book. It fails with
// ledger.ErrBookIDAlreadyExists if the id is already taken, including by a
// previously soft-deleted book: ids are unique for the lifetime of the
// store, not just among active books.
func (ls LedgerStore) CreateBook(ctx context.Context, id string, title string, author string) error {
	insertStmt := builder().
		Insert(tableBooks).
		Cols(colID, colTitle, colAuthor).
		Vals(goqu.Vals{id, title, author}).
		OnConflict(goqu.DoNothing())

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := ls.executeExec(ctx, ls.db, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return ledger.ErrBookIDAlreadyExists
	}

	ls.logOperation(logMsgBookCreated, logAttrBookID, id)

	return nil
}

// GetBookByID returns the active (non-deleted) book with its live lending
// state, derived from the same active-borrowing join the state machine uses.
// Soft-deleted books report ledger.ErrBookNotFound.
func (ls LedgerStore) GetBookByID(ctx context.Context, id string) (ledger.BookView, error) {
	var empty ledger.BookView

	selectStmt := withActiveBorrowingJoin(builder().From(tableBooks)).
		Select(bookViewColumns()...).
		Where(
			goqu.I(qualBooksID).Eq(id),
			goqu.I(qualBooksDeletedAt).IsNull(),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return empty, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, ls.db, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer ls.closeRows(rows)

	if !rows.Next() {
		return empty, ledger.ErrBookNotFound
	}

	view, scanErr := ls.scanBookView(rows)
	if scanErr != nil {
		return empty, scanErr
	}

	return view, nil
}

// ListBooks returns one page of active books ordered by identifier ascending,
// with the accurate total count and computed total-page count. The requested
// page is clamped to >= 1 and the size into [1, 1000].
func (ls LedgerStore) ListBooks(ctx context.Context, page int, size int) (ledger.BookPage, error) {
	var empty ledger.BookPage

	page = ledger.NormalizePage(page)
	size = ledger.NormalizeSize(size)
	offset := (page - 1) * size

	total, countErr := ls.countActiveBooks(ctx)
	if countErr != nil {
		return empty, countErr
	}

	selectStmt := withActiveBorrowingJoin(builder().From(tableBooks)).
		Select(bookViewColumns()...).
		Where(goqu.I(qualBooksDeletedAt).IsNull()).
		Order(goqu.I(qualBooksID).Asc()).
		Limit(uint(size)).
		Offset(uint(offset))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return empty, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, ls.db, sqlQuery)
	if queryErr != nil {
		return empty, queryErr
	}
	defer ls.closeRows(rows)

	items := make([]ledger.BookView, 0, size)

	for rows.Next() {
		view, scanErr := ls.scanBookView(rows)
		if scanErr != nil {
			return empty, scanErr
		}

		items = append(items, view)
	}

	return ledger.BookPage{
		Items:      items,
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: ledger.TotalPages(total, size),
	}, nil
}

// UpdateBook applies a partial update of title/author and optionally
// reassigns the book's identifier. A new identifier is checked for
// uniqueness against all historical ids (soft-deleted included) before
// commit; dependent borrowing rows follow via the store's cascading
// referential update rule. The returned view reflects the book's current
// state including live borrow state, not a snapshot from before the update.
func (ls LedgerStore) UpdateBook(ctx context.Context, id string, patch ledger.BookPatch) (ledger.BookView, error) {
	var view ledger.BookView

	txErr := ls.withinTx(ctx, func(tx adapters.DBTx) error {
		book, lockErr := ls.lockBookForUpdate(ctx, tx, id)
		if lockErr != nil {
			return lockErr
		}

		if patch.NewID != nil && *patch.NewID != book.ID {
			taken, takenErr := ls.bookIDTaken(ctx, tx, *patch.NewID)
			if takenErr != nil {
				return takenErr
			}

			if taken {
				return ledger.ErrBookIDAlreadyExists
			}
		}

		updated, applyErr := ls.applyBookPatch(ctx, tx, book, patch)
		if applyErr != nil {
			return applyErr
		}

		borrowing, borrowErr := ls.activeBorrowingOf(ctx, tx, updated.ID)
		if borrowErr != nil {
			return borrowErr
		}

		view = ledger.BookView{
			ID:        updated.ID,
			Title:     updated.Title,
			Author:    updated.Author,
			CreatedAt: updated.CreatedAt,
		}

		if borrowing != nil {
			view.Borrowed = true
			view.BorrowID = &borrowing.ID
			view.CardID = &borrowing.CardID
		}

		return nil
	})

	if txErr != nil {
		return ledger.BookView{}, txErr
	}

	ls.logOperation(logMsgBookUpdated, logAttrBookID, view.ID)

	return view, nil
}

// SoftDeleteBook marks the book deleted. Deleting an already-deleted or
// nonexistent book both report ledger.ErrBookNotFound; the operation is
// deliberately not idempotent. Borrowing history rows remain intact, and a
// currently-borrowed book may be deleted - deletion is independent of
// lending state.
func (ls LedgerStore) SoftDeleteBook(ctx context.Context, id string) error {
	updateStmt := builder().
		Update(tableBooks).
		Set(goqu.Record{colDeletedAt: goqu.L("now()")}).
		Where(
			goqu.C(colID).Eq(id),
			goqu.C(colDeletedAt).IsNull(),
		)

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rowsAffected, execErr := ls.executeExec(ctx, ls.db, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return ledger.ErrBookNotFound
	}

	ls.logOperation(logMsgBookSoftDeleted, logAttrBookID, id)

	return nil
}

// bookViewColumns selects a book row together with its active borrowing.
func bookViewColumns() []any {
	return []any{
		goqu.I(qualBooksID),
		goqu.I(qualBooksTitle),
		goqu.I(qualBooksAuthor),
		goqu.I(qualBooksCreatedAt),
		goqu.I(qualBorrowingsID).As(aliasBorrowID),
		goqu.I(qualBorrowingsCardID),
	}
}

// withActiveBorrowingJoin joins books to their active borrowing, if any.
// Every read that reports lending state goes through this join; lending
// state is never cached separately from the ledger.
func withActiveBorrowingJoin(selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	return selectStmt.LeftJoin(
		goqu.T(tableBorrowings),
		goqu.On(
			goqu.I(qualBorrowingsBookID).Eq(goqu.I(qualBooksID)),
			goqu.I(qualBorrowingsReturnedAt).IsNull(),
		),
	)
}

func (ls LedgerStore) scanBookView(rows adapters.DBRows) (ledger.BookView, error) {
	var empty ledger.BookView
	var view ledger.BookView
	var borrowID sql.NullInt64
	var cardID sql.NullString

	scanErr := rows.Scan(&view.ID, &view.Title, &view.Author, &view.CreatedAt, &borrowID, &cardID)
	if scanErr != nil {
		ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, classifyStoreError(scanErr)
	}

	if borrowID.Valid {
		view.Borrowed = true
		view.BorrowID = &borrowID.Int64
		view.CardID = &cardID.String
	}

	return view, nil
}

func (ls LedgerStore) countActiveBooks(ctx context.Context) (int, error) {
	selectStmt := builder().
		From(tableBooks).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colDeletedAt).IsNull())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return 0, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, ls.db, sqlQuery)
	if queryErr != nil {
		return 0, queryErr
	}
	defer ls.closeRows(rows)

	var total int

	if rows.Next() {
		if scanErr := rows.Scan(&total); scanErr != nil {
			ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return 0, classifyStoreError(scanErr)
		}
	}

	return total, nil
}

// bookIDTaken checks id uniqueness against all historical ids, soft-deleted
// books included.
func (ls LedgerStore) bookIDTaken(ctx context.Context, tx adapters.DBTx, id string) (bool, error) {
	selectStmt := builder().
		From(tableBooks).
		Select(colID).
		Where(goqu.C(colID).Eq(id))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return false, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, tx, sqlQuery)
	if queryErr != nil {
		return false, queryErr
	}
	defer ls.closeRows(rows)

	return rows.Next(), nil
}

// applyBookPatch writes the changed fields of the locked book and returns
// its post-update state.
func (ls LedgerStore) applyBookPatch(
	ctx context.Context,
	tx adapters.DBTx,
	book ledger.Book,
	patch ledger.BookPatch,
) (ledger.Book, error) {

	originalID := book.ID
	record := goqu.Record{}

	if patch.NewID != nil && *patch.NewID != book.ID {
		record[colID] = *patch.NewID
		book.ID = *patch.NewID
	}

	if patch.Title != nil {
		record[colTitle] = *patch.Title
		book.Title = *patch.Title
	}

	if patch.Author != nil {
		record[colAuthor] = *patch.Author
		book.Author = *patch.Author
	}

	if len(record) == 0 {
		return book, nil
	}

	// the row is still stored under the original identifier until the update lands
	updateStmt := builder().
		Update(tableBooks).
		Set(record).
		Where(goqu.C(colID).Eq(originalID))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return ledger.Book{}, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := ls.executeExec(ctx, tx, sqlQuery); execErr != nil {
		return ledger.Book{}, execErr
	}

	return book, nil
}

// activeBorrowingOf fetches the book's active borrowing without locking it;
// the enclosing transaction already holds the book row lock.
func (ls LedgerStore) activeBorrowingOf(ctx context.Context, tx adapters.DBTx, bookID string) (*ledger.Borrowing, error) {
	selectStmt := builder().
		From(tableBorrowings).
		Select(colID, colCardID, colBorrowedAt).
		Where(
			goqu.C(colBookID).Eq(bookID),
			goqu.C(colReturnedAt).IsNull(),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, tx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer ls.closeRows(rows)

	if !rows.Next() {
		return nil, nil
	}

	borrowing := ledger.Borrowing{BookID: bookID}
	if scanErr := rows.Scan(&borrowing.ID, &borrowing.CardID, &borrowing.BorrowedAt); scanErr != nil {
		ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return nil, classifyStoreError(scanErr)
	}

	return &borrowing, nil
}
