package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
)

// The schema makes invalid ledger states unrepresentable or atomically
// rejected:
//   - ck_book_id_format / ck_card_id_format pin identifiers to 6 digits
//   - ck_book_time_order / ck_borrow_time_order enforce temporal ordering
//   - ux_borrowings_book_active is the partial unique index that allows at
//     most one borrowing row per book with a null return timestamp, making
//     the active-borrow invariant a first-class constraint of the store
//   - the borrowings->books FK cascades identifier updates so history rows
//     follow a reassigned book id, and restricts hard deletes
const (
	ddlBooks = `
CREATE TABLE IF NOT EXISTS books (
	id varchar(6) PRIMARY KEY,
	title varchar(255) NOT NULL,
	author varchar(255) NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now(),
	deleted_at timestamptz,
	CONSTRAINT ck_book_id_format CHECK (id ~ '^[0-9]{6}$'),
	CONSTRAINT ck_book_time_order CHECK (deleted_at IS NULL OR created_at <= deleted_at)
)`

	ddlBooksTitleIndex  = `CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`
	ddlBooksAuthorIndex = `CREATE INDEX IF NOT EXISTS idx_books_author ON books (author)`

	ddlCards = `
CREATE TABLE IF NOT EXISTS cards (
	id varchar(6) PRIMARY KEY,
	CONSTRAINT ck_card_id_format CHECK (id ~ '^[0-9]{6}$')
)`

	ddlBorrowings = `
CREATE TABLE IF NOT EXISTS borrowings (
	id bigserial PRIMARY KEY,
	book_id varchar(6) NOT NULL REFERENCES books (id) ON DELETE RESTRICT ON UPDATE CASCADE,
	card_id varchar(6) NOT NULL REFERENCES cards (id) ON DELETE RESTRICT,
	borrowed_at timestamptz NOT NULL DEFAULT now(),
	returned_at timestamptz,
	CONSTRAINT ck_borrow_time_order CHECK (returned_at IS NULL OR borrowed_at <= returned_at)
)`

	ddlActiveBorrowIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS ux_borrowings_book_active
	ON borrowings (book_id)
	WHERE returned_at IS NULL`
)

// CreateSchema creates the books, cards, and borrowings tables with all
// constraints and indexes. Safe to call on every startup.
func (ls LedgerStore) CreateSchema(ctx context.Context) error {
	statements := []sqlQueryString{
		ddlBooks,
		ddlBooksTitleIndex,
		ddlBooksAuthorIndex,
		ddlCards,
		ddlBorrowings,
		ddlActiveBorrowIndex,
	}

	for _, statement := range statements {
		if _, execErr := ls.executeExec(ctx, ls.db, statement); execErr != nil {
			return execErr
		}
	}

	return nil
}

// SeedCards inserts the given card identifiers, but only when the cards
// table is still empty - existing card data is never touched.
func (ls LedgerStore) SeedCards(ctx context.Context, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}

	count, countErr := ls.countCards(ctx)
	if countErr != nil {
		return countErr
	}

	if count > 0 {
		return nil
	}

	vals := make([][]interface{}, 0, len(cardIDs))
	for _, cardID := range cardIDs {
		vals = append(vals, goqu.Vals{cardID})
	}

	insertStmt := builder().
		Insert(tableCards).
		Cols(colID).
		Vals(vals...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := ls.executeExec(ctx, ls.db, sqlQuery); execErr != nil {
		return execErr
	}

	return nil
}

func (ls LedgerStore) countCards(ctx context.Context) (int, error) {
	selectStmt := builder().
		From(tableCards).
		Select(goqu.COUNT(goqu.Star()))

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

	var count int

	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return 0, classifyStoreError(scanErr)
		}
	}

	return count, nil
}
