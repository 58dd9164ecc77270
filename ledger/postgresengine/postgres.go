package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/cardcat/library-lending-go/ledger"
	"github.com/cardcat/library-lending-go/ledger/postgresengine/internal/adapters"
)

const (
	tableBooks      = "books"
	tableCards      = "cards"
	tableBorrowings = "borrowings"

	colID         = "id"
	colTitle      = "title"
	colAuthor     = "author"
	colCreatedAt  = "created_at"
	colDeletedAt  = "deleted_at"
	colBookID     = "book_id"
	colCardID     = "card_id"
	colBorrowedAt = "borrowed_at"
	colReturnedAt = "returned_at"

	aliasBorrowID = "borrow_id"

	dialectPostgres = "postgres"

	logMsgBuildQueryFailed  = "failed to build sql query"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgDBExecFailed      = "database execution failed"
	logMsgCloseRowsFailed   = "failed to close database rows"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgTxBeginFailed     = "failed to begin transaction"
	logMsgTxCommitFailed    = "failed to commit transaction"
	logMsgTxRollbackFailed  = "failed to roll back transaction"
	logMsgBookCreated       = "book created"
	logMsgBookBorrowed      = "book borrowed"
	logMsgBookReturned      = "book returned"
	logMsgBookSoftDeleted   = "book soft-deleted"
	logMsgBookUpdated       = "book updated"
	logMsgBorrowConflict    = "borrow conflict detected"
	logMsgSQLExecuted       = "executed sql"
	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrBookID           = "book_id"
	logAttrCardID           = "card_id"
	logAttrDurationMS       = "duration_ms"
)

type sqlQueryString = string

// Logger interface for SQL query logging, operational messages, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ErrNilDatabaseConnection is returned by the constructors when no database connection is supplied.
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")

// ErrBuildingQueryFailed wraps goqu SQL generation failures.
var ErrBuildingQueryFailed = errors.New("building sql query failed")

// LedgerStore is the durable, constraint-enforcing storage for books, cards,
// and borrowings. Every lending transition runs as one transaction with
// row-level locking; the "at most one active borrowing per book" invariant is
// additionally enforced by a partial unique index so that concurrent
// transactions cannot race past an application-level check.
type LedgerStore struct {
	db     adapters.DBAdapter
	logger Logger
}

// Option defines a functional option for configuring LedgerStore.
type Option func(*LedgerStore) error

// WithLogger sets the logger for the LedgerStore.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: completed transitions and conflicts (production-safe)
// Warn level: non-critical issues like rollback failures
// Error level: critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(ls *LedgerStore) error {
		ls.logger = logger
		return nil
	}
}

// NewLedgerStoreFromPGXPool creates a new LedgerStore using a pgx Pool with optional configuration.
func NewLedgerStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (LedgerStore, error) {
	if db == nil {
		return LedgerStore{}, ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewPGXAdapter(db), options...)
}

// NewLedgerStoreFromSQLDB creates a new LedgerStore using a sql.DB with optional configuration.
func NewLedgerStoreFromSQLDB(db *sql.DB, options ...Option) (LedgerStore, error) {
	if db == nil {
		return LedgerStore{}, ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLAdapter(db), options...)
}

// NewLedgerStoreFromSQLX creates a new LedgerStore using a sqlx.DB with optional configuration.
func NewLedgerStoreFromSQLX(db *sqlx.DB, options ...Option) (LedgerStore, error) {
	if db == nil {
		return LedgerStore{}, ErrNilDatabaseConnection
	}

	return newLedgerStore(adapters.NewSQLXAdapter(db), options...)
}

func newLedgerStore(db adapters.DBAdapter, options ...Option) (LedgerStore, error) {
	ls := LedgerStore{db: db}

	for _, option := range options {
		if err := option(&ls); err != nil {
			return LedgerStore{}, err
		}
	}

	return ls, nil
}

func builder() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}

// withinTx runs fn inside one store transaction, committing on success and
// rolling back on any failure. Driver errors from begin/commit are classified
// onto the failure taxonomy (lock timeouts and connection failures become
// transient failures).
func (ls LedgerStore) withinTx(ctx context.Context, fn func(tx adapters.DBTx) error) error {
	tx, beginErr := ls.db.BeginTx(ctx)
	if beginErr != nil {
		ls.logError(logMsgTxBeginFailed, logAttrError, beginErr.Error())
		return classifyStoreError(beginErr)
	}

	if fnErr := fn(tx); fnErr != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			ls.logWarn(logMsgTxRollbackFailed, logAttrError, rollbackErr.Error())
		}

		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		ls.logError(logMsgTxCommitFailed, logAttrError, commitErr.Error())
		return classifyStoreError(commitErr)
	}

	return nil
}

// queryable is satisfied by both the adapter and its transactions.
type queryable interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// executeQuery executes a select statement with timing and debug logging.
func (ls LedgerStore) executeQuery(ctx context.Context, db queryable, sqlQuery sqlQueryString) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := db.Query(ctx, sqlQuery)
	ls.logQueryWithDuration(sqlQuery, time.Since(start))

	if queryErr != nil {
		ls.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, classifyStoreError(queryErr)
	}

	return rows, nil
}

// executeExec executes a mutating statement with timing and debug logging,
// returning the number of rows affected.
func (ls LedgerStore) executeExec(ctx context.Context, db queryable, sqlQuery sqlQueryString) (int64, error) {
	start := time.Now()
	result, execErr := db.Exec(ctx, sqlQuery)
	ls.logQueryWithDuration(sqlQuery, time.Since(start))

	if execErr != nil {
		ls.logError(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return 0, classifyStoreError(execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, classifyStoreError(rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (ls LedgerStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		ls.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// lockBookForUpdate acquires a row lock on the non-deleted book for the
// duration of the enclosing transaction, so concurrent borrow/return/
// update/delete on the same book serialize rather than race.
func (ls LedgerStore) lockBookForUpdate(ctx context.Context, tx adapters.DBTx, bookID string) (ledger.Book, error) {
	var empty ledger.Book

	selectStmt := builder().
		From(tableBooks).
		Select(colID, colTitle, colAuthor, colCreatedAt).
		Where(
			goqu.C(colID).Eq(bookID),
			goqu.C(colDeletedAt).IsNull(),
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
		return empty, ledger.ErrBookNotFound
	}

	var book ledger.Book
	if scanErr := rows.Scan(&book.ID, &book.Title, &book.Author, &book.CreatedAt); scanErr != nil {
		ls.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, classifyStoreError(scanErr)
	}

	return book, nil
}

// cardExists verifies that the card is registered.
func (ls LedgerStore) cardExists(ctx context.Context, tx adapters.DBTx, cardID string) error {
	selectStmt := builder().
		From(tableCards).
		Select(colID).
		Where(goqu.C(colID).Eq(cardID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		ls.logError(logMsgBuildQueryFailed, logAttrError, toSQLErr.Error())
		return errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	rows, queryErr := ls.executeQuery(ctx, tx, sqlQuery)
	if queryErr != nil {
		return queryErr
	}
	defer ls.closeRows(rows)

	if !rows.Next() {
		return ledger.ErrCardNotFound
	}

	return nil
}

func (ls LedgerStore) logQueryWithDuration(sqlQuery sqlQueryString, duration time.Duration) {
	if ls.logger != nil {
		ls.logger.Debug(logMsgSQLExecuted, logAttrQuery, sqlQuery, logAttrDurationMS, durationToMilliseconds(duration))
	}
}

func (ls LedgerStore) logOperation(msg string, args ...any) {
	if ls.logger != nil {
		ls.logger.Info(msg, args...)
	}
}

func (ls LedgerStore) logWarn(msg string, args ...any) {
	if ls.logger != nil {
		ls.logger.Warn(msg, args...)
	}
}

func (ls LedgerStore) logError(msg string, args ...any) {
	if ls.logger != nil {
		ls.logger.Error(msg, args...)
	}
}

func durationToMilliseconds(duration time.Duration) float64 {
	return float64(duration.Nanoseconds()) / 1e6
}
