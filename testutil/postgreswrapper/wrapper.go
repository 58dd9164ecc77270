package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/cardcat/library-lending-go/config"
	"github.com/cardcat/library-lending-go/ledger/postgresengine"
)

// Engine type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different engine types
type Wrapper interface {
	GetLedgerStore() postgresengine.LedgerStore
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool  *pgxpool.Pool
	store postgresengine.LedgerStore
}

func (w *PGXPoolWrapper) GetLedgerStore() postgresengine.LedgerStore {
	return w.store
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db    *sql.DB
	store postgresengine.LedgerStore
}

func (w *SQLDBWrapper) GetLedgerStore() postgresengine.LedgerStore {
	return w.store
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db    *sqlx.DB
	store postgresengine.LedgerStore
}

func (w *SQLXWrapper) GetLedgerStore() postgresengine.LedgerStore {
	return w.store
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable and ensures the schema exists.
func CreateWrapperWithTestConfig(t testing.TB) Wrapper {
	engineTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	var wrapper Wrapper

	switch engineTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := postgresengine.NewLedgerStoreFromPGXPool(connPool)
		assert.NoError(t, err, "error creating ledger store")

		wrapper = &PGXPoolWrapper{pool: connPool, store: store}

	case typeSQLDB:
		db := config.PostgresSQLDB()

		store, err := postgresengine.NewLedgerStoreFromSQLDB(db)
		assert.NoError(t, err, "error creating ledger store")

		wrapper = &SQLDBWrapper{db: db, store: store}

	case typeSQLXDB:
		db := config.PostgresSQLX()

		store, err := postgresengine.NewLedgerStoreFromSQLX(db)
		assert.NoError(t, err, "error creating ledger store")

		wrapper = &SQLXWrapper{db: db, store: store}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", engineTypeFromEnv))
	}

	schemaErr := wrapper.GetLedgerStore().CreateSchema(context.Background())
	assert.NoError(t, schemaErr, "error creating schema in test setup")

	return wrapper
}

// CleanUp empties the borrowings and books tables for the given wrapper so
// each test starts from a known state. Cards are reseeded from the defaults.
func CleanUp(t testing.TB, wrapper Wrapper) {
	execCleanUp(t, wrapper, "TRUNCATE TABLE borrowings, books RESTART IDENTITY")
	execCleanUp(t, wrapper, "TRUNCATE TABLE cards CASCADE")

	seedErr := wrapper.GetLedgerStore().SeedCards(context.Background(), config.DefaultSeedCardIDs())
	assert.NoError(t, seedErr, "error reseeding cards in test setup")
}

func execCleanUp(t testing.TB, wrapper Wrapper, statement string) {
	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), statement)
		assert.NoError(t, err, "error cleaning up ledger tables")

	case *SQLDBWrapper:
		_, err := w.db.Exec(statement)
		assert.NoError(t, err, "error cleaning up ledger tables")

	case *SQLXWrapper:
		_, err := w.db.Exec(statement)
		assert.NoError(t, err, "error cleaning up ledger tables")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// CountActiveBorrowings counts borrowings without a returned_at stamp for one
// book, bypassing the store so tests can verify the invariant directly.
func CountActiveBorrowings(t testing.TB, wrapper Wrapper, bookID string) int {
	const query = `SELECT count(*) FROM borrowings WHERE book_id = $1 AND returned_at IS NULL`

	var count int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query, bookID)
		err = row.Scan(&count)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query, bookID)
		err = row.Scan(&count)

	case *SQLXWrapper:
		row := w.db.QueryRow(query, bookID)
		err = row.Scan(&count)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting active borrowings")

	return count
}
