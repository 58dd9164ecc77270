package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cardcat/library-lending-go/ledger"
	"github.com/cardcat/library-lending-go/ledger/postgresengine"
	"github.com/cardcat/library-lending-go/testutil/postgreswrapper"
)

const (
	testTimeout = 5 * time.Second

	cardAlpha = "357192"
	cardBeta  = "712538"
)

func Test_CreateBook_When_IdentifierIsFree(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	createErr := store.CreateBook(ctxWithTimeout, "000002", "Siddhartha", "Hermann Hesse")

	// assert
	assert.NoError(t, createErr, "error creating the book")

	view, getErr := store.GetBookByID(ctxWithTimeout, "000002")
	assert.NoError(t, getErr, "error reading the book back")
	assert.Equal(t, "Siddhartha", view.Title)
	assert.Equal(t, "Hermann Hesse", view.Author)
	assert.False(t, view.Borrowed)
	assert.Nil(t, view.BorrowID)
	assert.Nil(t, view.CardID)
}

func Test_CreateBook_When_IdentifierAlreadyExists(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")

	// act
	createErr := store.CreateBook(ctxWithTimeout, "000002", "Other Title", "Other Author")

	// assert
	assert.ErrorIs(t, createErr, ledger.ErrBookIDAlreadyExists)
}

func Test_CreateBook_When_IdentifierBelongsToSoftDeletedBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000007", "Dune", "Frank Herbert")
	deleteErr := store.SoftDeleteBook(ctxWithTimeout, "000007")
	assert.NoError(t, deleteErr, "error soft-deleting the book in arrange")

	// act
	createErr := store.CreateBook(ctxWithTimeout, "000007", "Dune Messiah", "Frank Herbert")

	// assert
	assert.ErrorIs(t, createErr, ledger.ErrBookIDAlreadyExists)
}

func Test_GetBookByID_When_BookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)

	// act
	_, getErr := store.GetBookByID(ctxWithTimeout, "000123")

	// assert
	assert.ErrorIs(t, getErr, ledger.ErrBookNotFound)
}

func Test_GetBookByID_When_BookIsSoftDeleted(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	deleteErr := store.SoftDeleteBook(ctxWithTimeout, "000002")
	assert.NoError(t, deleteErr, "error soft-deleting the book in arrange")

	// act
	_, getErr := store.GetBookByID(ctxWithTimeout, "000002")

	// assert
	assert.ErrorIs(t, getErr, ledger.ErrBookNotFound)
}

func Test_GetBookByID_When_BookIsBorrowed(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	borrowing, borrowErr := store.BorrowBook(ctxWithTimeout, "000002", cardAlpha)
	assert.NoError(t, borrowErr, "error borrowing the book in arrange")

	// act
	view, getErr := store.GetBookByID(ctxWithTimeout, "000002")

	// assert
	assert.NoError(t, getErr, "error reading the book")
	assert.True(t, view.Borrowed)

	if assert.NotNil(t, view.BorrowID) {
		assert.Equal(t, borrowing.ID, *view.BorrowID)
	}

	if assert.NotNil(t, view.CardID) {
		assert.Equal(t, cardAlpha, *view.CardID)
	}
}

func Test_ListBooks_When_SomeBooksAreSoftDeleted(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	givenBook(t, ctxWithTimeout, store, "000123", "The Trial", "Franz Kafka")
	givenBook(t, ctxWithTimeout, store, "000789", "Demian", "Hermann Hesse")
	deleteErr := store.SoftDeleteBook(ctxWithTimeout, "000123")
	assert.NoError(t, deleteErr, "error soft-deleting the book in arrange")

	// act
	page, listErr := store.ListBooks(ctxWithTimeout, 1, 50)

	// assert
	assert.NoError(t, listErr, "error listing the books")
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "000002", page.Items[0].ID)
	assert.Equal(t, "000789", page.Items[1].ID)
}

func Test_ListBooks_When_ResultSpansMultiplePages(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	givenBook(t, ctxWithTimeout, store, "000123", "The Trial", "Franz Kafka")
	givenBook(t, ctxWithTimeout, store, "000789", "Demian", "Hermann Hesse")

	// act
	firstPage, firstErr := store.ListBooks(ctxWithTimeout, 1, 2)
	secondPage, secondErr := store.ListBooks(ctxWithTimeout, 2, 2)

	// assert
	assert.NoError(t, firstErr, "error listing the first page")
	assert.NoError(t, secondErr, "error listing the second page")

	assert.Equal(t, 3, firstPage.Total)
	assert.Equal(t, 2, firstPage.TotalPages)
	assert.Len(t, firstPage.Items, 2)
	assert.Equal(t, "000002", firstPage.Items[0].ID)
	assert.Equal(t, "000123", firstPage.Items[1].ID)

	assert.Len(t, secondPage.Items, 1)
	assert.Equal(t, "000789", secondPage.Items[0].ID)
}

func Test_ListBooks_When_RequestedPageIsBeyondTheEnd(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")

	// act
	page, listErr := store.ListBooks(ctxWithTimeout, 5, 50)

	// assert
	assert.NoError(t, listErr, "error listing the books")
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func Test_UpdateBook_When_OnlyTitleIsPatched(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	newTitle := "Siddhartha: An Indian Poem"

	// act
	view, updateErr := store.UpdateBook(ctxWithTimeout, "000002", ledger.BookPatch{Title: &newTitle})

	// assert
	assert.NoError(t, updateErr, "error updating the book")
	assert.Equal(t, "000002", view.ID)
	assert.Equal(t, newTitle, view.Title)
	assert.Equal(t, "Hermann Hesse", view.Author)
}

func Test_UpdateBook_When_IdentifierIsReassigned(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	_, borrowErr := store.BorrowBook(ctxWithTimeout, "000002", cardAlpha)
	assert.NoError(t, borrowErr, "error borrowing the book in arrange")
	newID := "005001"

	// act
	view, updateErr := store.UpdateBook(ctxWithTimeout, "000002", ledger.BookPatch{NewID: &newID})

	// assert
	assert.NoError(t, updateErr, "error reassigning the identifier")
	assert.Equal(t, newID, view.ID)
	assert.True(t, view.Borrowed, "lending history must follow the book to its new identifier")

	_, getErr := store.GetBookByID(ctxWithTimeout, "000002")
	assert.ErrorIs(t, getErr, ledger.ErrBookNotFound)

	returnErr := store.ReturnBook(ctxWithTimeout, newID, cardAlpha)
	assert.NoError(t, returnErr, "error returning the book under its new identifier")
}

func Test_UpdateBook_When_NewIdentifierIsTaken(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	givenBook(t, ctxWithTimeout, store, "000123", "The Trial", "Franz Kafka")
	takenID := "000123"

	// act
	_, updateErr := store.UpdateBook(ctxWithTimeout, "000002", ledger.BookPatch{NewID: &takenID})

	// assert
	assert.ErrorIs(t, updateErr, ledger.ErrBookIDAlreadyExists)
}

func Test_UpdateBook_When_NewIdentifierBelongsToSoftDeletedBook(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	givenBook(t, ctxWithTimeout, store, "000007", "Dune", "Frank Herbert")
	deleteErr := store.SoftDeleteBook(ctxWithTimeout, "000007")
	assert.NoError(t, deleteErr, "error soft-deleting the book in arrange")
	deletedID := "000007"

	// act
	_, updateErr := store.UpdateBook(ctxWithTimeout, "000002", ledger.BookPatch{NewID: &deletedID})

	// assert
	assert.ErrorIs(t, updateErr, ledger.ErrBookIDAlreadyExists)
}

func Test_UpdateBook_When_BookDoesNotExist(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	newTitle := "Anything"

	// act
	_, updateErr := store.UpdateBook(ctxWithTimeout, "000123", ledger.BookPatch{Title: &newTitle})

	// assert
	assert.ErrorIs(t, updateErr, ledger.ErrBookNotFound)
}

func Test_SoftDeleteBook_When_BookExists(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")

	// act
	deleteErr := store.SoftDeleteBook(ctxWithTimeout, "000002")

	// assert
	assert.NoError(t, deleteErr, "error soft-deleting the book")

	_, getErr := store.GetBookByID(ctxWithTimeout, "000002")
	assert.ErrorIs(t, getErr, ledger.ErrBookNotFound)
}

func Test_SoftDeleteBook_When_BookIsAlreadyDeleted(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	firstErr := store.SoftDeleteBook(ctxWithTimeout, "000002")
	assert.NoError(t, firstErr, "error soft-deleting the book in arrange")

	// act
	secondErr := store.SoftDeleteBook(ctxWithTimeout, "000002")

	// assert
	assert.ErrorIs(t, secondErr, ledger.ErrBookNotFound)
}

func Test_SoftDeleteBook_When_BookIsBorrowed(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	store := wrapper.GetLedgerStore()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	givenBook(t, ctxWithTimeout, store, "000002", "Siddhartha", "Hermann Hesse")
	_, borrowErr := store.BorrowBook(ctxWithTimeout, "000002", cardAlpha)
	assert.NoError(t, borrowErr, "error borrowing the book in arrange")

	// act
	deleteErr := store.SoftDeleteBook(ctxWithTimeout, "000002")

	// assert
	assert.NoError(t, deleteErr, "soft-deleting a borrowed book must succeed")

	_, getErr := store.GetBookByID(ctxWithTimeout, "000002")
	assert.ErrorIs(t, getErr, ledger.ErrBookNotFound)

	activeCount := postgreswrapper.CountActiveBorrowings(t, wrapper, "000002")
	assert.Equal(t, 1, activeCount, "borrowing history must survive the soft delete")
}

func givenBook(
	t *testing.T,
	ctx context.Context,
	store postgresengine.LedgerStore,
	id string,
	title string,
	author string,
) {
	t.Helper()

	createErr := store.CreateBook(ctx, id, title, author)
	assert.NoError(t, createErr, "error creating a book in arrange")
}
