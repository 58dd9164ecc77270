package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardcat/library-lending-go/ledger"
	"github.com/cardcat/library-lending-go/shell"
)

const (
	paramBookID = "book_id"
	paramCardID = "card_id"

	queryPage = "page"
	querySize = "size"
)

const (
	logMsgRequestFailed    = "request failed"
	logMsgTransientRetried = "transient store failure retried"
	logAttrMethod          = "method"
	logAttrPath            = "path"
	logAttrFailureKind     = "failureKind"
	logAttrAttempts        = "attempts"
	logAttrTotalDelayMS    = "totalDelayMs"
)

type handlers struct {
	store  Store
	logger *slog.Logger
}

func newHandlers(store Store, logger *slog.Logger) handlers {
	if logger == nil {
		logger = slog.Default()
	}

	return handlers{store: store, logger: logger}
}

func (h handlers) createBook(c *gin.Context) {
	payload, decodeErr := decodeCreateBookPayload(c.Request.Body)
	if decodeErr != nil {
		h.fail(c, decodeErr)

		return
	}

	storeErr := h.callStore(c, func(ctx context.Context) error {
		return h.store.CreateBook(ctx, payload.ID, payload.Title, payload.Author)
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, createBookResponse{Code: http.StatusOK, BookID: payload.ID})
}

func (h handlers) getBook(c *gin.Context) {
	bookID, idErr := ledger.ParseID(c.Param(paramBookID))
	if idErr != nil {
		h.fail(c, idErr)

		return
	}

	var view ledger.BookView

	storeErr := h.callStore(c, func(ctx context.Context) error {
		var err error
		view, err = h.store.GetBookByID(ctx, bookID)

		return err
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, bookDetailFromView(http.StatusOK, view))
}

func (h handlers) listBooks(c *gin.Context) {
	page, pageErr := intQuery(c, queryPage, 1)
	if pageErr != nil {
		h.fail(c, pageErr)

		return
	}

	size, sizeErr := intQuery(c, querySize, ledger.DefaultPageSize)
	if sizeErr != nil {
		h.fail(c, sizeErr)

		return
	}

	var bookPage ledger.BookPage

	storeErr := h.callStore(c, func(ctx context.Context) error {
		var err error
		bookPage, err = h.store.ListBooks(ctx, page, size)

		return err
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, listBooksFromPage(http.StatusOK, bookPage))
}

func (h handlers) updateBook(c *gin.Context) {
	bookID, idErr := ledger.ParseID(c.Param(paramBookID))
	if idErr != nil {
		h.fail(c, idErr)

		return
	}

	payload, decodeErr := decodeUpdateBookPayload(c.Request.Body)
	if decodeErr != nil {
		h.fail(c, decodeErr)

		return
	}

	var view ledger.BookView

	storeErr := h.callStore(c, func(ctx context.Context) error {
		var err error
		view, err = h.store.UpdateBook(ctx, bookID, payload.toPatch())

		return err
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, bookDetailFromView(http.StatusOK, view))
}

func (h handlers) deleteBook(c *gin.Context) {
	bookID, idErr := ledger.ParseID(c.Param(paramBookID))
	if idErr != nil {
		h.fail(c, idErr)

		return
	}

	storeErr := h.callStore(c, func(ctx context.Context) error {
		return h.store.SoftDeleteBook(ctx, bookID)
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, statusResponse{Code: http.StatusOK, Status: "Success"})
}

func (h handlers) borrowBook(c *gin.Context) {
	bookID, cardID, idErr := h.lendingIDs(c)
	if idErr != nil {
		h.fail(c, idErr)

		return
	}

	var borrowing ledger.Borrowing

	storeErr := h.callStore(c, func(ctx context.Context) error {
		var err error
		borrowing, err = h.store.BorrowBook(ctx, bookID, cardID)

		return err
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, borrowResponse{
		Code:       http.StatusOK,
		BookID:     bookID,
		CardID:     cardID,
		BorrowedAt: formatTimestamp(borrowing.BorrowedAt),
	})
}

func (h handlers) returnBook(c *gin.Context) {
	bookID, cardID, idErr := h.lendingIDs(c)
	if idErr != nil {
		h.fail(c, idErr)

		return
	}

	storeErr := h.callStore(c, func(ctx context.Context) error {
		return h.store.ReturnBook(ctx, bookID, cardID)
	})

	if storeErr != nil {
		h.fail(c, storeErr)

		return
	}

	respondJSON(c, http.StatusOK, statusResponse{Code: http.StatusOK, Status: "Success"})
}

func (h handlers) health(c *gin.Context) {
	respondJSON(c, http.StatusOK, statusResponse{Code: http.StatusOK, Status: "Success"})
}

// callStore runs a store operation with a bounded retry of transient failures.
// Business outcomes pass through untouched on the first attempt.
func (h handlers) callStore(c *gin.Context, fn shell.RetryableFunc) error {
	meta, err := shell.RetryWithExponentialBackoff(c.Request.Context(), fn)

	if meta.Attempts > 1 {
		h.logger.Warn(
			logMsgTransientRetried,
			logAttrMethod, c.Request.Method,
			logAttrPath, c.FullPath(),
			logAttrAttempts, meta.Attempts,
			logAttrTotalDelayMS, meta.TotalDelay.Milliseconds(),
		)
	}

	return err
}

func (h handlers) fail(c *gin.Context, err error) {
	if failure, ok := ledger.FailureFrom(err); ok {
		h.logger.Debug(
			logMsgRequestFailed,
			logAttrMethod, c.Request.Method,
			logAttrPath, c.FullPath(),
			logAttrFailureKind, failure.Kind().String(),
		)
	} else {
		h.logger.Error(
			logMsgRequestFailed,
			logAttrMethod, c.Request.Method,
			logAttrPath, c.FullPath(),
			"error", err,
		)
	}

	respondFailure(c, err)
}

func (h handlers) lendingIDs(c *gin.Context) (string, string, error) {
	bookID, bookErr := ledger.ParseID(c.Param(paramBookID))
	if bookErr != nil {
		return "", "", bookErr
	}

	cardID, cardErr := ledger.ParseID(c.Param(paramCardID))
	if cardErr != nil {
		return "", "", cardErr
	}

	return bookID, cardID, nil
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}

	value, parseErr := strconv.Atoi(raw)
	if parseErr != nil {
		return 0, ledger.NewFailure(ledger.KindValidation, key+" must be an integer")
	}

	return value, nil
}
