package httpapi

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the lending ledger behind the HTTP contract's routes.
func NewRouter(store Store, logger *slog.Logger, requestTimeout time.Duration) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestTimeout(requestTimeout))

	h := newHandlers(store, logger)

	router.GET("/health", h.health)

	books := router.Group("/books")
	{
		books.POST("", h.createBook)
		books.GET("", h.listBooks)
		books.GET("/:book_id", h.getBook)
		books.PUT("/:book_id", h.updateBook)
		books.DELETE("/:book_id", h.deleteBook)
		books.POST("/:book_id/borrow/:card_id", h.borrowBook)
		books.POST("/:book_id/return/:card_id", h.returnBook)
	}

	return router
}
