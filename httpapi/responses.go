package httpapi

import (
	"time"

	"github.com/cardcat/library-lending-go/ledger"
)

type errorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

type statusResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type createBookResponse struct {
	Code   int    `json:"code"`
	BookID string `json:"bookId"`
}

type bookDetailResponse struct {
	Code      int     `json:"code"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	CreatedAt string  `json:"created_at"`
	Borrowed  bool    `json:"borrowed"`
	BorrowID  *int64  `json:"borrowId"`
	CardID    *string `json:"cardId"`
}

type bookItemResponse struct {
	Author       string  `json:"author"`
	Borrowed     bool    `json:"borrowed"`
	BorrowCardID *string `json:"borrowCardId"`
	CreatedAt    string  `json:"created_at"`
	ID           string  `json:"id"`
	Title        string  `json:"title"`
}

type listBooksResponse struct {
	Code       int                `json:"code"`
	Items      []bookItemResponse `json:"items"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

type borrowResponse struct {
	Code       int    `json:"code"`
	BookID     string `json:"bookId"`
	CardID     string `json:"cardId"`
	BorrowedAt string `json:"borrowed_at"`
}

func bookDetailFromView(statusCode int, view ledger.BookView) bookDetailResponse {
	return bookDetailResponse{
		Code:      statusCode,
		ID:        view.ID,
		Title:     view.Title,
		Author:    view.Author,
		CreatedAt: formatTimestamp(view.CreatedAt),
		Borrowed:  view.Borrowed,
		BorrowID:  view.BorrowID,
		CardID:    view.CardID,
	}
}

func bookItemFromView(view ledger.BookView) bookItemResponse {
	return bookItemResponse{
		Author:       view.Author,
		Borrowed:     view.Borrowed,
		BorrowCardID: view.CardID,
		CreatedAt:    formatTimestamp(view.CreatedAt),
		ID:           view.ID,
		Title:        view.Title,
	}
}

func listBooksFromPage(statusCode int, page ledger.BookPage) listBooksResponse {
	items := make([]bookItemResponse, 0, len(page.Items))
	for _, view := range page.Items {
		items = append(items, bookItemFromView(view))
	}

	return listBooksResponse{
		Code:       statusCode,
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
