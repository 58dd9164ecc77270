package httpapi

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/cardcat/library-lending-go/ledger"
)

// strictJSON rejects unknown payload fields, matching the closed payload
// shapes of the API contract.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

var (
	errMalformedPayload = ledger.NewFailure(ledger.KindValidation, "malformed request payload")
	errTitleLength      = ledger.NewFailure(ledger.KindValidation, "title must be between 1 and 255 characters")
	errAuthorLength     = ledger.NewFailure(ledger.KindValidation, "author must be between 1 and 255 characters")
)

type createBookPayload struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

func decodeCreateBookPayload(body io.Reader) (createBookPayload, error) {
	var empty createBookPayload
	var payload createBookPayload

	raw, readErr := io.ReadAll(body)
	if readErr != nil {
		return empty, errMalformedPayload
	}

	if unmarshalErr := strictJSON.Unmarshal(raw, &payload); unmarshalErr != nil {
		return empty, errMalformedPayload
	}

	if _, idErr := ledger.ParseID(payload.ID); idErr != nil {
		return empty, idErr
	}

	if !validTextLength(payload.Title, ledger.MaxTitleLength) {
		return empty, errTitleLength
	}

	if !validTextLength(payload.Author, ledger.MaxAuthorLength) {
		return empty, errAuthorLength
	}

	return payload, nil
}

type updateBookPayload struct {
	ID     *string `json:"id"`
	Title  *string `json:"title"`
	Author *string `json:"author"`
}

func decodeUpdateBookPayload(body io.Reader) (updateBookPayload, error) {
	var empty updateBookPayload
	var payload updateBookPayload

	raw, readErr := io.ReadAll(body)
	if readErr != nil {
		return empty, errMalformedPayload
	}

	if unmarshalErr := strictJSON.Unmarshal(raw, &payload); unmarshalErr != nil {
		return empty, errMalformedPayload
	}

	if payload.ID != nil {
		if _, idErr := ledger.ParseID(*payload.ID); idErr != nil {
			return empty, idErr
		}
	}

	if payload.Title != nil && !validTextLength(*payload.Title, ledger.MaxTitleLength) {
		return empty, errTitleLength
	}

	if payload.Author != nil && !validTextLength(*payload.Author, ledger.MaxAuthorLength) {
		return empty, errAuthorLength
	}

	return payload, nil
}

func (p updateBookPayload) toPatch() ledger.BookPatch {
	return ledger.BookPatch{
		NewID:  p.ID,
		Title:  p.Title,
		Author: p.Author,
	}
}

func validTextLength(value string, maxLength int) bool {
	return len(value) >= 1 && len(value) <= maxLength
}
