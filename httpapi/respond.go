package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardcat/library-lending-go/ledger"
)

const contentTypeJSON = "application/json; charset=utf-8"

const msgInternalServerError = "internal server error"

// respondJSON renders payload through the shared jsoniter config so the
// boundary encodes responses the same way it decodes requests.
func respondJSON(c *gin.Context, statusCode int, payload any) {
	body, marshalErr := strictJSON.Marshal(payload)
	if marshalErr != nil {
		c.Data(
			http.StatusInternalServerError,
			contentTypeJSON,
			[]byte(`{"code": 500, "error": "internal server error"}`),
		)

		return
	}

	c.Data(statusCode, contentTypeJSON, body)
}

// respondFailure maps a failure from the core onto the contract's error body.
// Anything that does not carry a failure kind is reported as an internal
// server error without leaking its message.
func respondFailure(c *gin.Context, err error) {
	failure, ok := ledger.FailureFrom(err)
	if !ok {
		respondJSON(
			c,
			http.StatusInternalServerError,
			errorResponse{Code: http.StatusInternalServerError, Error: msgInternalServerError},
		)

		return
	}

	statusCode := statusCodeForKind(failure.Kind())
	respondJSON(c, statusCode, errorResponse{Code: statusCode, Error: failure.Error()})
}

func statusCodeForKind(kind ledger.FailureKind) int {
	switch kind {
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindConflict:
		return http.StatusConflict
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
