package httpx

import (
	"errors"
	"net/http"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unrecognised errors are reported as opaque internal failures.
func RespondError(w http.ResponseWriter, err error) {
	var domainErr *shared.Error
	if !errors.As(err, &domainErr) {
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	status := statusForKind(domainErr.Kind)
	JSON(w, status, ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: domainErr.Msg,
		Field:  domainErr.Field,
	})
}

func statusForKind(kind shared.Kind) int {
	switch kind {
	case shared.KindNotFound, shared.KindNoEligibleProducts:
		return http.StatusNotFound
	case shared.KindDuplicateSKU, shared.KindConflict:
		return http.StatusConflict
	case shared.KindInsufficientQuantity, shared.KindInvalidInput:
		return http.StatusBadRequest
	case shared.KindUnauthorized:
		return http.StatusUnauthorized
	case shared.KindForbidden:
		return http.StatusForbidden
	case shared.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
