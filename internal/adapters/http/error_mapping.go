package httpadapter

import (
	"net/http"

	"github.com/gaffoor434/knowledge-base/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrIndexCorrupt):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
