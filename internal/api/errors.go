package api

import (
	"errors"
	"net/http"

	"fibermeta/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// Ambiguous and corrupted-catalog conditions are server-side corruption and
// map to 500.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var conflict *domain.ConflictError
	var validation *domain.ValidationError
	var invalidType *domain.InvalidTypeError
	var invalidRole *domain.InvalidColumnRoleError
	var unsupported *domain.UnsupportedFunctionError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &validation),
		errors.As(err, &invalidType),
		errors.As(err, &invalidRole),
		errors.As(err, &unsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
