package handlers

import (
	"net/http"

	"github.com/jajuok/agripro-sub000/internal/errs"
)

// routePrefix is the gateway-facing base path. The API gateway strips auth
// before forwarding, so everything under protected/ assumes an
// authenticated caller.
const routePrefix = "eligibility/protected/api/v1"

// statusForError maps the service error taxonomy to HTTP statuses.
func statusForError(err error) (int, string) {
	kind := errs.Kind(err)
	switch kind {
	case "not_found":
		return http.StatusNotFound, "NOT_FOUND"
	case "invalid_state":
		return http.StatusConflict, "INVALID_STATE"
	case "validation_error":
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case "external_unavailable":
		return http.StatusBadGateway, "EXTERNAL_UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
