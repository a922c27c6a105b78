package api

import (
	"net/http"
	"sort"

	"github.com/phrazzld/habanero-api/internal/api/shared"
	"github.com/phrazzld/habanero-api/internal/apperr"
)

// FieldError is one entry of the error payload: a field name plus the
// human-readable reasons it was rejected.
type FieldError struct {
	Field        string   `json:"field"`
	Descriptions []string `json:"descriptions"`
}

// FieldErrorResponse is the error payload for validation, business,
// not-found, and conflict failures.
type FieldErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// statusForKind maps the service error taxonomy onto HTTP statuses. The
// distinction between business and not-found/conflict exists only for this
// mapping.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindBusiness:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusNotAcceptable
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError translates a service error into the HTTP response.
// System errors (and anything outside the taxonomy) become an opaque 500
// with no field detail; the cause is logged, never serialized.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind == apperr.KindSystem {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	fields := make([]FieldError, 0, len(appErr.Fields))
	for field, descriptions := range appErr.Fields {
		fields = append(fields, FieldError{Field: field, Descriptions: descriptions})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })

	shared.RespondWithJSON(w, r, statusForKind(appErr.Kind), FieldErrorResponse{Errors: fields})
}
