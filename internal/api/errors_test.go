package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/habanero-api/internal/apperr"
)

func TestStatusForKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusBadRequest, statusForKind(apperr.KindValidation))
	assert.Equal(t, http.StatusBadRequest, statusForKind(apperr.KindBusiness))
	assert.Equal(t, http.StatusNotFound, statusForKind(apperr.KindNotFound))
	assert.Equal(t, http.StatusNotAcceptable, statusForKind(apperr.KindConflict))
	assert.Equal(t, http.StatusInternalServerError, statusForKind(apperr.KindSystem))
}

func TestRespondWithAppError(t *testing.T) {
	t.Parallel()

	t.Run("serializes fields sorted by name", func(t *testing.T) {
		t.Parallel()

		err := apperr.Validation().
			Add("password", "too short").
			Add("email", "is not a valid email address")

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/account", nil)
		RespondWithAppError(rec, req, err)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var payload FieldErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.Len(t, payload.Errors, 2)
		assert.Equal(t, "email", payload.Errors[0].Field)
		assert.Equal(t, []string{"is not a valid email address"}, payload.Errors[0].Descriptions)
		assert.Equal(t, "password", payload.Errors[1].Field)
	})

	t.Run("conflict maps to 406", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/refresh", nil)
		RespondWithAppError(rec, req, apperr.Conflict("token", "invalid"))

		assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	})

	t.Run("system error is opaque", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/account", nil)
		RespondWithAppError(rec, req, apperr.System(errors.New("pq: connection refused")))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("unclassified error is opaque", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/account", nil)
		RespondWithAppError(rec, req, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}
