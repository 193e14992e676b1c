package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhub-gg/guildhub/schedule"
)

func decodeErrorReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	var body struct {
		Error apiErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Error.Reason
}

func authedRequest(method, path string, userID int64, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))

	return req.WithContext(context.WithValue(req.Context(), contextKeyUserID, userID))
}

func TestRequireSessionUnauthenticated(t *testing.T) {
	called := false
	handler := requireSession(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/api/guild/1/roles/select", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ReasonUnauthenticated, decodeErrorReason(t, rec))
}

func TestRequireSessionPassesUser(t *testing.T) {
	seenUser := int64(0)
	handler := requireSession(func(w http.ResponseWriter, r *http.Request) { seenUser = CurrentUserID(r) })

	rec := httptest.NewRecorder()
	handler(rec, authedRequest("POST", "/api/guild/1/roles/select", 42, ""))

	assert.Equal(t, int64(42), seenUser)
}

func TestCurrentUserIDUnset(t *testing.T) {
	assert.Equal(t, int64(0), CurrentUserID(httptest.NewRequest("GET", "/", nil)))
}

func TestDecodeBodyMalformed(t *testing.T) {
	var dst selectRoleBody

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader("{broken"))

	assert.False(t, decodeBody(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ReasonValidation, decodeErrorReason(t, rec))
}

func TestDecodeBodySnowflakeStrings(t *testing.T) {
	var dst selectRoleBody

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"role_id":"112233445566778899"}`))

	require.True(t, decodeBody(rec, req, &dst))
	assert.Equal(t, int64(112233445566778899), dst.RoleID)
}

func TestSessionErrorStatusMapping(t *testing.T) {
	status, reason := sessionErrorStatus(schedule.ErrSessionNotFound)
	assert.Equal(t, http.StatusNotFound, status, "unknown session is not found on every endpoint")
	assert.Equal(t, ReasonNotFound, reason)

	status, reason = sessionErrorStatus(schedule.NewValidationError("title", "can't be empty"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ReasonValidation, reason)

	status, reason = sessionErrorStatus(errors.New("connection lost"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ReasonInternal, reason)
}

func TestWriteAPIErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeAPIError(rec, http.StatusForbidden, ReasonUnauthorized, "officer authority required")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"reason":"unauthorized","detail":"officer authority required"}}`, rec.Body.String())
}
