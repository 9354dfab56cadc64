package reviewserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	operatorsapp "github.com/laboquimica/kalium-review/internal/domains/operators/application"
	operatordomain "github.com/laboquimica/kalium-review/internal/domains/operators/domain"
	operatorports "github.com/laboquimica/kalium-review/internal/domains/operators/ports"
)

func postJSON(t *testing.T, s *testServer, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	expires := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	s.sessions.EXPECT().
		Login(gomock.Any(), operatordomain.Credentials{Email: "ana@lab.edu", Password: "secreto"}).
		Return(&operatordomain.Session{Token: testToken, Operator: admin, Scopes: admin.Scopes(), ExpiresAt: expires}, nil)

	rec := postJSON(t, s, "/api/v1/session", `{"email":"ana@lab.edu","password":"secreto"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testToken, body["token"])
	assert.Equal(t, "Bearer", body["tokenType"])
	assert.Len(t, body["scopes"], 3)
	assert.Equal(t, true, body["operator"].(map[string]any)["admin"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.sessions.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: %w", operatorsapp.ErrAuthentication, operatorports.ErrInvalidCredentials))

	rec := postJSON(t, s, "/api/v1/session", `{"email":"ana@lab.edu","password":"mal"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MissingFields(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/v1/session", `{"email":"ana@lab.edu"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutAndCurrent(t *testing.T) {
	s := newTestServer(t)
	s.as(guest)
	s.sessions.EXPECT().Logout(gomock.Any(), testToken).Return(nil)

	rec := s.do(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body, "token")
	assert.Equal(t, false, body["operator"].(map[string]any)["admin"])

	rec = s.do(t, http.MethodDelete, "/api/v1/session", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
