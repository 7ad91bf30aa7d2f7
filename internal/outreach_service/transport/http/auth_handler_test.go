package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	transporthttp "github.com/DisparoLabs/disparo/internal/outreach_service/transport/http"
)

func newAuthTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler, err := transporthttp.NewAuthHandler("admin", "s3cret", "test-secret", 1, logger)
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func TestAuthHandler_Login_Success(t *testing.T) {
	router := newAuthTestRouter(t)

	body := bytes.NewBufferString(`{"username": "admin", "password": "s3cret"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp transporthttp.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "admin", resp.Username)

	token, err := jwt.ParseWithClaims(resp.AccessToken, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, "admin", claims.Subject)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	router := newAuthTestRouter(t)

	body := bytes.NewBufferString(`{"username": "admin", "password": "nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	router := newAuthTestRouter(t)

	body := bytes.NewBufferString(`{"username": "admin"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
