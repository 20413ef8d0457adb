package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalxcard/invest-api/internal/auth"
)

// protectedEcho doğrulanan kullanıcının ID'sini yazan test handler'ı
func protectedEcho(t *testing.T, expectedUserID int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok, "claims context'te bulunmalı")
		assert.Equal(t, expectedUserID, claims.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

// TestAuthMiddleware_ValidToken, geçerli token ile isteğin handler'a
// ulaşmasını ve claims'in context'e eklenmesini test eder.
func TestAuthMiddleware_ValidToken(t *testing.T) {
	// Arrange
	token, err := auth.GenerateToken(42, "test@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/investments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()

	// Act
	AuthMiddleware(protectedEcho(t, 42)).ServeHTTP(recorder, req)

	// Assert
	assert.Equal(t, http.StatusOK, recorder.Code)
}

// TestAuthMiddleware_MissingHeader, Authorization header'ı olmayan isteğin
// reddedilmesini test eder.
func TestAuthMiddleware_MissingHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/investments", nil)
	recorder := httptest.NewRecorder()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	AuthMiddleware(next).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.False(t, called, "handler çağrılmamalı")
}

// TestAuthMiddleware_InvalidFormat, Bearer prefix'i olmayan header'ın
// reddedilmesini test eder.
func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/investments", nil)
	req.Header.Set("Authorization", "Token abc123")
	recorder := httptest.NewRecorder()

	AuthMiddleware(http.NotFoundHandler()).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// TestAuthMiddleware_InvalidToken, imzası bozuk token'ın reddedilmesini test eder.
func TestAuthMiddleware_InvalidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/investments", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	recorder := httptest.NewRecorder()

	AuthMiddleware(http.NotFoundHandler()).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
