package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestApplyJWTMiddleware(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID)
	assert.NoError(t, err)

	var gotUserID uuid.UUID
	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, "/messages")

	// Missing header is rejected.
	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest(http.MethodGet, "/messages", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Bearer token passes and the user id lands in the context.
	recorder = httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/messages", nil)
	request.Header.Set("Authorization", "Bearer "+token)
	handler(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, userID, gotUserID)

	// Unprotected routes skip validation entirely.
	recorder = httptest.NewRecorder()
	open := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "/health")
	open(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
