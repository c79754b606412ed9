package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret)

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid, err := Sign(testSecret, "user-123", time.Hour)
	require.NoError(t, err)
	expired, err := Sign(testSecret, "user-123", -time.Hour)
	require.NoError(t, err)
	wrongKey, err := Sign("another-secret", "user-123", time.Hour)
	require.NoError(t, err)
	noSubject := sign(jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS256, []byte(testSecret))
	hs512 := sign(jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}, jwt.SigningMethodHS512, []byte(testSecret))

	tests := []struct {
		name       string
		authHeader string
		wantUserID string
		wantErr    bool
	}{
		{name: "Happy Path", authHeader: "Bearer " + valid, wantUserID: "user-123"},
		{name: "Lowercase Scheme", authHeader: "bearer " + valid, wantUserID: "user-123"},
		{name: "Missing Header", authHeader: "", wantErr: true},
		{name: "Invalid Format", authHeader: "Basic dXNlcjpwYXNz", wantErr: true},
		{name: "Empty Token", authHeader: "Bearer ", wantErr: true},
		{name: "Malformed Token", authHeader: "Bearer malformed.token.here", wantErr: true},
		{name: "Expired Token", authHeader: "Bearer " + expired, wantErr: true},
		{name: "Wrong Key", authHeader: "Bearer " + wrongKey, wantErr: true},
		{name: "Missing Subject", authHeader: "Bearer " + noSubject, wantErr: true},
		{name: "Wrong Algorithm", authHeader: "Bearer " + hs512, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := v.Verify(tt.authHeader)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, userID)
		})
	}
}

func TestVerifyWithoutSecret(t *testing.T) {
	v := NewVerifier("")
	assert.False(t, v.Configured())

	token, err := Sign("", "user-123", time.Hour)
	if err == nil {
		_, err = v.Verify("Bearer " + token)
	}
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(testSecret)
	h := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserID(r.Context())
		require.True(t, ok)
		w.Write([]byte(id))
	}))

	token, err := Sign(testSecret, "user-9", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-9", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestUserIDMissing(t *testing.T) {
	_, ok := UserID(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
