package bridge_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zapper/internal/bridge"
)

func newTestDatabase(t *testing.T) *bridge.Database {
	t.Helper()

	db, err := bridge.NewDatabase(filepath.Join(t.TempDir(), "bridge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestPasswordService(t *testing.T) {
	passwords := bridge.NewPasswordService()

	t.Run("hashes with argon2id", func(t *testing.T) {
		hash, err := passwords.HashPassword("sesame")

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"), "unexpected hash: %s", hash)
	})

	t.Run("verifies the matching password", func(t *testing.T) {
		hash, err := passwords.HashPassword("sesame")
		require.NoError(t, err)

		ok, err := passwords.VerifyPassword("sesame", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		hash, err := passwords.HashPassword("sesame")
		require.NoError(t, err)

		ok, err := passwords.VerifyPassword("mellon", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("salts every hash", func(t *testing.T) {
		first, err := passwords.HashPassword("sesame")
		require.NoError(t, err)
		second, err := passwords.HashPassword("sesame")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("rejects malformed hashes", func(t *testing.T) {
		_, err := passwords.VerifyPassword("sesame", "not-a-hash")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse hash")
	})
}

func TestJWTService(t *testing.T) {
	t.Run("round trips a token", func(t *testing.T) {
		jwtService := bridge.NewJWTService("secret", "zapper-bridge", time.Hour)

		token, err := jwtService.GenerateToken()
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "bridge", claims.Subject)
		assert.Equal(t, "zapper-bridge", claims.Issuer)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		token, err := bridge.NewJWTService("secret", "zapper-bridge", time.Hour).GenerateToken()
		require.NoError(t, err)

		_, err = bridge.NewJWTService("other", "zapper-bridge", time.Hour).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		jwtService := bridge.NewJWTService("secret", "zapper-bridge", -time.Minute)

		token, err := jwtService.GenerateToken()
		require.NoError(t, err)

		_, err = jwtService.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := bridge.NewJWTService("secret", "zapper-bridge", time.Hour).ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestRequireAuth(t *testing.T) {
	jwtService := bridge.NewJWTService("secret", "zapper-bridge", time.Hour)

	newHandler := func(middleware *bridge.AuthMiddleware) (http.Handler, *string) {
		var subject string
		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, _ = bridge.AuthSubject(r)
			w.WriteHeader(http.StatusOK)
		}))
		return handler, &subject
	}

	t.Run("passes everything through when disabled", func(t *testing.T) {
		handler, _ := newHandler(bridge.NewAuthMiddleware(jwtService, newTestDatabase(t), false))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("requires a header when enabled", func(t *testing.T) {
		handler, _ := newHandler(bridge.NewAuthMiddleware(jwtService, newTestDatabase(t), true))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Authorization header required")
	})

	t.Run("rejects non-bearer schemes", func(t *testing.T) {
		handler, _ := newHandler(bridge.NewAuthMiddleware(jwtService, newTestDatabase(t), true))

		request := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		request.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("rejects invalid tokens", func(t *testing.T) {
		handler, _ := newHandler(bridge.NewAuthMiddleware(jwtService, newTestDatabase(t), true))

		request := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		request.Header.Set("Authorization", "Bearer not.a.token")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Invalid token")
	})

	t.Run("accepts a valid bearer token", func(t *testing.T) {
		handler, subject := newHandler(bridge.NewAuthMiddleware(jwtService, newTestDatabase(t), true))

		token, err := jwtService.GenerateToken()
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "bridge", *subject)
	})

	t.Run("rejects unknown API keys", func(t *testing.T) {
		handler, _ := newHandler(bridge.NewAuthMiddleware(jwtService, newTestDatabase(t), true))

		request := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		request.Header.Set("X-API-Key", "nope")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Invalid API key")
	})

	t.Run("accepts a stored API key", func(t *testing.T) {
		database := newTestDatabase(t)
		handler, subject := newHandler(bridge.NewAuthMiddleware(jwtService, database, true))

		key, err := database.CreateAPIKey("homebridge")
		require.NoError(t, err)

		request := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		request.Header.Set("X-API-Key", key.Key)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "key:homebridge", *subject)
	})
}
