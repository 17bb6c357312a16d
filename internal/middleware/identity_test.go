package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"event-registration-platform/internal/models"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore() sessions.Store {
	return sessions.NewCookieStore([]byte("test-session-secret-0123456789ab"))
}

// requestWithSession builds a request carrying a session cookie with the
// given values.
func requestWithSession(t *testing.T, store sessions.Store, values map[interface{}]interface{}) *http.Request {
	t.Helper()

	seed := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	session, err := store.Get(seed, "session")
	require.NoError(t, err)
	session.Values = values
	require.NoError(t, session.Save(seed, rec))

	req := httptest.NewRequest("GET", "/api/registrations", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

// identityCapture records the identity the middleware attached
func identityCapture(captured **models.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestIdentityMiddleware_Load(t *testing.T) {
	t.Run("request without session continues as guest", func(t *testing.T) {
		store := testStore()
		middleware := NewIdentityMiddleware(store)

		var captured *models.Identity
		handler := middleware.Load(identityCapture(&captured))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/registrations", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("session with user id and role yields identity", func(t *testing.T) {
		store := testStore()
		middleware := NewIdentityMiddleware(store)

		var captured *models.Identity
		handler := middleware.Load(identityCapture(&captured))

		req := requestWithSession(t, store, map[interface{}]interface{}{
			"user_id": 7,
			"role":    "organizer",
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, captured)
		assert.Equal(t, 7, captured.UserID)
		assert.Equal(t, models.RoleOrganizer, captured.Role)
	})

	t.Run("string user id is coerced", func(t *testing.T) {
		store := testStore()
		middleware := NewIdentityMiddleware(store)

		var captured *models.Identity
		handler := middleware.Load(identityCapture(&captured))

		req := requestWithSession(t, store, map[interface{}]interface{}{
			"user_id": "42",
			"role":    "admin",
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, captured)
		assert.Equal(t, 42, captured.UserID)
		assert.True(t, captured.IsAdmin())
	})

	t.Run("missing role defaults to participant", func(t *testing.T) {
		store := testStore()
		middleware := NewIdentityMiddleware(store)

		var captured *models.Identity
		handler := middleware.Load(identityCapture(&captured))

		req := requestWithSession(t, store, map[interface{}]interface{}{
			"user_id": 7,
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.NotNil(t, captured)
		assert.Equal(t, models.RoleParticipant, captured.Role)
	})

	t.Run("session without user id continues as guest", func(t *testing.T) {
		store := testStore()
		middleware := NewIdentityMiddleware(store)

		var captured *models.Identity
		handler := middleware.Load(identityCapture(&captured))

		req := requestWithSession(t, store, map[interface{}]interface{}{
			"role": "organizer",
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, captured)
	})
}

func TestRequireIdentity(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("guest is rejected with 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireIdentity(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated caller passes through", func(t *testing.T) {
		store := testStore()
		middleware := NewIdentityMiddleware(store)
		handler := middleware.Load(RequireIdentity(next))

		req := requestWithSession(t, store, map[interface{}]interface{}{
			"user_id": 7,
			"role":    "participant",
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
