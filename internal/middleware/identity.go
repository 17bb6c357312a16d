package middleware

import (
	"context"
	"net/http"
	"strconv"

	"event-registration-platform/internal/models"

	"github.com/gorilla/sessions"
)

type contextKey string

const (
	// IdentityContextKey is the context key for the resolved caller identity
	IdentityContextKey contextKey = "identity"

	sessionName = "session"
)

// IdentityMiddleware resolves the caller identity from the session
// cookie. Credential validation happens upstream; here we only read the
// already-established {user_id, role} pair. Requests without a valid
// session proceed as guests.
type IdentityMiddleware struct {
	store sessions.Store
}

// NewIdentityMiddleware creates a new identity middleware
func NewIdentityMiddleware(store sessions.Store) *IdentityMiddleware {
	return &IdentityMiddleware{store: store}
}

// Load reads the session and attaches a *models.Identity to the request
// context. Guests get no identity and continue unhindered.
func (m *IdentityMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, sessionName)
		if err != nil {
			// Continue as guest if the session is invalid
			next.ServeHTTP(w, r)
			return
		}

		userID, ok := session.Values["user_id"].(int)
		if !ok || userID == 0 {
			// Session storage may have converted the type
			switch v := session.Values["user_id"].(type) {
			case float64:
				userID = int(v)
			case string:
				userID, _ = strconv.Atoi(v)
			}
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}
		}

		role, _ := session.Values["role"].(string)
		identity := &models.Identity{
			UserID: userID,
			Role:   models.UserRole(role),
		}
		if identity.Role == "" {
			identity.Role = models.RoleParticipant
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentityFromContext returns the caller identity from the request
// context, or nil for guests
func GetIdentityFromContext(ctx context.Context) *models.Identity {
	identity, ok := ctx.Value(IdentityContextKey).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// RequireIdentity rejects guest requests with 401
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentityFromContext(r.Context()) == nil {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
