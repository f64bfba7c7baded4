package auth

import (
	"context"
	"net/http"

	"github.com/sakif/codespace/internal/session"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session_token"

// contextKey is an unexported type for context keys in this package.
// Using a package-private type (instead of a plain string) means no other
// package can read or shadow the identity we store in the context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth is the authenticated guard: it resolves the session cookie
// against the session table and stores the resulting Identity in the
// request context. Missing, unknown, or expired tokens get a 401 and the
// wrapped handler never runs — the response is the same in all three
// cases, so a caller can't probe which tokens exist.
func RequireAuth(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFromCookie(r, sessions)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Not authenticated"}`))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin is the admin guard. It must be mounted after RequireAuth
// (chi runs middleware in order, so the authenticated check has already
// short-circuited by the time this runs). Non-admin identities get 403.
//
// The admin flag comes from the session, captured at login — it is not
// re-checked against the user table here.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"Not authorized"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext retrieves the authenticated identity stored by
// RequireAuth. ok is false for requests that never passed the guard.
func IdentityFromContext(ctx context.Context) (session.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(session.Identity)
	return identity, ok
}

// identityFromCookie reads the session cookie and validates it.
func identityFromCookie(r *http.Request, sessions *session.Manager) (session.Identity, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — the request is simply anonymous.
		return session.Identity{}, false
	}
	return sessions.Validate(cookie.Value)
}
