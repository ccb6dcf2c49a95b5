// internal/session/session.go
//
// Browser session cookie.
//
// Context
//   Each browser gets one panel.  The panel is found through an opaque
//   random identifier (UUID v4) carried in the “playeradmin_session” cookie.
//   The cookie holds nothing else; pagination state lives server-side in the
//   configured Store.
//
//   Middleware issues the cookie on first contact and stores the identifier
//   in the request context, where handlers read it with ID.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	CookieName = "playeradmin_session"
	cookieTTL  = 30 * 24 * time.Hour
)

type ctxKey struct{}

// Middleware makes sure every request carries a session identifier.  A
// missing or malformed cookie is replaced with a fresh one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := fromCookie(r)
		if !ok {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   r.TLS != nil, // only send over HTTPS
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(cookieTTL),
			})
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// WithID returns a copy of ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID returns the session identifier set by Middleware.
//
// ok == false when Middleware did not run.
func ID(ctx context.Context) (id string, ok bool) {
	id, ok = ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// fromCookie returns the identifier when the cookie holds a valid UUID.
func fromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	u, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
