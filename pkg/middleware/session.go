package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
)

// NewSessionStore returns the signed cookie store used for browser sessions.
// Options are always explicit: the gorilla defaults are Secure with
// SameSite=None, which plain-http browsers never send back. Lax keeps the
// cookie on the top-level redirect back from the OAuth provider.
func NewSessionStore(secret []byte, ttl time.Duration, secure bool) sessions.Store {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}
