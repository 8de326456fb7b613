package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/secretwall/secretwall/pkg/logger"
)

const (
	sessionKeyCSRF = "csrf_token"

	// CSRFField is the hidden form field carrying the token.
	CSRFField  = "_csrf"
	csrfHeader = "X-CSRF-Token"
)

// CSRFToken returns the session's CSRF token, creating and saving one when
// absent. Call before writing the response.
func CSRFToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if tok, ok := session.Get(sessionKeyCSRF).(string); ok && tok != "" {
		return tok, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	tok := hex.EncodeToString(buf)
	session.Set(sessionKeyCSRF, tok)
	if err := session.Save(); err != nil {
		return "", err
	}
	return tok, nil
}

// VerifyCSRF checks the form field (or X-CSRF-Token header) against the
// session token on unsafe methods. Mismatches redirect to failPath.
func VerifyCSRF(failPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		expected, _ := sessions.Default(c).Get(sessionKeyCSRF).(string)
		received := c.PostForm(CSRFField)
		if received == "" {
			received = c.GetHeader(csrfHeader)
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
			logger.Warnf("csrf check failed for %s %s from %s", c.Request.Method, c.Request.URL.Path, c.ClientIP())
			c.Redirect(http.StatusFound, failPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
