package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCSRFEngine() *gin.Engine {
	g := gin.New()
	g.Use(sessions.Sessions("test_session", NewSessionStore([]byte("test-secret"), time.Hour, false)))
	g.GET("/form", func(c *gin.Context) {
		tok, err := CSRFToken(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, tok)
	})
	g.POST("/form", VerifyCSRF("/form"), func(c *gin.Context) {
		c.String(http.StatusOK, "accepted")
	})
	return g
}

// fetchToken performs the GET and returns the token with the session cookie.
func fetchToken(t *testing.T, g *gin.Engine) (string, []*http.Cookie) {
	t.Helper()
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/form", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	tok := rw.Body.String()
	require.Len(t, tok, 64)
	return tok, rw.Result().Cookies()
}

func postForm(g *gin.Engine, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	return rw
}

func TestCSRF_AcceptsMatchingToken(t *testing.T) {
	g := newCSRFEngine()
	tok, cookies := fetchToken(t, g)

	rw := postForm(g, url.Values{CSRFField: {tok}}, cookies)
	require.Equal(t, http.StatusOK, rw.Code)
	require.Equal(t, "accepted", rw.Body.String())
}

func TestCSRF_AcceptsHeader(t *testing.T) {
	g := newCSRFEngine()
	tok, cookies := fetchToken(t, g)

	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.Header.Set(csrfHeader, tok)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestCSRF_RejectsMissingOrWrongToken(t *testing.T) {
	g := newCSRFEngine()
	tok, cookies := fetchToken(t, g)

	rw := postForm(g, url.Values{}, cookies)
	require.Equal(t, http.StatusFound, rw.Code)
	require.Equal(t, "/form", rw.Header().Get("Location"))

	rw = postForm(g, url.Values{CSRFField: {tok + "x"}}, cookies)
	require.Equal(t, http.StatusFound, rw.Code)

	// right token without the session it was bound to
	rw = postForm(g, url.Values{CSRFField: {tok}}, nil)
	require.Equal(t, http.StatusFound, rw.Code)
}

func TestCSRFToken_StableWithinSession(t *testing.T) {
	g := newCSRFEngine()
	tok, cookies := fetchToken(t, g)

	req := httptest.NewRequest(http.MethodGet, "/form", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, tok, rw.Body.String())
}
