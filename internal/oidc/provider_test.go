package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/secretwall/secretwall/internal/config"
	"github.com/secretwall/secretwall/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func fakeIDToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	return "hdr." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func tokenServer(t *testing.T, status int, body map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(tokenURL string) *Provider {
	return NewProvider(&oauth2.Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURL:  "http://localhost:3000/auth/google/secrets",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://idp.example/auth", TokenURL: tokenURL},
		Scopes:       []string{"openid", "profile"},
	}, NewInsecureVerifier())
}

func TestExchange_Success(t *testing.T) {
	idToken := fakeIDToken(t, map[string]interface{}{"sub": "google-42", "name": "Alice"})
	srv := tokenServer(t, http.StatusOK, map[string]string{"access_token": "at", "token_type": "Bearer", "id_token": idToken})

	sub, err := newTestProvider(srv.URL).Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "google-42", sub)
}

func TestExchange_TokenEndpointError(t *testing.T) {
	srv := tokenServer(t, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})

	_, err := newTestProvider(srv.URL).Exchange(context.Background(), "bad")
	assert.ErrorIs(t, err, errs.ErrProvider)
}

func TestExchange_MissingIDTokenOrSubject(t *testing.T) {
	srv := tokenServer(t, http.StatusOK, map[string]string{"access_token": "at", "token_type": "Bearer"})
	_, err := newTestProvider(srv.URL).Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, errs.ErrProvider)

	noSub := fakeIDToken(t, map[string]interface{}{"name": "Nobody"})
	srv2 := tokenServer(t, http.StatusOK, map[string]string{"access_token": "at", "token_type": "Bearer", "id_token": noSub})
	_, err = newTestProvider(srv2.URL).Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, errs.ErrProvider)
}

func TestAuthCodeURL(t *testing.T) {
	p := newTestProvider("https://idp.example/token")
	u, err := url.Parse(p.AuthCodeURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "idp.example", u.Host)
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "openid profile", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestNewGoogleProvider_InsecureModeSkipsDiscovery(t *testing.T) {
	p, err := NewGoogleProvider(context.Background(), config.GoogleConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		CallbackURL:  "http://localhost:3000/auth/google/secrets",
		Insecure:     true,
		AuthURL:      "https://idp.example/auth",
		TokenURL:     "https://idp.example/token",
	})
	require.NoError(t, err)
	assert.Contains(t, p.AuthCodeURL("s"), "https://idp.example/auth")
	assert.IsType(t, &InsecureVerifier{}, p.verifier)
}

func TestInsecureVerifier(t *testing.T) {
	v := NewInsecureVerifier()
	tok, err := v.Verify(context.Background(), fakeIDToken(t, map[string]interface{}{"sub": "s-1"}))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	assert.Equal(t, "s-1", claims["sub"])

	_, err = v.Verify(context.Background(), "garbage")
	assert.Error(t, err)
}
