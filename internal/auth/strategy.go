package auth

import (
	"context"
	"fmt"
	"time"

	ginsessions "github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"github.com/secretwall/secretwall/internal/tokens"
)

// Strategy resolves a request into a user or fails. Routes pick the strategy.
type Strategy interface {
	Name() string
	Authenticate(c *gin.Context) (*models.User, error)
}

// LocalStrategy reads the username and password form fields.
type LocalStrategy struct {
	m *Manager
}

func NewLocalStrategy(m *Manager) *LocalStrategy { return &LocalStrategy{m: m} }

func (s *LocalStrategy) Name() string { return "local" }

func (s *LocalStrategy) Authenticate(c *gin.Context) (*models.User, error) {
	return s.m.AuthenticateLocal(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
}

// OAuthProvider is the authorization-code client, implemented by oidc.Provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

const (
	sessionKeyNonce = "oauth_nonce"
	stateTTL        = 10 * time.Minute
)

// GoogleStrategy completes the OAuth callback. Begin must have run in the
// same browser: the signed state carries a nonce that is also kept in the
// cookie session.
type GoogleStrategy struct {
	m           *Manager
	provider    OAuthProvider
	stateSecret []byte
}

func NewGoogleStrategy(m *Manager, p OAuthProvider, stateSecret []byte) *GoogleStrategy {
	return &GoogleStrategy{m: m, provider: p, stateSecret: stateSecret}
}

func (s *GoogleStrategy) Name() string { return "google" }

// Begin records a fresh nonce and returns the provider consent URL.
func (s *GoogleStrategy) Begin(c *gin.Context) (string, error) {
	nonce := uuid.NewString()
	cs := ginsessions.Default(c)
	cs.Set(sessionKeyNonce, nonce)
	if err := cs.Save(); err != nil {
		return "", fmt.Errorf("save oauth nonce: %w", err)
	}
	state, err := tokens.GenerateState(s.stateSecret, nonce, stateTTL)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

func (s *GoogleStrategy) Authenticate(c *gin.Context) (*models.User, error) {
	cs := ginsessions.Default(c)
	expected, _ := cs.Get(sessionKeyNonce).(string)
	if expected != "" {
		// single use
		cs.Delete(sessionKeyNonce)
		_ = cs.Save()
	}
	if e := c.Query("error"); e != "" {
		return nil, fmt.Errorf("%w: provider returned %q", errs.ErrProvider, e)
	}
	nonce, err := tokens.ParseState(s.stateSecret, c.Query("state"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrProvider, err)
	}
	if expected == "" || nonce != expected {
		return nil, fmt.Errorf("%w: state does not belong to this browser", errs.ErrProvider)
	}
	code := c.Query("code")
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", errs.ErrProvider)
	}
	profileID, err := s.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		return nil, err
	}
	return s.m.AuthenticateOAuth(c.Request.Context(), profileID)
}
