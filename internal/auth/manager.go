// Package auth resolves requests into users and binds them to browser sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	ginsessions "github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"github.com/secretwall/secretwall/internal/sessions"
	"github.com/secretwall/secretwall/internal/users"
	"github.com/secretwall/secretwall/pkg/logger"
	"github.com/secretwall/secretwall/pkg/metrics"
)

// cookie session key holding the opaque server-side session token
const sessionKeyToken = "sid"

// Manager owns the authenticate-then-establish contract: a session is only
// created for a user the store has confirmed.
type Manager struct {
	users    *users.Service
	sessions *sessions.Service
	ttl      time.Duration
}

func NewManager(u *users.Service, s *sessions.Service, ttl time.Duration) *Manager {
	return &Manager{users: u, sessions: s, ttl: ttl}
}

// RegisterLocal creates a local user. errs.ErrDuplicateUser when taken.
func (m *Manager) RegisterLocal(ctx context.Context, username, password string) (*models.User, error) {
	u, err := m.users.Register(ctx, username, password)
	record("register", err)
	return u, err
}

// AuthenticateLocal checks a username/password pair.
func (m *Manager) AuthenticateLocal(ctx context.Context, username, password string) (*models.User, error) {
	u, err := m.users.Authenticate(ctx, username, password)
	record("local", err)
	return u, err
}

// AuthenticateOAuth finds or creates the user for a provider profile id.
func (m *Manager) AuthenticateOAuth(ctx context.Context, profileID string) (*models.User, error) {
	u, err := m.users.FindOrCreateByGoogleID(ctx, profileID)
	record("google", err)
	return u, err
}

// Login runs a strategy and establishes a session for the user it resolves.
func (m *Manager) Login(c *gin.Context, s Strategy) (*models.User, error) {
	u, err := s.Authenticate(c)
	if err != nil {
		return nil, fmt.Errorf("%s login: %w", s.Name(), err)
	}
	if err := m.Establish(c, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Establish binds u to the browser. Any earlier session of the browser is
// dropped and the cookie session is cleared, so the token and CSRF secret rotate.
func (m *Manager) Establish(c *gin.Context, u *models.User) error {
	if u == nil || u.ID.IsZero() {
		return errors.New("establish session: user has no id")
	}
	ctx := c.Request.Context()
	cs := ginsessions.Default(c)
	if old, ok := cs.Get(sessionKeyToken).(string); ok && old != "" {
		if err := m.sessions.DeleteSession(ctx, old); err != nil {
			logger.Warnf("drop previous session: %v", err)
		}
	}
	token, err := m.sessions.CreateSession(ctx, u.ID.Hex(), m.ttl)
	if err != nil {
		return fmt.Errorf("establish session: %w", err)
	}
	cs.Clear()
	cs.Set(sessionKeyToken, token)
	if err := cs.Save(); err != nil {
		return fmt.Errorf("save cookie session: %w", err)
	}
	logger.Debugf("session established for user %s", u.ID.Hex())
	return nil
}

// CurrentUser restores the user behind the request's session. Anonymous
// requests (no cookie, unknown or expired token, vanished user) yield nil, nil.
func (m *Manager) CurrentUser(c *gin.Context) (*models.User, error) {
	token, _ := ginsessions.Default(c).Get(sessionKeyToken).(string)
	if token == "" {
		return nil, nil
	}
	ctx := c.Request.Context()
	sess, err := m.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	u, err := m.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		_ = m.sessions.DeleteSession(ctx, token)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return u, nil
}

// Logout deletes the server-side session and expires the cookie.
func (m *Manager) Logout(c *gin.Context) error {
	cs := ginsessions.Default(c)
	token, _ := cs.Get(sessionKeyToken).(string)
	var delErr error
	if token != "" {
		delErr = m.sessions.DeleteSession(c.Request.Context(), token)
	}
	cs.Clear()
	cs.Options(ginsessions.Options{Path: "/", MaxAge: -1})
	if err := cs.Save(); err != nil {
		return fmt.Errorf("clear cookie session: %w", err)
	}
	if delErr != nil {
		return fmt.Errorf("delete session: %w", delErr)
	}
	return nil
}

func record(strategy string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrInvalidCredentials):
		result = "invalid_credentials"
	case errors.Is(err, errs.ErrDuplicateUser):
		result = "duplicate"
	case errors.Is(err, errs.ErrInvalidInput):
		result = "invalid_input"
	case errors.Is(err, errs.ErrProvider):
		result = "provider_error"
	default:
		result = "error"
	}
	metrics.AuthAttempts.WithLabelValues(strategy, result).Inc()
}
