package handlers

import (
	"fmt"
	"net/http"

	ginsessions "github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/secrets"
	"github.com/secretwall/secretwall/pkg/middleware"
	"github.com/secretwall/secretwall/web"
)

// RouterDeps collects what the router serves. Google, AuthLimiter, Health and
// Metrics are optional.
type RouterDeps struct {
	Auth         *auth.Manager
	Secrets      *secrets.Service
	Google       *auth.GoogleStrategy
	SessionStore ginsessions.Store
	CookieName   string
	AuthLimiter  gin.HandlerFunc
	Health       *HealthHandler
	Metrics      http.Handler
}

// NewRouter builds the engine: request logging, recovery, the cookie session,
// user restore, then the routes.
func NewRouter(d RouterDeps) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	RegisterSwagger(r)

	r.Use(ginsessions.Sessions(d.CookieName, d.SessionStore), middleware.LoadUser(d.Auth))
	NewPageHandler(d.Auth, d.Secrets, d.Google).Register(r, d.AuthLimiter)
	return r, nil
}
