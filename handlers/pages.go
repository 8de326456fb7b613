package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/secrets"
	"github.com/secretwall/secretwall/pkg/logger"
	"github.com/secretwall/secretwall/pkg/middleware"
)

// PageHandler serves the HTML pages and the form posts behind them.
// Failures are logged and turned into redirects; no error detail reaches the browser.
type PageHandler struct {
	auth    *auth.Manager
	local   *auth.LocalStrategy
	google  *auth.GoogleStrategy
	secrets *secrets.Service
}

// NewPageHandler wires the pages. google may be nil when Google sign-in is
// not configured.
func NewPageHandler(a *auth.Manager, s *secrets.Service, google *auth.GoogleStrategy) *PageHandler {
	return &PageHandler{auth: a, local: auth.NewLocalStrategy(a), google: google, secrets: s}
}

// Register mounts the page routes. limit guards the credential posts and may be nil.
func (h *PageHandler) Register(r *gin.Engine, limit gin.HandlerFunc) {
	credential := func(fail string) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{}
		if limit != nil {
			chain = append(chain, limit)
		}
		return append(chain, middleware.VerifyCSRF(fail))
	}

	r.GET("/", h.Home)
	r.GET("/register", h.RegisterForm)
	r.POST("/register", append(credential("/register"), h.RegisterSubmit)...)
	r.GET("/login", h.LoginForm)
	r.POST("/login", append(credential("/login"), h.LoginSubmit)...)
	r.GET("/auth/google", h.GoogleBegin)
	r.GET("/auth/google/secrets", h.GoogleCallback)
	r.GET("/secrets", h.Secrets)

	// the guard runs first so anonymous posts always land on /login
	member := r.Group("/", middleware.RequireUser("/login"))
	member.GET("/submit", h.SubmitForm)
	member.POST("/submit", middleware.VerifyCSRF("/submit"), h.SubmitSecret)

	r.POST("/logout", middleware.VerifyCSRF("/"), h.Logout)
}

func (h *PageHandler) render(c *gin.Context, name string, data gin.H) {
	tok, err := middleware.CSRFToken(c)
	if err != nil {
		logger.Errorf("csrf token for %s: %v", c.Request.URL.Path, err)
		c.String(http.StatusInternalServerError, "Something went wrong.")
		return
	}
	if data == nil {
		data = gin.H{}
	}
	data["CSRF"] = tok
	data["GoogleEnabled"] = h.google != nil
	if u, ok := middleware.UserFrom(c); ok {
		data["User"] = u
	}
	c.HTML(http.StatusOK, name, data)
}

func (h *PageHandler) Home(c *gin.Context)         { h.render(c, "home.html", nil) }
func (h *PageHandler) RegisterForm(c *gin.Context) { h.render(c, "register.html", nil) }
func (h *PageHandler) LoginForm(c *gin.Context)    { h.render(c, "login.html", nil) }
func (h *PageHandler) SubmitForm(c *gin.Context)   { h.render(c, "submit.html", nil) }

// RegisterSubmit creates a local user and signs it in.
func (h *PageHandler) RegisterSubmit(c *gin.Context) {
	u, err := h.auth.RegisterLocal(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		logger.Warnf("register: %v", err)
		c.Redirect(http.StatusFound, "/register")
		return
	}
	if err := h.auth.Establish(c, u); err != nil {
		logger.Errorf("register: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, "/secrets")
}

func (h *PageHandler) LoginSubmit(c *gin.Context) {
	if _, err := h.auth.Login(c, h.local); err != nil {
		logger.Warnf("login: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, "/secrets")
}

// GoogleBegin sends the browser to the provider consent page.
func (h *PageHandler) GoogleBegin(c *gin.Context) {
	if h.google == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	target, err := h.google.Begin(c)
	if err != nil {
		logger.Errorf("google sign-in: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, target)
}

func (h *PageHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if _, err := h.auth.Login(c, h.google); err != nil {
		logger.Warnf("google callback: %v", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, "/secrets")
}

// Secrets is public.
func (h *PageHandler) Secrets(c *gin.Context) {
	list, err := h.secrets.ListDisclosed(c.Request.Context())
	if err != nil {
		logger.Errorf("secrets page: %v", err)
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, "secrets.html", gin.H{"Secrets": list})
}

func (h *PageHandler) SubmitSecret(c *gin.Context) {
	u, _ := middleware.UserFrom(c)
	err := h.secrets.SetSecret(c.Request.Context(), u.ID.Hex(), c.PostForm("secret"))
	switch {
	case err == nil:
		c.Redirect(http.StatusFound, "/secrets")
	case errors.Is(err, errs.ErrNotFound):
		// the account vanished under a live session
		logger.Warnf("submit: %v", err)
		if err := h.auth.Logout(c); err != nil {
			logger.Warnf("submit: %v", err)
		}
		c.Redirect(http.StatusFound, "/login")
	default:
		logger.Errorf("submit: %v", err)
		c.Redirect(http.StatusFound, "/")
	}
}

func (h *PageHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c); err != nil {
		logger.Warnf("logout: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}
