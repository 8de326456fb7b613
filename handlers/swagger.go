package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints describing the site routes.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>secretwall - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Form posts carry the _csrf field bound to the browser session; every
// outcome is an HTML page or a 302 redirect.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "secretwall", "version": "v1.0.0" },
  "components": {
    "schemas": {
      "Credentials": {"type":"object","required":["username","password","_csrf"],"properties":{"username":{"type":"string"},"password":{"type":"string"},"_csrf":{"type":"string"}}}
    }
  },
  "paths": {
    "/": { "get": { "summary": "Home page", "responses": { "200": { "description": "html" } } } },
    "/register": {
      "get": { "summary": "Registration form", "responses": { "200": { "description": "html" } } },
      "post": {
        "summary": "Create a local user and sign in",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"$ref":"#/components/schemas/Credentials"}}}},
        "responses": { "302": { "description": "/secrets on success, /register on failure" }, "429": { "description": "rate limited" } }
      }
    },
    "/login": {
      "get": { "summary": "Login form", "responses": { "200": { "description": "html" } } },
      "post": {
        "summary": "Sign in with username and password",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"$ref":"#/components/schemas/Credentials"}}}},
        "responses": { "302": { "description": "/secrets on success, /login on failure" }, "429": { "description": "rate limited" } }
      }
    },
    "/auth/google": { "get": { "summary": "Start the Google sign-in handshake", "responses": { "302": { "description": "provider consent page, or /login when disabled" } } } },
    "/auth/google/secrets": {
      "get": {
        "summary": "Google sign-in callback",
        "parameters": [
          {"name":"code","in":"query","schema":{"type":"string"}},
          {"name":"state","in":"query","schema":{"type":"string"}},
          {"name":"error","in":"query","schema":{"type":"string"}}
        ],
        "responses": { "302": { "description": "/secrets on success, /login on failure" } }
      }
    },
    "/secrets": { "get": { "summary": "Every disclosed secret", "responses": { "200": { "description": "html" } } } },
    "/submit": {
      "get": { "summary": "Secret form (signed-in only)", "responses": { "200": { "description": "html" }, "302": { "description": "/login when anonymous" } } },
      "post": {
        "summary": "Set the current user's secret",
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"secret":{"type":"string"},"_csrf":{"type":"string"}}}}}},
        "responses": { "302": { "description": "/secrets on success, /login when anonymous" } }
      }
    },
    "/logout": { "post": { "summary": "End the session", "responses": { "302": { "description": "/" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition" } } } }
  }
}`
