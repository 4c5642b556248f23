package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"storefront/internal/infra/security"
)

const principalContextKey = "storefront.principal"

type TokenParser interface {
	Parse(raw string) (security.Principal, error)
}

type AuthMiddleware struct {
	Tokens TokenParser
	Logger *slog.Logger
}

// Handle resolves the bearer token into a principal. Requests without a
// valid token continue anonymously.
func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Tokens == nil {
		c.Next()
		return
	}
	p, err := m.Tokens.Parse(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	setPrincipal(c, p)
	c.Next()
}

func setPrincipal(c *gin.Context, p security.Principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (security.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return security.Principal{}, false
	}
	p, ok := val.(security.Principal)
	return p, ok
}

func requireSession(c *gin.Context) (security.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
		return security.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
