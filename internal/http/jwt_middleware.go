package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blog-api/internal/domain"
)

const principalKey = "auth_principal"

// Authenticator resuelve el header Authorization en un Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (domain.Principal, error)
}

// AuthMiddleware valida el bearer token y guarda el Principal en el contexto.
func AuthMiddleware(logger *zap.Logger, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			writeError(c, logger, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// GetPrincipal obtiene el Principal autenticado desde el contexto.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := val.(domain.Principal)
	return principal, ok
}
