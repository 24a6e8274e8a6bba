package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nemt/internal/domain"
	"nemt/internal/service"
)

// Identity headers set by the auth gateway. The gateway has already
// verified the session; this service only consumes the claims.
const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
)

// Context keys for the resolved identity.
const (
	ContextUserID   = "identityUserID"
	ContextUserRole = "identityUserRole"
)

// IdentityMiddleware extracts the gateway-verified identity and rejects
// requests without one.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(userIDHeader)
		role := domain.Role(c.GetHeader(userRoleHeader))

		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		switch role {
		case domain.RoleClient, domain.RoleDispatcher, domain.RoleDriver:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown role"})
			return
		}

		c.Set(ContextUserID, id)
		c.Set(ContextUserRole, role)
		c.Next()
	}
}

// ActorFrom returns the acting identity for the request.
func ActorFrom(c *gin.Context) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Get(ContextUserID); ok {
		actor.ID, _ = id.(string)
	}
	if role, ok := c.Get(ContextUserRole); ok {
		actor.Role, _ = role.(domain.Role)
	}
	return actor
}
