package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ibolinva/hapivet-schedule-agent/services"
)

const requestContextKey = "request_context"

// AuthMiddleware resolves the caller's tenant/location identity from the
// Authorization header and installs it into the gin context.
type AuthMiddleware struct {
	Auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth}
}

// RequireContext validates the bearer token and aborts with 401 when the
// identity cannot be resolved.
func (m *AuthMiddleware) RequireContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		token, err := m.Auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		rc, err := m.Auth.ResolveContext(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(requestContextKey, rc)
		c.Set("user_id", rc.UserID)
		c.Set("tenant_id", rc.TenantID)
		c.Set("location_id", rc.LocationID)

		c.Next()
	}
}

// requestContext fetches the resolved identity installed by RequireContext.
func requestContext(c *gin.Context) (*services.RequestContext, bool) {
	value, exists := c.Get(requestContextKey)
	if !exists {
		return nil, false
	}
	rc, ok := value.(*services.RequestContext)
	return rc, ok
}
