package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/gizmo-edu/survey-service/internal/utils"
)

// CasdoorConfig holds the identity provider settings.
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Certificate  string
	Organization string
	Application  string
}

// InitCasdoor configures the shared casdoor client. Call once at startup.
func InitCasdoor(cfg CasdoorConfig) {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// Auth validates the Bearer token and stores the caller's identity in the
// gin context under user_id and user_role.
func Auth(logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing or malformed Authorization header",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Token validation failed", "error", err, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.User.Id)
		c.Set("user_name", claims.User.Name)
		if claims.User.Tag != "" {
			c.Set("user_role", claims.User.Tag)
		}

		c.Next()
	}
}

// RequireRole rejects requests whose token role is not in the allowed set.
// Services still enforce their own ownership checks.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Access denied",
			})
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"message": "Access denied",
		})
	}
}
