package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/aschalew-star/tenderalert/internal/auth"
	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/internal/services"
	"github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxRecipientKey = "recipient"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxRecipientKey, claims.Recipient())

		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok || claims.Kind != string(services.RecipientUser) || claims.Role != models.RoleAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ClaimsFrom extracts the validated claims set by Auth.
func ClaimsFrom(c *gin.Context) (*iauth.Claims, bool) {
	value, exists := c.Get(CtxClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*iauth.Claims)
	return claims, ok
}

// RecipientFrom extracts the authenticated recipient set by Auth.
func RecipientFrom(c *gin.Context) (services.Recipient, bool) {
	value, exists := c.Get(CtxRecipientKey)
	if !exists {
		return services.Recipient{}, false
	}
	recipient, ok := value.(services.Recipient)
	return recipient, ok
}
