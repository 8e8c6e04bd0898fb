package middleware

import (
	"github.com/SChris-dev/EcoShop-API/api/ctxutil"
	"github.com/SChris-dev/EcoShop-API/api/response"
	"github.com/SChris-dev/EcoShop-API/pkg/auth"
	"github.com/SChris-dev/EcoShop-API/pkg/errors"

	"github.com/gin-gonic/gin"
)

// TokenParser verifies an access token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid access token and stores
// the caller's principal for the handlers.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parser.Parse(auth.ExtractAccessToken(c.Request))
		if err != nil {
			response.HandleAppError(c, errors.Wrap(err, errors.CodeUnauthorized, "Unauthenticated."))
			return
		}

		ctxutil.SetPrincipal(c, claims.Principal())
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := ctxutil.PrincipalFrom(c)
		if !ok {
			response.HandleError(c, errors.CodeUnauthorized, "Unauthenticated.")
			return
		}
		if !p.IsAdmin {
			response.HandleError(c, errors.CodeForbidden, "Access denied. Admin privileges required.")
			return
		}
		c.Next()
	}
}
