// Package ctxutil moves request-scoped values from the gin context into the
// context.Context handed to the application layer.
package ctxutil

import (
	"context"

	"github.com/SChris-dev/EcoShop-API/api/response"
	"github.com/SChris-dev/EcoShop-API/domain/shared"
	"github.com/SChris-dev/EcoShop-API/infrastructure/persistence"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

func WithRequestID(c *gin.Context) context.Context {
	return persistence.ContextWithRequestID(c.Request.Context(), response.GetRequestID(c))
}

func RequestIDFromContext(ctx context.Context) string {
	return persistence.RequestIDFromContext(ctx)
}

// SetPrincipal stores the authenticated caller on the gin context.
func SetPrincipal(c *gin.Context, p shared.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller set by the auth middleware.
func PrincipalFrom(c *gin.Context) (shared.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return shared.Principal{}, false
	}
	p, ok := v.(shared.Principal)
	return p, ok
}
