package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toylink/donations/pkg/logctx"
	"github.com/toylink/donations/pkg/response"
)

// TokenParser resolves a bearer token to the admin id it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// AdminAuthMiddleware rejects requests without a valid "Authorization: Bearer" token.
func AdminAuthMiddleware(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}
		adminID, err := p.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			return
		}

		c.Set(logctx.AdminIDKey, adminID)
		ctx := context.WithValue(c.Request.Context(), logctx.AdminIDKey, adminID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
