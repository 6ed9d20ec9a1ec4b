package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "posline/internal/core/context"
)

const (
	HeaderOperatorID    = "X-Operator-ID"
	HeaderOperatorEmail = "X-Operator-Email"
)

// Operator extracts the operator identity from request headers and adds
// it to the request context. The identity stamps audit entries and the
// created_by/updated_by document fields; it is informational, not an
// authentication mechanism.
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := c.GetHeader(HeaderOperatorID)
		if operatorID == "" {
			c.Next()
			return
		}

		user := &appctx.UserContext{
			UserID: operatorID,
			Email:  c.GetHeader(HeaderOperatorEmail),
		}
		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
