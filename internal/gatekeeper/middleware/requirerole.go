package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/gatekeeper/pkg/utils/errors"
	"github.com/kart-io/gatekeeper/pkg/utils/response"
)

// RequireRole rejects requests whose caller does not hold one of the
// given roles. Unauthenticated callers get a 401, others a 403.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		id := FromContext(c)
		if !id.Authenticated {
			response.Write(c, errors.ErrUnauthorized.WithMessage("authentication required"), nil)
			c.Abort()
			return
		}
		if !allowed[id.Role] {
			response.Write(c, errors.ErrAccessDenied.WithMessage("insufficient role"), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
