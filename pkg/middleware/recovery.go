package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/gatekeeper/pkg/utils/errors"
	"github.com/kart-io/gatekeeper/pkg/utils/response"
)

// Recovery returns a middleware that recovers from panics and converts
// them to JSON error responses using the error code system.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("panic recovered",
					"error", fmt.Sprintf("%v", r),
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				response.Write(c, errors.ErrInternal.WithMessage("internal server error"), nil)
				c.Abort()
			}
		}()
		c.Next()
	}
}
