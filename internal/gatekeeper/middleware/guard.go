package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/biz"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/engine"
	"github.com/kart-io/gatekeeper/pkg/utils/errors"
	"github.com/kart-io/gatekeeper/pkg/utils/response"
)

// Guard enforces page restrictions on the routes this process serves.
// Denied requests are redirected when the governing rule configures a
// redirect target, answered with the rule's custom HTML when one is set,
// and rejected with a 403 envelope otherwise.
func Guard(access *biz.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := FromContext(c)
		res := access.CheckRoute(c.Request.Context(), c.Request.URL.Path, id, biz.RequestMeta{
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		if res.Allowed {
			c.Next()
			return
		}

		switch {
		case res.RedirectURL != "":
			c.Redirect(http.StatusFound, res.RedirectURL)
		case res.CustomHTML != "":
			c.Data(http.StatusForbidden, "text/html; charset=utf-8", []byte(res.CustomHTML))
		case res.Reason == engine.ReasonNotAuthenticated:
			response.Write(c, errors.ErrUnauthorized.WithMessage("authentication required"), nil)
		default:
			response.Write(c, errors.ErrAccessDenied.WithMessage("access denied: "+string(res.Reason)), nil)
		}
		c.Abort()
	}
}
