package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/pkg/utils/response"
)

// AuditHandler exposes the denied-access audit trail.
type AuditHandler struct {
	audits store.AuditStore
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audits store.AuditStore) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// List returns recorded access denials, newest first.
func (h *AuditHandler) List(c *gin.Context) {
	var q pageQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	count, items, err := h.audits.List(c.Request.Context(), (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, response.Page(items, count, q.Page, q.PageSize))
}
