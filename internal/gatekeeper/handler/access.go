// Package handler exposes the access check and restriction management HTTP APIs.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/biz"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/middleware"
	"github.com/kart-io/gatekeeper/pkg/utils/errors"
	"github.com/kart-io/gatekeeper/pkg/utils/response"
)

// AccessHandler handles access check requests.
type AccessHandler struct {
	svc *biz.AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(svc *biz.AccessService) *AccessHandler {
	return &AccessHandler{svc: svc}
}

func requestMeta(c *gin.Context) biz.RequestMeta {
	return biz.RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// CheckRequest is the request body for a single route check.
type CheckRequest struct {
	Route string `json:"route" binding:"required"`
}

// Check decides whether the caller may access a single route.
func (h *AccessHandler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	res := h.svc.CheckRoute(c.Request.Context(), req.Route, middleware.FromContext(c), requestMeta(c))
	response.Write(c, nil, res)
}

// CheckBatchRequest is the request body for a batch route check.
type CheckBatchRequest struct {
	Routes []string `json:"routes" binding:"required,min=1,max=200"`
}

// CheckBatch decides access for a set of routes in one round trip.
// Every route is evaluated against the same rule snapshot, so the
// results match what per-route checks would have returned.
func (h *AccessHandler) CheckBatch(c *gin.Context) {
	var req CheckBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	results := h.svc.CheckRoutes(c.Request.Context(), req.Routes, middleware.FromContext(c), requestMeta(c))
	response.Write(c, nil, results)
}

// NavigationRequest is the request body for navigation filtering.
type NavigationRequest struct {
	Routes []string `json:"routes" binding:"required,min=1,max=500"`
}

// Navigation returns the subset of candidate routes the caller should see
// in menus, dropping denied routes and nav-hidden routes.
func (h *AccessHandler) Navigation(c *gin.Context) {
	var req NavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	visible := h.svc.FilterRoutes(c.Request.Context(), req.Routes, middleware.FromContext(c))
	response.Write(c, nil, gin.H{"routes": visible})
}

// ContentCheckRequest is the request body for a single content item check.
type ContentCheckRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	ContentKey  string `json:"content_key" binding:"required"`
}

// ContentCheck decides whether the caller may see a single content item.
func (h *AccessHandler) ContentCheck(c *gin.Context) {
	var req ContentCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	res := h.svc.CheckContent(c.Request.Context(), req.ContentType, req.ContentKey, middleware.FromContext(c))
	response.Write(c, nil, res)
}

// ContentFilterRequest is the request body for bulk content filtering.
type ContentFilterRequest struct {
	ContentType string   `json:"content_type" binding:"required"`
	Keys        []string `json:"keys" binding:"required,min=1,max=500"`
}

// ContentFilter returns the subset of content keys the caller may see.
func (h *AccessHandler) ContentFilter(c *gin.Context) {
	var req ContentFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	visible := h.svc.FilterContent(c.Request.Context(), req.ContentType, req.Keys, middleware.FromContext(c))
	response.Write(c, nil, gin.H{"keys": visible})
}
