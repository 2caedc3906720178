package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/biz"
	"github.com/kart-io/gatekeeper/internal/model"
	"github.com/kart-io/gatekeeper/pkg/utils/errors"
	"github.com/kart-io/gatekeeper/pkg/utils/response"
)

// RestrictionHandler handles restriction management HTTP requests.
type RestrictionHandler struct {
	svc *biz.RestrictionService
}

// NewRestrictionHandler creates a new RestrictionHandler.
func NewRestrictionHandler(svc *biz.RestrictionService) *RestrictionHandler {
	return &RestrictionHandler{svc: svc}
}

func pathID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.ErrBadRequest.WithMessage("invalid id")
	}
	return id, nil
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func (q *pageQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

// CreatePageRequest is the request body for creating a page restriction.
type CreatePageRequest struct {
	RoutePath         string   `json:"route_path" binding:"required,max=255"`
	AllowedRoles      []string `json:"allowed_roles"`
	BlockedRoles      []string `json:"blocked_roles"`
	AllowedUsernames  []string `json:"allowed_usernames"`
	BlockedUsernames  []string `json:"blocked_usernames"`
	AllowNonLoggedIn  bool     `json:"allow_non_logged_in"`
	Priority          int      `json:"priority" binding:"gte=-1000,lte=1000"`
	RedirectURL       string   `json:"redirect_url" binding:"max=255"`
	CustomHTML        string   `json:"custom_html"`
	HideFromNav       bool     `json:"hide_from_nav"`
	ShowInNavOverride bool     `json:"show_in_nav_override"`
	IsActive          *bool    `json:"is_active"`
}

// CreatePage handles page restriction creation. New restrictions default
// to active unless the request says otherwise.
func (h *RestrictionHandler) CreatePage(c *gin.Context) {
	var req CreatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	r := &model.PageRestriction{
		RoutePath:         req.RoutePath,
		AllowedRoles:      req.AllowedRoles,
		BlockedRoles:      req.BlockedRoles,
		AllowedUsernames:  req.AllowedUsernames,
		BlockedUsernames:  req.BlockedUsernames,
		AllowNonLoggedIn:  req.AllowNonLoggedIn,
		Priority:          req.Priority,
		RedirectURL:       req.RedirectURL,
		CustomHTML:        req.CustomHTML,
		HideFromNav:       req.HideFromNav,
		ShowInNavOverride: req.ShowInNavOverride,
		IsActive:          active,
	}

	if err := h.svc.CreatePage(c.Request.Context(), r); err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, r)
}

// UpdatePageRequest is the request body for updating a page restriction.
// Absent fields keep their current values.
type UpdatePageRequest struct {
	RoutePath         *string   `json:"route_path" binding:"omitempty,max=255"`
	AllowedRoles      *[]string `json:"allowed_roles"`
	BlockedRoles      *[]string `json:"blocked_roles"`
	AllowedUsernames  *[]string `json:"allowed_usernames"`
	BlockedUsernames  *[]string `json:"blocked_usernames"`
	AllowNonLoggedIn  *bool     `json:"allow_non_logged_in"`
	Priority          *int      `json:"priority" binding:"omitempty,gte=-1000,lte=1000"`
	RedirectURL       *string   `json:"redirect_url" binding:"omitempty,max=255"`
	CustomHTML        *string   `json:"custom_html"`
	HideFromNav       *bool     `json:"hide_from_nav"`
	ShowInNavOverride *bool     `json:"show_in_nav_override"`
	IsActive          *bool     `json:"is_active"`
}

// UpdatePage handles partial updates of a page restriction.
func (h *RestrictionHandler) UpdatePage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	r, err := h.svc.GetPage(c.Request.Context(), id)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	var req UpdatePageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	if req.RoutePath != nil {
		r.RoutePath = *req.RoutePath
	}
	if req.AllowedRoles != nil {
		r.AllowedRoles = *req.AllowedRoles
	}
	if req.BlockedRoles != nil {
		r.BlockedRoles = *req.BlockedRoles
	}
	if req.AllowedUsernames != nil {
		r.AllowedUsernames = *req.AllowedUsernames
	}
	if req.BlockedUsernames != nil {
		r.BlockedUsernames = *req.BlockedUsernames
	}
	if req.AllowNonLoggedIn != nil {
		r.AllowNonLoggedIn = *req.AllowNonLoggedIn
	}
	if req.Priority != nil {
		r.Priority = *req.Priority
	}
	if req.RedirectURL != nil {
		r.RedirectURL = *req.RedirectURL
	}
	if req.CustomHTML != nil {
		r.CustomHTML = *req.CustomHTML
	}
	if req.HideFromNav != nil {
		r.HideFromNav = *req.HideFromNav
	}
	if req.ShowInNavOverride != nil {
		r.ShowInNavOverride = *req.ShowInNavOverride
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}

	if err := h.svc.UpdatePage(c.Request.Context(), r); err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, r)
}

// DeletePage handles page restriction deletion.
func (h *RestrictionHandler) DeletePage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	if err := h.svc.DeletePage(c.Request.Context(), id); err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, "restriction deleted")
}

// GetPage handles retrieving a page restriction.
func (h *RestrictionHandler) GetPage(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	r, err := h.svc.GetPage(c.Request.Context(), id)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, r)
}

// ListPages handles listing page restrictions.
func (h *RestrictionHandler) ListPages(c *gin.Context) {
	var q pageQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	count, items, err := h.svc.ListPages(c.Request.Context(), (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, response.Page(items, count, q.Page, q.PageSize))
}

// CreateContentRequest is the request body for creating a content restriction.
type CreateContentRequest struct {
	ContentType      string   `json:"content_type" binding:"required,max=64"`
	ContentKey       string   `json:"content_key" binding:"required,max=128"`
	AllowedRoles     []string `json:"allowed_roles"`
	BlockedRoles     []string `json:"blocked_roles"`
	AllowedUsernames []string `json:"allowed_usernames"`
	BlockedUsernames []string `json:"blocked_usernames"`
	HideFromFrontend bool     `json:"hide_from_frontend"`
	IsActive         *bool    `json:"is_active"`
}

// CreateContent handles content restriction creation.
func (h *RestrictionHandler) CreateContent(c *gin.Context) {
	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	r := &model.ContentRestriction{
		ContentType:      req.ContentType,
		ContentKey:       req.ContentKey,
		AllowedRoles:     req.AllowedRoles,
		BlockedRoles:     req.BlockedRoles,
		AllowedUsernames: req.AllowedUsernames,
		BlockedUsernames: req.BlockedUsernames,
		HideFromFrontend: req.HideFromFrontend,
		IsActive:         active,
	}

	if err := h.svc.CreateContent(c.Request.Context(), r); err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, r)
}

// UpdateContentRequest is the request body for updating a content restriction.
type UpdateContentRequest struct {
	AllowedRoles     *[]string `json:"allowed_roles"`
	BlockedRoles     *[]string `json:"blocked_roles"`
	AllowedUsernames *[]string `json:"allowed_usernames"`
	BlockedUsernames *[]string `json:"blocked_usernames"`
	HideFromFrontend *bool     `json:"hide_from_frontend"`
	IsActive         *bool     `json:"is_active"`
}

// UpdateContent handles partial updates of a content restriction. The
// content type and key identify the item and cannot be changed; delete
// and recreate to move a restriction.
func (h *RestrictionHandler) UpdateContent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	r, err := h.svc.GetContent(c.Request.Context(), id)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Write(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	if req.AllowedRoles != nil {
		r.AllowedRoles = *req.AllowedRoles
	}
	if req.BlockedRoles != nil {
		r.BlockedRoles = *req.BlockedRoles
	}
	if req.AllowedUsernames != nil {
		r.AllowedUsernames = *req.AllowedUsernames
	}
	if req.BlockedUsernames != nil {
		r.BlockedUsernames = *req.BlockedUsernames
	}
	if req.HideFromFrontend != nil {
		r.HideFromFrontend = *req.HideFromFrontend
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}

	if err := h.svc.UpdateContent(c.Request.Context(), r); err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, r)
}

// DeleteContent handles content restriction deletion.
func (h *RestrictionHandler) DeleteContent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	if err := h.svc.DeleteContent(c.Request.Context(), id); err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, "restriction deleted")
}

// GetContent handles retrieving a content restriction.
func (h *RestrictionHandler) GetContent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	r, err := h.svc.GetContent(c.Request.Context(), id)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, r)
}

// ListContent handles listing content restrictions.
func (h *RestrictionHandler) ListContent(c *gin.Context) {
	var q pageQuery
	_ = c.ShouldBindQuery(&q)
	q.normalize()

	count, items, err := h.svc.ListContent(c.Request.Context(), (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		response.Write(c, err, nil)
		return
	}

	response.Write(c, nil, response.Page(items, count, q.Page, q.PageSize))
}
