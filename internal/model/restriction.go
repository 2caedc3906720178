package model

import (
	"time"

	"gorm.io/gorm"
)

// StringList is a []string persisted as a JSON column.
type StringList []string

// PageRestriction is one access rule governing a route pattern.
// The route path may contain "*" wildcard segments.
type PageRestriction struct {
	ID                uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	RoutePath         string         `json:"route_path" gorm:"size:255;not null;index:idx_route_path" validate:"required,max=255"`
	AllowedRoles      StringList     `json:"allowed_roles" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	BlockedRoles      StringList     `json:"blocked_roles" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	AllowedUsernames  StringList     `json:"allowed_usernames" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	BlockedUsernames  StringList     `json:"blocked_usernames" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	AllowNonLoggedIn  bool           `json:"allow_non_logged_in" gorm:"default:false"`
	Priority          int            `json:"priority" gorm:"default:0;index:idx_priority" validate:"gte=-1000,lte=1000"`
	RedirectURL       string         `json:"redirect_url" gorm:"size:255" validate:"max=255"`
	CustomHTML        string         `json:"custom_html" gorm:"type:text"`
	HideFromNav       bool           `json:"hide_from_nav" gorm:"default:false"`
	ShowInNavOverride bool           `json:"show_in_nav_override" gorm:"default:false"`
	IsActive          bool           `json:"is_active" gorm:"index:idx_active"`
	CreatedAt         int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt         int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (r *PageRestriction) TableName() string {
	return "page_restrictions"
}

// BeforeCreate sets the CreatedAt and UpdatedAt fields.
func (r *PageRestriction) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	r.CreatedAt = now
	r.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (r *PageRestriction) BeforeUpdate(_ *gorm.DB) (err error) {
	r.UpdatedAt = time.Now().UnixMilli()
	return
}

// ContentRestriction is one access rule governing a named content unit,
// unique per (content_type, content_key). Content rules are exact-match
// only; no pattern matching and no priority.
type ContentRestriction struct {
	ID               uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	ContentType      string         `json:"content_type" gorm:"size:64;not null;uniqueIndex:uk_content" validate:"required,max=64"`
	ContentKey       string         `json:"content_key" gorm:"size:128;not null;uniqueIndex:uk_content" validate:"required,max=128"`
	AllowedRoles     StringList     `json:"allowed_roles" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	BlockedRoles     StringList     `json:"blocked_roles" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	AllowedUsernames StringList     `json:"allowed_usernames" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	BlockedUsernames StringList     `json:"blocked_usernames" gorm:"serializer:json;type:text" validate:"dive,max=64"`
	HideFromFrontend bool           `json:"hide_from_frontend" gorm:"default:false"`
	IsActive         bool           `json:"is_active" gorm:"index:idx_content_active"`
	CreatedAt        int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt        int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for GORM.
func (r *ContentRestriction) TableName() string {
	return "content_restrictions"
}

// BeforeCreate sets the CreatedAt and UpdatedAt fields.
func (r *ContentRestriction) BeforeCreate(_ *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	r.CreatedAt = now
	r.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (r *ContentRestriction) BeforeUpdate(_ *gorm.DB) (err error) {
	r.UpdatedAt = time.Now().UnixMilli()
	return
}

// PageRestrictionList contains a list of page restrictions and a total count.
type PageRestrictionList struct {
	TotalCount int64              `json:"totalCount"`
	Items      []*PageRestriction `json:"items"`
}

// ContentRestrictionList contains a list of content restrictions and a total count.
type ContentRestrictionList struct {
	TotalCount int64                 `json:"totalCount"`
	Items      []*ContentRestriction `json:"items"`
}
