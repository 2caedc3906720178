package model

import (
	"time"

	"gorm.io/gorm"
)

// AccessAudit records one denied access attempt. Audit writes are
// fire-and-forget; a failed write never affects the computed verdict.
type AccessAudit struct {
	ID        string `json:"id" gorm:"primaryKey;size:26"`
	UserID    uint64 `json:"user_id" gorm:"index:idx_audit_user"`
	Username  string `json:"username" gorm:"size:64"`
	Role      string `json:"role" gorm:"size:64"`
	Route     string `json:"route" gorm:"size:255;index:idx_audit_route"`
	Reason    string `json:"reason" gorm:"size:32"`
	RuleID    uint64 `json:"rule_id" gorm:"index:idx_audit_rule"`
	ClientIP  string `json:"client_ip" gorm:"size:45"`
	UserAgent string `json:"user_agent" gorm:"size:255"`
	CreatedAt int64  `json:"created_at" gorm:"autoCreateTime:milli;index:idx_audit_created"`
}

// TableName returns the table name for GORM.
func (a *AccessAudit) TableName() string {
	return "access_audits"
}

// BeforeCreate sets the CreatedAt field.
func (a *AccessAudit) BeforeCreate(_ *gorm.DB) (err error) {
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixMilli()
	}
	return
}
