package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/gatekeeper/internal/model"
	"github.com/kart-io/gatekeeper/pkg/utils/errors"
)

// auditStore is the gorm-backed AuditStore.
type auditStore struct {
	db *gorm.DB
}

// Create persists one audit record.
func (s *auditStore) Create(ctx context.Context, record *model.AccessAudit) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// List lists audit records with pagination, newest first.
func (s *auditStore) List(ctx context.Context, offset, limit int) (int64, []*model.AccessAudit, error) {
	var count int64
	var rows []*model.AccessAudit

	db := s.db.WithContext(ctx).Model(&model.AccessAudit{})
	if err := db.Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, rows, nil
}
