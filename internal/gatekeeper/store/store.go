// Package store provides the persistence layer for restriction rules and
// audit records. All database errors surface as coded Errnos so callers can
// apply their fail-open/fail-closed policy uniformly.
package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/engine"
	"github.com/kart-io/gatekeeper/internal/model"
)

// RestrictionStore defines rule storage operations.
//
// The engine-facing read path returns validated, normalized engine rules;
// the admin-facing CRUD path works on raw records.
type RestrictionStore interface {
	// ListActivePageRules returns all active page rules sorted by priority
	// descending, ties in stable storage order.
	ListActivePageRules(ctx context.Context) ([]*engine.PageRule, error)

	// GetContentRule returns the active content rule for the composite key,
	// or nil when none is configured.
	GetContentRule(ctx context.Context, contentType, contentKey string) (*engine.ContentRule, error)

	CreatePage(ctx context.Context, r *model.PageRestriction) error
	UpdatePage(ctx context.Context, r *model.PageRestriction) error
	DeletePage(ctx context.Context, id uint64) error
	GetPage(ctx context.Context, id uint64) (*model.PageRestriction, error)
	ListPages(ctx context.Context, offset, limit int) (int64, []*model.PageRestriction, error)

	CreateContent(ctx context.Context, r *model.ContentRestriction) error
	UpdateContent(ctx context.Context, r *model.ContentRestriction) error
	DeleteContent(ctx context.Context, id uint64) error
	GetContent(ctx context.Context, id uint64) (*model.ContentRestriction, error)
	ListContent(ctx context.Context, offset, limit int) (int64, []*model.ContentRestriction, error)
}

// AuditStore defines audit record storage operations.
type AuditStore interface {
	Create(ctx context.Context, record *model.AccessAudit) error
	List(ctx context.Context, offset, limit int) (int64, []*model.AccessAudit, error)
}

// Factory creates the stores backed by one database handle.
type Factory interface {
	Restrictions() RestrictionStore
	Audits() AuditStore
	AutoMigrate() error
	Close() error
}

// datastore implements Factory on top of gorm.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates a store factory from a gorm database handle.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Restrictions returns the restriction store.
func (ds *datastore) Restrictions() RestrictionStore {
	return &restrictionStore{db: ds.db}
}

// Audits returns the audit store.
func (ds *datastore) Audits() AuditStore {
	return &auditStore{db: ds.db}
}

// AutoMigrate migrates all gatekeeper tables.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(
		&model.PageRestriction{},
		&model.ContentRestriction{},
		&model.AccessAudit{},
	)
}

// Close closes the underlying database connection.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
