package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/internal/model"
)

// RestrictionService handles administrative rule management. Every page
// rule mutation flushes the access service's route cache so edits take
// effect immediately on this instance instead of waiting out the TTL.
type RestrictionService struct {
	rules  store.RestrictionStore
	access *AccessService
}

// NewRestrictionService creates a RestrictionService.
func NewRestrictionService(rules store.RestrictionStore, access *AccessService) *RestrictionService {
	return &RestrictionService{
		rules:  rules,
		access: access,
	}
}

// CreatePage creates a page restriction.
func (s *RestrictionService) CreatePage(ctx context.Context, r *model.PageRestriction) error {
	if err := s.rules.CreatePage(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx, "page restriction created", r.ID)
	return nil
}

// UpdatePage updates a page restriction.
func (s *RestrictionService) UpdatePage(ctx context.Context, r *model.PageRestriction) error {
	if err := s.rules.UpdatePage(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx, "page restriction updated", r.ID)
	return nil
}

// DeletePage deletes a page restriction.
func (s *RestrictionService) DeletePage(ctx context.Context, id uint64) error {
	if err := s.rules.DeletePage(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, "page restriction deleted", id)
	return nil
}

// GetPage retrieves a page restriction by ID.
func (s *RestrictionService) GetPage(ctx context.Context, id uint64) (*model.PageRestriction, error) {
	return s.rules.GetPage(ctx, id)
}

// ListPages lists page restrictions with pagination.
func (s *RestrictionService) ListPages(ctx context.Context, offset, limit int) (int64, []*model.PageRestriction, error) {
	return s.rules.ListPages(ctx, offset, limit)
}

// CreateContent creates a content restriction.
func (s *RestrictionService) CreateContent(ctx context.Context, r *model.ContentRestriction) error {
	return s.rules.CreateContent(ctx, r)
}

// UpdateContent updates a content restriction.
func (s *RestrictionService) UpdateContent(ctx context.Context, r *model.ContentRestriction) error {
	return s.rules.UpdateContent(ctx, r)
}

// DeleteContent deletes a content restriction.
func (s *RestrictionService) DeleteContent(ctx context.Context, id uint64) error {
	return s.rules.DeleteContent(ctx, id)
}

// GetContent retrieves a content restriction by ID.
func (s *RestrictionService) GetContent(ctx context.Context, id uint64) (*model.ContentRestriction, error) {
	return s.rules.GetContent(ctx, id)
}

// ListContent lists content restrictions with pagination.
func (s *RestrictionService) ListContent(ctx context.Context, offset, limit int) (int64, []*model.ContentRestriction, error) {
	return s.rules.ListContent(ctx, offset, limit)
}

// invalidate flushes the route cache after a page rule mutation.
// Content rules are read straight from the store per check, so content
// mutations need no flush.
func (s *RestrictionService) invalidate(ctx context.Context, action string, id uint64) {
	s.access.InvalidateRules(ctx)
	logger.Infow("route cache flushed", "action", action, "rule_id", id)
}
