package store

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/engine"
	"github.com/kart-io/gatekeeper/internal/model"
	"github.com/kart-io/gatekeeper/pkg/utils/errors"
)

// validate checks restriction records at the storage boundary so the
// decision engine never sees malformed data.
var validate = validator.New()

// restrictionStore is the gorm-backed RestrictionStore.
type restrictionStore struct {
	db *gorm.DB
}

// ListActivePageRules returns all active page rules, priority descending,
// ties broken by storage insertion order.
func (s *restrictionStore) ListActivePageRules(ctx context.Context) ([]*engine.PageRule, error) {
	var rows []*model.PageRestriction
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	rules := make([]*engine.PageRule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, toPageRule(row))
	}
	return rules, nil
}

// GetContentRule returns the active content rule for the composite key,
// or nil when none exists.
func (s *restrictionStore) GetContentRule(ctx context.Context, contentType, contentKey string) (*engine.ContentRule, error) {
	var row model.ContentRestriction
	err := s.db.WithContext(ctx).
		Where("content_type = ? AND content_key = ? AND is_active = ?", contentType, contentKey, true).
		First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return toContentRule(&row), nil
}

// CreatePage creates a new page restriction.
func (s *restrictionStore) CreatePage(ctx context.Context, r *model.PageRestriction) error {
	normalizePage(r)
	if err := validate.Struct(r); err != nil {
		return errors.ErrValidation.WithCause(err)
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// UpdatePage updates an existing page restriction.
func (s *restrictionStore) UpdatePage(ctx context.Context, r *model.PageRestriction) error {
	normalizePage(r)
	if err := validate.Struct(r); err != nil {
		return errors.ErrValidation.WithCause(err)
	}
	result := s.db.WithContext(ctx).Save(r)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMessage("page restriction not found")
	}
	return nil
}

// DeletePage soft-deletes a page restriction by ID.
func (s *restrictionStore) DeletePage(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Delete(&model.PageRestriction{}, id)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMessage("page restriction not found")
	}
	return nil
}

// GetPage retrieves a page restriction by ID.
func (s *restrictionStore) GetPage(ctx context.Context, id uint64) (*model.PageRestriction, error) {
	var row model.PageRestriction
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound.WithMessage("page restriction not found")
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// ListPages lists page restrictions with pagination, priority descending.
func (s *restrictionStore) ListPages(ctx context.Context, offset, limit int) (int64, []*model.PageRestriction, error) {
	var count int64
	var rows []*model.PageRestriction

	db := s.db.WithContext(ctx).Model(&model.PageRestriction{})
	if err := db.Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	err := db.Order("priority DESC, id ASC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, rows, nil
}

// CreateContent creates a new content restriction.
func (s *restrictionStore) CreateContent(ctx context.Context, r *model.ContentRestriction) error {
	normalizeContent(r)
	if err := validate.Struct(r); err != nil {
		return errors.ErrValidation.WithCause(err)
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.ErrAlreadyExists.WithMessage("content restriction already exists for this key")
		}
		return errors.ErrDatabase.WithCause(err)
	}
	return nil
}

// UpdateContent updates an existing content restriction.
func (s *restrictionStore) UpdateContent(ctx context.Context, r *model.ContentRestriction) error {
	normalizeContent(r)
	if err := validate.Struct(r); err != nil {
		return errors.ErrValidation.WithCause(err)
	}
	result := s.db.WithContext(ctx).Save(r)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMessage("content restriction not found")
	}
	return nil
}

// DeleteContent soft-deletes a content restriction by ID.
func (s *restrictionStore) DeleteContent(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Delete(&model.ContentRestriction{}, id)
	if result.Error != nil {
		return errors.ErrDatabase.WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound.WithMessage("content restriction not found")
	}
	return nil
}

// GetContent retrieves a content restriction by ID.
func (s *restrictionStore) GetContent(ctx context.Context, id uint64) (*model.ContentRestriction, error) {
	var row model.ContentRestriction
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound.WithMessage("content restriction not found")
		}
		return nil, errors.ErrDatabase.WithCause(err)
	}
	return &row, nil
}

// ListContent lists content restrictions with pagination.
func (s *restrictionStore) ListContent(ctx context.Context, offset, limit int) (int64, []*model.ContentRestriction, error) {
	var count int64
	var rows []*model.ContentRestriction

	db := s.db.WithContext(ctx).Model(&model.ContentRestriction{})
	if err := db.Count(&count).Error; err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	err := db.Order("content_type ASC, content_key ASC").Offset(offset).Limit(limit).Find(&rows).Error
	if err != nil {
		return 0, nil, errors.ErrDatabase.WithCause(err)
	}
	return count, rows, nil
}

// normalizePage canonicalizes role and username lists before write.
func normalizePage(r *model.PageRestriction) {
	r.RoutePath = strings.TrimSpace(r.RoutePath)
	r.AllowedRoles = normalizeRoles(r.AllowedRoles)
	r.BlockedRoles = normalizeRoles(r.BlockedRoles)
	r.AllowedUsernames = normalizeUsernames(r.AllowedUsernames)
	r.BlockedUsernames = normalizeUsernames(r.BlockedUsernames)
}

// normalizeContent canonicalizes role and username lists before write.
func normalizeContent(r *model.ContentRestriction) {
	r.ContentType = strings.TrimSpace(r.ContentType)
	r.ContentKey = strings.TrimSpace(r.ContentKey)
	r.AllowedRoles = normalizeRoles(r.AllowedRoles)
	r.BlockedRoles = normalizeRoles(r.BlockedRoles)
	r.AllowedUsernames = normalizeUsernames(r.AllowedUsernames)
	r.BlockedUsernames = normalizeUsernames(r.BlockedUsernames)
}

// normalizeRoles trims entries and drops empties and duplicates.
func normalizeRoles(in model.StringList) model.StringList {
	return dedupe(in, strings.TrimSpace)
}

// normalizeUsernames trims, lowercases, and drops empties and duplicates.
func normalizeUsernames(in model.StringList) model.StringList {
	return dedupe(in, engine.NormalizeUsername)
}

func dedupe(in model.StringList, canon func(string) string) model.StringList {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make(model.StringList, 0, len(in))
	for _, v := range in {
		c := canon(v)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// toPageRule converts a stored record into the typed rule the engine
// consumes. Lists are re-normalized on read so rows written before the
// current normalization rules still evaluate correctly.
func toPageRule(row *model.PageRestriction) *engine.PageRule {
	return &engine.PageRule{
		ID:                row.ID,
		RoutePath:         strings.TrimSpace(row.RoutePath),
		AllowedRoles:      normalizeRoles(row.AllowedRoles),
		BlockedRoles:      normalizeRoles(row.BlockedRoles),
		AllowedUsernames:  normalizeUsernames(row.AllowedUsernames),
		BlockedUsernames:  normalizeUsernames(row.BlockedUsernames),
		AllowNonLoggedIn:  row.AllowNonLoggedIn,
		Priority:          row.Priority,
		RedirectURL:       row.RedirectURL,
		CustomHTML:        row.CustomHTML,
		HideFromNav:       row.HideFromNav,
		ShowInNavOverride: row.ShowInNavOverride,
	}
}

// toContentRule converts a stored record into the typed content rule.
func toContentRule(row *model.ContentRestriction) *engine.ContentRule {
	return &engine.ContentRule{
		ID:               row.ID,
		ContentType:      row.ContentType,
		ContentKey:       row.ContentKey,
		AllowedRoles:     normalizeRoles(row.AllowedRoles),
		BlockedRoles:     normalizeRoles(row.BlockedRoles),
		AllowedUsernames: normalizeUsernames(row.AllowedUsernames),
		BlockedUsernames: normalizeUsernames(row.BlockedUsernames),
		HideFromFrontend: row.HideFromFrontend,
	}
}
