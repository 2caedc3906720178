package store

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/gatekeeper/internal/model"
	"github.com/kart-io/gatekeeper/pkg/utils/errors"
)

func newTestFactory(t *testing.T) Factory {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	f := NewFactory(db)
	require.NoError(t, f.AutoMigrate())
	return f
}

func TestRestrictionStore_ListActivePageRules(t *testing.T) {
	ctx := context.Background()
	s := newTestFactory(t).Restrictions()

	// Insertion order deliberately scrambled against priority.
	require.NoError(t, s.CreatePage(ctx, &model.PageRestriction{RoutePath: "/low", Priority: 1, IsActive: true}))
	require.NoError(t, s.CreatePage(ctx, &model.PageRestriction{RoutePath: "/high", Priority: 10, IsActive: true}))
	require.NoError(t, s.CreatePage(ctx, &model.PageRestriction{RoutePath: "/inactive", Priority: 99, IsActive: false}))
	require.NoError(t, s.CreatePage(ctx, &model.PageRestriction{RoutePath: "/mid-a", Priority: 5, IsActive: true}))
	require.NoError(t, s.CreatePage(ctx, &model.PageRestriction{RoutePath: "/mid-b", Priority: 5, IsActive: true}))

	rules, err := s.ListActivePageRules(ctx)
	require.NoError(t, err)

	paths := make([]string, 0, len(rules))
	for _, r := range rules {
		paths = append(paths, r.RoutePath)
	}
	// Priority descending; the 5/5 tie keeps insertion (id) order; the
	// inactive rule never appears.
	assert.Equal(t, []string{"/high", "/mid-a", "/mid-b", "/low"}, paths)
}

func TestRestrictionStore_NormalizesOnWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestFactory(t).Restrictions()

	err := s.CreatePage(ctx, &model.PageRestriction{
		RoutePath:        "  /admin/*  ",
		AllowedUsernames: model.StringList{"  Alice ", "ALICE", "", "bob"},
		BlockedRoles:     model.StringList{" client ", "client"},
		IsActive:         true,
	})
	require.NoError(t, err)

	rules, err := s.ListActivePageRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	assert.Equal(t, "/admin/*", rules[0].RoutePath)
	assert.Equal(t, []string{"alice", "bob"}, rules[0].AllowedUsernames)
	assert.Equal(t, []string{"client"}, rules[0].BlockedRoles)
}

func TestRestrictionStore_ValidationRejects(t *testing.T) {
	ctx := context.Background()
	s := newTestFactory(t).Restrictions()

	err := s.CreatePage(ctx, &model.PageRestriction{RoutePath: "", IsActive: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)

	err = s.CreateContent(ctx, &model.ContentRestriction{ContentType: "widget", ContentKey: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestRestrictionStore_GetContentRule(t *testing.T) {
	ctx := context.Background()
	s := newTestFactory(t).Restrictions()

	require.NoError(t, s.CreateContent(ctx, &model.ContentRestriction{
		ContentType:  "dashboard_widget",
		ContentKey:   "revenue",
		AllowedRoles: model.StringList{"admin"},
		IsActive:     true,
	}))
	require.NoError(t, s.CreateContent(ctx, &model.ContentRestriction{
		ContentType: "dashboard_widget",
		ContentKey:  "retired",
		IsActive:    false,
	}))

	t.Run("exact composite key", func(t *testing.T) {
		rule, err := s.GetContentRule(ctx, "dashboard_widget", "revenue")
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, []string{"admin"}, rule.AllowedRoles)
	})

	t.Run("no pattern matching on keys", func(t *testing.T) {
		rule, err := s.GetContentRule(ctx, "dashboard_widget", "rev*")
		require.NoError(t, err)
		assert.Nil(t, rule)
	})

	t.Run("inactive rule is invisible", func(t *testing.T) {
		rule, err := s.GetContentRule(ctx, "dashboard_widget", "retired")
		require.NoError(t, err)
		assert.Nil(t, rule)
	})

	t.Run("absent key returns nil, not error", func(t *testing.T) {
		rule, err := s.GetContentRule(ctx, "dashboard_widget", "absent")
		require.NoError(t, err)
		assert.Nil(t, rule)
	})
}

func TestRestrictionStore_SoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestFactory(t).Restrictions()

	r := &model.PageRestriction{RoutePath: "/gone", IsActive: true}
	require.NoError(t, s.CreatePage(ctx, r))
	require.NoError(t, s.DeletePage(ctx, r.ID))

	rules, err := s.ListActivePageRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = s.GetPage(ctx, r.ID)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	assert.ErrorIs(t, s.DeletePage(ctx, r.ID), errors.ErrNotFound)
}

func TestRestrictionStore_ListPages(t *testing.T) {
	ctx := context.Background()
	s := newTestFactory(t).Restrictions()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreatePage(ctx, &model.PageRestriction{
			RoutePath: "/p",
			Priority:  i,
			IsActive:  true,
		}))
	}

	total, rows, err := s.ListPages(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, rows, 3)
	assert.Equal(t, 4, rows[0].Priority)
}

func TestAuditStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	s := f.Audits()

	require.NoError(t, s.Create(ctx, &model.AccessAudit{
		ID:       "01JX0000000000000000000000",
		Username: "eve",
		Route:    "/admin/reports",
		Reason:   "blocked_username",
		RuleID:   7,
		ClientIP: "203.0.113.9",
	}))

	total, rows, err := s.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "eve", rows[0].Username)
	assert.Equal(t, "blocked_username", rows[0].Reason)
}
