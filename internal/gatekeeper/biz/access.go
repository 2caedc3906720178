// Package biz implements the business layer of the gatekeeper service:
// cached rule loading, single and batch access checks, navigation and
// content filtering, and audit emission.
package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/gatekeeper/internal/gatekeeper/engine"
	"github.com/kart-io/gatekeeper/internal/gatekeeper/store"
	"github.com/kart-io/gatekeeper/internal/model"
	"github.com/kart-io/gatekeeper/pkg/cache"
)

// DefaultRuleTTL is the staleness window for the per-route rule cache.
const DefaultRuleTTL = 5 * time.Minute

// Selection wraps the selected rule for one route so a cached
// "no rule matches" is distinguishable from a cache miss. It is the value
// type of the per-route rule cache and is serializable for the redis
// cache backend.
type Selection struct {
	Rule *engine.PageRule `json:"rule"`
}

// RequestMeta carries request attributes recorded in the audit trail.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
}

// AccessService evaluates page and content access for request identities.
//
// Page checks fail closed on storage errors; bulk content filtering fails
// open by returning the input unchanged. The asymmetry mirrors how the
// rendering tier has always consumed the two paths and is pinned by tests.
type AccessService struct {
	rules   store.RestrictionStore
	cache   cache.Cache[string, Selection]
	auditor AuditRecorder
	ttl     time.Duration
}

// NewAccessService creates an AccessService.
func NewAccessService(
	rules store.RestrictionStore,
	ruleCache cache.Cache[string, Selection],
	auditor AuditRecorder,
	ttl time.Duration,
) *AccessService {
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	if auditor == nil {
		auditor = NopAuditor{}
	}
	return &AccessService{
		rules:   rules,
		cache:   ruleCache,
		auditor: auditor,
		ttl:     ttl,
	}
}

// NewSelectionCache creates the in-memory cache an AccessService expects.
// Exposed so callers (and tests) can build compatible caches.
func NewSelectionCache(clock cache.Clock) cache.Cache[string, Selection] {
	return cache.NewMemoryWithClock[string, Selection](clock)
}

// CheckRoute evaluates access to a single route. Storage failures deny
// with reason "error". Denials are recorded in the audit trail.
func (s *AccessService) CheckRoute(ctx context.Context, route string, id engine.Identity, meta RequestMeta) engine.Result {
	rule, err := s.selectedRule(ctx, route)
	if err != nil {
		logger.Errorw("rule load failed, denying access", "route", route, "error", err.Error())
		res := engine.ErrorResult()
		s.audit(route, id, meta, res)
		return res
	}

	res := engine.DecidePage(rule, id)
	if !res.Allowed {
		s.audit(route, id, meta, res)
	}
	return res
}

// CheckRoutes evaluates access to many routes with a single rule-set
// fetch. Results are identical to per-route CheckRoute calls. Any load
// failure denies every route with reason "error".
func (s *AccessService) CheckRoutes(ctx context.Context, routes []string, id engine.Identity, meta RequestMeta) map[string]engine.Result {
	results := make(map[string]engine.Result, len(routes))

	ruleSet, err := s.rules.ListActivePageRules(ctx)
	if err != nil {
		logger.Errorw("rule load failed, denying batch", "routes", len(routes), "error", err.Error())
		for _, route := range routes {
			results[route] = engine.ErrorResult()
		}
		return results
	}

	for _, route := range routes {
		res := engine.DecidePage(engine.SelectRule(route, ruleSet), id)
		if !res.Allowed {
			s.audit(route, id, meta, res)
		}
		results[route] = res
	}
	return results
}

// CheckContent evaluates access to a single content unit. Hidden content
// is denied before identity evaluation. Storage failures deny with reason
// "error" (single checks fail closed, unlike bulk filtering).
func (s *AccessService) CheckContent(ctx context.Context, contentType, contentKey string, id engine.Identity) engine.Result {
	rule, err := s.rules.GetContentRule(ctx, contentType, contentKey)
	if err != nil {
		logger.Errorw("content rule load failed, denying access",
			"content_type", contentType, "content_key", contentKey, "error", err.Error())
		return engine.ErrorResult()
	}
	return engine.DecideContent(rule, id)
}

// FilterRoutes returns the routes the identity may see in navigation,
// preserving input order. A rule flagged hide-from-nav suppresses its
// route even for allowed identities unless the show-in-nav override is
// set. Load failures drop every route (fail closed).
func (s *AccessService) FilterRoutes(ctx context.Context, routes []string, id engine.Identity) []string {
	ruleSet, err := s.rules.ListActivePageRules(ctx)
	if err != nil {
		logger.Errorw("rule load failed, hiding all navigation", "routes", len(routes), "error", err.Error())
		return []string{}
	}

	visible := make([]string, 0, len(routes))
	for _, route := range routes {
		rule := engine.SelectRule(route, ruleSet)
		if rule != nil && rule.HideFromNav && !rule.ShowInNavOverride {
			continue
		}
		if !engine.DecidePage(rule, id).Allowed {
			continue
		}
		visible = append(visible, route)
	}
	return visible
}

// FilterContent returns the content keys of the given type the identity
// may see, preserving input order. Hidden content is dropped before any
// identity evaluation. On storage failure the input is returned
// unchanged: bulk content filtering fails open.
func (s *AccessService) FilterContent(ctx context.Context, contentType string, keys []string, id engine.Identity) []string {
	visible := make([]string, 0, len(keys))
	for _, key := range keys {
		rule, err := s.rules.GetContentRule(ctx, contentType, key)
		if err != nil {
			logger.Warnw("content rule load failed, returning items unfiltered",
				"content_type", contentType, "error", err.Error())
			return keys
		}
		if !engine.DecideContent(rule, id).Allowed {
			continue
		}
		visible = append(visible, key)
	}
	return visible
}

// InvalidateRules flushes the per-route rule cache. Called when an
// administrator edits a rule; a pattern change can affect any number of
// concrete routes, so the whole cache is dropped.
func (s *AccessService) InvalidateRules(ctx context.Context) {
	s.cache.InvalidateAll(ctx)
}

// selectedRule returns the governing rule for route, consulting the
// path-keyed cache before the store. A nil rule (no restriction) is
// cached too, so unrestricted hot routes skip storage reads as well.
func (s *AccessService) selectedRule(ctx context.Context, route string) (*engine.PageRule, error) {
	if sel, ok := s.cache.Get(ctx, route); ok {
		return sel.Rule, nil
	}

	ruleSet, err := s.rules.ListActivePageRules(ctx)
	if err != nil {
		return nil, err
	}

	rule := engine.SelectRule(route, ruleSet)
	s.cache.Set(ctx, route, Selection{Rule: rule}, s.ttl)
	return rule, nil
}

// audit records one denial.
func (s *AccessService) audit(route string, id engine.Identity, meta RequestMeta, res engine.Result) {
	s.auditor.Record(&model.AccessAudit{
		UserID:    id.UserID,
		Username:  id.Username,
		Role:      id.Role,
		Route:     route,
		Reason:    string(res.Reason),
		RuleID:    res.RuleID,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	})
}
