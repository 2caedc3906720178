// Package engine implements the access decision core: route pattern
// matching, rule selection, and the fixed precedence ladder that turns a
// restriction rule plus a request identity into an allow/deny verdict.
//
// The engine is pure: it performs no I/O and holds no mutable rule state.
// Rules arrive already validated and normalized from the store layer.
package engine

import "strings"

// Reason identifies which precedence branch produced a verdict.
type Reason string

// All verdict reasons. Exactly one reason is attached to every result.
const (
	ReasonBlockedUsername  Reason = "blocked_username"
	ReasonAllowedUsername  Reason = "allowed_username"
	ReasonPublicAccess     Reason = "public_access"
	ReasonNotAuthenticated Reason = "not_authenticated"
	ReasonBlockedRole      Reason = "blocked_role"
	ReasonAllowedRole      Reason = "allowed_role"
	ReasonAuthenticated    Reason = "authenticated"
	ReasonNoPermission     Reason = "no_permission"
	ReasonNoRestriction    Reason = "no_restriction"
	ReasonHidden           Reason = "hidden"
	ReasonError            Reason = "error"
)

// Identity is the per-request user context consumed by the engine.
// It is constructed by the identity middleware and never persisted.
type Identity struct {
	UserID        uint64 `json:"user_id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous is the identity of an unauthenticated visitor.
var Anonymous = Identity{}

// PageRule is a validated page restriction governing a route pattern.
//
// Username lists are normalized (trimmed, lowercased) at the storage
// boundary; the engine compares against them case-insensitively.
type PageRule struct {
	ID                uint64
	RoutePath         string
	AllowedRoles      []string
	BlockedRoles      []string
	AllowedUsernames  []string
	BlockedUsernames  []string
	AllowNonLoggedIn  bool
	Priority          int
	RedirectURL       string
	CustomHTML        string
	HideFromNav       bool
	ShowInNavOverride bool
}

// ContentRule is a validated restriction on a named content unit,
// keyed by (ContentType, ContentKey). Content rules carry no priority,
// no wildcard matching, and never allow unauthenticated access.
type ContentRule struct {
	ID               uint64
	ContentType      string
	ContentKey       string
	AllowedRoles     []string
	BlockedRoles     []string
	AllowedUsernames []string
	BlockedUsernames []string
	HideFromFrontend bool
}

// Result is the verdict of a single access evaluation.
type Result struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`

	// RuleID identifies the governing rule, 0 when no rule matched.
	RuleID uint64 `json:"rule_id,omitempty"`

	// RedirectURL and CustomHTML carry the rule's fallback behavior on
	// denial; the engine never renders anything itself.
	RedirectURL string `json:"redirect_url,omitempty"`
	CustomHTML  string `json:"custom_html,omitempty"`
}

// NormalizeUsername canonicalizes a username for list membership checks.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// containsUsername reports whether the normalized form of username is in
// list. The list is expected to be normalized already.
func containsUsername(list []string, username string) bool {
	if username == "" || len(list) == 0 {
		return false
	}
	needle := NormalizeUsername(username)
	if needle == "" {
		return false
	}
	for _, u := range list {
		if u == needle {
			return true
		}
	}
	return false
}

// containsRole reports whether role is in list. Roles are exact-match.
func containsRole(list []string, role string) bool {
	for _, r := range list {
		if r == role {
			return true
		}
	}
	return false
}
