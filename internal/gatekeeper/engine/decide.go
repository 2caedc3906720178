package engine

// ruleFields is the subset of a restriction rule the precedence ladder
// reads. Page and content rules share the ladder through it.
type ruleFields struct {
	id               uint64
	allowedRoles     []string
	blockedRoles     []string
	allowedUsernames []string
	blockedUsernames []string
	allowNonLoggedIn bool
	redirectURL      string
	customHTML       string
}

// DecidePage evaluates a page rule against an identity.
// A nil rule means the route is unrestricted and access is allowed.
func DecidePage(rule *PageRule, id Identity) Result {
	if rule == nil {
		return Result{Allowed: true, Reason: ReasonNoRestriction}
	}
	return decide(ruleFields{
		id:               rule.ID,
		allowedRoles:     rule.AllowedRoles,
		blockedRoles:     rule.BlockedRoles,
		allowedUsernames: rule.AllowedUsernames,
		blockedUsernames: rule.BlockedUsernames,
		allowNonLoggedIn: rule.AllowNonLoggedIn,
		redirectURL:      rule.RedirectURL,
		customHTML:       rule.CustomHTML,
	}, id)
}

// DecideContent evaluates a content rule against an identity.
// A nil rule means the content is unrestricted. Content rules never treat
// unauthenticated visitors as allowed by default, and hidden content is
// denied before any identity evaluation.
func DecideContent(rule *ContentRule, id Identity) Result {
	if rule == nil {
		return Result{Allowed: true, Reason: ReasonNoRestriction}
	}
	if rule.HideFromFrontend {
		return Result{Allowed: false, Reason: ReasonHidden, RuleID: rule.ID}
	}
	return decide(ruleFields{
		id:               rule.ID,
		allowedRoles:     rule.AllowedRoles,
		blockedRoles:     rule.BlockedRoles,
		allowedUsernames: rule.AllowedUsernames,
		blockedUsernames: rule.BlockedUsernames,
	}, id)
}

// decide applies the fixed precedence ladder. The five branches are
// mutually exclusive and evaluated in order; the first match wins.
func decide(r ruleFields, id Identity) Result {
	// 1. Username block. Wins over everything, including role allows.
	if containsUsername(r.blockedUsernames, id.Username) {
		return Result{
			Allowed:     false,
			Reason:      ReasonBlockedUsername,
			RuleID:      r.id,
			RedirectURL: r.redirectURL,
			CustomHTML:  r.customHTML,
		}
	}

	// 2. Username allow. Bypasses the auth gate and role lists.
	if containsUsername(r.allowedUsernames, id.Username) {
		return Result{Allowed: true, Reason: ReasonAllowedUsername, RuleID: r.id}
	}

	// 3. Authentication gate.
	if !id.Authenticated {
		if r.allowNonLoggedIn {
			return Result{Allowed: true, Reason: ReasonPublicAccess, RuleID: r.id}
		}
		return Result{
			Allowed:     false,
			Reason:      ReasonNotAuthenticated,
			RuleID:      r.id,
			RedirectURL: r.redirectURL,
			CustomHTML:  r.customHTML,
		}
	}

	// 4. Role block.
	if containsRole(r.blockedRoles, id.Role) {
		return Result{
			Allowed:     false,
			Reason:      ReasonBlockedRole,
			RuleID:      r.id,
			RedirectURL: r.redirectURL,
			CustomHTML:  r.customHTML,
		}
	}

	// 5. Role allow. An empty allow-list admits any authenticated role.
	if len(r.allowedRoles) == 0 {
		return Result{Allowed: true, Reason: ReasonAuthenticated, RuleID: r.id}
	}
	if containsRole(r.allowedRoles, id.Role) {
		return Result{Allowed: true, Reason: ReasonAllowedRole, RuleID: r.id}
	}
	return Result{
		Allowed:     false,
		Reason:      ReasonNoPermission,
		RuleID:      r.id,
		RedirectURL: r.redirectURL,
		CustomHTML:  r.customHTML,
	}
}

// ErrorResult is the fail-closed verdict used when rule loading fails.
func ErrorResult() Result {
	return Result{Allowed: false, Reason: ReasonError}
}
