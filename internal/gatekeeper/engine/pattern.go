package engine

import (
	"regexp"
	"strings"
	"sync"
)

// Wildcard is the single wildcard marker understood by route patterns.
// It matches any sequence of characters, including the empty one.
const Wildcard = "*"

// patternCache memoizes compiled wildcard patterns. Compilation is
// deterministic, so a populate race converges to an equivalent matcher.
var patternCache sync.Map // pattern string -> *regexp.Regexp

// Matches reports whether the concrete route matches the stored pattern.
//
// A pattern without a wildcard requires exact string equality. A pattern
// containing wildcards is anchored to the full route: "/admin/*" matches
// "/admin/users" and "/admin/" but not "/adminx".
func Matches(route, pattern string) bool {
	if !strings.Contains(pattern, Wildcard) {
		return route == pattern
	}
	return compilePattern(pattern).MatchString(route)
}

// compilePattern turns a wildcard pattern into an anchored regexp,
// escaping every regexp metacharacter except the wildcard marker.
func compilePattern(pattern string) *regexp.Regexp {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}

	parts := strings.Split(pattern, Wildcard)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")

	actual, _ := patternCache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp)
}

// SelectRule returns the governing rule for route among rules, or nil if
// none match. The input must already be sorted by priority descending with
// a stable storage-order tie-break; the selector deliberately does not
// re-rank by pattern specificity.
func SelectRule(route string, rules []*PageRule) *PageRule {
	for _, r := range rules {
		if Matches(route, r.RoutePath) {
			return r
		}
	}
	return nil
}
