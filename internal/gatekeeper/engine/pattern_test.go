package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name    string
		route   string
		pattern string
		want    bool
	}{
		{"exact match", "/dashboard", "/dashboard", true},
		{"exact mismatch", "/dashboard", "/dashboards", false},
		{"exact is case sensitive", "/Dashboard", "/dashboard", false},
		{"wildcard matches child", "/admin/users", "/admin/*", true},
		{"wildcard matches deep child", "/admin/users/42", "/admin/*", true},
		{"wildcard matches trailing slash", "/admin/", "/admin/*", true},
		{"wildcard matches empty remainder", "/admin/", "/admin/*", true},
		{"wildcard rejects sibling prefix", "/adminx", "/admin/*", false},
		{"wildcard rejects parent", "/admin", "/admin/*", false},
		{"leading wildcard", "/a/b/report.pdf", "*.pdf", true},
		{"middle wildcard", "/clients/99/invoices", "/clients/*/invoices", true},
		{"middle wildcard empty segment", "/clients//invoices", "/clients/*/invoices", true},
		{"middle wildcard mismatch tail", "/clients/99/orders", "/clients/*/invoices", false},
		{"multiple wildcards", "/a/x/b/y/c", "/a/*/b/*/c", true},
		{"bare wildcard matches everything", "/anything/at/all", "*", true},
		{"bare wildcard matches empty", "", "*", true},
		{"dot is literal", "/files/a.txt", "/files/a.txt", true},
		{"dot does not act as regex any", "/files/axtxt", "/files/a.txt", false},
		{"metacharacters escaped with wildcard", "/v1/(beta)/x", "/v1/(beta)/*", true},
		{"metacharacters stay literal", "/v1/beta/x", "/v1/(beta)/*", false},
		{"no partial anchoring", "/prefix/admin/users", "/admin/*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.route, tt.pattern))
		})
	}
}

func TestMatches_Deterministic(t *testing.T) {
	// Repeated calls hit the memoized matcher and must agree.
	for i := 0; i < 3; i++ {
		assert.True(t, Matches("/admin/users", "/admin/*"))
		assert.False(t, Matches("/adminx", "/admin/*"))
	}
}

func TestSelectRule(t *testing.T) {
	rules := []*PageRule{
		{ID: 1, RoutePath: "/admin/*", Priority: 10},
		{ID: 2, RoutePath: "/admin/reports", Priority: 5},
		{ID: 3, RoutePath: "/public/*", Priority: 1},
	}

	t.Run("highest priority wins regardless of specificity", func(t *testing.T) {
		got := SelectRule("/admin/reports", rules)
		assert.NotNil(t, got)
		assert.Equal(t, uint64(1), got.ID)
	})

	t.Run("no match returns nil", func(t *testing.T) {
		assert.Nil(t, SelectRule("/checkout", rules))
	})

	t.Run("tie keeps storage order", func(t *testing.T) {
		tied := []*PageRule{
			{ID: 7, RoutePath: "/shop/*", Priority: 3},
			{ID: 8, RoutePath: "/shop/cart", Priority: 3},
		}
		got := SelectRule("/shop/cart", tied)
		assert.NotNil(t, got)
		assert.Equal(t, uint64(7), got.ID, "first in storage order wins a priority tie")
	})
}
