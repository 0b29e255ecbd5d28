// AngelaMos | 2026
// search.go

package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/carterperez-dev/templates/resource-directory/internal/entitlement"
)

const MinQueryLength = 2

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Searchable reports whether q is long enough to produce results. Shorter
// queries render as empty without being treated as "no matches".
func Searchable(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= MinQueryLength
}

func Matches(r Resource, q string) bool {
	if !Searchable(q) {
		return false
	}
	return matchesNormalized(r, normalizeQuery(q))
}

func matchesNormalized(r Resource, needle string) bool {
	return strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(strings.ToLower(r.Category), needle)
}

// Search matches first, then drops what v may not see, keeping catalog order.
func Search(c *Catalog, q string, v entitlement.Viewer) []Resource {
	results := []Resource{}
	if c == nil || !Searchable(q) {
		return results
	}

	needle := normalizeQuery(q)
	for _, r := range c.resources {
		if !matchesNormalized(r, needle) {
			continue
		}
		if !entitlement.Visible(r.PlanRequired, v) {
			continue
		}
		results = append(results, r)
	}

	return results
}
