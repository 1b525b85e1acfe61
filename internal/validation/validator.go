// Package validation checks a configured route table for mistakes the policy compiler accepts.
package validation

import (
	"fmt"
	"strings"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
)

// ValidateRoutes rejects duplicate patterns and reports rules that can never match
// because an earlier pattern already covers every path they would match.
func ValidateRoutes(routes []config.RouteConfig) (warnings []string, err error) {
	seen := make(map[string]struct{})
	for i, route := range routes {
		if route.Pattern == "" {
			return nil, fmt.Errorf("route #%d missing pattern", i)
		}
		if _, exists := seen[route.Pattern]; exists {
			return nil, fmt.Errorf("route pattern '%s' is not unique", route.Pattern)
		}
		seen[route.Pattern] = struct{}{}

		later := segments(route.Pattern)
		for _, earlier := range routes[:i] {
			if covers(segments(earlier.Pattern), later) {
				warnings = append(warnings, fmt.Sprintf(
					"route '%s' is unreachable, '%s' matches first", route.Pattern, earlier.Pattern))
				break
			}
		}
	}
	return warnings, nil
}

func segments(pattern string) []string {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// covers reports whether every path matched by pattern b is matched by pattern a.
func covers(a, b []string) bool {
	for i, as := range a {
		if as == "**" {
			return true
		}
		if i >= len(b) {
			return false
		}
		switch {
		case b[i] == "**":
			return false
		case as == "*", as == b[i]:
		default:
			return false
		}
	}
	return len(a) == len(b)
}
