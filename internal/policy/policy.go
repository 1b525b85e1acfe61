// Package policy maps request paths to access requirements.
//
// A Table is an ordered list of path patterns. The first pattern matching a request path
// decides; a path no pattern matches is denied. Tables are built once at startup and are
// read-only afterwards, so Evaluate can be called concurrently without synchronization.
package policy

import (
	"fmt"
	"path"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/config"
	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

type Access string

const (
	AccessPublic        Access = "public"
	AccessAuthenticated Access = "authenticated"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Rule is the declarative form of a table entry.
type Rule struct {
	// Pattern is an absolute path pattern. "*" matches exactly one segment,
	// a trailing "**" matches any number of segments, including none.
	Pattern string

	// Access is the requirement for matching paths.
	Access Access

	// Expr optionally narrows an authenticated rule to principals satisfying it.
	// The expression sees principal.username and principal.authorities.
	Expr string
}

// DefaultRules is the route table of the API.
var DefaultRules = []Rule{
	{Pattern: "/api/auth/**", Access: AccessPublic},
	{Pattern: "/api/pokemon/**", Access: AccessAuthenticated},
	{Pattern: "/api/admin/**", Access: AccessAuthenticated},
}

type entry struct {
	rule     Rule
	segments []string
	program  *vm.Program
}

type Table struct {
	entries []entry
}

// New compiles rules into a table, preserving their order.
func New(rules []Rule) (*Table, error) {
	t := &Table{entries: make([]entry, 0, len(rules))}
	for i, r := range rules {
		e, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("route rule #%d (%s): %w", i, r.Pattern, err)
		}
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// Default returns the table compiled from DefaultRules.
func Default() *Table {
	t, err := New(DefaultRules)
	if err != nil {
		panic(fmt.Sprintf("default route rules do not compile: %v", err))
	}
	return t
}

// FromConfig builds a table from configured routes, falling back to the default table
// when none are configured.
func FromConfig(routes []config.RouteConfig) (*Table, error) {
	if len(routes) == 0 {
		return Default(), nil
	}
	rules := make([]Rule, 0, len(routes))
	for _, r := range routes {
		rules = append(rules, Rule{
			Pattern: r.Pattern,
			Access:  Access(r.Access),
			Expr:    r.Expr,
		})
	}
	return New(rules)
}

// Rules returns the rules of the table in evaluation order.
func (t *Table) Rules() []Rule {
	rules := make([]Rule, 0, len(t.entries))
	for _, e := range t.entries {
		rules = append(rules, e.rule)
	}
	return rules
}

// Match returns the first rule matching p.
func (t *Table) Match(p string) (Rule, bool) {
	if e := t.match(p); e != nil {
		return e.rule, true
	}
	return Rule{}, false
}

// Evaluate decides whether a request for p with security context sc may proceed.
func (t *Table) Evaluate(p string, sc core.SecurityContext) Decision {
	e := t.match(p)
	if e == nil {
		return Deny
	}

	switch e.rule.Access {
	case AccessPublic:
		return Allow
	case AccessAuthenticated:
		if !sc.IsAuthenticated() {
			return Deny
		}
		if e.program == nil {
			return Allow
		}
		principal, _ := sc.Principal()
		out, err := expr.Run(e.program, exprEnv(principal))
		if err != nil {
			return Deny
		}
		if ok, _ := out.(bool); ok {
			return Allow
		}
		return Deny
	default:
		return Deny
	}
}

func (t *Table) match(p string) *entry {
	segments := splitPath(cleanPath(p))
	for i := range t.entries {
		if matchSegments(t.entries[i].segments, segments) {
			return &t.entries[i]
		}
	}
	return nil
}

func compile(r Rule) (entry, error) {
	if !strings.HasPrefix(r.Pattern, "/") {
		return entry{}, fmt.Errorf("pattern must be absolute")
	}
	segments := splitPath(r.Pattern)
	for i, s := range segments {
		if s == "" {
			return entry{}, fmt.Errorf("pattern contains an empty segment")
		}
		if strings.Contains(s, "**") && (s != "**" || i != len(segments)-1) {
			return entry{}, fmt.Errorf("'**' is only allowed as the last segment")
		}
	}

	e := entry{rule: r, segments: segments}
	switch r.Access {
	case AccessPublic:
		if r.Expr != "" {
			return entry{}, fmt.Errorf("public rules cannot have an expression")
		}
	case AccessAuthenticated:
		if r.Expr != "" {
			program, err := expr.Compile(r.Expr, expr.Env(exprEnv(core.Credential{})), expr.AsBool())
			if err != nil {
				return entry{}, fmt.Errorf("compiling expr: %w", err)
			}
			e.program = program
		}
	default:
		return entry{}, fmt.Errorf("unknown access %q", r.Access)
	}
	return e, nil
}

func exprEnv(c core.Credential) map[string]any {
	authorities := c.Authorities
	if authorities == nil {
		authorities = []string{}
	}
	return map[string]any{
		"principal": map[string]any{
			"username":    c.Username,
			"authorities": authorities,
		},
	}
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	return path.Clean(p)
}

func splitPath(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchSegments(pattern, segments []string) bool {
	for i, ps := range pattern {
		if ps == "**" {
			return true
		}
		if i >= len(segments) {
			return false
		}
		if ps != "*" && ps != segments[i] {
			return false
		}
	}
	return len(pattern) == len(segments)
}
