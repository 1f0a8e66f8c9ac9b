package scopes

import (
	"slices"
	"strings"
)

const (
	// ScopeSeparator is used to separate multiple scopes in a string
	ScopeSeparator = " "

	// ScopeDelimiter separates the parts of a hierarchical scope (e.g., "memory.create")
	ScopeDelimiter = "."

	// WildcardSuffix marks a scope that covers a whole action family.
	WildcardSuffix = ".*"

	// LegacySuffix is the older family form kept for plans defined before wildcards.
	LegacySuffix = ".basic"
)

// ParseScopes converts a space-separated string of scopes into a string slice.
// Trims spaces and removes empty entries. Returns nil for empty input.
func ParseScopes(scopesStr string) []string {
	scopesStr = strings.TrimSpace(scopesStr)
	if scopesStr == "" {
		return nil
	}

	parts := strings.Split(scopesStr, ScopeSeparator)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// JoinScopes converts a slice of scopes back to a space-separated string.
func JoinScopes(scopes []string) string {
	if len(scopes) == 0 {
		return ""
	}
	return strings.Join(scopes, ScopeSeparator)
}

// Matches reports whether scope grants action.
//
// Matching rules:
//   - Direct match: "memory.create" matches "memory.create"
//   - Wildcard: "memory.*" matches any action starting with "memory."
//   - Legacy: "export.basic" matches any action starting with "export."
func Matches(scope, action string) bool {
	if scope == "" || action == "" {
		return false
	}
	if scope == action {
		return true
	}

	if prefix, ok := familyPrefix(scope); ok {
		return strings.HasPrefix(action, prefix+ScopeDelimiter)
	}

	return false
}

// familyPrefix strips the family suffix of a wildcard or legacy scope.
// Both dialects go through here so they cannot drift apart.
func familyPrefix(scope string) (string, bool) {
	switch {
	case strings.HasSuffix(scope, WildcardSuffix):
		return scope[:len(scope)-len(WildcardSuffix)], true
	case strings.HasSuffix(scope, LegacySuffix):
		return scope[:len(scope)-len(LegacySuffix)], true
	}
	return "", false
}

// HasScope checks if any of the scopes grants action.
//
// Example:
//
//	scopes.HasScope([]string{"memory.*", "quiz.take"}, "memory.create") // true
func HasScope(scopes []string, action string) bool {
	for _, s := range scopes {
		if Matches(s, action) {
			return true
		}
	}
	return false
}

// HasAllScopes checks if every required action is granted.
// An empty required list is always satisfied.
func HasAllScopes(scopes, required []string) bool {
	for _, req := range required {
		if !HasScope(scopes, req) {
			return false
		}
	}
	return true
}

// IsWildcard reports whether scope uses the ".*" family form.
func IsWildcard(scope string) bool {
	return strings.HasSuffix(scope, WildcardSuffix)
}

// IsLegacy reports whether scope uses the deprecated ".basic" family form.
func IsLegacy(scope string) bool {
	return strings.HasSuffix(scope, LegacySuffix)
}

// Canonical rewrites a legacy family scope into its wildcard equivalent.
// Other scopes are returned unchanged.
func Canonical(scope string) string {
	if IsLegacy(scope) {
		return scope[:len(scope)-len(LegacySuffix)] + WildcardSuffix
	}
	return scope
}

// Validate checks that scope is non-empty, has no whitespace and no empty segments.
func Validate(scope string) error {
	if scope == "" || strings.ContainsAny(scope, " \t\n") {
		return ErrInvalidScope
	}
	if slices.Contains(strings.Split(scope, ScopeDelimiter), "") {
		return ErrInvalidScope
	}
	return nil
}

// NormalizeScopes removes duplicate scopes and sorts them alphabetically.
// Returns nil for empty input.
func NormalizeScopes(scopes []string) []string {
	if len(scopes) == 0 {
		return nil
	}
	normalized := slices.Clone(scopes)
	slices.Sort(normalized)
	return slices.Compact(normalized)
}
