package scopes

import (
	"slices"
	"strings"
)

const (
	// Wildcard matches every scope when used alone, or every action of a
	// resource when used as the last part (e.g. "order:*").
	Wildcard = "*"

	// Delimiter separates the resource from the action (e.g. "order:create").
	Delimiter = ":"
)

// Matches reports whether scope is covered by pattern.
//
//   - "order:read" matches "order:read"
//   - "*" matches anything
//   - "order:*" matches "order:read" and "order:create", not "orders:read"
func Matches(scope, pattern string) bool {
	if scope == "" || pattern == "" {
		return false
	}
	if scope == pattern || pattern == Wildcard {
		return true
	}

	prefix, ok := strings.CutSuffix(pattern, Delimiter+Wildcard)
	if !ok {
		return false
	}
	return strings.HasPrefix(scope, prefix+Delimiter)
}

// Has reports whether any pattern in granted covers scope.
func Has(granted []string, scope string) bool {
	for _, p := range granted {
		if Matches(scope, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every required scope is covered by granted.
// An empty required list is always satisfied.
func HasAll(granted, required []string) bool {
	for _, r := range required {
		if !Has(granted, r) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one required scope is covered by granted.
// An empty required list is always satisfied.
func HasAny(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if Has(granted, r) {
			return true
		}
	}
	return false
}

// Validate checks that every scope is either the global wildcard or a
// "resource:action" pair with non-empty parts. The action may be "*".
func Validate(list []string) error {
	for _, s := range list {
		if s == Wildcard {
			continue
		}
		resource, action, ok := strings.Cut(s, Delimiter)
		if !ok || resource == "" || action == "" ||
			strings.Contains(action, Delimiter) ||
			strings.Contains(resource, Wildcard) ||
			(strings.Contains(action, Wildcard) && action != Wildcard) {
			return &InvalidScopeError{Scope: s}
		}
	}
	return nil
}

// Expand resolves patterns against a catalog of concrete scopes and returns
// the matching catalog entries, deduplicated and sorted. Concrete patterns
// that are missing from the catalog are dropped.
func Expand(patterns, catalog []string) []string {
	out := make([]string, 0, len(catalog))
	for _, c := range catalog {
		if Has(patterns, c) {
			out = append(out, c)
		}
	}
	return Normalize(out)
}

// Normalize removes duplicates and sorts scopes alphabetically.
// Returns nil for empty input.
func Normalize(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := slices.Clone(list)
	slices.Sort(out)
	return slices.Compact(out)
}
