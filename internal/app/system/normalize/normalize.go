// Package normalize canonicalizes user input before it reaches a store or a
// filter.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a free-text query parameter.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Token lowercases and trims an enumerated value such as a role or status.
func Token(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Filter is Token for filter parameters, mapping the "all" sentinel to "".
func Filter(s string) string {
	t := Token(s)
	if t == "all" {
		return ""
	}
	return t
}

// UnitPart trims a building or unit number and drops inner whitespace, so
// " 7 " and "7" join to the same unit identifier.
func UnitPart(s string) string {
	return strings.Join(strings.Fields(s), "")
}
