// Package htmlsanitize cleans staff-entered text before it is stored or
// delivered to residents.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce sync.Once
	strict     *bluemonday.Policy

	bodyOnce sync.Once
	body     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() { strict = bluemonday.StrictPolicy() })
	return strict
}

// bodyPolicy allows the light formatting the resident apps can render.
func bodyPolicy() *bluemonday.Policy {
	bodyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li")
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		body = p
	})
	return body
}

// PlainText strips every tag and unescapes entities, then trims whitespace.
// Used for reasons and titles.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy().Sanitize(s)))
}

// Body keeps basic formatting in a notification body and removes anything
// executable.
func Body(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(bodyPolicy().Sanitize(s))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}
