// Package sanitize strips markup from user supplied plain text before it is
// stored.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text removes every HTML element and returns trimmed plain text. Entities
// are decoded so "Pão & Leite" round-trips unchanged.
func Text(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict().Sanitize(value)))
}

// OptionalText sanitizes a pointer value, returning nil when the result is
// empty.
func OptionalText(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := Text(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
