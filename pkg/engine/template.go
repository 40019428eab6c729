package engine

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// RenderTemplate substitutes {placeholder} tokens in a rule's message
// template. Tokens without a value are left verbatim; ValidateTemplate
// prevents that from reaching production rules.
func RenderTemplate(tpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(match string) string {
		key := strings.Trim(match, "{}")
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	})
}

// ValidateTemplate rejects templates that reference placeholders outside
// the allowed set for the rule type. Run before a rule is persisted.
func ValidateTemplate(tpl string, allowed []string) error {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, key := range allowed {
		allowedSet[key] = struct{}{}
	}

	var unknown []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(tpl, -1) {
		key := match[1]
		if _, ok := allowedSet[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("template references unknown placeholders: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// TemplatePlaceholders lists the placeholders every check supplies when
// rendering client messages
var TemplatePlaceholders = []string{
	"member_name",
	"section",
	"months",
	"gaps",
	"declared_years",
	"computed_years",
	"form",
	"institution",
	"document",
	"fields",
}

// renderClientMessage renders the rule's template when present, falling
// back to the check's default message
func renderClientMessage(tpl, fallback string, vars map[string]string) string {
	if strings.TrimSpace(tpl) == "" {
		return fallback
	}
	return RenderTemplate(tpl, vars)
}
