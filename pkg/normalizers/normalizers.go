// Package normalizers provides text canonicalization for identity matching
package normalizers

import (
	"sort"
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("remove_punctuation", RemovePunctuation)
	Register("nname", NormalizeName)
	Register("nmonth", NormalizeMonth)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemovePunctuation removes all punctuation characters
func RemovePunctuation(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsPunct(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NameTokens returns the canonical token set of a person's name:
// lowercased, commas stripped, split on whitespace, sorted. "Last, First"
// and "First Last" produce the same tokens.
func NameTokens(s string) []string {
	s = strings.ToLower(strings.ReplaceAll(s, ",", " "))
	fields := strings.Fields(s)
	sort.Strings(fields)
	return fields
}

// NormalizeName canonicalizes a person's name into a comparable form by
// rejoining its sorted tokens
func NormalizeName(s string) string {
	return strings.Join(NameTokens(s), " ")
}
