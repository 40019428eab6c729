// Package matching implements fuzzy identity and evidence matching
package matching

import (
	"strings"

	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// DefaultNameThreshold is the token-overlap score above which two names
// are treated as the same person
const DefaultNameThreshold = 0.8

// Tier classifies how a name match was established. Higher tiers are
// preferred for merge decisions, but any tier counts as a match.
type Tier int

const (
	TierNone Tier = iota
	TierFuzzy
	TierSubstring
	TierExact
)

// String returns the tier name for audit payloads
func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierSubstring:
		return "substring"
	case TierFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// TokenOverlap scores two names by |intersection| / |union| of their
// canonical token sets. Identical names score 1.0; disjoint names 0.0.
func TokenOverlap(a, b string) float64 {
	tokensA := normalizers.NameTokens(a)
	tokensB := normalizers.NameTokens(b)
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, t := range tokensA {
		setA[t] = struct{}{}
	}
	union := make(map[string]struct{}, len(tokensA)+len(tokensB))
	for t := range setA {
		union[t] = struct{}{}
	}

	intersection := 0
	seen := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := setA[t]; ok {
			intersection++
		}
		union[t] = struct{}{}
	}

	return float64(intersection) / float64(len(union))
}

// MatchNames classifies two names into a match tier. Exact and substring
// comparisons run on the normalized forms; the fuzzy tier uses token
// overlap against threshold (DefaultNameThreshold when zero).
func MatchNames(a, b string, threshold float64) Tier {
	if threshold <= 0 {
		threshold = DefaultNameThreshold
	}

	normA := normalizers.NormalizeName(a)
	normB := normalizers.NormalizeName(b)
	if normA == "" || normB == "" {
		return TierNone
	}
	if normA == normB {
		return TierExact
	}
	if strings.Contains(normA, normB) || strings.Contains(normB, normA) {
		return TierSubstring
	}
	if TokenOverlap(a, b) >= threshold {
		return TierFuzzy
	}
	return TierNone
}

// DOBMatches reports whether two date-of-birth strings are compatible:
// equal, or one a prefix of the other (day-precision vs month-precision
// records of the same date).
func DOBMatches(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
