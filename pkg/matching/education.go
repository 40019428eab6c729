package matching

import (
	"sort"
	"time"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// Scorer weights for the three education match dimensions. The credential
// credit applies when the claim has no explicit field of study but the
// row's field appears inside the credential text.
const (
	InstitutionWeight = 0.4
	FieldWeight       = 0.3
	CredentialCredit  = 0.15
	DateWeight        = 0.3

	// DefaultEvidenceThreshold is the minimum score FindBestMatch accepts
	DefaultEvidenceThreshold = 0.70

	// DefaultToleranceMonths is the band within which a near-identical
	// date range counts as a perfect date match
	DefaultToleranceMonths = 1
)

// Scorer scores education evidence claims against declared education rows
type Scorer struct {
	Threshold       float64
	ToleranceMonths int
}

// NewScorer creates a scorer with the default threshold and tolerance
func NewScorer() *Scorer {
	return &Scorer{
		Threshold:       DefaultEvidenceThreshold,
		ToleranceMonths: DefaultToleranceMonths,
	}
}

// ScoreBreakdown explains how a score was assembled, for audit payloads
type ScoreBreakdown struct {
	Institution float64 `json:"institution"`
	Field       float64 `json:"field"`
	Dates       float64 `json:"dates"`
	Total       float64 `json:"total"`
}

// Score returns a weighted match score in [0,1] between a declared
// education row and an extracted evidence claim.
func (s *Scorer) Score(row models.EducationRow, claim models.EducationClaim, now time.Time) ScoreBreakdown {
	var b ScoreBreakdown

	b.Institution = TokenOverlap(row.Institution, claim.Institution) * InstitutionWeight

	switch {
	case claim.FieldOfStudy != "":
		b.Field = TokenOverlap(row.FieldOfStudy, claim.FieldOfStudy) * FieldWeight
	case row.FieldOfStudy != "" && claim.Credential != "":
		// No explicit field on the claim; give partial credit when every
		// token of the declared field shows up in the credential text.
		field := normalizers.NameTokens(row.FieldOfStudy)
		cred := normalizers.NameTokens(claim.Credential)
		if len(field) > 0 && containsAllTokens(cred, field) {
			b.Field = CredentialCredit
		}
	}

	b.Dates = DateRangeOverlapRatio(row.From, row.To, claim.From, claim.To, s.ToleranceMonths, now) * DateWeight

	b.Total = b.Institution + b.Field + b.Dates
	return b
}

// Candidate pairs a claim with its score, for ranked ambiguity reporting
type Candidate struct {
	Claim     models.EducationClaim
	Breakdown ScoreBreakdown
}

// RankCandidates scores every claim against the row, best first
func (s *Scorer) RankCandidates(row models.EducationRow, claims []models.EducationClaim, now time.Time) []Candidate {
	out := make([]Candidate, 0, len(claims))
	for _, claim := range claims {
		out = append(out, Candidate{Claim: claim, Breakdown: s.Score(row, claim, now)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Breakdown.Total > out[j].Breakdown.Total
	})
	return out
}

// FindBestMatch returns the highest-scoring claim at or above the
// scorer's threshold, or ok=false when no claim qualifies.
func (s *Scorer) FindBestMatch(row models.EducationRow, claims []models.EducationClaim, now time.Time) (Candidate, bool) {
	ranked := s.RankCandidates(row, claims, now)
	if len(ranked) == 0 || ranked[0].Breakdown.Total < s.Threshold {
		return Candidate{}, false
	}
	return ranked[0], true
}

// DateRangeOverlapRatio compares two month ranges. Disjoint ranges score
// 0. Ranges whose start and end each differ by at most tolerance months
// score 1.0 even when not byte-identical. Otherwise the score is
// overlap_months / max(row_span, claim_span). Missing or unparseable
// endpoints score 0.
func DateRangeOverlapRatio(rowFrom, rowTo, claimFrom, claimTo *string, tolerance int, now time.Time) float64 {
	rowStart, rowEnd, ok := resolveRange(rowFrom, rowTo, now)
	if !ok {
		return 0
	}
	claimStart, claimEnd, ok := resolveRange(claimFrom, claimTo, now)
	if !ok {
		return 0
	}

	overlapStart := rowStart
	if claimStart > overlapStart {
		overlapStart = claimStart
	}
	overlapEnd := rowEnd
	if claimEnd < overlapEnd {
		overlapEnd = claimEnd
	}
	if overlapStart > overlapEnd {
		return 0
	}

	if absDiff(rowStart, claimStart) <= tolerance && absDiff(rowEnd, claimEnd) <= tolerance {
		return 1.0
	}

	overlapMonths := int(overlapEnd-overlapStart) + 1
	rowSpan := int(rowEnd-rowStart) + 1
	claimSpan := int(claimEnd-claimStart) + 1
	maxSpan := rowSpan
	if claimSpan > maxSpan {
		maxSpan = claimSpan
	}
	return float64(overlapMonths) / float64(maxSpan)
}

func resolveRange(from, to *string, now time.Time) (normalizers.MonthKey, normalizers.MonthKey, bool) {
	if from == nil || to == nil || *from == "" || *to == "" {
		return 0, 0, false
	}
	start, err := normalizers.ResolveMonth(*from, now)
	if err != nil {
		return 0, 0, false
	}
	end, err := normalizers.ResolveMonth(*to, now)
	if err != nil {
		return 0, 0, false
	}
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

func containsAllTokens(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, t := range haystack {
		set[t] = struct{}{}
	}
	for _, t := range needles {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func absDiff(a, b normalizers.MonthKey) int {
	d := int(a - b)
	if d < 0 {
		d = -d
	}
	return d
}
