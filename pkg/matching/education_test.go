package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

var scorerNow = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

func ptr(s string) *string {
	return &s
}

func declaredRow() models.EducationRow {
	return models.EducationRow{
		Institution:  "State University",
		FieldOfStudy: "Computer Science",
		From:         ptr("2015-09"),
		To:           ptr("2019-06"),
	}
}

func TestScorerPerfectMatch(t *testing.T) {
	claim := models.EducationClaim{
		DocumentID:   "doc-1",
		Institution:  "State University",
		FieldOfStudy: "Computer Science",
		From:         ptr("2015-09"),
		To:           ptr("2019-06"),
	}

	b := NewScorer().Score(declaredRow(), claim, scorerNow)
	assert.InDelta(t, InstitutionWeight, b.Institution, 1e-9)
	assert.InDelta(t, FieldWeight, b.Field, 1e-9)
	assert.InDelta(t, DateWeight, b.Dates, 1e-9)
	assert.InDelta(t, 1.0, b.Total, 1e-9)
}

func TestScorerDateTolerance(t *testing.T) {
	t.Run("one month off still scores full date weight", func(t *testing.T) {
		claim := models.EducationClaim{
			Institution:  "State University",
			FieldOfStudy: "Computer Science",
			From:         ptr("2015-10"),
			To:           ptr("2019-05"),
		}
		b := NewScorer().Score(declaredRow(), claim, scorerNow)
		assert.InDelta(t, DateWeight, b.Dates, 1e-9)
	})

	t.Run("beyond tolerance scores by overlap ratio", func(t *testing.T) {
		claim := models.EducationClaim{
			Institution:  "State University",
			FieldOfStudy: "Computer Science",
			From:         ptr("2016-01"),
			To:           ptr("2019-06"),
		}
		b := NewScorer().Score(declaredRow(), claim, scorerNow)
		assert.Greater(t, b.Dates, 0.0)
		assert.Less(t, b.Dates, DateWeight)
	})
}

func TestScorerCredentialCredit(t *testing.T) {
	t.Run("field inside credential earns partial credit", func(t *testing.T) {
		claim := models.EducationClaim{
			Institution: "State University",
			Credential:  "Bachelor of Science in Computer Science",
			From:        ptr("2015-09"),
			To:          ptr("2019-06"),
		}
		b := NewScorer().Score(declaredRow(), claim, scorerNow)
		assert.InDelta(t, CredentialCredit, b.Field, 1e-9)
	})

	t.Run("no credit when credential unrelated", func(t *testing.T) {
		claim := models.EducationClaim{
			Institution: "State University",
			Credential:  "Bachelor of Arts in History",
			From:        ptr("2015-09"),
			To:          ptr("2019-06"),
		}
		b := NewScorer().Score(declaredRow(), claim, scorerNow)
		assert.Zero(t, b.Field)
	})

	t.Run("explicit field takes precedence over credential", func(t *testing.T) {
		claim := models.EducationClaim{
			Institution:  "State University",
			FieldOfStudy: "History",
			Credential:   "Bachelor of Science in Computer Science",
			From:         ptr("2015-09"),
			To:           ptr("2019-06"),
		}
		b := NewScorer().Score(declaredRow(), claim, scorerNow)
		assert.Zero(t, b.Field)
	})
}

func TestScoreRange(t *testing.T) {
	claims := []models.EducationClaim{
		{},
		{Institution: "State University"},
		{Institution: "Other College", FieldOfStudy: "Art", From: ptr("2001-01"), To: ptr("2002-01")},
		{Institution: "State University", FieldOfStudy: "Computer Science", From: ptr("2015-09"), To: ptr("2019-06")},
	}
	s := NewScorer()
	for _, claim := range claims {
		b := s.Score(declaredRow(), claim, scorerNow)
		assert.GreaterOrEqual(t, b.Total, 0.0)
		assert.LessOrEqual(t, b.Total, 1.0)
	}
}

func TestRankCandidates(t *testing.T) {
	claims := []models.EducationClaim{
		{DocumentID: "weak", Institution: "Other College"},
		{DocumentID: "strong", Institution: "State University", FieldOfStudy: "Computer Science", From: ptr("2015-09"), To: ptr("2019-06")},
		{DocumentID: "middling", Institution: "State University"},
	}

	ranked := NewScorer().RankCandidates(declaredRow(), claims, scorerNow)
	require.Len(t, ranked, 3)
	assert.Equal(t, "strong", ranked[0].Claim.DocumentID)
	assert.Equal(t, "middling", ranked[1].Claim.DocumentID)
	assert.Equal(t, "weak", ranked[2].Claim.DocumentID)
}

func TestFindBestMatch(t *testing.T) {
	t.Run("accepts claim at or above threshold", func(t *testing.T) {
		claims := []models.EducationClaim{
			{DocumentID: "doc-1", Institution: "State University", FieldOfStudy: "Computer Science", From: ptr("2015-09"), To: ptr("2019-06")},
		}
		best, ok := NewScorer().FindBestMatch(declaredRow(), claims, scorerNow)
		require.True(t, ok)
		assert.Equal(t, "doc-1", best.Claim.DocumentID)
	})

	t.Run("rejects when best falls short", func(t *testing.T) {
		claims := []models.EducationClaim{
			{DocumentID: "doc-1", Institution: "State University"},
		}
		_, ok := NewScorer().FindBestMatch(declaredRow(), claims, scorerNow)
		assert.False(t, ok)
	})

	t.Run("no claims", func(t *testing.T) {
		_, ok := NewScorer().FindBestMatch(declaredRow(), nil, scorerNow)
		assert.False(t, ok)
	})
}

func TestDateRangeOverlapRatio(t *testing.T) {
	tol := DefaultToleranceMonths

	t.Run("disjoint ranges score zero", func(t *testing.T) {
		got := DateRangeOverlapRatio(ptr("2015-01"), ptr("2015-06"), ptr("2016-01"), ptr("2016-06"), tol, scorerNow)
		assert.Zero(t, got)
	})

	t.Run("identical ranges score one", func(t *testing.T) {
		got := DateRangeOverlapRatio(ptr("2015-01"), ptr("2015-06"), ptr("2015-01"), ptr("2015-06"), tol, scorerNow)
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("within tolerance scores one", func(t *testing.T) {
		got := DateRangeOverlapRatio(ptr("2015-01"), ptr("2015-06"), ptr("2015-02"), ptr("2015-07"), tol, scorerNow)
		assert.InDelta(t, 1.0, got, 1e-9)
	})

	t.Run("partial overlap scores by ratio", func(t *testing.T) {
		// 6 shared months against a 12-month claim span
		got := DateRangeOverlapRatio(ptr("2015-01"), ptr("2015-06"), ptr("2015-01"), ptr("2015-12"), tol, scorerNow)
		assert.InDelta(t, 0.5, got, 1e-9)
	})

	t.Run("missing endpoint scores zero", func(t *testing.T) {
		got := DateRangeOverlapRatio(ptr("2015-01"), nil, ptr("2015-01"), ptr("2015-06"), tol, scorerNow)
		assert.Zero(t, got)
	})

	t.Run("present endpoint resolves", func(t *testing.T) {
		got := DateRangeOverlapRatio(ptr("2023-01"), ptr("PRESENT"), ptr("2023-01"), ptr("2024-07"), tol, scorerNow)
		assert.InDelta(t, 1.0, got, 1e-9)
	})
}
