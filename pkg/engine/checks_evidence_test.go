package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

func educationSnapshot(claims ...models.EducationClaim) *models.CaseSnapshot {
	snap := snapshotWithSections(nil)
	ext := snap.Extracts["m1"]
	ext.Identity.Education = []models.EducationRow{
		{
			Institution:  "State University",
			FieldOfStudy: "Computer Science",
			From:         strp("2015-09"),
			To:           strp("2019-06"),
		},
	}
	ext.Education = claims
	snap.Extracts["m1"] = ext
	return snap
}

func TestCheckDateMatchEducation(t *testing.T) {
	educationRule := makeRule(models.RuleTypeDateMatchCheck, `{"section":"education"}`)

	t.Run("strong claim corroborates the row", func(t *testing.T) {
		snap := educationSnapshot(models.EducationClaim{
			DocumentID:   "doc-transcript",
			Institution:  "State University",
			FieldOfStudy: "Computer Science",
			From:         strp("2015-09"),
			To:           strp("2019-06"),
		})
		findings, err := checkDateMatch(newRun(snap), educationRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, models.FindingStatusPass, f.Status)
		assert.Equal(t, []string{"doc-transcript"}, f.DocumentIDs)
	})

	t.Run("weak candidates surface as a warning", func(t *testing.T) {
		snap := educationSnapshot(models.EducationClaim{
			DocumentID:  "doc-other",
			Institution: "Other College",
		})
		findings, err := checkDateMatch(newRun(snap), educationRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, models.FindingStatusFail, f.Status)
		assert.Equal(t, models.SeverityWarning, f.Severity)
		candidates, ok := f.Details["candidates"].([]map[string]any)
		require.True(t, ok)
		assert.Len(t, candidates, 1)
		assert.Equal(t, "doc-other", candidates[0]["document_id"])
	})

	t.Run("warning lists at most three candidates", func(t *testing.T) {
		snap := educationSnapshot(
			models.EducationClaim{DocumentID: "doc-a", Institution: "College A"},
			models.EducationClaim{DocumentID: "doc-b", Institution: "College B"},
			models.EducationClaim{DocumentID: "doc-c", Institution: "College C"},
			models.EducationClaim{DocumentID: "doc-d", Institution: "College D"},
		)
		findings, err := checkDateMatch(newRun(snap), educationRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		candidates := findings[0].Details["candidates"].([]map[string]any)
		assert.Len(t, candidates, 3)
	})

	t.Run("no claims extracted is skipped", func(t *testing.T) {
		snap := educationSnapshot()
		findings, err := checkDateMatch(newRun(snap), educationRule)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("no declared education is skipped", func(t *testing.T) {
		snap := snapshotWithSections(nil)
		ext := snap.Extracts["m1"]
		ext.Education = []models.EducationClaim{{DocumentID: "doc-1", Institution: "State University"}}
		snap.Extracts["m1"] = ext
		findings, err := checkDateMatch(newRun(snap), educationRule)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})
}

func TestCheckDateMatchSectionDates(t *testing.T) {
	sectionRule := makeRule(models.RuleTypeDateMatchCheck, `{"section":"employment"}`)

	withEvidence := func(rows []models.IntervalRow, claims ...models.EvidenceClaim) *models.CaseSnapshot {
		snap := snapshotWithSections(map[string][]models.IntervalRow{"employment": rows})
		ext := snap.Extracts["m1"]
		ext.Evidence = claims
		snap.Extracts["m1"] = ext
		return snap
	}

	t.Run("evidence date inside the range passes", func(t *testing.T) {
		snap := withEvidence(
			[]models.IntervalRow{{From: strp("2020-01"), To: strp("2020-06")}},
			models.EvidenceClaim{DocumentID: "doc-pay", PersonName: "Maria Garcia", Dates: []string{"2020-03-15"}},
		)
		findings, err := checkDateMatch(newRun(snap), sectionRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, models.FindingStatusPass, findings[0].Status)
		assert.Equal(t, []string{"doc-pay"}, findings[0].DocumentIDs)
	})

	t.Run("date within tolerance of the range passes", func(t *testing.T) {
		snap := withEvidence(
			[]models.IntervalRow{{From: strp("2020-01"), To: strp("2020-06")}},
			models.EvidenceClaim{DocumentID: "doc-pay", PersonName: "Maria Garcia", Dates: []string{"2020-07"}},
		)
		findings, err := checkDateMatch(newRun(snap), sectionRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, models.FindingStatusPass, findings[0].Status)
	})

	t.Run("no supporting dates fail", func(t *testing.T) {
		snap := withEvidence(
			[]models.IntervalRow{{From: strp("2020-01"), To: strp("2020-06")}},
			models.EvidenceClaim{DocumentID: "doc-pay", PersonName: "Maria Garcia", Dates: []string{"2023-01"}},
		)
		findings, err := checkDateMatch(newRun(snap), sectionRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, models.FindingStatusFail, findings[0].Status)
	})

	t.Run("evidence naming someone else is ignored", func(t *testing.T) {
		snap := withEvidence(
			[]models.IntervalRow{{From: strp("2020-01"), To: strp("2020-06")}},
			models.EvidenceClaim{DocumentID: "doc-pay", PersonName: "John Smith", Dates: []string{"2020-03"}},
		)
		findings, err := checkDateMatch(newRun(snap), sectionRule)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("rows missing endpoints are skipped", func(t *testing.T) {
		snap := withEvidence(
			[]models.IntervalRow{{From: strp("2020-01")}},
			models.EvidenceClaim{DocumentID: "doc-pay", PersonName: "Maria Garcia", Dates: []string{"2020-03"}},
		)
		findings, err := checkDateMatch(newRun(snap), sectionRule)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("no section configured errors", func(t *testing.T) {
		_, err := checkDateMatch(newRun(snapshotWithSections(nil)), makeRule(models.RuleTypeDateMatchCheck, `{}`))
		assert.Error(t, err)
	})
}
