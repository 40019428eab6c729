package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestCheckIdentityMatch(t *testing.T) {
	identityRule := makeRule(models.RuleTypeIdentityMatchCheck, `{}`)

	baseSnapshot := func() *models.CaseSnapshot {
		snap := snapshotWithSections(nil)
		snap.Members[0].DateOfBirth = strp("1990-01-15")
		ext := snap.Extracts["m1"]
		ext.Identity.FullName = "Garcia, Maria"
		ext.Identity.DateOfBirth = strp("1990-01")
		snap.Extracts["m1"] = ext
		return snap
	}

	t.Run("consistent documents pass", func(t *testing.T) {
		// form name is reordered and the form DOB is month precision;
		// neither is a disagreement
		snap := baseSnapshot()
		findings, err := checkIdentityMatch(newRun(snap), identityRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, models.FindingStatusPass, findings[0].Status)
		assert.Equal(t, 1, findings[0].Details["observations"])
	})

	t.Run("conflicting evidence name fails", func(t *testing.T) {
		snap := baseSnapshot()
		ext := snap.Extracts["m1"]
		ext.Evidence = []models.EvidenceClaim{
			{DocumentID: "doc-bank", PersonName: "John Smith", DocType: "bank_statement"},
		}
		snap.Extracts["m1"] = ext

		findings, err := checkIdentityMatch(newRun(snap), identityRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, models.FindingStatusFail, f.Status)
		assert.Equal(t, []string{"doc-bank"}, f.DocumentIDs)
		assert.Equal(t, "Maria Garcia", f.Details["recorded_name"])
	})

	t.Run("conflicting form birth date fails", func(t *testing.T) {
		snap := baseSnapshot()
		ext := snap.Extracts["m1"]
		ext.Identity.DateOfBirth = strp("1991-06-02")
		snap.Extracts["m1"] = ext

		findings, err := checkIdentityMatch(newRun(snap), identityRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, models.FindingStatusFail, findings[0].Status)
	})

	t.Run("roster entries attributed by name", func(t *testing.T) {
		snap := baseSnapshot()
		ext := snap.Extracts["m1"]
		ext.Roster = &models.RosterForm{
			DocumentID: "doc-roster",
			Entries: []models.RosterEntry{
				{FullName: "Maria Garcia", DateOfBirth: strp("1985-12-01")},
				{FullName: "John Garcia", DateOfBirth: strp("1989-05-20")},
			},
		}
		snap.Extracts["m1"] = ext

		findings, err := checkIdentityMatch(newRun(snap), identityRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		// only the matching entry is attributed, and its DOB disagrees
		f := findings[0]
		assert.Equal(t, models.FindingStatusFail, f.Status)
		assert.Equal(t, []string{"doc-roster"}, f.DocumentIDs)
	})

	t.Run("no observations skips the member", func(t *testing.T) {
		snap := snapshotWithSections(nil)
		snap.Extracts = nil
		findings, err := checkIdentityMatch(newRun(snap), identityRule)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("member without recorded dob accepts any dob", func(t *testing.T) {
		snap := baseSnapshot()
		snap.Members[0].DateOfBirth = nil
		ext := snap.Extracts["m1"]
		ext.Identity.DateOfBirth = strp("1975-01-01")
		snap.Extracts["m1"] = ext

		findings, err := checkIdentityMatch(newRun(snap), identityRule)
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, models.FindingStatusPass, findings[0].Status)
	})
}
