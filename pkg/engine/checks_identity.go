package engine

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
)

// identityObservation is one document's claim about who a member is
type identityObservation struct {
	Source      string `json:"source"`
	DocumentID  string `json:"document_id,omitempty"`
	Name        string `json:"name,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
}

// checkIdentityMatch cross-references every document that names a member
// and flags names or birth dates that disagree with the case record.
// Differently-formatted records of the same fact (initials, day vs month
// precision) are not disagreements.
func checkIdentityMatch(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.IdentityMatchCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	threshold := cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = run.cfg.FuzzyNameThreshold
	}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		observations := collectObservations(run.snap, member, threshold)
		if len(observations) == 0 {
			continue // no document names this member; nothing to cross-check
		}

		var inconsistent []identityObservation
		for _, obs := range observations {
			nameOK := obs.Name == "" ||
				matching.MatchNames(obs.Name, member.FullName, threshold) != matching.TierNone
			dobOK := obs.DateOfBirth == "" || member.DateOfBirth == nil ||
				matching.DOBMatches(obs.DateOfBirth, *member.DateOfBirth)
			if !nameOK || !dobOK {
				inconsistent = append(inconsistent, obs)
			}
		}

		vars := map[string]string{
			"member_name": member.FullName,
		}

		if len(inconsistent) == 0 {
			f := ruleFinding(rule, member, models.FindingStatusPass)
			f.Summary = fmt.Sprintf("identity details for %s are consistent across %d document(s)", member.FullName, len(observations))
			f.Details = map[string]any{"observations": len(observations)}
			findings = append(findings, f)
			continue
		}

		var sources []string
		var docIDs []string
		for _, obs := range inconsistent {
			sources = append(sources, obs.Source)
			if obs.DocumentID != "" {
				docIDs = appendUnique(docIDs, obs.DocumentID)
			}
		}

		f := ruleFinding(rule, member, models.FindingStatusFail)
		f.Summary = fmt.Sprintf("%d document(s) disagree with the recorded identity of %s", len(inconsistent), member.FullName)
		f.Recommendation = fmt.Sprintf("Verify the name and date of birth for %s against: %s.", member.FullName, strings.Join(sources, ", "))
		f.ClientMessage = renderClientMessage(rule.MessageTemplate,
			fmt.Sprintf("Some of the documents for %s show a different name or date of birth than the case record. Please confirm which details are correct.", member.FullName),
			vars)
		f.DocumentIDs = docIDs
		f.Details = map[string]any{
			"recorded_name": member.FullName,
			"recorded_dob":  member.DateOfBirth,
			"inconsistent":  inconsistent,
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// collectObservations gathers every (name, dob) claim the member's
// documents make about them. Roster entries belong to the whole case, so
// an entry is attributed to the member only when its name matches.
func collectObservations(snap *models.CaseSnapshot, member *models.Member, threshold float64) []identityObservation {
	var out []identityObservation

	ext := snap.ExtractsFor(member.ID)
	if ext.Identity != nil {
		obs := identityObservation{
			Source:     "identity form",
			DocumentID: ext.Identity.DocumentID,
			Name:       ext.Identity.FullName,
		}
		if ext.Identity.DateOfBirth != nil {
			obs.DateOfBirth = *ext.Identity.DateOfBirth
		}
		if obs.Name != "" || obs.DateOfBirth != "" {
			out = append(out, obs)
		}
	}

	for _, me := range snap.Extracts {
		if me.Roster == nil {
			continue
		}
		for _, entry := range me.Roster.Entries {
			if matching.MatchNames(entry.FullName, member.FullName, threshold) == matching.TierNone {
				continue
			}
			obs := identityObservation{
				Source:     "roster form",
				DocumentID: me.Roster.DocumentID,
				Name:       entry.FullName,
			}
			if entry.DateOfBirth != nil {
				obs.DateOfBirth = *entry.DateOfBirth
			}
			out = append(out, obs)
		}
	}

	for _, claim := range ext.Evidence {
		if claim.PersonName == "" {
			continue
		}
		out = append(out, identityObservation{
			Source:     fmt.Sprintf("%s document", claim.DocType),
			DocumentID: claim.DocumentID,
			Name:       claim.PersonName,
		})
	}

	return out
}
