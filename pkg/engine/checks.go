package engine

import (
	"encoding/json"

	"github.com/Ramsey-B/sage/pkg/models"
)

// ruleFinding starts a finding tied to a rule and optionally a member.
// The dispatcher fills in case linkage and identifiers afterwards.
func ruleFinding(rule models.Rule, m *models.Member, status models.FindingStatus) models.Finding {
	f := models.Finding{
		RuleID:   rule.ID,
		RuleType: rule.Type,
		Status:   status,
		Severity: rule.Severity,
	}
	if m != nil {
		id := m.ID
		f.MemberID = &id
		f.MemberName = m.FullName
	}
	return f
}

// decodeConfig unmarshals a rule's JSON config into its typed payload.
// An absent config leaves the payload zero-valued.
func decodeConfig(rule models.Rule, dest any) error {
	if len(rule.Config) == 0 {
		return nil
	}
	return json.Unmarshal(rule.Config, dest)
}
