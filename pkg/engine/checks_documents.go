package engine

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Structured form names accepted by required_doc_check
const (
	FormIdentity = "identity"
	FormRoster   = "roster"
)

// defaultRequiredRosterFields are checked by completeness_check when the
// rule does not configure its own list
var defaultRequiredRosterFields = []string{"full_name", "relationship", "date_of_birth"}

// checkRequiredDoc flags members missing a specific structured extract
func checkRequiredDoc(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.RequiredDocCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	if cfg.RequiredForm != FormIdentity && cfg.RequiredForm != FormRoster {
		return nil, fmt.Errorf("required_doc_check rule %s has unknown form %q", rule.ID, cfg.RequiredForm)
	}

	applies := func(m *models.Member) bool {
		if len(cfg.Relationships) == 0 {
			return true
		}
		for _, rel := range cfg.Relationships {
			if m.Relationship == rel {
				return true
			}
		}
		return false
	}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		if !applies(member) {
			continue
		}

		ext := run.snap.ExtractsFor(member.ID)
		var present bool
		var docID string
		switch cfg.RequiredForm {
		case FormIdentity:
			if ext.Identity != nil {
				present = true
				docID = ext.Identity.DocumentID
			}
		case FormRoster:
			if ext.Roster != nil {
				present = true
				docID = ext.Roster.DocumentID
			}
		}

		vars := map[string]string{
			"member_name": member.FullName,
			"form":        cfg.RequiredForm,
		}

		if !present {
			f := ruleFinding(rule, member, models.FindingStatusFail)
			f.Summary = fmt.Sprintf("no %s form extracted for %s", cfg.RequiredForm, member.FullName)
			f.Recommendation = fmt.Sprintf("Request the %s form for %s.", cfg.RequiredForm, member.FullName)
			f.ClientMessage = renderClientMessage(rule.MessageTemplate,
				fmt.Sprintf("We are missing the required %s form for %s.", cfg.RequiredForm, member.FullName),
				vars)
			f.Details = map[string]any{"form": cfg.RequiredForm}
			findings = append(findings, f)
			continue
		}

		f := ruleFinding(rule, member, models.FindingStatusPass)
		f.Summary = fmt.Sprintf("%s form present for %s", cfg.RequiredForm, member.FullName)
		if docID != "" {
			f.DocumentIDs = []string{docID}
		}
		f.Details = map[string]any{"form": cfg.RequiredForm, "document_id": docID}
		findings = append(findings, f)
	}
	return findings, nil
}

// checkCompleteness flags required sub-fields missing from roster records
func checkCompleteness(run *checkRun, rule models.Rule) ([]models.Finding, error) {
	var cfg models.CompletenessCheckConfig
	if err := decodeConfig(rule, &cfg); err != nil {
		return nil, err
	}
	required := cfg.RequiredFields
	if len(required) == 0 {
		required = defaultRequiredRosterFields
	}

	var findings []models.Finding
	for i := range run.snap.Members {
		member := &run.snap.Members[i]
		ext := run.snap.ExtractsFor(member.ID)
		if ext.Roster == nil {
			continue // required_doc_check owns missing forms
		}

		type incompleteEntry struct {
			Index   int      `json:"index"`
			Name    string   `json:"name,omitempty"`
			Missing []string `json:"missing"`
		}
		var incomplete []incompleteEntry

		for idx, entry := range ext.Roster.Entries {
			var missing []string
			for _, field := range required {
				switch field {
				case "full_name":
					if strings.TrimSpace(entry.FullName) == "" {
						missing = append(missing, field)
					}
				case "relationship":
					if strings.TrimSpace(entry.Relationship) == "" {
						missing = append(missing, field)
					}
				case "date_of_birth":
					if entry.DateOfBirth == nil || strings.TrimSpace(*entry.DateOfBirth) == "" {
						missing = append(missing, field)
					}
				}
			}
			if len(missing) > 0 {
				incomplete = append(incomplete, incompleteEntry{Index: idx, Name: entry.FullName, Missing: missing})
			}
		}

		if len(incomplete) == 0 {
			f := ruleFinding(rule, member, models.FindingStatusPass)
			f.Summary = fmt.Sprintf("roster form for %s is complete", member.FullName)
			f.DocumentIDs = []string{ext.Roster.DocumentID}
			f.Details = map[string]any{"entries": len(ext.Roster.Entries)}
			findings = append(findings, f)
			continue
		}

		var fieldList []string
		for _, e := range incomplete {
			fieldList = append(fieldList, strings.Join(e.Missing, ", "))
		}
		vars := map[string]string{
			"member_name": member.FullName,
			"fields":      strings.Join(fieldList, "; "),
		}

		f := ruleFinding(rule, member, models.FindingStatusFail)
		f.Summary = fmt.Sprintf("roster form for %s has %d incomplete entr(ies)", member.FullName, len(incomplete))
		f.Recommendation = "Request the missing roster fields from the applicant."
		f.ClientMessage = renderClientMessage(rule.MessageTemplate,
			fmt.Sprintf("The family roster form for %s is missing some required details (%s). Please provide the missing information.",
				member.FullName, strings.Join(fieldList, "; ")),
			vars)
		f.DocumentIDs = []string{ext.Roster.DocumentID}
		f.Details = map[string]any{"incomplete": incomplete, "required_fields": required}
		findings = append(findings, f)
	}
	return findings, nil
}
