package models

import "time"

// FindingStatus is a pass or fail verdict
type FindingStatus string

const (
	FindingStatusPass FindingStatus = "pass"
	FindingStatusFail FindingStatus = "fail"
)

// Finding is one unit of engine output: a verdict tied to a rule, usually
// a member, and optionally specific evidence documents. Details carries
// enough structure for an audit trail without re-deriving the match.
type Finding struct {
	ID              string         `json:"id"`
	CaseID          string         `json:"case_id"`
	TenantID        string         `json:"tenant_id"`
	RuleID          string         `json:"rule_id"`
	RuleType        RuleType       `json:"rule_type"`
	Status          FindingStatus  `json:"status"`
	Severity        Severity       `json:"severity"`
	MemberID        *string        `json:"member_id,omitempty"`
	MemberName      string         `json:"member_name,omitempty"`
	Summary         string         `json:"summary"`
	Recommendation  string         `json:"recommendation,omitempty"`
	ClientMessage   string         `json:"client_message,omitempty"`
	DocumentIDs     []string       `json:"document_ids,omitempty"`
	Details         map[string]any `json:"details,omitempty"`
	IncludeInLetter bool           `json:"include_in_letter"`
	CreatedAt       time.Time      `json:"created_at"`

	includeSet bool
}

// SetInclude overrides the severity-based default for the outbound
// communication flag
func (f *Finding) SetInclude(include bool) {
	f.IncludeInLetter = include
	f.includeSet = true
}

// IncludeExplicit reports whether a check already decided the inclusion
// flag, in which case the dispatcher leaves it alone
func (f *Finding) IncludeExplicit() bool {
	return f.includeSet
}
