package models

// Relationship tags a member's relation to the primary applicant
type Relationship string

const (
	RelationshipPrimary Relationship = "primary_applicant"
	RelationshipSpouse  Relationship = "spouse"
	RelationshipChild   Relationship = "child"
	RelationshipParent  Relationship = "parent"
	RelationshipSibling Relationship = "sibling"
	RelationshipOther   Relationship = "other"
)

// DOBPrecision indicates how precise a recorded date of birth is
type DOBPrecision string

const (
	DOBPrecisionDay     DOBPrecision = "day"
	DOBPrecisionMonth   DOBPrecision = "month"
	DOBPrecisionUnknown DOBPrecision = "unknown"
)

// UnassignedMemberID is the sentinel used by the extraction pipeline for
// documents it could not resolve to a member
const UnassignedMemberID = "unassigned"

// AdultAge is the age at which a member stops being exempt from
// timeline checks
const AdultAge = 18

// Member is one person on a case. Built by the upstream roster builder;
// the engine only reads it.
type Member struct {
	ID           string       `json:"id"`
	FullName     string       `json:"full_name"`
	Relationship Relationship `json:"relationship"`
	DateOfBirth  *string      `json:"date_of_birth,omitempty"`
	DOBPrecision DOBPrecision `json:"dob_precision,omitempty"`
	Age          *int         `json:"age,omitempty"`
}

// IsMinor reports whether the member is exempt from adult-only checks.
// Members with no computed age are treated as adults.
func (m *Member) IsMinor() bool {
	return m.Age != nil && *m.Age < AdultAge
}

// Document is an uploaded file already resolved (or not) to a member
type Document struct {
	ID       string `json:"id"`
	FileName string `json:"file_name,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
	MemberID string `json:"member_id"`
}

// IsUnassigned reports whether the extraction pipeline failed to resolve
// this document to a member
func (d *Document) IsUnassigned() bool {
	return d.MemberID == "" || d.MemberID == UnassignedMemberID
}

// IntervalRow is one row of a member's history timeline. From/To are
// "YYYY-MM" strings; To may be "PRESENT" for an open-ended row. Either
// endpoint may be missing when extraction was partial.
type IntervalRow struct {
	From        *string `json:"from,omitempty"`
	To          *string `json:"to,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
}

// EducationRow is a declared education-history entry on the identity form
type EducationRow struct {
	Institution  string  `json:"institution"`
	FieldOfStudy string  `json:"field_of_study,omitempty"`
	Credential   string  `json:"credential,omitempty"`
	From         *string `json:"from,omitempty"`
	To           *string `json:"to,omitempty"`
}

// IdentityForm is the structured extract of a member's primary identity form
type IdentityForm struct {
	DocumentID    string                   `json:"document_id"`
	FullName      string                   `json:"full_name,omitempty"`
	DateOfBirth   *string                  `json:"date_of_birth,omitempty"`
	Sections      map[string][]IntervalRow `json:"sections,omitempty"`
	Education     []EducationRow           `json:"education,omitempty"`
	DeclaredYears map[string]float64       `json:"declared_years,omitempty"`
}

// RosterEntry is one person row on a family roster form
type RosterEntry struct {
	FullName     string  `json:"full_name,omitempty"`
	Relationship string  `json:"relationship,omitempty"`
	DateOfBirth  *string `json:"date_of_birth,omitempty"`
}

// RosterForm is the structured extract of a family roster form
type RosterForm struct {
	DocumentID string        `json:"document_id"`
	Entries    []RosterEntry `json:"entries,omitempty"`
}

// EvidenceClaim is a structured assertion extracted from a supporting
// document (free-text person name plus whatever dates appear on it)
type EvidenceClaim struct {
	DocumentID string   `json:"document_id"`
	PersonName string   `json:"person_name,omitempty"`
	Dates      []string `json:"dates,omitempty"`
	Issuer     string   `json:"issuer,omitempty"`
	DocType    string   `json:"doc_type,omitempty"`
}

// EducationClaim is the richer evidence shape extracted from education
// documents (transcripts, diplomas)
type EducationClaim struct {
	DocumentID   string  `json:"document_id"`
	Credential   string  `json:"credential,omitempty"`
	FieldOfStudy string  `json:"field_of_study,omitempty"`
	Institution  string  `json:"institution,omitempty"`
	From         *string `json:"from,omitempty"`
	To           *string `json:"to,omitempty"`
	DateAnchor   string  `json:"date_anchor,omitempty"`
	AnchorType   string  `json:"anchor_type,omitempty"`
}

// MemberExtracts holds everything the extraction pipeline produced for one member
type MemberExtracts struct {
	Identity  *IdentityForm    `json:"identity,omitempty"`
	Roster    *RosterForm      `json:"roster,omitempty"`
	Evidence  []EvidenceClaim  `json:"evidence,omitempty"`
	Education []EducationClaim `json:"education,omitempty"`
}

// CaseSnapshot is the read-only input to one engine run. Extracts is keyed
// by member ID.
type CaseSnapshot struct {
	ID        string                    `json:"id"`
	TenantID  string                    `json:"tenant_id"`
	Members   []Member                  `json:"members"`
	Documents []Document                `json:"documents,omitempty"`
	Extracts  map[string]MemberExtracts `json:"extracts,omitempty"`
}

// MemberByID returns the member with the given ID, or nil
func (c *CaseSnapshot) MemberByID(id string) *Member {
	for i := range c.Members {
		if c.Members[i].ID == id {
			return &c.Members[i]
		}
	}
	return nil
}

// ExtractsFor returns the extracts recorded for a member. Missing entries
// come back as an empty value so checks can degrade without nil guards.
func (c *CaseSnapshot) ExtractsFor(memberID string) MemberExtracts {
	if c.Extracts == nil {
		return MemberExtracts{}
	}
	return c.Extracts[memberID]
}
