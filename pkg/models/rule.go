package models

import (
	"encoding/json"
	"time"
)

// RuleType identifies which check implementation a rule dispatches to
type RuleType string

const (
	RuleTypeGapCheck           RuleType = "gap_check"
	RuleTypeOverlapCheck       RuleType = "overlap_check"
	RuleTypeRequiredDocCheck   RuleType = "required_doc_check"
	RuleTypeDateMatchCheck     RuleType = "date_match_check"
	RuleTypeYearsBoxCheck      RuleType = "years_box_check"
	RuleTypeCompletenessCheck  RuleType = "completeness_check"
	RuleTypeIdentityMatchCheck RuleType = "identity_match_check"
)

// Severity is the weight a rule's findings carry
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule is one configured verification rule. Config is decoded into a
// per-type payload by the check that handles the rule.
type Rule struct {
	ID              string          `json:"id" db:"id"`
	TenantID        string          `json:"tenant_id" db:"tenant_id"`
	Type            RuleType        `json:"type" db:"rule_type"`
	Name            string          `json:"name" db:"name"`
	Description     *string         `json:"description,omitempty" db:"description"`
	Sequence        int             `json:"sequence" db:"sequence"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	Severity        Severity        `json:"severity" db:"severity"`
	Config          json.RawMessage `json:"config,omitempty" db:"config"`
	MessageTemplate string          `json:"message_template,omitempty" db:"message_template"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// GapCheckConfig configures a gap_check rule
type GapCheckConfig struct {
	Section       string `json:"section"`
	LookbackYears int    `json:"lookback_years,omitempty"` // default 10
}

// OverlapCheckConfig configures an overlap_check rule
type OverlapCheckConfig struct {
	Section    string   `json:"section"`
	Categories []string `json:"categories,omitempty"` // categories that conflict with themselves
}

// RequiredDocCheckConfig configures a required_doc_check rule
type RequiredDocCheckConfig struct {
	RequiredForm  string         `json:"required_form"` // "identity" or "roster"
	Relationships []Relationship `json:"relationships,omitempty"`
}

// DateMatchCheckConfig configures a date_match_check rule
type DateMatchCheckConfig struct {
	Section         string  `json:"section,omitempty"`
	ToleranceMonths int     `json:"tolerance,omitempty"` // default 1
	Threshold       float64 `json:"threshold,omitempty"` // default 0.70
}

// YearsBoxCheckConfig configures a years_box_check rule
type YearsBoxCheckConfig struct {
	Section        string  `json:"section"`
	ToleranceYears float64 `json:"tolerance,omitempty"` // default 0.5
}

// CompletenessCheckConfig configures a completeness_check rule
type CompletenessCheckConfig struct {
	RequiredFields []string `json:"required_fields,omitempty"`
}

// IdentityMatchCheckConfig configures an identity_match_check rule
type IdentityMatchCheckConfig struct {
	FuzzyThreshold float64 `json:"fuzzy_threshold,omitempty"` // default 0.8
}

// CreateRuleRequest is the request to create a verification rule
type CreateRuleRequest struct {
	Type            RuleType        `json:"type" validate:"required"`
	Name            string          `json:"name" validate:"required"`
	Description     *string         `json:"description,omitempty"`
	Sequence        int             `json:"sequence"`
	IsActive        bool            `json:"is_active"`
	Severity        Severity        `json:"severity" validate:"required,oneof=error warning info"`
	Config          json.RawMessage `json:"config,omitempty"`
	MessageTemplate string          `json:"message_template,omitempty"`
}

// UpdateRuleRequest is the request to update a verification rule
type UpdateRuleRequest struct {
	Name            *string         `json:"name,omitempty"`
	Description     *string         `json:"description,omitempty"`
	Sequence        *int            `json:"sequence,omitempty"`
	IsActive        *bool           `json:"is_active,omitempty"`
	Severity        *Severity       `json:"severity,omitempty" validate:"omitempty,oneof=error warning info"`
	Config          json.RawMessage `json:"config,omitempty"`
	MessageTemplate *string         `json:"message_template,omitempty"`
}
