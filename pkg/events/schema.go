package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/sage/pkg/models"
)

// EventType defines the type of event
type EventType string

const (
	// Finding events
	EventTypeFindingCreated EventType = "finding.created"

	// Case events
	EventTypeCaseVerified EventType = "case.verified"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	TenantID      string    `json:"tenant_id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// FindingCreatedEvent is emitted for each failing finding a verification
// run produces
type FindingCreatedEvent struct {
	BaseEvent
	CaseID          string               `json:"case_id"`
	FindingID       string               `json:"finding_id"`
	RuleID          string               `json:"rule_id,omitempty"`
	RuleType        models.RuleType      `json:"rule_type"`
	Status          models.FindingStatus `json:"status"`
	Severity        models.Severity      `json:"severity"`
	MemberID        *string              `json:"member_id,omitempty"`
	Summary         string               `json:"summary"`
	ClientMessage   string               `json:"client_message,omitempty"`
	IncludeInLetter bool                 `json:"include_in_letter"`
}

// CaseVerifiedEvent is emitted once per verification run, after all
// findings are persisted
type CaseVerifiedEvent struct {
	BaseEvent
	CaseID       string `json:"case_id"`
	RuleCount    int    `json:"rule_count"`
	FindingCount int    `json:"finding_count"`
	FailCount    int    `json:"fail_count"`
	ErrorCount   int    `json:"error_count"`
	WarningCount int    `json:"warning_count"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType, tenantID string) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		TenantID:      tenantID,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
