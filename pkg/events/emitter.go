// Package events handles event emission for verification results
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for verification runs
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitFindingsCreated emits one finding.created event per failing finding
func (e *Emitter) EmitFindingsCreated(ctx context.Context, findings []models.Finding) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitFindingsCreated")
	defer span.End()

	var outbound []*kafka.VerificationEvent
	for _, f := range findings {
		if f.Status != models.FindingStatusFail {
			continue
		}

		payload := FindingCreatedEvent{
			BaseEvent:       NewBaseEvent(EventTypeFindingCreated, f.TenantID),
			CaseID:          f.CaseID,
			FindingID:       f.ID,
			RuleID:          f.RuleID,
			RuleType:        f.RuleType,
			Status:          f.Status,
			Severity:        f.Severity,
			MemberID:        f.MemberID,
			Summary:         f.Summary,
			ClientMessage:   f.ClientMessage,
			IncludeInLetter: f.IncludeInLetter,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		outbound = append(outbound, &kafka.VerificationEvent{
			EventType: string(EventTypeFindingCreated),
			TenantID:  f.TenantID,
			CaseID:    f.CaseID,
			Data:      data,
		})
	}

	if err := e.producer.PublishVerificationEvents(ctx, outbound); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit finding.created events")
		return err
	}
	return nil
}

// EmitCaseVerified emits the run summary event for a case
func (e *Emitter) EmitCaseVerified(ctx context.Context, tenantID, caseID string, ruleCount int, findings []models.Finding) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCaseVerified")
	defer span.End()

	var failCount, errorCount, warningCount int
	for _, f := range findings {
		if f.Status != models.FindingStatusFail {
			continue
		}
		failCount++
		switch f.Severity {
		case models.SeverityError:
			errorCount++
		case models.SeverityWarning:
			warningCount++
		}
	}

	payload := CaseVerifiedEvent{
		BaseEvent:    NewBaseEvent(EventTypeCaseVerified, tenantID),
		CaseID:       caseID,
		RuleCount:    ruleCount,
		FindingCount: len(findings),
		FailCount:    failCount,
		ErrorCount:   errorCount,
		WarningCount: warningCount,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &kafka.VerificationEvent{
		EventType: string(EventTypeCaseVerified),
		TenantID:  tenantID,
		CaseID:    caseID,
		Data:      data,
	}

	if err := e.producer.PublishVerificationEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit case.verified event")
		return err
	}
	return nil
}
