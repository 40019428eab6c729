// Package processor handles incoming case.extracted messages: it loads the
// tenant's rule set, runs the verification engine over the case snapshot,
// persists the findings, and emits the result events.
package processor

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	findingrepo "github.com/Ramsey-B/sage/internal/repositories/finding"
	rulerepo "github.com/Ramsey-B/sage/internal/repositories/rule"
	"github.com/Ramsey-B/sage/pkg/engine"
	"github.com/Ramsey-B/sage/pkg/events"
	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Processor handles message processing for verification runs
type Processor struct {
	logger      ectologger.Logger
	ruleRepo    *rulerepo.Repository
	findingRepo *findingrepo.Repository
	engine      *engine.Engine
	emitter     *events.Emitter
}

// NewProcessor creates a new verification processor
func NewProcessor(
	logger ectologger.Logger,
	ruleRepo *rulerepo.Repository,
	findingRepo *findingrepo.Repository,
	eng *engine.Engine,
	emitter *events.Emitter,
) *Processor {
	return &Processor{
		logger:      logger,
		ruleRepo:    ruleRepo,
		findingRepo: findingRepo,
		engine:      eng,
		emitter:     emitter,
	}
}

// HandleMessage is the kafka.MessageHandler for the case-extracted topic
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	if !msg.IsCaseExtracted() {
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"topic": msg.Topic,
			"key":   msg.Key,
		}).Debug("Skipping non case.extracted message")
		return nil
	}

	snap := msg.GetSnapshot()
	if snap == nil {
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"case_id": msg.GetCaseID(),
		}).Warn("case.extracted message has no snapshot; skipping")
		return nil
	}
	if snap.ID == "" {
		snap.ID = msg.GetCaseID()
	}
	if snap.TenantID == "" {
		snap.TenantID = msg.GetTenantID()
	}
	if snap.TenantID == "" {
		return fmt.Errorf("case.extracted message for case %s has no tenant", snap.ID)
	}

	return p.VerifyCase(ctx, snap)
}

// VerifyCase runs the full verification pipeline for one case snapshot.
// The HTTP re-verification route calls this directly.
func (p *Processor) VerifyCase(ctx context.Context, snap *models.CaseSnapshot) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.VerifyCase")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": snap.TenantID,
		"case_id":   snap.ID,
	})

	rules, err := p.ruleRepo.ListActive(ctx, snap.TenantID)
	if err != nil {
		log.WithError(err).Error("Failed to load verification rules")
		return err
	}

	findings := p.engine.Evaluate(ctx, snap, rules)

	if err := p.findingRepo.Replace(ctx, snap.TenantID, snap.ID, findings); err != nil {
		log.WithError(err).Error("Failed to persist findings")
		return err
	}

	// Event emission is best effort once findings are persisted. A consumer
	// that missed an event can re-read the findings through the API.
	if err := p.emitter.EmitFindingsCreated(ctx, findings); err != nil {
		log.WithError(err).Warn("Failed to emit finding events")
	}
	if err := p.emitter.EmitCaseVerified(ctx, snap.TenantID, snap.ID, len(rules), findings); err != nil {
		log.WithError(err).Warn("Failed to emit case.verified event")
	}

	log.WithFields(map[string]any{
		"rule_count":    len(rules),
		"finding_count": len(findings),
	}).Info("Verified case")
	return nil
}
