// Package engine implements the verification rule engine: it dispatches
// configured rules against a case snapshot and collects findings. Checks
// are pure transformations of the snapshot; the engine never mutates it.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Config contains the engine's tunable thresholds
type Config struct {
	FuzzyNameThreshold      float64 // same-person token-overlap threshold (default: 0.8)
	EvidenceThreshold       float64 // education evidence acceptance score (default: 0.70)
	EvidenceToleranceMonths int     // date band treated as a perfect match (default: 1)
	LookbackYears           int     // observation window length for gap checks (default: 10)
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		FuzzyNameThreshold:      matching.DefaultNameThreshold,
		EvidenceThreshold:       matching.DefaultEvidenceThreshold,
		EvidenceToleranceMonths: matching.DefaultToleranceMonths,
		LookbackYears:           10,
	}
}

// Engine evaluates verification rules against case snapshots
type Engine struct {
	logger ectologger.Logger
	cfg    Config
	now    func() time.Time
}

// NewEngine creates a new verification engine
func NewEngine(logger ectologger.Logger, cfg Config) *Engine {
	return &Engine{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// WithClock overrides the engine's notion of "now". Used by checks to
// resolve PRESENT endpoints deterministically in tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// checkFunc is one rule-type implementation. Returning an error (or
// panicking) discards that rule's findings without aborting the run.
type checkFunc func(run *checkRun, rule models.Rule) ([]models.Finding, error)

// checkRun carries the per-evaluation inputs every check reads from
type checkRun struct {
	snap *models.CaseSnapshot
	cfg  Config
	now  time.Time
	log  ectologger.Logger
}

// Evaluate runs every active rule against the snapshot, in rule sequence
// order, and returns the collected findings. A failing rule contributes
// zero findings; unknown rule types are skipped for forward compatibility.
func (e *Engine) Evaluate(ctx context.Context, snap *models.CaseSnapshot, rules []models.Rule) []models.Finding {
	ctx, span := tracing.StartSpan(ctx, "engine.Engine.Evaluate")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": snap.TenantID,
		"case_id":   snap.ID,
	})

	run := &checkRun{
		snap: snap,
		cfg:  e.cfg,
		now:  e.now(),
		log:  log,
	}

	findings := e.unassignedDocumentFindings(run)

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		check, ok := checkForType(rule.Type)
		if !ok {
			log.WithFields(map[string]any{"rule_id": rule.ID, "rule_type": string(rule.Type)}).
				Debug("Skipping unknown rule type")
			continue
		}

		ruleFindings, err := e.runCheck(run, rule, check)
		if err != nil {
			log.WithError(err).WithFields(map[string]any{"rule_id": rule.ID, "rule_type": string(rule.Type)}).
				Warn("Rule evaluation failed; skipping rule")
			continue
		}
		findings = append(findings, ruleFindings...)
	}

	for i := range findings {
		finalizeFinding(&findings[i], snap, run.now)
	}

	log.WithFields(map[string]any{"finding_count": len(findings)}).Debug("Evaluated case")
	return findings
}

// runCheck isolates a single rule: panics become errors so one broken
// rule never aborts the run.
func (e *Engine) runCheck(run *checkRun, rule models.Rule, check checkFunc) (findings []models.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return check(run, rule)
}

// checkForType maps a rule type to its implementation
func checkForType(t models.RuleType) (checkFunc, bool) {
	switch t {
	case models.RuleTypeGapCheck:
		return checkGaps, true
	case models.RuleTypeOverlapCheck:
		return checkOverlaps, true
	case models.RuleTypeRequiredDocCheck:
		return checkRequiredDoc, true
	case models.RuleTypeDateMatchCheck:
		return checkDateMatch, true
	case models.RuleTypeYearsBoxCheck:
		return checkYearsBox, true
	case models.RuleTypeCompletenessCheck:
		return checkCompleteness, true
	case models.RuleTypeIdentityMatchCheck:
		return checkIdentityMatch, true
	default:
		return nil, false
	}
}

// unassignedDocumentFindings emits a standing warning for every document
// the extraction pipeline could not resolve to a member, so unresolved
// documents are never silently dropped. These come from the dispatcher
// itself, not from a configured rule.
func (e *Engine) unassignedDocumentFindings(run *checkRun) []models.Finding {
	var findings []models.Finding
	for _, doc := range run.snap.Documents {
		if !doc.IsUnassigned() {
			continue
		}
		name := doc.FileName
		if name == "" {
			name = doc.ID
		}
		findings = append(findings, models.Finding{
			RuleID:         "",
			RuleType:       "unassigned_document",
			Status:         models.FindingStatusFail,
			Severity:       models.SeverityWarning,
			Summary:        fmt.Sprintf("document %s is not assigned to any member", name),
			Recommendation: "Review the document and assign it to the correct case member.",
			ClientMessage:  fmt.Sprintf("We could not determine who the document %q belongs to.", name),
			DocumentIDs:    []string{doc.ID},
			Details:        map[string]any{"document_id": doc.ID, "doc_type": doc.DocType},
		})
	}
	return findings
}

// finalizeFinding applies the uniform post-processing: identifiers, case
// linkage, timestamps, and the severity-based default for the outbound
// inclusion flag when the check did not set one explicitly.
func finalizeFinding(f *models.Finding, snap *models.CaseSnapshot, now time.Time) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.CaseID = snap.ID
	f.TenantID = snap.TenantID
	f.CreatedAt = now
	if !f.IncludeExplicit() {
		f.IncludeInLetter = f.Severity == models.SeverityError && f.Status == models.FindingStatusFail
	}
	if f.MemberID != nil && f.MemberName == "" {
		if m := snap.MemberByID(*f.MemberID); m != nil {
			f.MemberName = m.FullName
		}
	}
}
