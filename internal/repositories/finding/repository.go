package finding

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Repository handles finding persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new finding repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// row is the storage shape of a finding. Document IDs and details are
// stored as JSONB.
type row struct {
	ID              string          `db:"id"`
	CaseID          string          `db:"case_id"`
	TenantID        string          `db:"tenant_id"`
	RuleID          *string         `db:"rule_id"`
	RuleType        string          `db:"rule_type"`
	Status          string          `db:"status"`
	Severity        string          `db:"severity"`
	MemberID        *string         `db:"member_id"`
	MemberName      string          `db:"member_name"`
	Summary         string          `db:"summary"`
	Recommendation  string          `db:"recommendation"`
	ClientMessage   string          `db:"client_message"`
	DocumentIDs     json.RawMessage `db:"document_ids"`
	Details         json.RawMessage `db:"details"`
	IncludeInLetter bool            `db:"include_in_letter"`
	CreatedAt       time.Time       `db:"created_at"`
}

func toRow(f models.Finding) (row, error) {
	docIDs, err := json.Marshal(f.DocumentIDs)
	if err != nil {
		return row{}, err
	}
	details, err := json.Marshal(f.Details)
	if err != nil {
		return row{}, err
	}

	var ruleID *string
	if f.RuleID != "" {
		id := f.RuleID
		ruleID = &id
	}

	return row{
		ID:              f.ID,
		CaseID:          f.CaseID,
		TenantID:        f.TenantID,
		RuleID:          ruleID,
		RuleType:        string(f.RuleType),
		Status:          string(f.Status),
		Severity:        string(f.Severity),
		MemberID:        f.MemberID,
		MemberName:      f.MemberName,
		Summary:         f.Summary,
		Recommendation:  f.Recommendation,
		ClientMessage:   f.ClientMessage,
		DocumentIDs:     docIDs,
		Details:         details,
		IncludeInLetter: f.IncludeInLetter,
		CreatedAt:       f.CreatedAt,
	}, nil
}

func (r row) toModel() models.Finding {
	f := models.Finding{
		ID:              r.ID,
		CaseID:          r.CaseID,
		TenantID:        r.TenantID,
		RuleType:        models.RuleType(r.RuleType),
		Status:          models.FindingStatus(r.Status),
		Severity:        models.Severity(r.Severity),
		MemberID:        r.MemberID,
		MemberName:      r.MemberName,
		Summary:         r.Summary,
		Recommendation:  r.Recommendation,
		ClientMessage:   r.ClientMessage,
		IncludeInLetter: r.IncludeInLetter,
		CreatedAt:       r.CreatedAt,
	}
	if r.RuleID != nil {
		f.RuleID = *r.RuleID
	}
	if len(r.DocumentIDs) > 0 {
		_ = json.Unmarshal(r.DocumentIDs, &f.DocumentIDs)
	}
	if len(r.Details) > 0 {
		_ = json.Unmarshal(r.Details, &f.Details)
	}
	return f
}

var columns = []string{
	"id", "case_id", "tenant_id", "rule_id", "rule_type", "status", "severity",
	"member_id", "member_name", "summary", "recommendation", "client_message",
	"document_ids", "details", "include_in_letter", "created_at",
}

// SaveBatch inserts a batch of findings from one engine run
func (r *Repository) SaveBatch(ctx context.Context, findings []models.Finding) error {
	ctx, span := tracing.StartSpan(ctx, "finding.Repository.SaveBatch")
	defer span.End()

	if len(findings) == 0 {
		return nil
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("findings")
	sb.Cols(columns...)
	for _, f := range findings {
		stored, err := toRow(f)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to serialize finding")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to serialize finding")
		}
		sb.Values(
			stored.ID, stored.CaseID, stored.TenantID, stored.RuleID, stored.RuleType,
			stored.Status, stored.Severity, stored.MemberID, stored.MemberName,
			stored.Summary, stored.Recommendation, stored.ClientMessage,
			stored.DocumentIDs, stored.Details, stored.IncludeInLetter, stored.CreatedAt,
		)
	}

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to save findings")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save findings")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"case_id": findings[0].CaseID,
		"count":   len(findings),
	}).Info("Saved findings")
	return nil
}

// ListByCase retrieves all findings for a case
func (r *Repository) ListByCase(ctx context.Context, tenantID, caseID string) ([]models.Finding, error) {
	ctx, span := tracing.StartSpan(ctx, "finding.Repository.ListByCase")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("findings")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("case_id", caseID),
	)
	sb.OrderBy("created_at ASC", "id ASC")

	query, args := sb.Build()
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list findings")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list findings")
	}

	findings := make([]models.Finding, 0, len(rows))
	for _, stored := range rows {
		findings = append(findings, stored.toModel())
	}
	return findings, nil
}

// DeleteByCase removes all findings for a case. Re-verification replaces
// the case's findings wholesale rather than diffing.
func (r *Repository) DeleteByCase(ctx context.Context, tenantID, caseID string) error {
	ctx, span := tracing.StartSpan(ctx, "finding.Repository.DeleteByCase")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	sb.DeleteFrom("findings")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("case_id", caseID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete findings")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete findings")
	}
	return nil
}

// Replace deletes a case's findings and saves the new batch in one
// transaction so readers never observe a half-replaced case.
func (r *Repository) Replace(ctx context.Context, tenantID, caseID string, findings []models.Finding) error {
	ctx, span := tracing.StartSpan(ctx, "finding.Repository.Replace")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom("findings")
	del.Where(
		del.Equal("tenant_id", tenantID),
		del.Equal("case_id", caseID),
	)
	delQuery, delArgs := del.Build()
	if _, err := tx.ExecContext(ctx, delQuery, delArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear findings")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to clear findings")
	}

	if len(findings) > 0 {
		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("findings")
		sb.Cols(columns...)
		for _, f := range findings {
			stored, err := toRow(f)
			if err != nil {
				r.logger.WithContext(ctx).WithError(err).Error("Failed to serialize finding")
				return httperror.NewHTTPError(http.StatusInternalServerError, "failed to serialize finding")
			}
			sb.Values(
				stored.ID, stored.CaseID, stored.TenantID, stored.RuleID, stored.RuleType,
				stored.Status, stored.Severity, stored.MemberID, stored.MemberName,
				stored.Summary, stored.Recommendation, stored.ClientMessage,
				stored.DocumentIDs, stored.Details, stored.IncludeInLetter, stored.CreatedAt,
			)
		}
		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to save findings")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save findings")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit findings")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"case_id": caseID,
		"count":   len(findings),
	}).Info("Replaced case findings")
	return nil
}
