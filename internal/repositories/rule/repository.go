package rule

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Repository handles verification rule persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new verification rule repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new verification rule
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateRuleRequest) (*models.Rule, error) {
	ctx, span := tracing.StartSpan(ctx, "rule.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"rule_type": string(req.Type),
		"name":      req.Name,
	})

	id := uuid.New().String()
	now := time.Now().UTC()

	rule := &models.Rule{
		ID:              id,
		TenantID:        tenantID,
		Type:            req.Type,
		Name:            req.Name,
		Description:     req.Description,
		Sequence:        req.Sequence,
		IsActive:        req.IsActive,
		Severity:        req.Severity,
		Config:          req.Config,
		MessageTemplate: req.MessageTemplate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("verification_rules")
	sb.Cols("id", "tenant_id", "rule_type", "name", "description", "sequence", "is_active", "severity", "config", "message_template", "created_at", "updated_at")
	sb.Values(rule.ID, rule.TenantID, rule.Type, rule.Name, rule.Description, rule.Sequence, rule.IsActive, rule.Severity, rule.Config, rule.MessageTemplate, rule.CreatedAt, rule.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create verification rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create verification rule")
	}

	log.WithFields(map[string]any{"id": id}).Info("Created verification rule")
	return rule, nil
}

// Get retrieves a verification rule by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Rule, error) {
	ctx, span := tracing.StartSpan(ctx, "rule.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "rule_type", "name", "description", "sequence", "is_active", "severity", "config", "message_template", "created_at", "updated_at", "deleted_at")
	sb.From("verification_rules")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var rule models.Rule
	if err := r.db.GetContext(ctx, &rule, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("verification rule %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get verification rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get verification rule")
	}

	return &rule, nil
}

// ListActive retrieves all active rules for a tenant, ordered by sequence.
// This is the rule set an engine run evaluates.
func (r *Repository) ListActive(ctx context.Context, tenantID string) ([]models.Rule, error) {
	ctx, span := tracing.StartSpan(ctx, "rule.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "rule_type", "name", "description", "sequence", "is_active", "severity", "config", "message_template", "created_at", "updated_at", "deleted_at")
	sb.From("verification_rules")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("is_active", true),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("sequence ASC", "created_at ASC")

	query, args := sb.Build()
	var rules []models.Rule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active verification rules")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list verification rules")
	}

	return rules, nil
}

// List retrieves all rules for a tenant with pagination
func (r *Repository) List(ctx context.Context, tenantID string, ruleType *models.RuleType, page, pageSize int) ([]models.Rule, int, error) {
	ctx, span := tracing.StartSpan(ctx, "rule.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("verification_rules")
	countWhere := []string{
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	}
	if ruleType != nil {
		countWhere = append(countWhere, countSb.Equal("rule_type", *ruleType))
	}
	countSb.Where(countWhere...)

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count verification rules")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count verification rules")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "rule_type", "name", "description", "sequence", "is_active", "severity", "config", "message_template", "created_at", "updated_at", "deleted_at")
	sb.From("verification_rules")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if ruleType != nil {
		where = append(where, sb.Equal("rule_type", *ruleType))
	}
	sb.Where(where...)
	sb.OrderBy("sequence ASC", "created_at DESC")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var rules []models.Rule
	if err := r.db.SelectContext(ctx, &rules, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list verification rules")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list verification rules")
	}

	return rules, totalCount, nil
}

// Update updates a verification rule
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateRuleRequest) (*models.Rule, error) {
	ctx, span := tracing.StartSpan(ctx, "rule.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.Sequence != nil {
		existing.Sequence = *req.Sequence
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}
	if req.Severity != nil {
		existing.Severity = *req.Severity
	}
	if req.Config != nil {
		existing.Config = req.Config
	}
	if req.MessageTemplate != nil {
		existing.MessageTemplate = *req.MessageTemplate
	}
	existing.UpdatedAt = time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("verification_rules")
	sb.Set(
		sb.Assign("name", existing.Name),
		sb.Assign("description", existing.Description),
		sb.Assign("sequence", existing.Sequence),
		sb.Assign("is_active", existing.IsActive),
		sb.Assign("severity", existing.Severity),
		sb.Assign("config", existing.Config),
		sb.Assign("message_template", existing.MessageTemplate),
		sb.Assign("updated_at", existing.UpdatedAt),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update verification rule")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update verification rule")
	}

	return existing, nil
}

// Delete soft deletes a verification rule
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "rule.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("verification_rules")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete verification rule")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete verification rule")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("verification rule %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted verification rule")
	return nil
}
