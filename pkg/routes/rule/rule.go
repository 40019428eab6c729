package rule

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	rulerepo "github.com/Ramsey-B/sage/internal/repositories/rule"
	"github.com/Ramsey-B/sage/pkg/appcontext"
	"github.com/Ramsey-B/sage/pkg/engine"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/validation"
)

// Register registers verification rule routes
func Register(g *echo.Group) {
	g.GET("", ListRules)
	g.GET("/:id", GetRule)
	g.POST("", CreateRule)
	g.PUT("/:id", UpdateRule)
	g.DELETE("/:id", DeleteRule)
}

// ListRules lists verification rules for the tenant
func ListRules(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	var ruleType *models.RuleType
	if t := c.QueryParam("type"); t != "" {
		rt := models.RuleType(t)
		ruleType = &rt
	}

	ctx, repo, err := ectoinject.GetContext[*rulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rules, total, err := repo.List(ctx, tenantID, ruleType, parseIntParam(c, "page", 1), parseIntParam(c, "page_size", 20))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"rules": rules,
		"total": total,
	})
}

// GetRule gets a verification rule by ID
func GetRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*rulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rule, err := repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rule)
}

// CreateRule creates a new verification rule
func CreateRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	var req models.CreateRuleRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validation.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Reject templates referencing placeholders no check supplies, so a
	// bad template never ships in a client letter.
	if err := engine.ValidateTemplate(req.MessageTemplate, engine.TemplatePlaceholders); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*rulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, tenantID, req)
	if err != nil {
		return err
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{"id": created.ID}).Info("Created verification rule")
	}

	return c.JSON(http.StatusCreated, created)
}

// UpdateRule updates a verification rule
func UpdateRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ruleID := c.Param("id")

	var req models.UpdateRuleRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := validation.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.MessageTemplate != nil {
		if err := engine.ValidateTemplate(*req.MessageTemplate, engine.TemplatePlaceholders); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	ctx, repo, err := ectoinject.GetContext[*rulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := repo.Update(ctx, tenantID, ruleID, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteRule deletes a verification rule
func DeleteRule(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	ruleID := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*rulerepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := repo.Delete(ctx, tenantID, ruleID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func parseIntParam(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
