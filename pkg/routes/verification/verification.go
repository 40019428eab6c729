package verification

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	findingrepo "github.com/Ramsey-B/sage/internal/repositories/finding"
	"github.com/Ramsey-B/sage/pkg/appcontext"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/processor"
)

// Register registers verification routes
func Register(g *echo.Group) {
	g.POST("/verify", VerifyCase)
	g.GET("/cases/:case_id/findings", ListFindings)
}

// VerifyCase runs a synchronous verification over the posted case
// snapshot. The Kafka consumer is the usual entry point; this route
// exists for re-verification after a reviewer edits the case.
func VerifyCase(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	var snap models.CaseSnapshot
	if err := c.Bind(&snap); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if snap.ID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "case id is required")
	}
	if snap.TenantID == "" {
		snap.TenantID = tenantID
	}
	if snap.TenantID != tenantID {
		return httperror.NewHTTPError(http.StatusForbidden, "case does not belong to tenant")
	}

	ctx, proc, err := ectoinject.GetContext[*processor.Processor](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := proc.VerifyCase(ctx, &snap); err != nil {
		return err
	}

	ctx, repo, err := ectoinject.GetContext[*findingrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	findings, err := repo.ListByCase(ctx, tenantID, snap.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"case_id":  snap.ID,
		"findings": findings,
	})
}

// ListFindings lists the stored findings for a case
func ListFindings(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := appcontext.GetTenantID(ctx)

	caseID := c.Param("case_id")

	ctx, repo, err := ectoinject.GetContext[*findingrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	findings, err := repo.ListByCase(ctx, tenantID, caseID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"case_id":  caseID,
		"findings": findings,
	})
}
