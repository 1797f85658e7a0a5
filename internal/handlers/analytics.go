package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/analytics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// AnalyticsHandler serves the read-only cost and usage reports
type AnalyticsHandler struct {
	reports analytics.Reporter
}

func NewAnalyticsHandler(reports analytics.Reporter) *AnalyticsHandler {
	return &AnalyticsHandler{reports: reports}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(g *echo.Group) {
	reports := g.Group("/analytics")
	reports.GET("/department-costs", h.DepartmentCosts)
	reports.GET("/expensive-tools", h.ExpensiveTools)
	reports.GET("/tools-by-category", h.ToolsByCategory)
	reports.GET("/low-usage-tools", h.LowUsageTools)
	reports.GET("/vendor-summary", h.VendorSummary)
}

// DepartmentCosts handles GET /analytics/department-costs
func (h *AnalyticsHandler) DepartmentCosts(c echo.Context) error {
	report, err := h.reports.DepartmentCosts(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}

// ExpensiveTools handles GET /analytics/expensive-tools?limit=
func (h *AnalyticsHandler) ExpensiveTools(c echo.Context) error {
	limit, ok, err := QueryInt(c, "limit")
	if err != nil {
		return err
	}
	if !ok {
		limit = models.DefaultExpensiveToolsLimit
	} else if err := validation.Value("limit", limit, listLimitRule); err != nil {
		return err
	}

	report, err := h.reports.ExpensiveTools(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}

// ToolsByCategory handles GET /analytics/tools-by-category
func (h *AnalyticsHandler) ToolsByCategory(c echo.Context) error {
	report, err := h.reports.ToolsByCategory(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}

// LowUsageTools handles GET /analytics/low-usage-tools?threshold=
func (h *AnalyticsHandler) LowUsageTools(c echo.Context) error {
	threshold, ok, err := QueryInt(c, "threshold")
	if err != nil {
		return err
	}
	if !ok {
		threshold = models.DefaultLowUsageThreshold
	} else if err := validation.Value("threshold", threshold, "min=0,max=1000000"); err != nil {
		return err
	}

	report, err := h.reports.LowUsageTools(c.Request().Context(), threshold)
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}

// VendorSummary handles GET /analytics/vendor-summary
func (h *AnalyticsHandler) VendorSummary(c echo.Context) error {
	report, err := h.reports.VendorSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, report)
}
