// Package analytics turns grouped catalog rows into the cost and usage reports.
package analytics

import (
	"context"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/repositories"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Reporter produces the analytics reports
type Reporter interface {
	DepartmentCosts(ctx context.Context) (*models.DepartmentCostsReport, error)
	ExpensiveTools(ctx context.Context, limit int) (*models.ExpensiveToolsReport, error)
	ToolsByCategory(ctx context.Context) (*models.ToolsByCategoryReport, error)
	LowUsageTools(ctx context.Context, threshold int) (*models.LowUsageReport, error)
	VendorSummary(ctx context.Context) (*models.VendorSummaryReport, error)
}

type Engine struct {
	repo   repositories.AnalyticsRepo
	logger ectologger.Logger
}

func NewEngine(repo repositories.AnalyticsRepo, logger ectologger.Logger) *Engine {
	return &Engine{repo: repo, logger: logger}
}

// DepartmentCosts reports spend per department with each department's share of the total.
func (e *Engine) DepartmentCosts(ctx context.Context) (*models.DepartmentCostsReport, error) {
	ctx, span := tracing.StartSpan(ctx, "Engine.DepartmentCosts")
	defer span.End()

	rows, err := e.repo.DepartmentCosts(ctx)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, row := range rows {
		total += row.TotalCost
	}

	departments := ectolinq.Map(rows, func(row repositories.DepartmentCostRow) models.DepartmentCost {
		return models.DepartmentCost{
			Department: models.Department(row.Department),
			TotalCost:  models.RoundCurrency(row.TotalCost),
			ToolCount:  row.ToolCount,
			Percentage: Percentage(row.TotalCost, total),
		}
	})

	return &models.DepartmentCostsReport{
		TotalCost:   models.RoundCurrency(total),
		Departments: nonNil(departments),
	}, nil
}

// ExpensiveTools reports the limit costliest tools with their cost per user.
func (e *Engine) ExpensiveTools(ctx context.Context, limit int) (*models.ExpensiveToolsReport, error) {
	ctx, span := tracing.StartSpan(ctx, "Engine.ExpensiveTools")
	defer span.End()

	if limit <= 0 {
		limit = models.DefaultExpensiveToolsLimit
	}

	rows, err := e.repo.ExpensiveTools(ctx, limit)
	if err != nil {
		return nil, err
	}

	tools := ectolinq.Map(rows, func(row repositories.ToolUsageRow) models.ExpensiveTool {
		return models.ExpensiveTool{
			ID:               row.ID,
			Name:             row.Name,
			Category:         row.Category,
			MonthlyCost:      models.RoundCurrency(row.MonthlyCost),
			ActiveUsersCount: row.ActiveUsersCount,
			EfficiencyRating: EfficiencyRating(row.MonthlyCost, row.ActiveUsersCount),
			Department:       models.Department(row.Department),
		}
	})

	return &models.ExpensiveToolsReport{Tools: nonNil(tools)}, nil
}

// ToolsByCategory reports every category with its tools, including categories without tools.
func (e *Engine) ToolsByCategory(ctx context.Context) (*models.ToolsByCategoryReport, error) {
	ctx, span := tracing.StartSpan(ctx, "Engine.ToolsByCategory")
	defer span.End()

	rows, err := e.repo.ToolsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	categories := ectolinq.Map(rows, func(row repositories.CategorySummaryRow) models.CategoryBreakdown {
		tools := ectolinq.Map(row.Tools, func(tool repositories.CategoryToolRow) models.CategoryTool {
			status := models.ToolStatusActive
			if tool.Status != nil {
				status = models.ToolStatus(*tool.Status)
			}
			return models.CategoryTool{
				ID:          tool.ID,
				Name:        tool.Name,
				MonthlyCost: models.RoundCurrency(tool.MonthlyCost),
				Status:      status,
			}
		})

		breakdown := models.CategoryBreakdown{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			ToolCount:    row.ToolCount,
			AverageCost:  models.RoundCurrency(row.AverageCost),
			TotalCost:    models.RoundCurrency(row.TotalCost),
			Tools:        nonNil(tools),
		}
		if row.Insights != nil {
			breakdown.Insights = &models.CategoryInsights{
				MostExpensive:  row.Insights.MostExpensive,
				LeastExpensive: row.Insights.LeastExpensive,
				AvgUsers:       models.RoundPercent(row.Insights.AvgUsers),
			}
		}
		return breakdown
	})

	return &models.ToolsByCategoryReport{Categories: nonNil(categories)}, nil
}

// LowUsageTools reports tools with fewer than threshold active users and the monthly spend
// they represent.
func (e *Engine) LowUsageTools(ctx context.Context, threshold int) (*models.LowUsageReport, error) {
	ctx, span := tracing.StartSpan(ctx, "Engine.LowUsageTools")
	defer span.End()

	if threshold < 0 {
		threshold = models.DefaultLowUsageThreshold
	}

	rows, err := e.repo.LowUsageTools(ctx, threshold)
	if err != nil {
		return nil, err
	}

	wasted := 0.0
	tools := ectolinq.Map(rows, func(row repositories.ToolUsageRow) models.LowUsageTool {
		cost := models.RoundCurrency(row.MonthlyCost)
		wasted += cost
		return models.LowUsageTool{
			ID:               row.ID,
			Name:             row.Name,
			Category:         row.Category,
			MonthlyCost:      cost,
			ActiveUsersCount: row.ActiveUsersCount,
			EfficiencyRating: EfficiencyRating(row.MonthlyCost, row.ActiveUsersCount),
			Department:       models.Department(row.Department),
			WarningLevel:     WarningLevelFor(row.ActiveUsersCount, threshold),
		}
	})

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"threshold":   threshold,
		"total_tools": len(tools),
	}).Debug("computed low usage report")

	return &models.LowUsageReport{
		Threshold:       threshold,
		Tools:           nonNil(tools),
		TotalTools:      len(tools),
		TotalWastedCost: models.RoundCurrency(wasted),
	}, nil
}

// VendorSummary reports spend per named vendor with the vendor's tools.
func (e *Engine) VendorSummary(ctx context.Context) (*models.VendorSummaryReport, error) {
	ctx, span := tracing.StartSpan(ctx, "Engine.VendorSummary")
	defer span.End()

	rows, err := e.repo.VendorSummary(ctx)
	if err != nil {
		return nil, err
	}

	vendors := ectolinq.Map(rows, func(row repositories.VendorSummaryRow) models.VendorSummary {
		tools := ectolinq.Map(row.Tools, func(tool repositories.VendorToolRow) models.VendorTool {
			return models.VendorTool{
				Name:        tool.Name,
				MonthlyCost: models.RoundCurrency(tool.MonthlyCost),
				Department:  models.Department(tool.Department),
			}
		})
		return models.VendorSummary{
			Vendor:      row.Vendor,
			ToolCount:   row.ToolCount,
			TotalCost:   models.RoundCurrency(row.TotalCost),
			AverageCost: models.RoundCurrency(row.AverageCost),
			Departments: row.Departments,
			Tools:       nonNil(tools),
		}
	})

	return &models.VendorSummaryReport{Vendors: nonNil(vendors)}, nil
}

// nonNil keeps empty report lists serialized as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
