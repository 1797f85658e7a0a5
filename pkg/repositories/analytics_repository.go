package repositories

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// DepartmentCostRow is the monthly spend of one owning department.
type DepartmentCostRow struct {
	Department string  `db:"owner_department"`
	TotalCost  float64 `db:"total_cost"`
	ToolCount  int     `db:"tool_count"`
}

// ToolUsageRow carries the cost and usage figures of one tool.
type ToolUsageRow struct {
	ID               int     `db:"id"`
	Name             string  `db:"name"`
	Category         *string `db:"category"`
	MonthlyCost      float64 `db:"monthly_cost"`
	ActiveUsersCount int     `db:"active_users_count"`
	Department       string  `db:"owner_department"`
}

// CategorySummaryRow aggregates the tools of one category. Insights is nil when the insight
// lookup failed.
type CategorySummaryRow struct {
	CategoryID   int                 `db:"category_id"`
	CategoryName string              `db:"category_name"`
	ToolCount    int                 `db:"tool_count"`
	AverageCost  float64             `db:"average_cost"`
	TotalCost    float64             `db:"total_cost"`
	Tools        []CategoryToolRow   `db:"-"`
	Insights     *CategoryInsightRow `db:"-"`
}

type CategoryToolRow struct {
	ID          int     `db:"id"`
	Name        string  `db:"name"`
	MonthlyCost float64 `db:"monthly_cost"`
	Status      *string `db:"status"`
}

type CategoryInsightRow struct {
	MostExpensive  *string `db:"most_expensive"`
	LeastExpensive *string `db:"least_expensive"`
	AvgUsers       float64 `db:"avg_users"`
}

// VendorSummaryRow aggregates the tools of one vendor. Departments lists the distinct owning
// departments alphabetically, comma separated.
type VendorSummaryRow struct {
	Vendor      string          `db:"vendor"`
	ToolCount   int             `db:"tool_count"`
	TotalCost   float64         `db:"total_cost"`
	AverageCost float64         `db:"average_cost"`
	Departments string          `db:"departments"`
	Tools       []VendorToolRow `db:"-"`
}

type VendorToolRow struct {
	Name        string  `db:"name"`
	MonthlyCost float64 `db:"monthly_cost"`
	Department  string  `db:"owner_department"`
}

// categoryInsightsQuery ranks the tools of one category by cost in both directions. Equal costs
// rank by ascending id. An empty category yields a single row of NULL names and zero users.
const categoryInsightsQuery = `SELECT
    MAX(name) FILTER (WHERE rn_desc = 1) AS most_expensive,
    MAX(name) FILTER (WHERE rn_asc = 1) AS least_expensive,
    COALESCE(AVG(active_users_count), 0) AS avg_users
FROM (
    SELECT name, active_users_count,
        ROW_NUMBER() OVER (ORDER BY monthly_cost DESC, id ASC) AS rn_desc,
        ROW_NUMBER() OVER (ORDER BY monthly_cost ASC, id ASC) AS rn_asc
    FROM tools
    WHERE category_id = $1
) ranked`

// AnalyticsRepository runs the grouped reads behind the analytics reports. Multi-step reads run
// on one borrowed connection.
type AnalyticsRepository struct {
	*Repository
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db database.DB, logger ectologger.Logger) *AnalyticsRepository {
	return &AnalyticsRepository{
		Repository: NewRepository(db, logger),
	}
}

// DepartmentCosts sums monthly cost per owning department, highest spend first.
func (r *AnalyticsRepository) DepartmentCosts(ctx context.Context) ([]DepartmentCostRow, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.DepartmentCosts")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("owner_department", "SUM(monthly_cost) AS total_cost", "COUNT(*) AS tool_count").
		From(toolsTable).
		GroupBy("owner_department").
		OrderBy("total_cost DESC", "owner_department")
	query, args := sb.Build()

	rows := []DepartmentCostRow{}
	err := r.withConn(ctx, "analytics.department_costs", "Failed to fetch department costs", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).Debugf("Fetched costs of %d departments", len(rows))
	return rows, nil
}

func toolUsageSelect() *database.SelectBuilder {
	sb := database.NewSelectBuilder()
	sb.Select("t.id", "t.name", "c.name AS category", "t.monthly_cost", "t.active_users_count", "t.owner_department").
		From(toolsTable+" t").
		JoinWithOption(sqlbuilder.LeftJoin, categoriesTable+" c", "t.category_id = c.id")
	return sb
}

// ExpensiveTools returns the limit most expensive tools.
func (r *AnalyticsRepository) ExpensiveTools(ctx context.Context, limit int) ([]ToolUsageRow, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.ExpensiveTools")
	defer span.End()

	sb := toolUsageSelect()
	sb.OrderBy("t.monthly_cost DESC", "t.id").Limit(limit)
	query, args := sb.Build()

	rows := []ToolUsageRow{}
	err := r.withConn(ctx, "analytics.expensive_tools", "Failed to fetch expensive tools", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"limit": limit,
	}).Debugf("Fetched %d expensive tools", len(rows))
	return rows, nil
}

// LowUsageTools returns tools with fewer than threshold active users, least used first and
// costliest first among equals.
func (r *AnalyticsRepository) LowUsageTools(ctx context.Context, threshold int) ([]ToolUsageRow, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.LowUsageTools")
	defer span.End()

	sb := toolUsageSelect()
	sb.Where(sb.LessThan("t.active_users_count", threshold)).
		OrderBy("t.active_users_count ASC", "t.monthly_cost DESC", "t.id")
	query, args := sb.Build()

	rows := []ToolUsageRow{}
	err := r.withConn(ctx, "analytics.low_usage_tools", "Failed to fetch low usage tools", func(ctx context.Context, q database.Querier) error {
		return q.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"threshold": threshold,
	}).Debugf("Fetched %d low usage tools", len(rows))
	return rows, nil
}

// ToolsByCategory aggregates every category, including empty ones, with its tools and insights.
func (r *AnalyticsRepository) ToolsByCategory(ctx context.Context) ([]CategorySummaryRow, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.ToolsByCategory")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"c.id AS category_id",
		"c.name AS category_name",
		"COUNT(t.id) AS tool_count",
		"COALESCE(AVG(t.monthly_cost), 0) AS average_cost",
		"COALESCE(SUM(t.monthly_cost), 0) AS total_cost",
	).
		From(categoriesTable+" c").
		JoinWithOption(sqlbuilder.LeftJoin, toolsTable+" t", "c.id = t.category_id").
		GroupBy("c.id", "c.name").
		OrderBy("total_cost DESC", "c.id")
	query, args := sb.Build()

	rows := []CategorySummaryRow{}
	err := r.withConn(ctx, "analytics.tools_by_category", "Failed to fetch categories", func(ctx context.Context, q database.Querier) error {
		if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
			return r.fail(ctx, err, "Failed to fetch categories", nil)
		}

		for i := range rows {
			tools, err := r.categoryTools(ctx, q, rows[i].CategoryID)
			if err != nil {
				return err
			}
			rows[i].Tools = tools
			rows[i].Insights = r.categoryInsights(ctx, q, rows[i].CategoryID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).Debugf("Fetched breakdown of %d categories", len(rows))
	return rows, nil
}

func (r *AnalyticsRepository) categoryTools(ctx context.Context, q database.Querier, categoryID int) ([]CategoryToolRow, error) {
	sb := database.NewSelectBuilder()
	sb.Select("id", "name", "monthly_cost", "status").
		From(toolsTable).
		Where(sb.Equal("category_id", categoryID)).
		OrderBy("monthly_cost DESC", "id")
	query, args := sb.Build()

	tools := []CategoryToolRow{}
	if err := q.SelectContext(ctx, &tools, query, args...); err != nil {
		return nil, r.fail(ctx, err, "Failed to fetch category tools", map[string]any{"category_id": categoryID})
	}
	return tools, nil
}

// categoryInsights is the one read whose failure is tolerated: the category is reported without
// insights.
func (r *AnalyticsRepository) categoryInsights(ctx context.Context, q database.Querier, categoryID int) *CategoryInsightRow {
	var insights CategoryInsightRow
	if err := q.GetContext(ctx, &insights, categoryInsightsQuery, categoryID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"category_id": categoryID,
		}).Warn("failed to fetch category insights")
		return nil
	}
	return &insights
}

// VendorSummary aggregates tools per named vendor, highest spend first.
func (r *AnalyticsRepository) VendorSummary(ctx context.Context) ([]VendorSummaryRow, error) {
	ctx, span := tracing.StartSpan(ctx, "AnalyticsRepository.VendorSummary")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(
		"vendor",
		"COUNT(*) AS tool_count",
		"SUM(monthly_cost) AS total_cost",
		"AVG(monthly_cost) AS average_cost",
		"STRING_AGG(DISTINCT owner_department::text, ', ' ORDER BY owner_department::text) AS departments",
	).
		From(toolsTable).
		Where(sb.IsNotNull("vendor")).
		GroupBy("vendor").
		OrderBy("total_cost DESC", "vendor")
	query, args := sb.Build()

	rows := []VendorSummaryRow{}
	err := r.withConn(ctx, "analytics.vendor_summary", "Failed to fetch vendor summary", func(ctx context.Context, q database.Querier) error {
		if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
			return r.fail(ctx, err, "Failed to fetch vendor summary", nil)
		}

		for i := range rows {
			tools, err := r.vendorTools(ctx, q, rows[i].Vendor)
			if err != nil {
				return err
			}
			rows[i].Tools = tools
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).Debugf("Fetched summary of %d vendors", len(rows))
	return rows, nil
}

func (r *AnalyticsRepository) vendorTools(ctx context.Context, q database.Querier, vendor string) ([]VendorToolRow, error) {
	sb := database.NewSelectBuilder()
	sb.Select("name", "monthly_cost", "owner_department").
		From(toolsTable).
		Where(sb.Equal("vendor", vendor)).
		OrderBy("monthly_cost DESC", "id")
	query, args := sb.Build()

	tools := []VendorToolRow{}
	if err := q.SelectContext(ctx, &tools, query, args...); err != nil {
		return nil, r.fail(ctx, err, "Failed to fetch vendor tools", map[string]any{"vendor": vendor})
	}
	return tools, nil
}
