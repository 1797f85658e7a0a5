package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/repositories"
)

var (
	toolUsageColumns     = []string{"id", "name", "category", "monthly_cost", "active_users_count", "owner_department"}
	categorySummaryCols  = []string{"category_id", "category_name", "tool_count", "average_cost", "total_cost"}
	categoryToolColumns  = []string{"id", "name", "monthly_cost", "status"}
	categoryInsightCols  = []string{"most_expensive", "least_expensive", "avg_users"}
	vendorSummaryColumns = []string{"vendor", "tool_count", "total_cost", "average_cost", "departments"}
	vendorToolColumns    = []string{"name", "monthly_cost", "owner_department"}
)

func TestAnalyticsRepository_DepartmentCosts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`SELECT owner_department, SUM\(monthly_cost\) AS total_cost, COUNT\(\*\) AS tool_count FROM tools GROUP BY owner_department ORDER BY total_cost DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_department", "total_cost", "tool_count"}).
			AddRow("Engineering", "890.50", 12).
			AddRow("Sales", "456.75", 6))

	rows, err := repo.DepartmentCosts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []repositories.DepartmentCostRow{
		{Department: "Engineering", TotalCost: 890.5, ToolCount: 12},
		{Department: "Sales", TotalCost: 456.75, ToolCount: 6},
	}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_DepartmentCostsFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`FROM tools GROUP BY owner_department`).WillReturnError(errors.New("boom"))

	rows, err := repo.DepartmentCosts(context.Background())

	assertKind(t, err, apperrors.KindQueryFailure, "Failed to fetch department costs")
	assert.Nil(t, rows)
}

func TestAnalyticsRepository_ExpensiveTools(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`FROM tools t LEFT JOIN categories c ON t\.category_id = c\.id ORDER BY t\.monthly_cost DESC, t\.id LIMIT`).
		WillReturnRows(sqlmock.NewRows(toolUsageColumns).
			AddRow(3, "Salesforce", "CRM", "150.00", 0, "Sales").
			AddRow(8, "Zoom", nil, "14.99", 3, "Operations"))

	rows, err := repo.ExpensiveTools(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CRM", *rows[0].Category)
	assert.Nil(t, rows[1].Category)
	assert.Equal(t, 14.99, rows[1].MonthlyCost)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_LowUsageTools(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`WHERE t\.active_users_count < \$1 ORDER BY t\.active_users_count ASC, t\.monthly_cost DESC`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(toolUsageColumns).
			AddRow(3, "Salesforce", "CRM", "150.00", 0, "Sales"))

	rows, err := repo.LowUsageTools(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].ActiveUsersCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_ToolsByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`FROM categories c LEFT JOIN tools t ON c\.id = t\.category_id GROUP BY c\.id, c\.name`).
		WillReturnRows(sqlmock.NewRows(categorySummaryCols).
			AddRow(1, "Communication", 2, "11.50", "23.00").
			AddRow(2, "Empty", 0, "0", "0"))

	mock.ExpectQuery(`SELECT id, name, monthly_cost, status FROM tools WHERE category_id = \$1`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryToolColumns).
			AddRow(5, "Zoom", "15.00", "active").
			AddRow(6, "Slack", "8.00", nil))
	mock.ExpectQuery(`FILTER \(WHERE rn_desc = 1\)`).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(categoryInsightCols).AddRow("Zoom", "Slack", "17.5"))

	mock.ExpectQuery(`SELECT id, name, monthly_cost, status FROM tools WHERE category_id = \$1`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(categoryToolColumns))
	mock.ExpectQuery(`FILTER \(WHERE rn_desc = 1\)`).WithArgs(2).WillReturnError(errors.New("insights unavailable"))

	rows, err := repo.ToolsByCategory(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Len(t, rows[0].Tools, 2)
	assert.Nil(t, rows[0].Tools[1].Status)
	require.NotNil(t, rows[0].Insights)
	assert.Equal(t, "Zoom", *rows[0].Insights.MostExpensive)
	assert.Equal(t, "Slack", *rows[0].Insights.LeastExpensive)
	assert.Equal(t, 17.5, rows[0].Insights.AvgUsers)

	assert.Empty(t, rows[1].Tools)
	assert.Nil(t, rows[1].Insights, "failed insight lookup leaves the category without insights")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_ToolsByCategoryToolFailureFailsRequest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`FROM categories c LEFT JOIN tools t`).
		WillReturnRows(sqlmock.NewRows(categorySummaryCols).AddRow(1, "Communication", 2, "11.50", "23.00"))
	mock.ExpectQuery(`FROM tools WHERE category_id = \$1`).WillReturnError(errors.New("boom"))

	rows, err := repo.ToolsByCategory(context.Background())

	assertKind(t, err, apperrors.KindQueryFailure, "Failed to fetch category tools")
	assert.Nil(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_VendorSummary(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`STRING_AGG\(DISTINCT owner_department::text, ', ' ORDER BY owner_department::text\) AS departments FROM tools WHERE vendor IS NOT NULL GROUP BY vendor`).
		WillReturnRows(sqlmock.NewRows(vendorSummaryColumns).
			AddRow("Atlassian", 2, "30.00", "15.00", "Engineering, Operations"))
	mock.ExpectQuery(`SELECT name, monthly_cost, owner_department FROM tools WHERE vendor = \$1`).WithArgs("Atlassian").
		WillReturnRows(sqlmock.NewRows(vendorToolColumns).
			AddRow("Jira", "20.00", "Engineering").
			AddRow("Confluence", "10.00", "Operations"))

	rows, err := repo.VendorSummary(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Engineering, Operations", rows[0].Departments)
	assert.Equal(t, []repositories.VendorToolRow{
		{Name: "Jira", MonthlyCost: 20, Department: "Engineering"},
		{Name: "Confluence", MonthlyCost: 10, Department: "Operations"},
	}, rows[0].Tools)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepository_VendorToolsFailureFailsRequest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repositories.NewAnalyticsRepository(db, getTestLogger())

	mock.ExpectQuery(`WHERE vendor IS NOT NULL`).
		WillReturnRows(sqlmock.NewRows(vendorSummaryColumns).AddRow("Atlassian", 1, "20.00", "20.00", "Engineering"))
	mock.ExpectQuery(`WHERE vendor = \$1`).WillReturnError(errors.New("boom"))

	_, err := repo.VendorSummary(context.Background())

	assertKind(t, err, apperrors.KindQueryFailure, "Failed to fetch vendor tools")
}
