package repositories

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
)

// ToolRepo defines the interface for tool repository operations
type ToolRepo interface {
	List(ctx context.Context, filter models.ToolFilter) ([]models.Tool, int, error)
	GetByID(ctx context.Context, id int) (*models.Tool, error)
	Create(ctx context.Context, req models.CreateToolRequest) (*models.Tool, error)
	Update(ctx context.Context, id int, update models.ToolUpdate) (UpdateOutcome, error)
	Delete(ctx context.Context, id int) error
}

// AnalyticsRepo defines the interface for the grouped reads behind the analytics reports
type AnalyticsRepo interface {
	DepartmentCosts(ctx context.Context) ([]DepartmentCostRow, error)
	ExpensiveTools(ctx context.Context, limit int) ([]ToolUsageRow, error)
	ToolsByCategory(ctx context.Context) ([]CategorySummaryRow, error)
	LowUsageTools(ctx context.Context, threshold int) ([]ToolUsageRow, error)
	VendorSummary(ctx context.Context) ([]VendorSummaryRow, error)
}

