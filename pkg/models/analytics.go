package models

// Report bodies of /api/analytics. Monetary values are already rounded to cents and
// percentages/averages of counts to one decimal.

const (
	DefaultExpensiveToolsLimit = 10
	DefaultLowUsageThreshold   = 10
)

type DepartmentCost struct {
	Department Department `json:"department"`
	TotalCost  float64    `json:"total_cost"`
	ToolCount  int        `json:"tool_count"`
	Percentage float64    `json:"percentage"`
}

type DepartmentCostsReport struct {
	TotalCost   float64          `json:"total_cost"`
	Departments []DepartmentCost `json:"departments"`
}

type ExpensiveTool struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Category         *string    `json:"category"`
	MonthlyCost      float64    `json:"monthly_cost"`
	ActiveUsersCount int        `json:"active_users_count"`
	EfficiencyRating float64    `json:"efficiency_rating"`
	Department       Department `json:"department"`
}

type ExpensiveToolsReport struct {
	Tools []ExpensiveTool `json:"tools"`
}

type CategoryTool struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	MonthlyCost float64    `json:"monthly_cost"`
	Status      ToolStatus `json:"status"`
}

// CategoryInsights names the extreme-cost tools of a category. Ties go to the lowest id.
type CategoryInsights struct {
	MostExpensive  *string `json:"most_expensive"`
	LeastExpensive *string `json:"least_expensive"`
	AvgUsers       float64 `json:"avg_users"`
}

type CategoryBreakdown struct {
	CategoryID   int               `json:"category_id"`
	CategoryName string            `json:"category_name"`
	ToolCount    int               `json:"tool_count"`
	AverageCost  float64           `json:"average_cost"`
	TotalCost    float64           `json:"total_cost"`
	Tools        []CategoryTool    `json:"tools"`
	Insights     *CategoryInsights `json:"insights,omitempty"`
}

type ToolsByCategoryReport struct {
	Categories []CategoryBreakdown `json:"categories"`
}

type WarningLevel string

const (
	WarningLevelCritical WarningLevel = "critical"
	WarningLevelHigh     WarningLevel = "high"
	WarningLevelMedium   WarningLevel = "medium"
)

type LowUsageTool struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Category         *string      `json:"category"`
	MonthlyCost      float64      `json:"monthly_cost"`
	ActiveUsersCount int          `json:"active_users_count"`
	EfficiencyRating float64      `json:"efficiency_rating"`
	Department       Department   `json:"department"`
	WarningLevel     WarningLevel `json:"warning_level"`
}

type LowUsageReport struct {
	Threshold       int            `json:"threshold"`
	Tools           []LowUsageTool `json:"tools"`
	TotalTools      int            `json:"total_tools"`
	TotalWastedCost float64        `json:"total_wasted_cost"`
}

type VendorTool struct {
	Name        string     `json:"name"`
	MonthlyCost float64    `json:"monthly_cost"`
	Department  Department `json:"department"`
}

type VendorSummary struct {
	Vendor      string       `json:"vendor"`
	ToolCount   int          `json:"tool_count"`
	TotalCost   float64      `json:"total_cost"`
	AverageCost float64      `json:"average_cost"`
	Departments string       `json:"departments"`
	Tools       []VendorTool `json:"tools"`
}

type VendorSummaryReport struct {
	Vendors []VendorSummary `json:"vendors"`
}
