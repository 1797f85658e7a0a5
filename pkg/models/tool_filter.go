package models

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

// ToolFilter narrows GET /api/tools. All set filters must hold.
type ToolFilter struct {
	Status     *ToolStatus
	CategoryID *int
	// Vendor matches case-insensitively anywhere in the vendor name.
	Vendor *string
	// Search matches case-insensitively anywhere in the tool name.
	Search *string
	Limit  int
	Skip   int
}

// FiltersApplied echoes the filters of a list request.
type FiltersApplied struct {
	Status     *ToolStatus `json:"status,omitempty"`
	CategoryID *int        `json:"category_id,omitempty"`
	Vendor     *string     `json:"vendor,omitempty"`
	Search     *string     `json:"search,omitempty"`
}

func (f ToolFilter) Applied() FiltersApplied {
	return FiltersApplied{
		Status:     f.Status,
		CategoryID: f.CategoryID,
		Vendor:     f.Vendor,
		Search:     f.Search,
	}
}

// ToolList is the body of GET /api/tools. Total counts every row matching the filters,
// Filtered counts the rows on this page.
type ToolList struct {
	Data           []Tool         `json:"data"`
	Total          int            `json:"total"`
	Filtered       int            `json:"filtered"`
	FiltersApplied FiltersApplied `json:"filters_applied"`
}

func NewToolList(tools []Tool, total int, filter ToolFilter) ToolList {
	if tools == nil {
		tools = []Tool{}
	}
	return ToolList{
		Data:           tools,
		Total:          total,
		Filtered:       len(tools),
		FiltersApplied: filter.Applied(),
	}
}

// MessageResponse is the body of operations without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}
