package models

import "time"

// Tool is a tracked internal software subscription.
type Tool struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	Description      *string    `json:"description"`
	Vendor           *string    `json:"vendor"`
	WebsiteURL       *string    `json:"website_url"`
	CategoryID       int        `json:"category_id"`
	MonthlyCost      Money      `json:"monthly_cost"`
	ActiveUsersCount int        `json:"active_users_count"`
	OwnerDepartment  Department `json:"owner_department"`
	Status           ToolStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	// Category is the joined category name, nil when category_id matches no row.
	Category *string `json:"category"`
}

// CreateToolRequest is the body of POST /api/tools.
type CreateToolRequest struct {
	Name             string      `json:"name" validate:"required,min=2,max=100"`
	Description      string      `json:"description" validate:"required"`
	Vendor           string      `json:"vendor" validate:"required,max=100"`
	WebsiteURL       *string     `json:"website_url" validate:"omitempty,url,max=255"`
	CategoryID       int         `json:"category_id" validate:"required,min=1"`
	MonthlyCost      *float64    `json:"monthly_cost" validate:"required,min=0,max=99999999.99"`
	ActiveUsersCount *int        `json:"active_users_count" validate:"omitempty,min=0"`
	OwnerDepartment  Department  `json:"owner_department" validate:"required,department"`
	Status           *ToolStatus `json:"status" validate:"omitempty,tool_status"`
}

// StatusOrDefault returns the requested status, active when absent.
func (r CreateToolRequest) StatusOrDefault() ToolStatus {
	if r.Status == nil {
		return ToolStatusActive
	}
	return *r.Status
}

// ActiveUsersOrDefault returns the requested user count, zero when absent.
func (r CreateToolRequest) ActiveUsersOrDefault() int {
	if r.ActiveUsersCount == nil {
		return 0
	}
	return *r.ActiveUsersCount
}

// CategoryInput describes a category to create when its name is not taken yet.
type CategoryInput struct {
	Name        string  `yaml:"name" validate:"required,max=50"`
	Description *string `yaml:"description"`
	ColorHex    *string `yaml:"color_hex" validate:"omitempty,hexcolor"`
}
