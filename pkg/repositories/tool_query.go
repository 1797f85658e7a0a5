package repositories

import (
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
)

var toolColumns = []string{
	"t.id",
	"t.name",
	"t.description",
	"t.vendor",
	"t.website_url",
	"t.category_id",
	"t.monthly_cost",
	"t.active_users_count",
	"t.owner_department",
	"t.status",
	"t.created_at",
	"t.updated_at",
	"c.name AS category",
}

var toolReturning = []string{
	"id",
	"name",
	"description",
	"vendor",
	"website_url",
	"category_id",
	"monthly_cost",
	"active_users_count",
	"owner_department",
	"status",
	"created_at",
	"updated_at",
}

// toolRow is a tools row as scanned, before defaults are applied.
type toolRow struct {
	ID               int        `db:"id"`
	Name             string     `db:"name"`
	Description      *string    `db:"description"`
	Vendor           *string    `db:"vendor"`
	WebsiteURL       *string    `db:"website_url"`
	CategoryID       int        `db:"category_id"`
	MonthlyCost      float64    `db:"monthly_cost"`
	ActiveUsersCount int        `db:"active_users_count"`
	OwnerDepartment  string     `db:"owner_department"`
	Status           *string    `db:"status"`
	CreatedAt        *time.Time `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
	Category         *string    `db:"category"`
}

func (row toolRow) toModel() models.Tool {
	tool := models.Tool{
		ID:               row.ID,
		Name:             row.Name,
		Description:      row.Description,
		Vendor:           row.Vendor,
		WebsiteURL:       row.WebsiteURL,
		CategoryID:       row.CategoryID,
		MonthlyCost:      models.Money(row.MonthlyCost),
		ActiveUsersCount: row.ActiveUsersCount,
		OwnerDepartment:  models.Department(row.OwnerDepartment),
		Status:           statusOrActive(row.Status),
		Category:         row.Category,
	}
	if row.CreatedAt != nil {
		tool.CreatedAt = row.CreatedAt.UTC()
	}
	if row.UpdatedAt != nil {
		tool.UpdatedAt = row.UpdatedAt.UTC()
	}
	return tool
}

func statusOrActive(status *string) models.ToolStatus {
	if status == nil || *status == "" {
		return models.ToolStatusActive
	}
	return models.ToolStatus(*status)
}

// applyToolFilter adds one bound predicate per set filter. Conditions are registered on sb so
// the count and page queries each need their own call.
func applyToolFilter(sb *database.SelectBuilder, filter models.ToolFilter) {
	var conds []string
	if filter.Status != nil {
		conds = append(conds, sb.Equal("t.status", string(*filter.Status)))
	}
	if filter.CategoryID != nil {
		conds = append(conds, sb.Equal("t.category_id", *filter.CategoryID))
	}
	if filter.Vendor != nil {
		conds = append(conds, sb.ILike("t.vendor", database.ContainsPattern(*filter.Vendor)))
	}
	if filter.Search != nil {
		conds = append(conds, sb.ILike("t.name", database.ContainsPattern(*filter.Search)))
	}
	if len(conds) > 0 {
		sb.Where(conds...)
	}
}

func buildToolCountQuery(filter models.ToolFilter) (string, []any) {
	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)").From(toolsTable + " t")
	applyToolFilter(sb, filter)
	return sb.Build()
}

func buildToolListQuery(filter models.ToolFilter) (string, []any) {
	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultListLimit
	}

	sb := database.NewSelectBuilder()
	sb.Select(toolColumns...).
		From(toolsTable+" t").
		JoinWithOption(sqlbuilder.LeftJoin, categoriesTable+" c", "t.category_id = c.id")
	applyToolFilter(sb, filter)
	sb.OrderBy("t.id").Asc()
	sb.Limit(limit).Offset(filter.Skip)
	return sb.Build()
}

func buildToolByIDQuery(id int) (string, []any) {
	sb := database.NewSelectBuilder()
	sb.Select(toolColumns...).
		From(toolsTable+" t").
		JoinWithOption(sqlbuilder.LeftJoin, categoriesTable+" c", "t.category_id = c.id")
	sb.Where(sb.Equal("t.id", id))
	return sb.Build()
}

// updateValue converts typed update values to driver values.
func updateValue(value any) any {
	switch v := value.(type) {
	case models.Department:
		return string(v)
	case models.ToolStatus:
		return string(v)
	default:
		return v
	}
}
