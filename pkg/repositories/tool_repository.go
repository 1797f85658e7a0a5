package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/database"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const toolNotFoundTitle = "Tool not found"

// UpdateOutcome tells a successful update apart from an update that had nothing to write.
type UpdateOutcome int

const (
	UpdateApplied UpdateOutcome = iota
	UpdateNoFields
)

// ToolRepository handles database operations for tools
type ToolRepository struct {
	*Repository
}

// NewToolRepository creates a new tool repository
func NewToolRepository(db database.DB, logger ectologger.Logger) *ToolRepository {
	return &ToolRepository{
		Repository: NewRepository(db, logger),
	}
}

func toolNotFound(id int) error {
	return apperrors.NotFound(toolNotFoundTitle, "Tool with ID %d does not exist", id)
}

// List returns one page of tools matching filter ordered by id, and the number of tools
// matching filter across all pages.
func (r *ToolRepository) List(ctx context.Context, filter models.ToolFilter) ([]models.Tool, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ToolRepository.List")
	defer span.End()

	countQuery, countArgs := buildToolCountQuery(filter)
	listQuery, listArgs := buildToolListQuery(filter)

	var total int
	var rows []toolRow
	err := r.withConn(ctx, "tools.list", "Failed to fetch tools", func(ctx context.Context, q database.Querier) error {
		if err := q.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
			return r.fail(ctx, err, "Failed to count tools", nil)
		}
		if err := q.SelectContext(ctx, &rows, listQuery, listArgs...); err != nil {
			return r.fail(ctx, err, "Failed to fetch tools", nil)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	tools := make([]models.Tool, 0, len(rows))
	for _, row := range rows {
		tools = append(tools, row.toModel())
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"total":    total,
		"returned": len(tools),
	}).Debugf("Listed %s", toolsTable)
	return tools, total, nil
}

// GetByID retrieves a tool with its category name
func (r *ToolRepository) GetByID(ctx context.Context, id int) (*models.Tool, error) {
	ctx, span := tracing.StartSpan(ctx, "ToolRepository.GetByID")
	defer span.End()

	query, args := buildToolByIDQuery(id)

	var row toolRow
	err := r.withConn(ctx, "tools.get", "Failed to fetch tool", func(ctx context.Context, q database.Querier) error {
		err := q.GetContext(ctx, &row, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			return toolNotFound(id)
		}
		if err != nil {
			return r.fail(ctx, err, "Failed to fetch tool", map[string]any{"tool_id": id})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tool := row.toModel()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tool_id": id,
	}).Debugf("Retrieved %s by ID: %d", toolsTable, id)
	return &tool, nil
}

// Create inserts a tool and returns it with its generated id, timestamps and category name.
func (r *ToolRepository) Create(ctx context.Context, req models.CreateToolRequest) (*models.Tool, error) {
	ctx, span := tracing.StartSpan(ctx, "ToolRepository.Create")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto(toolsTable).
		Cols("name", "description", "vendor", "website_url", "category_id", "monthly_cost",
			"active_users_count", "owner_department", "status").
		Values(req.Name, req.Description, req.Vendor, req.WebsiteURL, req.CategoryID, *req.MonthlyCost,
			req.ActiveUsersOrDefault(), string(req.OwnerDepartment), string(req.StatusOrDefault())).
		Returning(toolReturning...)
	insertQuery, insertArgs := ib.Build()

	sb := database.NewSelectBuilder()
	sb.Select("name").From(categoriesTable).Where(sb.Equal("id", req.CategoryID))
	categoryQuery, categoryArgs := sb.Build()

	var row toolRow
	err := r.withTx(ctx, "tools.create", "Failed to create tool", func(ctx context.Context, q database.Querier) error {
		if err := q.GetContext(ctx, &row, insertQuery, insertArgs...); err != nil {
			return r.fail(ctx, err, "Failed to create tool", map[string]any{"tool_name": req.Name})
		}

		var category string
		err := q.GetContext(ctx, &category, categoryQuery, categoryArgs...)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return r.fail(ctx, err, "Failed to create tool", map[string]any{"category_id": req.CategoryID})
		}
		row.Category = &category
		return nil
	})
	if err != nil {
		return nil, err
	}

	tool := row.toModel()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tool_id": tool.ID,
	}).Debugf("Created %s", toolsTable)
	return &tool, nil
}

// Update writes the fields present in update and refreshes updated_at. A missing tool is
// reported before an empty update.
func (r *ToolRepository) Update(ctx context.Context, id int, update models.ToolUpdate) (UpdateOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "ToolRepository.Update")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("1").From(toolsTable).Where(sb.Equal("id", id))
	existsQuery, existsArgs := sb.Build()

	outcome := UpdateNoFields
	err := r.withTx(ctx, "tools.update", "Failed to update tool", func(ctx context.Context, q database.Querier) error {
		var one int
		err := q.GetContext(ctx, &one, existsQuery, existsArgs...)
		if errors.Is(err, sql.ErrNoRows) {
			return toolNotFound(id)
		}
		if err != nil {
			return r.fail(ctx, err, "Failed to check tool existence", map[string]any{"tool_id": id})
		}

		if update.IsEmpty() {
			return nil
		}

		query, args := buildToolUpdateQuery(id, update)
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return r.fail(ctx, err, "Failed to update tool", map[string]any{
				"tool_id": id,
				"fields":  update.FieldNames(),
			})
		}
		outcome = UpdateApplied
		return nil
	})
	if err != nil {
		return outcome, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tool_id": id,
		"fields":  update.FieldNames(),
	}).Debugf("Updated %s", toolsTable)
	return outcome, nil
}

func buildToolUpdateQuery(id int, update models.ToolUpdate) (string, []any) {
	ub := database.NewUpdateBuilder()
	ub.Update(toolsTable)

	assignments := make([]string, 0, len(update)+1)
	for _, field := range update.Fields() {
		assignments = append(assignments, ub.Assign(field.Column(), updateValue(update[field])))
	}
	assignments = append(assignments, ub.Assign("updated_at", database.CurrentTimestamp()))

	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))
	return ub.Build()
}

// Delete removes a tool
func (r *ToolRepository) Delete(ctx context.Context, id int) error {
	ctx, span := tracing.StartSpan(ctx, "ToolRepository.Delete")
	defer span.End()

	dlb := database.NewDeleteBuilder()
	dlb.DeleteFrom(toolsTable).Where(dlb.Equal("id", id))
	query, args := dlb.Build()

	err := r.withConn(ctx, "tools.delete", "Failed to delete tool", func(ctx context.Context, q database.Querier) error {
		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return r.fail(ctx, err, "Failed to delete tool", map[string]any{"tool_id": id})
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return r.fail(ctx, err, "Failed to delete tool", map[string]any{"tool_id": id})
		}
		if affected == 0 {
			return toolNotFound(id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tool_id": id,
	}).Debugf("Deleted %s", toolsTable)
	return nil
}

// ExistsByName reports whether a tool with exactly this name is stored.
func (r *ToolRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ToolRepository.ExistsByName")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("COUNT(*)").From(toolsTable).Where(sb.Equal("name", name))
	query, args := sb.Build()

	var count int
	err := r.withConn(ctx, "tools.exists", "Failed to fetch tool", func(ctx context.Context, q database.Querier) error {
		return q.GetContext(ctx, &count, query, args...)
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
