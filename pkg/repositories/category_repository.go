package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	*Repository
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db database.DB, logger ectologger.Logger) *CategoryRepository {
	return &CategoryRepository{
		Repository: NewRepository(db, logger),
	}
}

// EnsureByName returns the id of the category named input.Name, creating it first when absent.
func (r *CategoryRepository) EnsureByName(ctx context.Context, input models.CategoryInput) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "CategoryRepository.EnsureByName")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id").From(categoriesTable).Where(sb.Equal("name", input.Name))
	selectQuery, selectArgs := sb.Build()

	cols := []string{"name", "description"}
	values := []any{input.Name, input.Description}
	if input.ColorHex != nil {
		cols = append(cols, "color_hex")
		values = append(values, *input.ColorHex)
	}
	ib := database.NewInsertBuilder()
	ib.InsertInto(categoriesTable).Cols(cols...).Values(values...).Returning("id")
	insertQuery, insertArgs := ib.Build()

	var id int
	created := false
	err := r.withTx(ctx, "categories.ensure", "Failed to create category", func(ctx context.Context, q database.Querier) error {
		err := q.GetContext(ctx, &id, selectQuery, selectArgs...)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return r.fail(ctx, err, "Failed to fetch categories", map[string]any{"category_name": input.Name})
		}

		if err := q.GetContext(ctx, &id, insertQuery, insertArgs...); err != nil {
			return r.fail(ctx, err, "Failed to create category", map[string]any{"category_name": input.Name})
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"category_id":   id,
		"category_name": input.Name,
		"created":       created,
	}).Debugf("Ensured %s", categoriesTable)
	return id, nil
}
