package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/internal/handlers"
	apperrors "github.com/Ramsey-B/fern/pkg/errors"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/repositories"
)

func newToolAPI(t *testing.T, repo *fakeToolRepo) (*testAPI, *recordingEmitter) {
	emitter := newRecordingEmitter()
	h := handlers.NewToolHandler(repo, emitter)
	return newTestAPI(t, h.RegisterRoutes), emitter
}

func notFound(id int) error {
	return apperrors.NotFound("Tool not found", "Tool with ID %d does not exist", id)
}

func TestToolList(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var got models.ToolFilter
		repo := &fakeToolRepo{listFn: func(_ context.Context, filter models.ToolFilter) ([]models.Tool, int, error) {
			got = filter
			return []models.Tool{sampleTool(1), sampleTool(2)}, 7, nil
		}}
		api, _ := newToolAPI(t, repo)

		rec := api.do(http.MethodGet, "/api/tools", "")
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, models.ToolFilter{Limit: models.DefaultListLimit}, got)

		body := decode[models.ToolList](t, rec)
		assert.Equal(t, 7, body.Total)
		assert.Equal(t, 2, body.Filtered)
		assert.Len(t, body.Data, 2)
		assert.Equal(t, models.FiltersApplied{}, body.FiltersApplied)
	})

	t.Run("filters and pagination", func(t *testing.T) {
		var got models.ToolFilter
		repo := &fakeToolRepo{listFn: func(_ context.Context, filter models.ToolFilter) ([]models.Tool, int, error) {
			got = filter
			return nil, 0, nil
		}}
		api, _ := newToolAPI(t, repo)

		rec := api.do(http.MethodGet, "/api/tools?status=trial&category_id=3&vendor=%20Zoom%20&search=meet&limit=5&skip=10", "")
		require.Equal(t, http.StatusOK, rec.Code)

		require.NotNil(t, got.Status)
		assert.Equal(t, models.ToolStatusTrial, *got.Status)
		require.NotNil(t, got.CategoryID)
		assert.Equal(t, 3, *got.CategoryID)
		require.NotNil(t, got.Vendor)
		assert.Equal(t, "Zoom", *got.Vendor)
		require.NotNil(t, got.Search)
		assert.Equal(t, "meet", *got.Search)
		assert.Equal(t, 5, got.Limit)
		assert.Equal(t, 10, got.Skip)

		body := decode[map[string]any](t, rec)
		assert.Equal(t, []any{}, body["data"])
		assert.Equal(t, map[string]any{
			"status":      "trial",
			"category_id": float64(3),
			"vendor":      "Zoom",
			"search":      "meet",
		}, body["filters_applied"])
	})

	tests := []struct {
		name    string
		query   string
		title   string
		message string
	}{
		{"unknown status", "status=retired", "Validation error", "status must be one of active, deprecated, trial"},
		{"zero limit", "limit=0", "Validation error", "limit must be at least 1"},
		{"limit too large", "limit=1001", "Validation error", "limit must be at most 1000"},
		{"negative skip", "skip=-1", "Validation error", "skip must be at least 0"},
		{"zero category", "category_id=0", "Validation error", "category_id must be at least 1"},
		{"non numeric limit", "limit=ten", "Bad Request", "invalid limit: must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeToolRepo{listFn: func(context.Context, models.ToolFilter) ([]models.Tool, int, error) {
				t.Fatal("repository must not be called for invalid input")
				return nil, 0, nil
			}}
			api, _ := newToolAPI(t, repo)

			rec := api.do(http.MethodGet, "/api/tools?"+tt.query, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[middleware.ErrorResponse](t, rec)
			assert.Equal(t, tt.title, body.Error)
			assert.Contains(t, body.Message, tt.message)
		})
	}

	t.Run("storage failure", func(t *testing.T) {
		repo := &fakeToolRepo{listFn: func(context.Context, models.ToolFilter) ([]models.Tool, int, error) {
			return nil, 0, apperrors.QueryFailure("Failed to fetch tools", errors.New("syntax error"))
		}}
		api, _ := newToolAPI(t, repo)

		rec := api.do(http.MethodGet, "/api/tools", "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to fetch tools", decode[middleware.ErrorResponse](t, rec).Error)
	})
}

func TestToolGet(t *testing.T) {
	repo := &fakeToolRepo{getFn: func(_ context.Context, id int) (*models.Tool, error) {
		if id == 9 {
			return nil, notFound(id)
		}
		tool := sampleTool(id)
		return &tool, nil
	}}
	api, _ := newToolAPI(t, repo)

	t.Run("found", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/tools/4", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode[map[string]any](t, rec)
		assert.Equal(t, float64(4), body["id"])
		assert.Equal(t, 14.99, body["monthly_cost"])
		assert.Equal(t, "Communication", body["category"])
	})

	t.Run("not found", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/tools/9", "")
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decode[middleware.ErrorResponse](t, rec)
		assert.Equal(t, "Tool not found", body.Error)
		assert.Equal(t, "Tool with ID 9 does not exist", body.Message)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := api.do(http.MethodGet, "/api/tools/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = api.do(http.MethodGet, "/api/tools/0", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestToolCreate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		var got models.CreateToolRequest
		repo := &fakeToolRepo{createFn: func(_ context.Context, req models.CreateToolRequest) (*models.Tool, error) {
			got = req
			tool := sampleTool(15)
			return &tool, nil
		}}
		api, emitter := newToolAPI(t, repo)

		rec := api.do(http.MethodPost, "/api/tools", `{
			"name": "Zoom",
			"description": "Video meetings",
			"vendor": "Zoom Inc",
			"category_id": 1,
			"monthly_cost": 14.99,
			"active_users_count": 0,
			"owner_department": "Engineering"
		}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		assert.Equal(t, "Zoom", got.Name)
		assert.Equal(t, models.DepartmentEngineering, got.OwnerDepartment)
		assert.Equal(t, models.ToolStatusActive, got.StatusOrDefault())
		require.NotNil(t, got.MonthlyCost)
		assert.Equal(t, 14.99, *got.MonthlyCost)

		assert.Equal(t, float64(15), decode[map[string]any](t, rec)["id"])
		assert.Equal(t, []int{15}, emitter.created)
	})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{"name": "Zoom"}`, "description is required"},
		{"short name", `{"name": "Z", "description": "d", "vendor": "v", "category_id": 1, "monthly_cost": 1, "owner_department": "Sales"}`, "name must be at least 2"},
		{"negative cost", `{"name": "Zoom", "description": "d", "vendor": "v", "category_id": 1, "monthly_cost": -1, "owner_department": "Sales"}`, "monthly_cost must be at least 0"},
		{"unknown department", `{"name": "Zoom", "description": "d", "vendor": "v", "category_id": 1, "monthly_cost": 1, "owner_department": "Legal"}`, "owner_department must be one of"},
		{"unknown status", `{"name": "Zoom", "description": "d", "vendor": "v", "category_id": 1, "monthly_cost": 1, "owner_department": "Sales", "status": "retired"}`, "status must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeToolRepo{createFn: func(context.Context, models.CreateToolRequest) (*models.Tool, error) {
				t.Fatal("repository must not be called for invalid input")
				return nil, nil
			}}
			api, emitter := newToolAPI(t, repo)

			rec := api.do(http.MethodPost, "/api/tools", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[middleware.ErrorResponse](t, rec)
			assert.Equal(t, "Validation error", body.Error)
			assert.Contains(t, body.Message, tt.message)
			assert.Empty(t, emitter.created)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		api, _ := newToolAPI(t, &fakeToolRepo{})

		rec := api.do(http.MethodPost, "/api/tools", `{"name":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[middleware.ErrorResponse](t, rec).Message, "invalid request body")
	})
}

func TestToolUpdate(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		var got models.ToolUpdate
		repo := &fakeToolRepo{updateFn: func(_ context.Context, id int, update models.ToolUpdate) (repositories.UpdateOutcome, error) {
			assert.Equal(t, 3, id)
			got = update
			return repositories.UpdateApplied, nil
		}}
		api, emitter := newToolAPI(t, repo)

		rec := api.do(http.MethodPut, "/api/tools/3", `{"owner_department": "Sales", "monthly_cost": 20, "website_url": null}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, models.ToolUpdate{
			models.FieldMonthlyCost:     20.0,
			models.FieldOwnerDepartment: models.DepartmentSales,
		}, got)
		assert.Equal(t, "Tool updated successfully", decode[models.MessageResponse](t, rec).Message)
		assert.Equal(t, []string{"monthly_cost", "owner_department"}, emitter.updated[3])
	})

	t.Run("no fields", func(t *testing.T) {
		for _, body := range []string{`{}`, ``} {
			repo := &fakeToolRepo{updateFn: func(_ context.Context, _ int, update models.ToolUpdate) (repositories.UpdateOutcome, error) {
				assert.True(t, update.IsEmpty())
				return repositories.UpdateNoFields, nil
			}}
			api, emitter := newToolAPI(t, repo)

			rec := api.do(http.MethodPut, "/api/tools/3", body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "No fields to update", decode[models.MessageResponse](t, rec).Message)
			assert.Empty(t, emitter.updated)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := &fakeToolRepo{updateFn: func(_ context.Context, id int, _ models.ToolUpdate) (repositories.UpdateOutcome, error) {
			return repositories.UpdateNoFields, notFound(id)
		}}
		api, emitter := newToolAPI(t, repo)

		rec := api.do(http.MethodPut, "/api/tools/42", `{"name": "Slack"}`)
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Tool with ID 42 does not exist", decode[middleware.ErrorResponse](t, rec).Message)
		assert.Empty(t, emitter.updated)
	})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"unknown field", `{"id": 5}`, "unknown fields: id"},
		{"bad status", `{"status": "retired"}`, "invalid value for status"},
		{"wrong type", `{"active_users_count": "many"}`, "invalid value for active_users_count"},
		{"short name", `{"name": "a"}`, "name must be at least 2"},
		{"negative users", `{"active_users_count": -3}`, "active_users_count must be at least 0"},
		{"not an object", `[1, 2]`, "request body must be a JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeToolRepo{updateFn: func(context.Context, int, models.ToolUpdate) (repositories.UpdateOutcome, error) {
				t.Fatal("repository must not be called for invalid input")
				return repositories.UpdateNoFields, nil
			}}
			api, _ := newToolAPI(t, repo)

			rec := api.do(http.MethodPut, "/api/tools/3", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[middleware.ErrorResponse](t, rec)
			assert.Equal(t, "Validation error", body.Error)
			assert.Contains(t, body.Message, tt.message)
		})
	}
}

func TestToolDelete(t *testing.T) {
	deleted := map[int]bool{}
	repo := &fakeToolRepo{deleteFn: func(_ context.Context, id int) error {
		if deleted[id] {
			return notFound(id)
		}
		deleted[id] = true
		return nil
	}}
	api, emitter := newToolAPI(t, repo)

	rec := api.do(http.MethodDelete, "/api/tools/8", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tool deleted successfully", decode[models.MessageResponse](t, rec).Message)

	rec = api.do(http.MethodDelete, "/api/tools/8", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []int{8}, emitter.deleted)
}

func TestNewToolHandlerWithoutEmitter(t *testing.T) {
	repo := &fakeToolRepo{deleteFn: func(context.Context, int) error { return nil }}
	h := handlers.NewToolHandler(repo, nil)
	api := newTestAPI(t, func(g *echo.Group) { h.RegisterRoutes(g) })

	rec := api.do(http.MethodDelete, "/api/tools/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
