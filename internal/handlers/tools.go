package handlers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/repositories"
	"github.com/Ramsey-B/fern/pkg/validation"
)

const (
	msgToolUpdated   = "Tool updated successfully"
	msgNoFields      = "No fields to update"
	msgToolDeleted   = "Tool deleted successfully"
	maxUpdateBodyLen = 1 << 20
)

var listLimitRule = fmt.Sprintf("min=1,max=%d", models.MaxListLimit)

// ToolHandler handles tool catalog API requests
type ToolHandler struct {
	repo   repositories.ToolRepo
	events events.ToolEmitter
}

// NewToolHandler creates a new tool handler
func NewToolHandler(repo repositories.ToolRepo, emitter events.ToolEmitter) *ToolHandler {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	return &ToolHandler{
		repo:   repo,
		events: emitter,
	}
}

// RegisterRoutes registers the tool routes
func (h *ToolHandler) RegisterRoutes(g *echo.Group) {
	tools := g.Group("/tools")
	tools.GET("", h.List)
	tools.POST("", h.Create)
	tools.GET("/:id", h.Get)
	tools.PUT("/:id", h.Update)
	tools.DELETE("/:id", h.Delete)
}

// List handles GET /tools
func (h *ToolHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter, err := parseToolFilter(c)
	if err != nil {
		return err
	}

	tools, total, err := h.repo.List(ctx, filter)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.NewToolList(tools, total, filter))
}

// Get handles GET /tools/:id
func (h *ToolHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	tool, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return SuccessResponse(c, tool)
}

// Create handles POST /tools
func (h *ToolHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateToolRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}

	if err := validation.Struct(req); err != nil {
		return err
	}

	tool, err := h.repo.Create(ctx, req)
	if err != nil {
		return err
	}

	metrics.ToolMutationsTotal.WithLabelValues("create").Inc()
	h.events.ToolCreated(ctx, tool)

	return CreatedResponse(c, tool)
}

// Update handles PUT /tools/:id. Only the fields present in the body change.
func (h *ToolHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUpdateBodyLen))
	if err != nil {
		return BadRequest("invalid request body")
	}

	update := models.ToolUpdate{}
	if len(bytes.TrimSpace(body)) > 0 {
		update, err = models.ParseToolUpdate(body)
		if err != nil {
			return err
		}
	}

	for _, field := range update.Fields() {
		if err := validation.Value(string(field), update[field], field.Rule()); err != nil {
			return err
		}
	}

	outcome, err := h.repo.Update(ctx, id, update)
	if err != nil {
		return err
	}

	if outcome == repositories.UpdateNoFields {
		return MessageResponse(c, msgNoFields)
	}

	metrics.ToolMutationsTotal.WithLabelValues("update").Inc()
	h.events.ToolUpdated(ctx, id, update.FieldNames())

	return MessageResponse(c, msgToolUpdated)
}

// Delete handles DELETE /tools/:id
func (h *ToolHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.ToolMutationsTotal.WithLabelValues("delete").Inc()
	h.events.ToolDeleted(ctx, id)

	return MessageResponse(c, msgToolDeleted)
}

func parseToolFilter(c echo.Context) (models.ToolFilter, error) {
	filter := models.ToolFilter{Limit: models.DefaultListLimit}

	if status := QueryString(c, "status"); status != nil {
		if err := validation.Value("status", *status, "tool_status"); err != nil {
			return filter, err
		}
		s := models.ToolStatus(*status)
		filter.Status = &s
	}

	categoryID, ok, err := QueryInt(c, "category_id")
	if err != nil {
		return filter, err
	}
	if ok {
		if err := validation.Value("category_id", categoryID, "min=1"); err != nil {
			return filter, err
		}
		filter.CategoryID = &categoryID
	}

	filter.Vendor = QueryString(c, "vendor")
	filter.Search = QueryString(c, "search")

	limit, ok, err := QueryInt(c, "limit")
	if err != nil {
		return filter, err
	}
	if ok {
		if err := validation.Value("limit", limit, listLimitRule); err != nil {
			return filter, err
		}
		filter.Limit = limit
	}

	skip, ok, err := QueryInt(c, "skip")
	if err != nil {
		return filter, err
	}
	if ok {
		if err := validation.Value("skip", skip, "min=0"); err != nil {
			return filter, err
		}
		filter.Skip = skip
	}

	return filter, nil
}
