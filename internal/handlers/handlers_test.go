package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/repositories"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

type fakeToolRepo struct {
	listFn   func(ctx context.Context, filter models.ToolFilter) ([]models.Tool, int, error)
	getFn    func(ctx context.Context, id int) (*models.Tool, error)
	createFn func(ctx context.Context, req models.CreateToolRequest) (*models.Tool, error)
	updateFn func(ctx context.Context, id int, update models.ToolUpdate) (repositories.UpdateOutcome, error)
	deleteFn func(ctx context.Context, id int) error
}

func (f *fakeToolRepo) List(ctx context.Context, filter models.ToolFilter) ([]models.Tool, int, error) {
	return f.listFn(ctx, filter)
}

func (f *fakeToolRepo) GetByID(ctx context.Context, id int) (*models.Tool, error) {
	return f.getFn(ctx, id)
}

func (f *fakeToolRepo) Create(ctx context.Context, req models.CreateToolRequest) (*models.Tool, error) {
	return f.createFn(ctx, req)
}

func (f *fakeToolRepo) Update(ctx context.Context, id int, update models.ToolUpdate) (repositories.UpdateOutcome, error) {
	return f.updateFn(ctx, id, update)
}

func (f *fakeToolRepo) Delete(ctx context.Context, id int) error {
	return f.deleteFn(ctx, id)
}

type recordingEmitter struct {
	created []int
	updated map[int][]string
	deleted []int
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{updated: map[int][]string{}}
}

func (r *recordingEmitter) ToolCreated(_ context.Context, tool *models.Tool) {
	r.created = append(r.created, tool.ID)
}

func (r *recordingEmitter) ToolUpdated(_ context.Context, id int, fields []string) {
	r.updated[id] = fields
}

func (r *recordingEmitter) ToolDeleted(_ context.Context, id int) {
	r.deleted = append(r.deleted, id)
}

// testAPI mounts handlers the way the server does, with the error handler in place
type testAPI struct {
	t *testing.T
	e *echo.Echo
}

func newTestAPI(t *testing.T, register ...func(g *echo.Group)) *testAPI {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(testLogger(), false)
	api := e.Group("/api")
	for _, r := range register {
		r(api)
	}
	return &testAPI{t: t, e: e}
}

func (a *testAPI) do(method, path string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func sampleTool(id int) models.Tool {
	return models.Tool{
		ID:               id,
		Name:             "Zoom",
		Vendor:           ptr("Zoom Inc"),
		CategoryID:       1,
		MonthlyCost:      14.99,
		OwnerDepartment:  models.DepartmentEngineering,
		Status:           models.ToolStatusActive,
		Category:         ptr("Communication"),
		ActiveUsersCount: 0,
	}
}
