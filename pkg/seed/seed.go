// Package seed loads catalog fixtures from YAML and applies them idempotently.
package seed

import (
	"bytes"
	"context"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/validation"
)

// Fixtures is the content of a seed file
type Fixtures struct {
	Categories []models.CategoryInput `yaml:"categories"`
	Tools      []ToolFixture          `yaml:"tools"`
}

// ToolFixture is a tool that references its category by name
type ToolFixture struct {
	Name             string  `yaml:"name"`
	Description      string  `yaml:"description"`
	Vendor           string  `yaml:"vendor"`
	WebsiteURL       *string `yaml:"website_url"`
	Category         string  `yaml:"category"`
	MonthlyCost      float64 `yaml:"monthly_cost"`
	ActiveUsersCount int     `yaml:"active_users_count"`
	OwnerDepartment  string  `yaml:"owner_department"`
	Status           string  `yaml:"status"`
}

// Result counts what Apply did
type Result struct {
	CategoriesEnsured int
	ToolsCreated      int
	ToolsSkipped      int
}

type CategoryStore interface {
	EnsureByName(ctx context.Context, input models.CategoryInput) (int, error)
}

type ToolStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, req models.CreateToolRequest) (*models.Tool, error)
}

// LoadFile reads fixtures from path. Unknown keys are rejected.
func LoadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seed file %s", path)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var fixtures Fixtures
	if err := decoder.Decode(&fixtures); err != nil {
		return nil, errors.Wrap(err, "failed to parse seed fixtures")
	}
	return &fixtures, nil
}

type Seeder struct {
	categories CategoryStore
	tools      ToolStore
	logger     ectologger.Logger
}

func NewSeeder(categories CategoryStore, tools ToolStore, logger ectologger.Logger) *Seeder {
	return &Seeder{categories: categories, tools: tools, logger: logger}
}

// Apply creates missing categories by name, then tools whose name is not stored yet. Fixtures
// are validated like API requests before anything is written.
func (s *Seeder) Apply(ctx context.Context, fixtures *Fixtures) (Result, error) {
	var result Result

	requests, err := s.buildRequests(fixtures)
	if err != nil {
		return result, err
	}

	categoryIDs := make(map[string]int, len(fixtures.Categories))
	for _, category := range fixtures.Categories {
		id, err := s.categories.EnsureByName(ctx, category)
		if err != nil {
			return result, errors.Wrapf(err, "failed to seed category %q", category.Name)
		}
		categoryIDs[category.Name] = id
		result.CategoriesEnsured++
	}

	for i, fixture := range fixtures.Tools {
		exists, err := s.tools.ExistsByName(ctx, fixture.Name)
		if err != nil {
			return result, errors.Wrapf(err, "failed to look up tool %q", fixture.Name)
		}
		if exists {
			result.ToolsSkipped++
			continue
		}

		req := requests[i]
		req.CategoryID = categoryIDs[fixture.Category]
		tool, err := s.tools.Create(ctx, req)
		if err != nil {
			return result, errors.Wrapf(err, "failed to seed tool %q", fixture.Name)
		}
		result.ToolsCreated++

		s.logger.WithContext(ctx).WithFields(map[string]any{
			"tool_id":   tool.ID,
			"tool_name": tool.Name,
		}).Debug("seeded tool")
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"categories":    result.CategoriesEnsured,
		"tools_created": result.ToolsCreated,
		"tools_skipped": result.ToolsSkipped,
	}).Info("seed fixtures applied")
	return result, nil
}

func (s *Seeder) buildRequests(fixtures *Fixtures) ([]models.CreateToolRequest, error) {
	known := make(map[string]bool, len(fixtures.Categories))
	for _, category := range fixtures.Categories {
		if err := validation.Struct(category); err != nil {
			return nil, errors.Wrapf(err, "invalid category fixture %q", category.Name)
		}
		known[category.Name] = true
	}

	requests := make([]models.CreateToolRequest, 0, len(fixtures.Tools))
	for _, fixture := range fixtures.Tools {
		if !known[fixture.Category] {
			return nil, errors.Errorf("tool fixture %q references unknown category %q", fixture.Name, fixture.Category)
		}

		cost := fixture.MonthlyCost
		users := fixture.ActiveUsersCount
		req := models.CreateToolRequest{
			Name:             fixture.Name,
			Description:      fixture.Description,
			Vendor:           fixture.Vendor,
			WebsiteURL:       fixture.WebsiteURL,
			CategoryID:       1,
			MonthlyCost:      &cost,
			ActiveUsersCount: &users,
			OwnerDepartment:  models.Department(fixture.OwnerDepartment),
		}
		if fixture.Status != "" {
			status := models.ToolStatus(fixture.Status)
			req.Status = &status
		}

		// CategoryID is resolved at apply time; the placeholder keeps the required rule satisfied.
		if err := validation.Struct(req); err != nil {
			return nil, errors.Wrapf(err, "invalid tool fixture %q", fixture.Name)
		}
		requests = append(requests, req)
	}
	return requests, nil
}
