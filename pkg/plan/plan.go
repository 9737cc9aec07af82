// Package plan derives the scaffold file plan from a validated
// specification. The plan enumerates every file the generator will
// write, with roles, dependencies and the contracts each file must
// honor.
package plan

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// PlanFile is a single file to be generated.
type PlanFile struct {
	Path      string   `json:"path"`
	Role      string   `json:"role"`
	DependsOn []string `json:"depends_on"`
	Contracts []string `json:"contracts"`
}

// Plan is the full file plan plus the library constraints carried over
// from the specification.
type Plan struct {
	Files     []PlanFile     `json:"files"`
	Libraries map[string]any `json:"libraries"`
}

// Planner turns specifications into file plans.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a planner.
func NewPlanner(logger *zap.Logger) *Planner {
	return &Planner{logger: logger.Named("plan")}
}

// ValidateSpec checks the sections the planner depends on.
func ValidateSpec(s *spec.Specification) error {
	if s == nil {
		return fmt.Errorf("spec is nil")
	}
	if len(s.Stacks.Backend) == 0 || len(s.Stacks.Frontend) == 0 {
		return fmt.Errorf("spec must contain stacks.backend and stacks.frontend")
	}
	return nil
}

// Build produces the file plan for s.
func (p *Planner) Build(s *spec.Specification) (*Plan, error) {
	if err := ValidateSpec(s); err != nil {
		return nil, err
	}

	var libs map[string]any
	if raw, ok := s.Constraints["allowed_libs"]; ok {
		if m, ok := raw.(map[string]any); ok {
			libs = m
		}
	}
	if libs == nil {
		libs = map[string]any{}
	}

	files := backendFiles(s)
	files = append(files, frontendFiles(s)...)
	files = append(files, infraFiles()...)

	p.logger.Debug("file plan built", zap.Int("files", len(files)))
	return &Plan{Files: files, Libraries: libs}, nil
}

func backendFiles(s *spec.Specification) []PlanFile {
	fw := strings.ToLower(s.Stacks.Backend["framework"])
	lang := strings.ToLower(s.Stacks.Backend["lang"])
	if fw != "fastapi" && fw != "django" && lang != "python" {
		return nil
	}

	files := []PlanFile{
		{Path: "backend/app/main.py", Role: "entrypoint", DependsOn: []string{}, Contracts: []string{"GET /health returns 200 {status:'ok'}"}},
		{Path: "backend/app/models/__init__.py", Role: "pkg", DependsOn: []string{}, Contracts: []string{}},
		{Path: "backend/app/routes/__init__.py", Role: "pkg", DependsOn: []string{}, Contracts: []string{}},
		{Path: "backend/app/workflows/__init__.py", Role: "pkg", DependsOn: []string{}, Contracts: []string{}},
		{Path: "tests/test_health.py", Role: "test", DependsOn: []string{"backend/app/main.py"}, Contracts: []string{"GET /health == 200"}},
		{Path: "backend/requirements.txt", Role: "deps", DependsOn: []string{}, Contracts: []string{}},
		{Path: "pytest.ini", Role: "test_config", DependsOn: []string{}, Contracts: []string{}},
	}

	for _, ent := range s.Entities {
		lower := strings.ToLower(ent.Name)
		modelPath := fmt.Sprintf("backend/app/models/%s.py", lower)
		files = append(files,
			PlanFile{Path: modelPath, Role: "model", DependsOn: []string{}, Contracts: []string{"Model for " + ent.Name}},
			PlanFile{Path: fmt.Sprintf("backend/app/routes/%ss.py", lower), Role: "api", DependsOn: []string{modelPath}, Contracts: []string{"CRUD for " + ent.Name}},
		)
	}
	for _, wf := range s.Workflows {
		slug := strings.ToLower(strings.ReplaceAll(wf.Name, " ", "_"))
		files = append(files, PlanFile{
			Path:      fmt.Sprintf("backend/app/workflows/%s.py", slug),
			Role:      "workflow",
			DependsOn: []string{},
			Contracts: []string{"Workflow for " + wf.Name},
		})
	}
	return files
}

func frontendFiles(s *spec.Specification) []PlanFile {
	fw := strings.ToLower(s.Stacks.Frontend["framework"])
	lang := strings.ToLower(s.Stacks.Frontend["lang"])
	if fw == "react" && lang == "ts" {
		return []PlanFile{
			{Path: "frontend/index.html", Role: "page", DependsOn: []string{}, Contracts: []string{"Mounts #root"}},
			{Path: "frontend/src/main.tsx", Role: "entry", DependsOn: []string{}, Contracts: []string{"Renders app title"}},
			{Path: "frontend/tsconfig.json", Role: "tsconfig", DependsOn: []string{}, Contracts: []string{}},
			{Path: "frontend/package.json", Role: "deps", DependsOn: []string{}, Contracts: []string{}},
			{Path: "frontend/vite.config.ts", Role: "vite", DependsOn: []string{}, Contracts: []string{}},
		}
	}
	return []PlanFile{
		{Path: "frontend/index.html", Role: "page", DependsOn: []string{}, Contracts: []string{"Shows app title"}},
	}
}

func infraFiles() []PlanFile {
	return []PlanFile{
		{Path: "infra/docker-compose.yml", Role: "compose", DependsOn: []string{}, Contracts: []string{"api, frontend, db services"}},
	}
}
