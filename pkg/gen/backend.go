package gen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// pyTypes maps spec field types to Python annotation types; anything
// unknown is a string.
var pyTypes = map[string]string{
	"uuid": "str", "string": "str",
	"int": "int", "integer": "int",
	"bool": "bool", "boolean": "bool",
}

// sqlaTypes maps spec field types to SQLAlchemy column types.
var sqlaTypes = map[string]string{
	"uuid": "String", "string": "String",
	"int": "Integer", "integer": "Integer",
	"bool": "Boolean", "boolean": "Boolean",
}

var (
	nonNegativeExpr = regexp.MustCompile(`^([a-zA-Z_]\w*)>=0$`)
	membershipExpr  = regexp.MustCompile(`^([a-zA-Z_]\w*)\s*in\s*\[(.+)\]$`)
	fenceOpen       = regexp.MustCompile("^```[a-zA-Z0-9_]*\n")
	fenceClose      = regexp.MustCompile("\n```$")
)

func fastapiMain(name string) string {
	return fmt.Sprintf(`from fastapi import FastAPI
from .routes import *
app = FastAPI(title="%s API")

@app.get('/health')
def health():
    return {"status":"ok"}
`, name)
}

func pytestConfig() string {
	return "[pytest]\naddopts = -q\n"
}

func pytestHealthTest() string {
	return `from fastapi.testclient import TestClient
from backend.app.main import app

def test_health():
    c = TestClient(app)
    r = c.get('/health')
    assert r.status_code == 200
    assert r.json().get('status') == 'ok'
`
}

func pyRequirements() string {
	return "fastapi==0.111.0\nuvicorn[standard]==0.30.1\npydantic==2.7.4\nsqlalchemy==2.0.31\n"
}

// renderModel emits a SQLAlchemy declarative model for the entity. An
// entity with no fields still gets a primary key.
func renderModel(ent spec.Entity) string {
	var cols []string
	for _, f := range ent.Fields {
		colType, ok := sqlaTypes[strings.ToLower(f.Type)]
		if !ok {
			colType = "String"
		}
		var flags []string
		if f.PK {
			flags = append(flags, "primary_key=True")
		}
		if f.Unique {
			flags = append(flags, "unique=True")
		}
		flagStr := ""
		if len(flags) > 0 {
			flagStr = ", " + strings.Join(flags, ", ")
		}
		cols = append(cols, fmt.Sprintf("    %s = Column(%s%s)", f.Name, colType, flagStr))
	}
	body := strings.Join(cols, "\n")
	if body == "" {
		body = "    id = Column(String, primary_key=True)"
	}
	return fmt.Sprintf(`from sqlalchemy.orm import declarative_base
from sqlalchemy import Column, String, Integer, Boolean

Base = declarative_base()

class %s(Base):
    __tablename__ = "%ss"
%s
`, ent.Name, strings.ToLower(ent.Name), body)
}

// renderSchema emits the pydantic request model for the entity with
// validators derived from the non-negativity and membership rule shapes.
func renderSchema(ent spec.Entity, rules []spec.BusinessRule) string {
	lines := []string{
		"from pydantic import BaseModel, field_validator, ValidationInfo",
		"",
		fmt.Sprintf("class Create%sRequest(BaseModel):", ent.Name),
	}
	if len(ent.Fields) == 0 {
		lines = append(lines, "    id: str | None = None")
	}
	for _, f := range ent.Fields {
		t, ok := pyTypes[strings.ToLower(f.Type)]
		if !ok {
			t = "str"
		}
		opt := " | None = None"
		if f.PK {
			opt = ""
		}
		lines = append(lines, fmt.Sprintf("    %s: %s%s", f.Name, t, opt))
	}

	for _, r := range rules {
		msg := r.Message
		if msg == "" {
			msg = "validation failed"
		}
		msg = strings.ReplaceAll(msg, `"`, `\"`)
		if m := nonNegativeExpr.FindStringSubmatch(strings.ReplaceAll(r.Expr, " ", "")); m != nil {
			field := m[1]
			lines = append(lines,
				"",
				fmt.Sprintf("    @field_validator('%s')", field),
				fmt.Sprintf("    def validate_%s_non_negative(cls, v, info: ValidationInfo):", field),
				"        if v is not None and v < 0:",
				fmt.Sprintf("            raise ValueError(\"%s\")", msg),
				"        return v",
			)
		} else if m := membershipExpr.FindStringSubmatch(r.Expr); m != nil {
			field, options := m[1], m[2]
			lines = append(lines,
				"",
				fmt.Sprintf("    @field_validator('%s')", field),
				fmt.Sprintf("    def validate_%s_enum(cls, v, info: ValidationInfo):", field),
				fmt.Sprintf("        allowed = [%s]", options),
				"        if v is not None and v not in allowed:",
				fmt.Sprintf("            raise ValueError(\"%s\")", msg),
				"        return v",
			)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// missingStackTodos returns TODO comment lines for unspecified backend
// stack slots, prepended to generated code.
func missingStackTodos(s *spec.Specification) []string {
	var todos []string
	if isUnspecified(s.Stacks.Backend["framework"]) {
		todos = append(todos, "# TODO: specify backend framework in spec")
	}
	if isUnspecified(s.Stacks.Backend["lang"]) {
		todos = append(todos, "# TODO: specify backend language in spec")
	}
	return todos
}

func isUnspecified(v string) bool {
	return v == "" || v == spec.Unspecified
}

// renderRoute emits the CRUD router for an entity. Model-assisted
// rendering degrades to the static template on any failure.
func (g *Generator) renderRoute(ctx context.Context, ent spec.Entity, s *spec.Specification) string {
	reqs := g.matcher.RequirementsFor(s.Requirements, ent.Name)
	rules := g.matcher.RulesFor(s.BusinessRules, ent.Name)
	todos := missingStackTodos(s)

	if g.opts.ModelAssisted && g.client != nil {
		code, err := g.modelRouteCode(ctx, ent, reqs, rules, s.Stacks)
		if err == nil {
			return prependTodos(todos, code)
		}
		g.logger.Warn("model route generation failed, using template",
			zap.String("entity", ent.Name), zap.Error(err))
	}

	lower := strings.ToLower(ent.Name)
	lines := append(todos,
		"from fastapi import APIRouter",
		"from typing import List, Dict",
		fmt.Sprintf("from .schemas import Create%sRequest", ent.Name),
		"",
		fmt.Sprintf("router = APIRouter(prefix='/%ss', tags=['%s'])", lower, ent.Name),
		"_DB: List[Dict] = []",
		"",
		"@router.get('', response_model=List[Dict])",
		fmt.Sprintf("def list_%ss():", lower),
		"    return _DB",
		"",
		"@router.post('', response_model=Dict)",
		fmt.Sprintf("def create_%s(item: Create%sRequest):", lower, ent.Name),
		"    d = item.model_dump()",
		"    _DB.append(d)",
		"    return d",
	)
	return strings.Join(lines, "\n") + "\n"
}

// renderWorkflow emits the function stub for a workflow, with the same
// model-assisted degradation as routes.
func (g *Generator) renderWorkflow(ctx context.Context, wf spec.Workflow, s *spec.Specification) string {
	reqs := g.matcher.RequirementsFor(s.Requirements, wf.Name)
	rules := g.matcher.RulesFor(s.BusinessRules, wf.Name)
	todos := missingStackTodos(s)

	if g.opts.ModelAssisted && g.client != nil {
		code, err := g.modelWorkflowCode(ctx, wf, reqs, rules, s.Stacks)
		if err == nil {
			return prependTodos(todos, code)
		}
		g.logger.Warn("model workflow generation failed, using template",
			zap.String("workflow", wf.Name), zap.Error(err))
	}

	lines := append(todos,
		fmt.Sprintf("def %s(context: dict) -> None:", slug(wf.Name)),
		fmt.Sprintf("    \"\"\"Trigger: %s\"\"\"", wf.Trigger),
	)
	if len(wf.Actions) > 0 {
		lines = append(lines, "    # Actions:")
		for _, act := range wf.Actions {
			lines = append(lines, "    # - "+act)
		}
	}
	lines = append(lines, "    pass")
	return strings.Join(lines, "\n") + "\n"
}

func (g *Generator) modelRouteCode(ctx context.Context, ent spec.Entity, reqs []spec.Requirement, rules []spec.BusinessRule, stacks spec.Stacks) (string, error) {
	prompt := fmt.Sprintf(`Implement a FastAPI router for the entity %s.
Requirements: %s
Business rules: %s
Tech stacks: %s
Use comments and TODOs if stack information is insufficient.
Return only Python code.`,
		ent.Name, jsonIndent(reqs), jsonIndent(rules), jsonIndent(stacks))
	raw, err := g.client.GenerateResponse(ctx, prompt, "", g.opts.Temperature)
	if err != nil {
		return "", fmt.Errorf("generate route code: %w", err)
	}
	return stripCodeFences(raw), nil
}

func (g *Generator) modelWorkflowCode(ctx context.Context, wf spec.Workflow, reqs []spec.Requirement, rules []spec.BusinessRule, stacks spec.Stacks) (string, error) {
	prompt := fmt.Sprintf(`You generate Python functions implementing application workflows.
Workflow: %s
Relevant requirements: %s
Business rules: %s
Tech stacks: %s
Use the stacks when writing code. If information is missing, add comments and TODO notes with recommendations.
Return only Python code without explanations.`,
		jsonIndent(wf), jsonIndent(reqs), jsonIndent(rules), jsonIndent(stacks))
	raw, err := g.client.GenerateResponse(ctx, prompt, "", g.opts.Temperature)
	if err != nil {
		return "", fmt.Errorf("generate workflow code: %w", err)
	}
	return stripCodeFences(raw), nil
}

func prependTodos(todos []string, code string) string {
	if len(todos) > 0 {
		code = strings.Join(todos, "\n") + "\n" + code
	}
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return code
}

func stripCodeFences(code string) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "```") {
		code = fenceOpen.ReplaceAllString(code, "")
	}
	if strings.HasSuffix(code, "```") {
		code = fenceClose.ReplaceAllString(code, "")
	}
	return code
}
