// Package gen renders the scaffold files named by a file plan: FastAPI
// backend, React frontend, compose infra, docs and acceptance tests.
// Every generated code file opens with a "# REQ:" header naming the
// requirements it serves so coverage can be traced back.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/extract"
	"github.com/specforge-dev/specforge/pkg/llm"
	"github.com/specforge-dev/specforge/pkg/match"
	"github.com/specforge-dev/specforge/pkg/plan"
	"github.com/specforge-dev/specforge/pkg/spec"
)

// textExts lists extensions whose content gets newline normalization
// before writing.
var textExts = map[string]struct{}{
	".py": {}, ".txt": {}, ".ini": {}, ".cfg": {}, ".env": {},
	".yml": {}, ".yaml": {}, ".md": {}, ".html": {}, ".tsx": {},
	".ts": {}, ".js": {}, ".json": {},
}

var (
	slugPattern      = regexp.MustCompile(`[^a-z0-9_]+`)
	hintSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)
	modelPathPattern = regexp.MustCompile(`backend/app/models/([a-z0-9_]+)\.py$`)
	routePathPattern = regexp.MustCompile(`backend/app/routes/([a-z0-9_]+)\.py$`)
	flowPathPattern  = regexp.MustCompile(`backend/app/workflows/([a-z0-9_]+)\.py$`)
)

// Generator renders plan files into an output directory.
type Generator struct {
	client  llm.Client
	opts    extract.Options
	matcher *match.Matcher
	logger  *zap.Logger
}

// NewGenerator creates a generator. client may be nil when
// opts.ModelAssisted is false.
func NewGenerator(client llm.Client, opts extract.Options, logger *zap.Logger) *Generator {
	return &Generator{
		client:  client,
		opts:    opts,
		matcher: match.NewMatcher(),
		logger:  logger.Named("gen"),
	}
}

// Generate writes every plan file plus docs and acceptance tests under
// outDir and returns the generated contents keyed by relative path.
func (g *Generator) Generate(ctx context.Context, s *spec.Specification, p *plan.Plan, outDir, prdText string) (map[string]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	files := make(map[string]string)

	// Package markers exist regardless of what the plan names.
	markers := map[string]string{
		"backend/app/__init__.py":           "",
		"backend/app/routes/__init__.py":    "from . import *\n",
		"backend/app/models/__init__.py":    "",
		"backend/app/workflows/__init__.py": "",
	}
	for rel, content := range markers {
		if err := writeFile(outDir, rel, content); err != nil {
			return nil, err
		}
	}

	var schemaBlocks []string
	for _, item := range p.Files {
		code := g.renderPlanFile(ctx, s, item, &schemaBlocks)
		if err := writeFile(outDir, item.Path, code); err != nil {
			return nil, err
		}
		files[item.Path] = code
	}

	if len(schemaBlocks) > 0 {
		rel := "backend/app/routes/schemas.py"
		code := strings.Join(schemaBlocks, "\n")
		if err := writeFile(outDir, rel, code); err != nil {
			return nil, err
		}
		files[rel] = code
	}

	docs, err := g.renderDocs(s, prdText)
	if err != nil {
		return nil, err
	}
	for rel, content := range docs {
		if err := writeFile(outDir, rel, content); err != nil {
			return nil, err
		}
		files[rel] = content
	}

	for _, req := range s.Requirements {
		for rel, code := range acceptanceTests(req) {
			if err := writeFile(outDir, rel, code); err != nil {
				return nil, err
			}
			files[rel] = code
		}
	}

	g.logger.Info("scaffold generated",
		zap.String("out_dir", outDir), zap.Int("files", len(files)))
	return files, nil
}

// renderPlanFile picks the renderer for one plan entry. Unknown paths
// get a placeholder so the plan and the tree never diverge.
func (g *Generator) renderPlanFile(ctx context.Context, s *spec.Specification, item plan.PlanFile, schemaBlocks *[]string) string {
	name := s.Meta.Name

	switch {
	case strings.HasSuffix(item.Path, "backend/app/main.py"):
		return reqHeader(matchReqIDs(s, "health")) + fastapiMain(name)
	case strings.HasSuffix(item.Path, "backend/requirements.txt"):
		return pyRequirements()
	case strings.HasSuffix(item.Path, "pytest.ini"):
		return pytestConfig()
	case strings.HasSuffix(item.Path, "tests/test_health.py"):
		return pytestHealthTest()
	case strings.HasSuffix(item.Path, "frontend/index.html"):
		return frontendIndexHTML()
	case strings.HasSuffix(item.Path, "frontend/src/main.tsx"):
		return frontendMainTSX(name)
	case strings.HasSuffix(item.Path, "frontend/tsconfig.json"):
		return frontendTSConfig()
	case strings.HasSuffix(item.Path, "frontend/vite.config.ts"):
		return frontendViteConfig()
	case strings.HasSuffix(item.Path, "frontend/package.json"):
		return frontendPackageJSON()
	case strings.HasSuffix(item.Path, "infra/docker-compose.yml"):
		return composeFile(name)
	}

	if m := modelPathPattern.FindStringSubmatch(item.Path); m != nil {
		if ent := entityByLowerName(s, m[1]); ent != nil {
			return reqHeader(matchReqIDs(s, ent.Name)) + renderModel(*ent)
		}
	}
	if m := routePathPattern.FindStringSubmatch(item.Path); m != nil {
		// Route files carry the pluralized entity name.
		if ent := match.ResolveEntity(s.Entities, m[1]); ent != nil {
			hdr := reqHeader(matchReqIDs(s, ent.Name))
			rules := g.matcher.RulesFor(s.BusinessRules, ent.Name)
			*schemaBlocks = append(*schemaBlocks, hdr+renderSchema(*ent, rules))
			return hdr + g.renderRoute(ctx, *ent, s)
		}
	}
	if m := flowPathPattern.FindStringSubmatch(item.Path); m != nil {
		for _, wf := range s.Workflows {
			if slug(wf.Name) == m[1] {
				return reqHeader(matchReqIDs(s, wf.Name)) + g.renderWorkflow(ctx, wf, s)
			}
		}
	}
	return "// TODO"
}

func entityByLowerName(s *spec.Specification, lower string) *spec.Entity {
	for i := range s.Entities {
		if strings.ToLower(s.Entities[i].Name) == lower {
			return &s.Entities[i]
		}
	}
	return nil
}

// writeFile writes content under root, normalizing newlines for text
// extensions. Literal escaped newline sequences from model output are
// normalized too.
func writeFile(root, rel, content string) error {
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}
	if _, ok := textExts[filepath.Ext(rel)]; ok {
		content = strings.ReplaceAll(content, "\r\n", "\n")
		content = strings.ReplaceAll(content, `\r\n`, "\n")
		content = strings.ReplaceAll(content, `\n`, "\n")
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// reqHeader renders the requirement traceability header.
func reqHeader(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	uniq := make(map[string]struct{}, len(ids))
	var sorted []string
	for _, id := range ids {
		if _, ok := uniq[id]; ok {
			continue
		}
		uniq[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	return "# REQ: " + strings.Join(sorted, ", ") + "\n"
}

// matchReqIDs returns up to five requirement IDs whose text contains a
// word (longer than two characters) from hint.
func matchReqIDs(s *spec.Specification, hint string) []string {
	var ids []string
	words := hintSplitPattern.Split(strings.ToLower(hint), -1)
	for _, r := range s.Requirements {
		text := strings.ToLower(r.Text)
		for _, w := range words {
			if len(w) > 2 && strings.Contains(text, w) {
				ids = append(ids, r.ID)
				break
			}
		}
		if len(ids) == 5 {
			break
		}
	}
	return ids
}

func slug(name string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

func jsonIndent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
