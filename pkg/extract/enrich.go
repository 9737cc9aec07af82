package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/llm"
	"github.com/specforge-dev/specforge/pkg/spec"
	"github.com/specforge-dev/specforge/pkg/textnorm"
)

var (
	inlineEntityPattern = regexp.MustCompile(`(?i)\bentity:\s*([A-Za-z][A-Za-z0-9_]*)\s*\(([^)]+)\)`)
	headingPattern      = regexp.MustCompile(`^#+\s*([A-Za-z][A-Za-z0-9_]*)`)
	headingStartPattern = regexp.MustCompile(`^#+\s`)
	bulletFieldPattern  = regexp.MustCompile(`(?m)^\s*[-*]\s*([A-Za-z][A-Za-z0-9_]*)\s*$`)
	workflowPattern     = regexp.MustCompile(`(?i)(?:when|on)\s+(.+?):\s*(.+)`)
	actionSplitPattern  = regexp.MustCompile(`[;,]`)
)

// defaultEntity is what a PRD with no detectable entities gets, so the
// generated scaffold always has at least one model.
var defaultEntity = spec.Entity{
	Name: "Customer",
	Fields: []spec.Field{
		{Name: "id", Type: "uuid", PK: true},
		{Name: "email", Type: "string", Unique: true},
		{Name: "name", Type: "string"},
	},
}

// Enricher fills in the entities, workflows, requirements and business
// rules of a coerced specification. Requirements and rules are always
// recomputed from the PRD, never taken from the incoming spec.
type Enricher struct {
	client llm.Client
	opts   Options
	reqs   *RequirementExtractor
	rules  *RuleExtractor
	logger *zap.Logger
}

// NewEnricher creates an enricher. client may be nil when
// opts.ModelAssisted is false.
func NewEnricher(client llm.Client, opts Options, logger *zap.Logger) *Enricher {
	return &Enricher{
		client: client,
		opts:   opts,
		reqs:   NewRequirementExtractor(client, opts, logger),
		rules:  NewRuleExtractor(client, opts, logger),
		logger: logger.Named("enrich"),
	}
}

// Enrich returns a copy of s with entities, workflows, requirements and
// business rules populated from prdText. Entities and workflows fall back
// to heuristics independently; a health workflow is guaranteed.
func (e *Enricher) Enrich(ctx context.Context, s *spec.Specification, prdText string) *spec.Specification {
	var ents []spec.Entity
	var flows []spec.Workflow
	if e.opts.ModelAssisted && e.client != nil {
		ents, flows = e.modelEntitiesWorkflows(ctx, prdText)
	}
	if len(ents) == 0 {
		ents = heuristicEntities(prdText)
	}
	if len(flows) == 0 {
		flows = heuristicWorkflows(prdText)
	}
	flows = ensureHealthWorkflow(flows)

	out := *s
	out.Entities = ents
	out.Workflows = flows
	out.Requirements = e.reqs.Extract(ctx, prdText)
	out.BusinessRules = e.rules.Extract(ctx, prdText)
	return &out
}

// heuristicEntities collects inline entity declarations and markdown
// heading blocks whose bullets are bare identifiers. When nothing
// matches, the default Customer entity is returned.
func heuristicEntities(prdText string) []spec.Entity {
	var entities []spec.Entity
	for _, m := range inlineEntityPattern.FindAllStringSubmatch(prdText, -1) {
		ent := spec.Entity{Name: strings.TrimSpace(m[1])}
		for _, f := range strings.Split(m[2], ",") {
			if f = strings.TrimSpace(f); f != "" {
				ent.Fields = append(ent.Fields, spec.Field{Name: f, Type: "string"})
			}
		}
		entities = append(entities, ent)
	}
	for _, block := range headingBlocks(prdText) {
		h := headingPattern.FindStringSubmatch(block)
		if h == nil {
			continue
		}
		fields := bulletFieldPattern.FindAllStringSubmatch(block, -1)
		if len(fields) == 0 {
			continue
		}
		ent := spec.Entity{Name: h[1]}
		for _, f := range fields {
			ent.Fields = append(ent.Fields, spec.Field{Name: f[1], Type: "string"})
		}
		entities = append(entities, ent)
	}
	if len(entities) == 0 {
		entities = []spec.Entity{defaultEntity}
	}
	return spec.DedupeEntities(entities)
}

// headingBlocks splits text into blocks that each start at a markdown
// heading line, with any leading non-heading text as the first block.
func headingBlocks(text string) []string {
	var blocks []string
	var cur []string
	for _, line := range strings.Split(text, "\n") {
		if headingStartPattern.MatchString(line) && len(cur) > 0 {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = cur[:0]
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		blocks = append(blocks, strings.Join(cur, "\n"))
	}
	return blocks
}

// heuristicWorkflows extracts "when X: A; B" and "on X: A, B" clauses.
func heuristicWorkflows(prdText string) []spec.Workflow {
	var flows []spec.Workflow
	for _, m := range workflowPattern.FindAllStringSubmatch(prdText, -1) {
		trigger := strings.TrimSpace(m[1])
		var actions []string
		for _, a := range actionSplitPattern.Split(m[2], -1) {
			if a = strings.TrimSpace(a); a != "" {
				actions = append(actions, a)
			}
		}
		name := textnorm.TruncateRunes(trigger, 40)
		flows = append(flows, spec.Workflow{Name: name, Trigger: trigger, Actions: actions})
	}
	return spec.DedupeWorkflows(flows)
}

// ensureHealthWorkflow appends the health workflow unless the serialized
// set already mentions health anywhere.
func ensureHealthWorkflow(flows []spec.Workflow) []spec.Workflow {
	serialized, _ := json.Marshal(flows)
	if strings.Contains(strings.ToLower(string(serialized)), "health") {
		return flows
	}
	return append(flows, spec.Workflow{
		Name:    "Health",
		Trigger: "http",
		Actions: []string{"GET /health returns 200 {status:ok}"},
	})
}

// modelEntitiesWorkflows runs the model path with up to opts.MaxRetries
// attempts, feeding each parse failure back into the next prompt. Any
// exhaustion returns empty slices so the caller falls back to heuristics.
func (e *Enricher) modelEntitiesWorkflows(ctx context.Context, prdText string) ([]spec.Entity, []spec.Workflow) {
	prompt := fmt.Sprintf(enrichPromptTemplate, prdText)
	retries := e.opts.MaxRetries
	if retries < 1 {
		retries = 1
	}
	for attempt := 1; attempt <= retries; attempt++ {
		raw, err := e.client.GenerateResponse(ctx, prompt, enrichSystemPrompt, e.opts.Temperature)
		if err != nil {
			e.logger.Warn("model enrichment failed", zap.Int("attempt", attempt), zap.Error(err))
			return nil, nil
		}
		body := textnorm.ExtractStructuredBlock(raw)
		tree, err := textnorm.LoadStructured(body)
		if err != nil {
			e.logger.Debug("enrichment parse failed, reprompting",
				zap.Int("attempt", attempt), zap.Error(err))
			snippet := raw
			if len(snippet) > 1200 {
				snippet = snippet[:1200]
			}
			prompt = fmt.Sprintf(
				"Previous response:\n%s\n\nFailed to parse: %v. Return ONLY a JSON object with 'entities' and 'workflows'.\n\nPRD:\n%s",
				snippet, err, prdText)
			continue
		}
		m, ok := tree.(map[string]any)
		if !ok {
			return nil, nil
		}
		return spec.CoerceEntities(m["entities"]), spec.CoerceWorkflows(m["workflows"])
	}
	return nil, nil
}
