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

// requirementTrigger matches lines that declare a requirement.
var requirementTrigger = regexp.MustCompile(`(?i)^\s*(req|requirement|must)[:\-]\s*(.+)`)

// healthRequirement is the fixed contract every generated backend must
// satisfy regardless of PRD content.
var healthRequirement = spec.Requirement{
	Text:       "API exposes GET /health returning 200 with {status:'ok'}",
	Component:  "backend",
	Priority:   "P0",
	Acceptance: []string{"GET /health == 200 && body.status == 'ok'"},
}

// RequirementExtractor produces the ordered, deduplicated requirement set
// for a PRD. Extraction never fails: the model-assisted path converts any
// failure into heuristic output.
type RequirementExtractor struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
}

// NewRequirementExtractor creates a requirement extractor. client may be
// nil when opts.ModelAssisted is false.
func NewRequirementExtractor(client llm.Client, opts Options, logger *zap.Logger) *RequirementExtractor {
	return &RequirementExtractor{
		client: client,
		opts:   opts,
		logger: logger.Named("req-extract"),
	}
}

// Extract returns the requirements for prdText, post-processed so that
// text is unique (case-insensitive, first occurrence wins), IDs match
// R-#### and unfilled fields carry defaults.
func (e *RequirementExtractor) Extract(ctx context.Context, prdText string) []spec.Requirement {
	var reqs []spec.Requirement
	if e.opts.ModelAssisted && e.client != nil {
		modelReqs, err := e.modelRequirements(ctx, prdText)
		if err != nil || len(modelReqs) == 0 {
			if err != nil {
				e.logger.Warn("model extraction failed, falling back to heuristics", zap.Error(err))
			}
			reqs = heuristicRequirements(prdText)
		} else {
			reqs = modelReqs
		}
	} else {
		reqs = heuristicRequirements(prdText)
	}
	return finalizeRequirements(reqs)
}

// heuristicRequirements scans for req|requirement|must: prefixed lines in
// file order and always appends the synthetic health requirement.
func heuristicRequirements(prdText string) []spec.Requirement {
	var out []spec.Requirement
	n := 1
	for _, line := range strings.Split(prdText, "\n") {
		m := requirementTrigger.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		out = append(out, spec.Requirement{
			ID:         reqID(n),
			Text:       strings.TrimSpace(m[2]),
			Component:  "any",
			Priority:   "P2",
			Acceptance: []string{},
		})
		n++
	}
	health := healthRequirement
	health.ID = reqID(n)
	return append(out, health)
}

// modelRequirements asks the model for a JSON array of requirements and
// keeps entries with non-empty text.
func (e *RequirementExtractor) modelRequirements(ctx context.Context, prdText string) ([]spec.Requirement, error) {
	prompt := fmt.Sprintf(requirementsPromptTemplate, prdText)
	raw, err := e.client.GenerateResponse(ctx, prompt, requirementsSystemPrompt, e.opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("generate requirements: %w", err)
	}

	body := textnorm.ExtractStructuredBlock(textnorm.Sanitize(raw))
	body = strings.Trim(body, "`")
	if strings.HasPrefix(strings.ToLower(body), "json") {
		body = strings.TrimSpace(body[4:])
	}
	jsonStr, err := textnorm.ExtractJSON(body)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal([]byte(jsonStr), &tree); err != nil {
		return nil, fmt.Errorf("unmarshal requirements: %w", err)
	}
	return spec.CoerceRequirements(tree), nil
}

// finalizeRequirements applies the always-on post-pass: dedupe by folded
// text (first wins, order preserved), renumber IDs not matching R-#### by
// position, backfill defaults.
func finalizeRequirements(in []spec.Requirement) []spec.Requirement {
	seen := make(map[string]struct{}, len(in))
	out := make([]spec.Requirement, 0, len(in))
	for _, r := range in {
		k := strings.ToLower(r.Text)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	for i := range out {
		if !requirementIDPattern.MatchString(out[i].ID) {
			out[i].ID = reqID(i + 1)
		}
		if out[i].Component == "" {
			out[i].Component = "any"
		}
		if out[i].Priority == "" {
			out[i].Priority = "P2"
		}
		if out[i].Acceptance == nil {
			out[i].Acceptance = []string{}
		}
	}
	return out
}

func reqID(n int) string {
	return fmt.Sprintf("R-%04d", n)
}
