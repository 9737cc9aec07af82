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

// stackKeyword maps a PRD phrase to the canonical token for one stack
// slot. Tables are ordered; the first match wins.
type stackKeyword struct {
	re    *regexp.Regexp
	token string
}

func keywords(pairs ...string) []stackKeyword {
	out := make([]stackKeyword, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, stackKeyword{regexp.MustCompile(pairs[i]), pairs[i+1]})
	}
	return out
}

var (
	backendFrameworks = keywords(
		`\bfastapi\b`, "fastapi",
		`\bdjango\b`, "django",
		`\bexpress\b`, "express",
		`\bnest\b`, "nest",
		`\bspring\b`, "spring",
	)
	backendLangs = keywords(
		`\bpython\b`, "python",
		`\btypescript\b`, "ts",
		`\bjavascript\b`, "js",
		`\bts\b`, "ts",
		`\bjs\b`, "js",
	)
	frontendLangs = keywords(
		`\btypescript\b`, "ts",
		`\bjavascript\b`, "js",
		`\bts\b`, "ts",
		`\bjs\b`, "js",
	)
	frontendFrameworks = keywords(
		`\bnext\.?js\b`, "nextjs",
		`\breact\b`, "react",
		`\bvue\b`, "vue",
		`\bnuxt\b`, "nuxt",
	)
	databaseTypes = keywords(
		`\bpostgres(?:ql)?\b`, "postgres",
		`\bmysql\b`, "mysql",
		`\bsqlite\b`, "sqlite",
		`\bmssql\b`, "mssql",
	)
	orchestrators = keywords(
		`\bkubernetes\b`, "k8s",
		`\bk8s\b`, "k8s",
		`\bdocker(?:-compose)?\b`, "docker",
	)
	clouds = keywords(
		`\baws\b`, "aws",
		`\bgcp\b`, "gcp",
		`\bazure\b`, "azure",
	)
)

func detectToken(table []stackKeyword, lowered string) string {
	for _, kw := range table {
		if kw.re.MatchString(lowered) {
			return kw.token
		}
	}
	return spec.Unspecified
}

// SpecBuilder turns PRD text into a schema-valid specification skeleton:
// meta and stacks filled in, collection fields empty for the enricher.
type SpecBuilder struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
}

// NewSpecBuilder creates a spec builder. client may be nil when
// opts.ModelAssisted is false.
func NewSpecBuilder(client llm.Client, opts Options, logger *zap.Logger) *SpecBuilder {
	return &SpecBuilder{
		client: client,
		opts:   opts,
		logger: logger.Named("spec-build"),
	}
}

// Build produces the specification skeleton for prdText. The result is
// always normalized, defaulted and schema-valid; the model path degrades
// to heuristics on any failure.
func (b *SpecBuilder) Build(ctx context.Context, prdText string) (*spec.Specification, error) {
	var s *spec.Specification
	if b.opts.ModelAssisted && b.client != nil {
		modelSpec, err := b.modelSpec(ctx, prdText)
		if err != nil {
			b.logger.Warn("model synthesis failed, falling back to heuristics", zap.Error(err))
			s = heuristicSpec(prdText)
		} else {
			s = modelSpec
		}
	} else {
		s = heuristicSpec(prdText)
	}

	s.NormalizeStacks()
	spec.ApplyDefaults(s, prdText)
	if err := spec.Validate(s); err != nil {
		return nil, fmt.Errorf("validate built spec: %w", err)
	}
	return s, nil
}

// heuristicSpec detects each stack slot by keyword and leaves the rest
// unspecified.
func heuristicSpec(prdText string) *spec.Specification {
	lowered := strings.ToLower(prdText)
	s := spec.Coerce(nil, prdText)
	s.Stacks.Backend["framework"] = detectToken(backendFrameworks, lowered)
	s.Stacks.Backend["lang"] = detectToken(backendLangs, lowered)
	s.Stacks.Frontend["framework"] = detectToken(frontendFrameworks, lowered)
	s.Stacks.Frontend["lang"] = detectToken(frontendLangs, lowered)
	s.Stacks.Database["type"] = detectToken(databaseTypes, lowered)
	s.Stacks.Infra["orchestrator"] = detectToken(orchestrators, lowered)
	s.Stacks.Infra["cloud"] = detectToken(clouds, lowered)
	return s
}

// modelSpec runs the validate-and-reprompt loop: each attempt parses the
// response, coerces it onto the schema shape and validates; a validation
// failure feeds its path and message into the next prompt.
func (b *SpecBuilder) modelSpec(ctx context.Context, prdText string) (*spec.Specification, error) {
	prompt := fmt.Sprintf(specPromptTemplate, spec.SchemaJSON(), specTemplate, prdText)
	retries := b.opts.MaxRetries
	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		raw, err := b.client.GenerateResponse(ctx, prompt, specSystemPrompt, b.opts.Temperature)
		if err != nil {
			return nil, fmt.Errorf("generate spec: %w", err)
		}

		var tree any
		if err := json.Unmarshal([]byte(textnorm.Sanitize(raw)), &tree); err != nil {
			body := textnorm.ExtractStructuredBlock(raw)
			jsonStr, exErr := textnorm.ExtractJSON(body)
			if exErr == nil {
				err = json.Unmarshal([]byte(jsonStr), &tree)
			}
			if exErr != nil || err != nil {
				lastErr = fmt.Errorf("parse spec response: %w", err)
				b.logger.Debug("spec parse failed, reprompting",
					zap.Int("attempt", attempt), zap.Error(lastErr))
				prompt = b.repromptAfter(raw, fmt.Sprintf("Not valid JSON: %v. Return ONE JSON object matching the template keys.", err), prdText)
				continue
			}
		}

		s := spec.Coerce(tree, prdText)
		if err := spec.Validate(s); err != nil {
			lastErr = err
			b.logger.Debug("spec validation failed, reprompting",
				zap.Int("attempt", attempt), zap.Error(err))
			prompt = b.repromptAfter(raw, fmt.Sprintf("Validation failed: %v. Return ONE JSON object with ALL required fields.", err), prdText)
			continue
		}
		return s, nil
	}
	return nil, fmt.Errorf("spec synthesis exhausted %d attempts: %w", retries, lastErr)
}

func (b *SpecBuilder) repromptAfter(raw, instruction, prdText string) string {
	snippet := raw
	if len(snippet) > 1200 {
		snippet = snippet[:1200]
	}
	return fmt.Sprintf("Previous response:\n%s\n\n%s\n\nJSON Schema:\n%s\n\nPRD:\n%s",
		snippet, instruction, spec.SchemaJSON(), prdText)
}
