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

// The rule cascade is a data table, not control flow: each non-empty PRD
// line is checked against the patterns in order and the first match wins.
// New pattern families are added by appending a rulePattern entry.
type rulePattern struct {
	name  string
	re    *regexp.Regexp
	build func(m []string, line string) (spec.BusinessRule, bool)
}

var (
	negationPattern   = regexp.MustCompile(`(?i)\b(must|cannot|can't|should not|must not)\b.*\b(negative|less than\s*0)\b`)
	enumPattern       = regexp.MustCompile(`(?i)\b(status|state)\b.*\b(can be|allowed|one of)\b[: ]+([A-Za-z,\s|]+)`)
	comparePattern    = regexp.MustCompile(`(?i)^\s*([A-Za-z_][A-Za-z0-9_]*)\b.*?\b(?:must|should|shall|can)\b.*?\b(at least|at most|no more than|no less than|greater than or equal to|less than or equal to|greater than|more than|less than|below|above)\s+(-?\d+(?:\.\d+)?)`)
	compareOpPattern  = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(>=|<=|>|<)\s*(-?\d+(?:\.\d+)?)\s*$`)
	uniquePattern     = regexp.MustCompile(`(?i)^\s*([A-Za-z_][A-Za-z0-9_]*)\b.*\bmust be unique\b`)
	nonEmptyPattern   = regexp.MustCompile(`(?i)^\s*([A-Za-z_][A-Za-z0-9_]*)\b.*\b(?:is required|must not be empty|not be empty|not be blank)\b`)
	equalityPattern   = regexp.MustCompile(`(?i)^([A-Za-z_][\w.]*)\s*=\s*(.+)$`)
	identifierPattern = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)
)

// comparisonOps maps comparison phrasings to operators.
var comparisonOps = map[string]string{
	"at least":                 ">=",
	"no less than":             ">=",
	"greater than or equal to": ">=",
	"at most":                  "<=",
	"no more than":             "<=",
	"less than or equal to":    "<=",
	"greater than":             ">",
	"more than":                ">",
	"above":                    ">",
	"less than":                "<",
	"below":                    "<",
}

var rulePatterns = []rulePattern{
	{
		name: "negation",
		re:   negationPattern,
		build: func(_ []string, line string) (spec.BusinessRule, bool) {
			// Naive target guess, preserved for parity: the first bare
			// identifier on the line, defaulting to "amount". Known
			// source of mis-association.
			target := "amount"
			if id := identifierPattern.FindString(line); id != "" {
				target = id
			}
			return spec.BusinessRule{
				Target:  pythonCapitalize(target) + ".amount",
				Kind:    spec.KindConstraint,
				Expr:    "amount >= 0",
				Message: "amount must not be negative",
			}, true
		},
	},
	{
		name: "enumeration",
		re:   enumPattern,
		build: func(m []string, _ string) (spec.BusinessRule, bool) {
			field := strings.TrimSpace(m[1])
			var options []string
			for _, opt := range regexp.MustCompile(`[,|]`).Split(m[3], -1) {
				if o := strings.ToLower(strings.TrimSpace(opt)); o != "" {
					options = append(options, o)
				}
			}
			if len(options) == 0 {
				return spec.BusinessRule{}, false
			}
			list := "['" + strings.Join(options, "', '") + "']"
			lower := strings.ToLower(field)
			return spec.BusinessRule{
				Target:  pythonCapitalize(field) + "." + lower,
				Kind:    spec.KindConstraint,
				Expr:    fmt.Sprintf("%s in %s", lower, list),
				Message: fmt.Sprintf("%s must be one of %s", field, list),
			}, true
		},
	},
	{
		name: "comparison",
		re:   comparePattern,
		build: func(m []string, _ string) (spec.BusinessRule, bool) {
			field := strings.ToLower(m[1])
			op, ok := comparisonOps[strings.ToLower(m[2])]
			if !ok {
				return spec.BusinessRule{}, false
			}
			return comparisonRule(field, op, m[3]), true
		},
	},
	{
		name: "comparison-operator",
		re:   compareOpPattern,
		build: func(m []string, _ string) (spec.BusinessRule, bool) {
			return comparisonRule(strings.ToLower(m[1]), m[2], m[3]), true
		},
	},
	{
		name: "uniqueness",
		re:   uniquePattern,
		build: func(m []string, _ string) (spec.BusinessRule, bool) {
			field := strings.ToLower(m[1])
			return spec.BusinessRule{
				Target:  pythonCapitalize(field) + "." + field,
				Kind:    spec.KindConstraint,
				Expr:    fmt.Sprintf("unique(%s)", field),
				Message: fmt.Sprintf("%s must be unique", field),
			}, true
		},
	},
	{
		name: "non-empty",
		re:   nonEmptyPattern,
		build: func(m []string, _ string) (spec.BusinessRule, bool) {
			field := strings.ToLower(m[1])
			return spec.BusinessRule{
				Target:  pythonCapitalize(field) + "." + field,
				Kind:    spec.KindConstraint,
				Expr:    fmt.Sprintf("%s not in (None, '')", field),
				Message: fmt.Sprintf("%s must not be empty", field),
			}, true
		},
	},
	{
		name: "equality",
		re:   equalityPattern,
		build: func(m []string, _ string) (spec.BusinessRule, bool) {
			target, rhs := m[1], strings.TrimSpace(m[2])
			return spec.BusinessRule{
				Target:  target,
				Kind:    spec.KindDerivation,
				Expr:    fmt.Sprintf("%s == %s", target, rhs),
				Message: fmt.Sprintf("%s must equal %s", target, rhs),
			}, true
		},
	},
}

// RuleExtractor produces the ordered business-rule set for a PRD.
type RuleExtractor struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
}

// NewRuleExtractor creates a rule extractor. client may be nil when
// opts.ModelAssisted is false.
func NewRuleExtractor(client llm.Client, opts Options, logger *zap.Logger) *RuleExtractor {
	return &RuleExtractor{
		client: client,
		opts:   opts,
		logger: logger.Named("rule-extract"),
	}
}

// Extract returns the business rules for prdText. The model-assisted path
// falls back to heuristic output on any failure or empty result.
func (e *RuleExtractor) Extract(ctx context.Context, prdText string) []spec.BusinessRule {
	if e.opts.ModelAssisted && e.client != nil {
		rules, err := e.modelRules(ctx, prdText)
		if err == nil && len(rules) > 0 {
			return rules
		}
		if err != nil {
			e.logger.Warn("model extraction failed, falling back to heuristics", zap.Error(err))
		}
	}
	return heuristicRules(prdText)
}

// heuristicRules scans every non-empty line against the pattern table,
// first match per line wins, assigning sequential BR-#### IDs.
func heuristicRules(prdText string) []spec.BusinessRule {
	out := []spec.BusinessRule{}
	n := 1
	for _, line := range strings.Split(prdText, "\n") {
		l := strings.TrimSpace(line)
		if l == "" {
			continue
		}
		for _, p := range rulePatterns {
			m := p.re.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			rule, ok := p.build(m, l)
			if !ok {
				continue
			}
			rule.ID = ruleID(n)
			out = append(out, rule)
			n++
			break
		}
	}
	return out
}

// modelRules asks the model for a JSON array of rules, backfilling
// missing id/kind/message.
func (e *RuleExtractor) modelRules(ctx context.Context, prdText string) ([]spec.BusinessRule, error) {
	prompt := fmt.Sprintf(rulesPromptTemplate, prdText)
	raw, err := e.client.GenerateResponse(ctx, prompt, rulesSystemPrompt, e.opts.Temperature)
	if err != nil {
		return nil, fmt.Errorf("generate rules: %w", err)
	}

	body := textnorm.ExtractStructuredBlock(textnorm.Sanitize(raw))
	jsonStr, err := textnorm.ExtractJSON(body)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal([]byte(jsonStr), &tree); err != nil {
		return nil, fmt.Errorf("unmarshal rules: %w", err)
	}

	rules := spec.CoerceRules(tree)
	for i := range rules {
		if !ruleIDPattern.MatchString(rules[i].ID) {
			rules[i].ID = ruleID(i + 1)
		}
		if rules[i].Kind == "" {
			rules[i].Kind = spec.KindConstraint
		}
	}
	return rules, nil
}

func comparisonRule(field, op, value string) spec.BusinessRule {
	return spec.BusinessRule{
		Target:  pythonCapitalize(field) + "." + field,
		Kind:    spec.KindConstraint,
		Expr:    fmt.Sprintf("%s %s %s", field, op, value),
		Message: fmt.Sprintf("%s must be %s %s", field, op, value),
	}
}

func ruleID(n int) string {
	return fmt.Sprintf("BR-%04d", n)
}

// pythonCapitalize uppercases the first letter and lowercases the rest,
// matching how extracted targets are normalized.
func pythonCapitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
