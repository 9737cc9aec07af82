// Package pipeline orchestrates the end-to-end run: PRD text in,
// generated scaffold and coverage report out. Stage order is fixed:
// spec synthesis, enrichment, planning, generation, coverage. A spec
// cache beside the PRD file skips the extraction stages on repeat runs.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/apperrors"
	"github.com/specforge-dev/specforge/pkg/config"
	"github.com/specforge-dev/specforge/pkg/extract"
	"github.com/specforge-dev/specforge/pkg/gen"
	"github.com/specforge-dev/specforge/pkg/llm"
	"github.com/specforge-dev/specforge/pkg/plan"
	"github.com/specforge-dev/specforge/pkg/spec"
	"github.com/specforge-dev/specforge/pkg/trace"
)

// unsafePathChars are replaced when the project name becomes a
// directory name.
var unsafePathChars = regexp.MustCompile(`[:/\\]`)

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string
	ProjectDir string
	Spec       *spec.Specification
	Files      map[string]string
	Coverage   *trace.Report
	FromCache  bool
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg       *config.Config
	builder   *extract.SpecBuilder
	enricher  *extract.Enricher
	planner   *plan.Planner
	generator *gen.Generator
	logger    *zap.Logger
}

// New builds a pipeline from loaded configuration. The model client is
// only constructed when model assistance is enabled.
func New(cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	opts := extract.Options{
		ModelAssisted: cfg.UseModel,
		Model:         cfg.Model,
		Temperature:   cfg.Temperature,
		MaxRetries:    cfg.MaxRetries,
	}

	var client, specClient llm.Client
	if cfg.UseModel {
		var err error
		client, err = newClient(cfg, cfg.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("create model client: %w", err)
		}
		specClient = client
		if cfg.SpecModel != "" && cfg.SpecModel != cfg.Model {
			specClient, err = newClient(cfg, cfg.SpecModel, logger)
			if err != nil {
				return nil, fmt.Errorf("create spec model client: %w", err)
			}
		}
	}

	return &Pipeline{
		cfg:       cfg,
		builder:   extract.NewSpecBuilder(specClient, opts, logger),
		enricher:  extract.NewEnricher(client, opts, logger),
		planner:   plan.NewPlanner(logger),
		generator: gen.NewGenerator(client, opts, logger),
		logger:    logger.Named("pipeline"),
	}, nil
}

// newClient builds a retry-wrapped model client for one model name.
func newClient(cfg *config.Config, model string, logger *zap.Logger) (llm.Client, error) {
	base, err := llm.NewClient(&llm.Config{
		Provider: cfg.Provider,
		Endpoint: cfg.Endpoint,
		Model:    model,
		APIKey:   cfg.APIKey,
	}, logger)
	if err != nil {
		return nil, err
	}
	return llm.NewRetryingClient(base, nil,
		time.Duration(cfg.TimeoutSeconds)*time.Second, logger), nil
}

// Run executes the full pipeline for one PRD file, generating the
// project under outRoot/<project-name>.
func (p *Pipeline) Run(ctx context.Context, prdPath, outRoot string) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	logger.Info("pipeline starting", zap.String("prd", prdPath))

	raw, err := os.ReadFile(prdPath)
	if err != nil {
		return nil, &apperrors.StageError{Stage: "read prd", Cause: err}
	}
	prdText := string(raw)

	s, fromCache, err := p.buildSpec(ctx, prdPath, prdText, logger)
	if err != nil {
		return nil, err
	}

	filePlan, err := p.planner.Build(s)
	if err != nil {
		return nil, &apperrors.StageError{Stage: "planning", Cause: err}
	}

	projectDir := filepath.Join(outRoot, unsafePathChars.ReplaceAllString(s.Meta.Name, "_"))
	files, err := p.generator.Generate(ctx, s, filePlan, projectDir, prdText)
	if err != nil {
		return nil, &apperrors.StageError{Stage: "generation", Cause: err}
	}

	report, err := trace.Coverage(projectDir)
	if err != nil {
		return nil, &apperrors.StageError{Stage: "coverage", Cause: err}
	}

	logger.Info("pipeline complete",
		zap.String("project_dir", projectDir),
		zap.Int("files", len(files)),
		zap.Float64("coverage_pct", report.Summary.CoveragePct))

	return &Result{
		RunID:      runID,
		ProjectDir: projectDir,
		Spec:       s,
		Files:      files,
		Coverage:   report,
		FromCache:  fromCache,
	}, nil
}

// BuildSpec produces the enriched specification for a PRD without
// generating anything, for inspection.
func (p *Pipeline) BuildSpec(ctx context.Context, prdText string) (*spec.Specification, error) {
	s, err := p.builder.Build(ctx, prdText)
	if err != nil {
		return nil, &apperrors.StageError{Stage: "spec synthesis", Cause: err}
	}
	return p.enricher.Enrich(ctx, s, prdText), nil
}

// buildSpec loads the cached spec beside the PRD when caching is on and
// the cache is valid; otherwise it runs synthesis and enrichment and
// refreshes the cache.
func (p *Pipeline) buildSpec(ctx context.Context, prdPath, prdText string, logger *zap.Logger) (*spec.Specification, bool, error) {
	cachePath := specCachePath(prdPath)

	if p.cfg.CacheSpecs {
		if s := loadCachedSpec(cachePath, logger); s != nil {
			logger.Info("using cached spec", zap.String("cache", cachePath))
			return s, true, nil
		}
	}

	s, err := p.BuildSpec(ctx, prdText)
	if err != nil {
		return nil, false, err
	}

	if p.cfg.CacheSpecs {
		if err := writeCachedSpec(cachePath, s); err != nil {
			// Cache write failures do not fail the run.
			logger.Warn("failed to cache spec", zap.String("cache", cachePath), zap.Error(err))
		} else {
			logger.Info("spec cached", zap.String("cache", cachePath))
		}
	}
	return s, false, nil
}

// specCachePath is <prd-dir>/<prd-stem>_cached_spec.json.
func specCachePath(prdPath string) string {
	dir := filepath.Dir(prdPath)
	stem := strings.TrimSuffix(filepath.Base(prdPath), filepath.Ext(prdPath))
	return filepath.Join(dir, stem+"_cached_spec.json")
}

// loadCachedSpec returns the cached spec or nil when it is absent,
// unreadable, or no longer schema-valid.
func loadCachedSpec(path string, logger *zap.Logger) *spec.Specification {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var s spec.Specification
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Warn("cached spec unreadable, reprocessing", zap.Error(err))
		return nil
	}
	if err := spec.Validate(&s); err != nil {
		logger.Warn("cached spec invalid, reprocessing", zap.Error(err))
		return nil
	}
	return &s
}

func writeCachedSpec(path string, s *spec.Specification) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}
