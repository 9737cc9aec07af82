package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/specforge-dev/specforge/pkg/config"
)

const testPRD = `Project: shop
Built with FastAPI and Python, React frontend, PostgreSQL.
Req: Users can cancel an order
Amount cannot be negative
entity: Order(id, total)
When order placed: send email; charge card
`

func testConfig() *config.Config {
	return &config.Config{
		UseModel:   false,
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		MaxRetries: 3,
		CacheSpecs: false,
	}
}

func writePRD(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "prd.md")
	require.NoError(t, os.WriteFile(path, []byte(testPRD), 0o644))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	prdPath := writePRD(t, dir)
	outRoot := filepath.Join(dir, "generated")

	p, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), prdPath, outRoot)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, filepath.Join(outRoot, "shop"), res.ProjectDir)
	assert.False(t, res.FromCache)

	for _, rel := range []string{
		"backend/app/main.py",
		"backend/app/models/order.py",
		"backend/app/routes/orders.py",
		"docs/PRD.md",
		"docs/spec.json",
		"infra/docker-compose.yml",
	} {
		_, statErr := os.Stat(filepath.Join(res.ProjectDir, filepath.FromSlash(rel)))
		assert.NoError(t, statErr, rel)
	}

	// The health requirement is generated and traced, so coverage is
	// never empty.
	assert.Greater(t, res.Coverage.Summary.Covered, 0)
}

func TestRun_SpecCache(t *testing.T) {
	dir := t.TempDir()
	prdPath := writePRD(t, dir)
	cfg := testConfig()
	cfg.CacheSpecs = true

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	first, err := p.Run(context.Background(), prdPath, filepath.Join(dir, "out1"))
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	cachePath := filepath.Join(dir, "prd_cached_spec.json")
	_, statErr := os.Stat(cachePath)
	require.NoError(t, statErr, "cache written beside the PRD")

	second, err := p.Run(context.Background(), prdPath, filepath.Join(dir, "out2"))
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Spec.Meta.Name, second.Spec.Meta.Name)
}

func TestRun_CorruptCacheReprocessed(t *testing.T) {
	dir := t.TempDir()
	prdPath := writePRD(t, dir)
	cfg := testConfig()
	cfg.CacheSpecs = true

	cachePath := filepath.Join(dir, "prd_cached_spec.json")
	require.NoError(t, os.WriteFile(cachePath, []byte("{corrupt"), 0o644))

	p, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), prdPath, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.False(t, res.FromCache)
}

func TestRun_MissingPRD(t *testing.T) {
	p, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = p.Run(context.Background(), filepath.Join(t.TempDir(), "absent.md"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read prd")
}

func TestRun_ProjectNameSanitized(t *testing.T) {
	dir := t.TempDir()
	prdPath := filepath.Join(dir, "prd.md")
	require.NoError(t, os.WriteFile(prdPath, []byte("Project: eva:agent/pulse\n"), 0o644))

	p, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	res, err := p.Run(context.Background(), prdPath, filepath.Join(dir, "out"))
	require.NoError(t, err)

	assert.NotContains(t, filepath.Base(res.ProjectDir), ":")
	assert.NotContains(t, filepath.Base(res.ProjectDir), "/")
}

func TestBuildSpec_Inspection(t *testing.T) {
	p, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)

	s, err := p.BuildSpec(context.Background(), testPRD)
	require.NoError(t, err)

	assert.Equal(t, "shop", s.Meta.Name)
	assert.Equal(t, "fastapi", s.Stacks.Backend["framework"])
	assert.NotEmpty(t, s.Entities)
	assert.NotEmpty(t, s.Requirements)
}
