package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

const specJSON = `{
  "meta": {"name": "shop", "domain": "App", "version": "0.1.0"},
  "requirements": [
    {"id": "R-0001", "text": "Users can cancel an order", "component": "backend", "priority": "P1", "acceptance": []},
    {"id": "R-0002", "text": "Health endpoint", "component": "backend", "priority": "P0", "acceptance": []},
    {"id": "R-0003", "text": "Never referenced", "component": "any", "priority": "P2", "acceptance": []}
  ]
}`

func TestCoverage(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "docs/spec.json", specJSON)
	writeProjectFile(t, root, "backend/app/main.py", "# REQ: R-0002\napp = None\n")
	writeProjectFile(t, root, "backend/app/routes/orders.py", "# REQ: R-0001, R-0002\nrouter = None\n")
	writeProjectFile(t, root, "notes.bin", "# REQ: R-0003\n") // wrong extension, ignored

	report, err := Coverage(root)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 2, report.Summary.Covered)
	assert.InDelta(t, 66.67, report.Summary.CoveragePct, 0.01)

	byID := map[string]RequirementCoverage{}
	for _, r := range report.Requirements {
		byID[r.ID] = r
	}
	assert.Equal(t, []string{"backend/app/routes/orders.py"}, byID["R-0001"].Files)
	assert.Equal(t, []string{"backend/app/main.py", "backend/app/routes/orders.py"}, byID["R-0002"].Files)
	assert.False(t, byID["R-0003"].Covered)
	assert.Empty(t, byID["R-0003"].Files)
}

func TestCoverage_MissingSpec(t *testing.T) {
	report, err := Coverage(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Summary.Total)
	assert.Equal(t, 0.0, report.Summary.CoveragePct)
	assert.Empty(t, report.Requirements)
}

func TestCoverage_CommaSeparatedTags(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "docs/spec.json", specJSON)
	writeProjectFile(t, root, "a.md", "REQ: R-0001 , R-0002\n")

	report, err := Coverage(root)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Covered)
}

func TestCoverage_DuplicateTagsSameFile(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "docs/spec.json", specJSON)
	writeProjectFile(t, root, "a.py", "# REQ: R-0001\n# REQ: R-0001\n")

	report, err := Coverage(root)
	require.NoError(t, err)
	for _, r := range report.Requirements {
		if r.ID == "R-0001" {
			assert.Equal(t, []string{"a.py"}, r.Files)
		}
	}
}
