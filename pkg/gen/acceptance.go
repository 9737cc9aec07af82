package gen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specforge-dev/specforge/pkg/spec"
)

// httpPattern extracts a method and path from an acceptance criterion.
var httpPattern = regexp.MustCompile(`(?i)\b(GET|POST|PUT|DELETE|PATCH)\s+(/[\w\-/{}:]+)`)

// acceptanceTests turns a requirement's acceptance criteria into pytest
// files. Only GET criteria are executable without a request body; other
// methods are skipped.
func acceptanceTests(req spec.Requirement) map[string]string {
	out := make(map[string]string)
	rid := strings.ReplaceAll(strings.ToLower(req.ID), "-", "_")
	if rid == "" {
		rid = "r_0000"
	}
	for i, acc := range req.Acceptance {
		m := httpPattern.FindStringSubmatch(acc)
		if m == nil {
			continue
		}
		if strings.ToUpper(m[1]) != "GET" {
			continue
		}
		rel := fmt.Sprintf("tests/requirements/test_%s_%d.py", rid, i+1)
		out[rel] = fmt.Sprintf(`# REQ: %s
from fastapi.testclient import TestClient
from backend.app.main import app

def test_%s_%d():
    c = TestClient(app)
    r = c.get("%s")
    assert r.status_code == 200
`, req.ID, rid, i+1, m[2])
	}
	return out
}
