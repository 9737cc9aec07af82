package textnorm

import (
	"regexp"
	"strings"
)

// fencePattern matches fenced code blocks with an optional language tag.
var fencePattern = regexp.MustCompile("(?is)```(?:[ \t]*(yaml|yml|json))?[ \t]*\r?\n(.*?)```")

// ExtractStructuredBlock picks the structured payload out of a possibly
// fenced model response. Selection order: a YAML-tagged block, else a
// JSON-tagged block, else the longest untagged fenced block. With no
// fences at all the whole input is returned unchanged. Model outputs are
// inconsistently fenced; the longest-block heuristic favors the
// substantive payload over stray commentary blocks.
func ExtractStructuredBlock(text string) string {
	text = strings.TrimSpace(text)
	matches := fencePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text
	}
	for _, m := range matches {
		lang := strings.ToLower(m[1])
		if lang == "yaml" || lang == "yml" {
			return m[2]
		}
	}
	for _, m := range matches {
		if strings.ToLower(m[1]) == "json" {
			return m[2]
		}
	}
	longest := matches[0][2]
	for _, m := range matches[1:] {
		if len(m[2]) > len(longest) {
			longest = m[2]
		}
	}
	return longest
}
