// Package depgraph builds a static dependency graph between skills, and
// from commands and agents to skills, by scanning their files for textual
// invocation patterns.
package depgraph

import "regexp"

// Reference is one skill invocation found in a piece of text.
type Reference struct {
	Skill   string `json:"skill"`
	Pattern string `json:"pattern"`
}

// referencePatterns are applied in order; group 1 is the referenced skill.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Skill\(['"]([^'"]+)['"]\)`),
	regexp.MustCompile(`(?i)invoke.*skill.*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?i)use.*skill.*['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?i)call.*skill.*['"]([^'"]+)['"]`),
}

// Extract returns every skill reference in content: all matches of the
// first pattern, then all matches of the second, and so on. The same text
// may be reported by more than one pattern. Self-references are not
// filtered; the caller knows which skill the content belongs to.
func Extract(content string) []Reference {
	var refs []Reference
	for _, re := range referencePatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			refs = append(refs, Reference{Skill: m[1], Pattern: m[0]})
		}
	}
	return refs
}
