package depgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andywolf/skillkit/internal/skills"
)

// RuleShard is the part of a rule file that belongs to one plugin group.
type RuleShard struct {
	Plugin string
	// Skills are the group's skills that have a rule, in group order.
	Skills []string
	// Missing are the group's skills without a rule.
	Missing []string
	doc     *skills.Document
}

// SplitResult holds one shard per plugin group.
type SplitResult struct {
	Shards []RuleShard
	// Unassigned are skills with a rule that no plugin group lists.
	Unassigned []string
}

// SplitRules splits a rule document by plugin group. Every shard carries
// the source's version and notes.
func SplitRules(doc *skills.Document, mapping *PluginMapping) SplitResult {
	var result SplitResult
	for _, g := range mapping.Groups() {
		sub, missing := doc.Subset(g.Skills, fmt.Sprintf("Skill activation triggers for %s plugin", g.Name))
		result.Shards = append(result.Shards, RuleShard{
			Plugin:  g.Name,
			Skills:  sub.SkillNames(),
			Missing: missing,
			doc:     sub,
		})
	}
	for _, name := range doc.SkillNames() {
		if mapping.Resolve(name) == Unassigned {
			result.Unassigned = append(result.Unassigned, name)
		}
	}
	return result
}

// Path returns where the shard is written under a plugins directory.
func (s RuleShard) Path(pluginsDir string) string {
	return filepath.Join(pluginsDir, s.Plugin, "skills", skills.RulesFileName)
}

// Encode returns the shard as a rule file, indented with four spaces.
func (s RuleShard) Encode() ([]byte, error) {
	data, err := s.doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s rules: %w", s.Plugin, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return nil, fmt.Errorf("failed to encode %s rules: %w", s.Plugin, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// WriteFile writes the shard to its path under pluginsDir.
func (s RuleShard) WriteFile(pluginsDir string) (string, error) {
	data, err := s.Encode()
	if err != nil {
		return "", err
	}
	path := s.Path(pluginsDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
