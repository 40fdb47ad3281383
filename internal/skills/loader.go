package skills

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// RulesFileName is the skill rule file looked up at every location.
	RulesFileName = "skill-rules.json"

	// EnhancementFileName is the optional, separately sourced enhancement rule file.
	EnhancementFileName = "prompt-enhancement-rules.json"
)

// Locations are the roots searched for rule files.
type Locations struct {
	// Cwd is the project directory supplied by the host runtime.
	Cwd string
	// PluginRoot is the installed plugin directory; empty when not running as a plugin.
	PluginRoot string
	// Home is the user's home directory.
	Home string
}

// Candidates returns fileName's locations in precedence order:
// project-local, plugin-provided, user-global.
func Candidates(loc Locations, fileName string) []string {
	var paths []string
	if loc.Cwd != "" {
		paths = append(paths, filepath.Join(loc.Cwd, ".claude", "skills", fileName))
	}
	if loc.PluginRoot != "" {
		paths = append(paths, filepath.Join(loc.PluginRoot, "skills", fileName))
	}
	if loc.Home != "" {
		paths = append(paths, filepath.Join(loc.Home, ".claude", "skills", fileName))
	}
	return paths
}

// FirstExisting returns the first path naming a regular file.
func FirstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Load reads the first existing rule file among paths.
// It returns ErrConfigurationMissing when none exists and an *InvalidError
// when the file is not a valid rule configuration.
func Load(paths []string) (*RuleSet, error) {
	path, ok := FirstExisting(paths)
	if !ok {
		return nil, ErrConfigurationMissing
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	return Parse(data, path)
}

// Parse decodes and validates rule file content. source is used in errors
// and recorded on the returned RuleSet.
func Parse(data []byte, source string) (*RuleSet, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, &InvalidError{Path: source, Problems: []Problem{{Message: err.Error()}}}
	}

	rs := &RuleSet{Source: source}
	var problems []Problem

	skillsNode := lookup(doc, "skills")
	if skillsNode == nil || skillsNode.Kind != yaml.MappingNode {
		problems = append(problems, Problem{Field: "skills", Message: `missing required mapping "skills"`})
	} else {
		for _, pair := range pairs(skillsNode) {
			rule, ps := decodeSkill(pair.key, pair.value)
			problems = append(problems, ps...)
			if len(ps) == 0 {
				rs.Skills = append(rs.Skills, rule)
			}
		}
	}

	if node := lookup(doc, "enhancementRules"); node != nil {
		rules, ps := decodeEnhancements(node)
		problems = append(problems, ps...)
		rs.Enhancements = rules
	}

	if len(problems) > 0 {
		return nil, &InvalidError{Path: source, Problems: problems}
	}
	return rs, nil
}

// LoadEnhancements reads the first existing enhancement rule file among
// paths. A missing file is not an error: it returns nil, nil.
func LoadEnhancements(paths []string) ([]EnhancementRule, error) {
	path, ok := FirstExisting(paths)
	if !ok {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read enhancement file %s: %w", path, err)
	}

	return ParseEnhancements(data, path)
}

// ParseEnhancements decodes a file whose top level holds an
// "enhancementRules" mapping.
func ParseEnhancements(data []byte, source string) ([]EnhancementRule, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, &InvalidError{Path: source, Problems: []Problem{{Message: err.Error()}}}
	}

	node := lookup(doc, "enhancementRules")
	if node == nil {
		return nil, &InvalidError{Path: source, Problems: []Problem{{
			Field:   "enhancementRules",
			Message: `missing required mapping "enhancementRules"`,
		}}}
	}

	rules, problems := decodeEnhancements(node)
	if len(problems) > 0 {
		return nil, &InvalidError{Path: source, Problems: problems}
	}
	return rules, nil
}

// MergeEnhancements returns base with overrides applied: a rule in
// overrides replaces the same-named rule in place, new names are appended.
func MergeEnhancements(base, overrides []EnhancementRule) []EnhancementRule {
	merged := make([]EnhancementRule, len(base), len(base)+len(overrides))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, r := range merged {
		index[r.Name] = i
	}
	for _, r := range overrides {
		if i, ok := index[r.Name]; ok {
			merged[i] = r
			continue
		}
		index[r.Name] = len(merged)
		merged = append(merged, r)
	}
	return merged
}

// decodeDocument returns the top-level mapping of a rule file. JSON input
// is decoded with JSON semantics; anything else is read as YAML.
func decodeDocument(data []byte) (*yaml.Node, error) {
	var doc *yaml.Node
	if json.Valid(data) {
		node, err := decodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("not valid structured data: %w", err)
		}
		doc = node
	} else {
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("not valid structured data: %w", err)
		}
		if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
			return nil, errors.New("empty document")
		}
		doc = root.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}
	return doc, nil
}

func decodeSkill(key, value *yaml.Node) (SkillRule, []Problem) {
	name := key.Value
	if value.Kind != yaml.MappingNode {
		return SkillRule{}, []Problem{{Skill: name, Message: "rule must be a mapping"}}
	}

	var rule SkillRule
	if err := value.Decode(&rule); err != nil {
		return SkillRule{}, []Problem{{Skill: name, Message: err.Error()}}
	}
	rule.Name = name

	return rule, validateSkill(rule)
}

func decodeEnhancements(node *yaml.Node) ([]EnhancementRule, []Problem) {
	if node.Kind != yaml.MappingNode {
		return nil, []Problem{{Field: "enhancementRules", Message: "must be a mapping"}}
	}

	var (
		rules    []EnhancementRule
		problems []Problem
	)
	for _, pair := range pairs(node) {
		name := pair.key.Value
		if pair.value.Kind != yaml.MappingNode {
			problems = append(problems, Problem{Skill: name, Message: "enhancement rule must be a mapping"})
			continue
		}
		var rule EnhancementRule
		if err := pair.value.Decode(&rule); err != nil {
			problems = append(problems, Problem{Skill: name, Message: err.Error()})
			continue
		}
		rule.Name = name
		if ps := validateEnhancement(rule); len(ps) > 0 {
			problems = append(problems, ps...)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, problems
}

type nodePair struct {
	key, value *yaml.Node
}

// pairs returns the key/value pairs of a mapping node in document order.
func pairs(mapping *yaml.Node) []nodePair {
	out := make([]nodePair, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		out = append(out, nodePair{key: mapping.Content[i], value: mapping.Content[i+1]})
	}
	return out
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for _, p := range pairs(mapping) {
		if p.key.Value == key {
			return p.value
		}
	}
	return nil
}
