package depgraph

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/logging"
	"github.com/andywolf/skillkit/internal/skills"
)

// SkillManifest marks a directory as a skill.
const SkillManifest = "SKILL.md"

// ErrPluginsDirMissing is returned when the plugins directory does not exist.
var ErrPluginsDirMissing = errors.New("plugins directory not found")

// SyncResult compares one plugin's skill directories with its rule file.
type SyncResult struct {
	Plugin           string   `json:"plugin"`
	ActualSkills     []string `json:"actual_skills"`
	RegisteredSkills []string `json:"registered_skills"`
	MissingInRules   []string `json:"missing_in_rules"`
	ExtraInRules     []string `json:"extra_in_rules"`
	InSync           bool     `json:"in_sync"`
}

// CheckSync compares, for every plugin under pluginsDir that has a skills
// directory, the skill directories holding a SKILL.md with the skills
// registered in its rule file. A missing or unreadable rule file registers
// nothing. Hidden directories are ignored.
func CheckSync(pluginsDir string, logger *zap.Logger) ([]SyncResult, error) {
	logger = logging.OrNop(logger)

	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPluginsDirMissing, pluginsDir)
	}

	results := []SyncResult{}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		skillsDir := filepath.Join(pluginsDir, entry.Name(), "skills")
		if info, err := os.Stat(skillsDir); err != nil || !info.IsDir() {
			continue
		}

		actual, err := SkillDirs(skillsDir, SkillManifest)
		if err != nil {
			logger.Warn("skipping unreadable skills directory", zap.String("path", skillsDir), zap.Error(err))
			continue
		}
		registered := registeredSkills(filepath.Join(skillsDir, skills.RulesFileName), logger)
		results = append(results, compareSkills(entry.Name(), actual, registered))
	}
	return results, nil
}

func registeredSkills(path string, logger *zap.Logger) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to read rule file", zap.String("path", path), zap.Error(err))
		}
		return nil
	}
	doc, err := skills.ParseDocument(data)
	if err != nil {
		logger.Warn("failed to parse rule file", zap.String("path", path), zap.Error(err))
		return nil
	}
	return doc.SkillNames()
}

func compareSkills(plugin string, actual, registered []string) SyncResult {
	r := SyncResult{
		Plugin:           plugin,
		ActualSkills:     sortedSet(actual),
		RegisteredSkills: sortedSet(registered),
		MissingInRules:   []string{},
		ExtraInRules:     []string{},
	}
	r.MissingInRules = append(r.MissingInRules, difference(r.ActualSkills, r.RegisteredSkills)...)
	r.ExtraInRules = append(r.ExtraInRules, difference(r.RegisteredSkills, r.ActualSkills)...)
	r.InSync = len(r.MissingInRules) == 0 && len(r.ExtraInRules) == 0
	return r
}

func sortedSet(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := []string{}
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// difference returns the elements of a not in b; both are sorted.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	var out []string
	for _, n := range a {
		if !in[n] {
			out = append(out, n)
		}
	}
	return out
}
