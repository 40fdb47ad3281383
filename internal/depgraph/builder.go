package depgraph

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/logging"
)

// ErrSkillsRootMissing is returned when the skills directory does not exist.
var ErrSkillsRootMissing = errors.New("skills root not found")

// DefaultExtensions are the documentation and script files scanned under
// each skill directory.
var DefaultExtensions = []string{".md", ".js", ".sh", ".py"}

// Edge is one reference from a skill, command or agent to a skill.
// SourcePlugin is only set for skill to skill edges.
type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceFile   string `json:"sourceFile"`
	Pattern      string `json:"pattern"`
	SourcePlugin string `json:"sourcePlugin,omitempty"`
	TargetPlugin string `json:"targetPlugin"`
}

// CrossPlugin reports whether the edge crosses plugin groups.
func (e Edge) CrossPlugin() bool {
	return e.SourcePlugin != e.TargetPlugin
}

// Layout locates the scanned directories. Relative paths are resolved
// against the builder root.
type Layout struct {
	SkillsDir   string
	CommandsDir string
	AgentsDir   string
	Extensions  []string
}

// DefaultLayout returns the source tree layout of a skills repository.
func DefaultLayout() Layout {
	return Layout{
		SkillsDir:   filepath.Join("src", "skills"),
		CommandsDir: filepath.Join("src", "commands"),
		AgentsDir:   filepath.Join("src", "agents"),
		Extensions:  DefaultExtensions,
	}
}

// LayoutFromConfig converts dependency analysis settings to a Layout.
func LayoutFromConfig(cfg config.DepsConfig) Layout {
	l := Layout{
		SkillsDir:   cfg.SkillsDir,
		CommandsDir: cfg.CommandsDir,
		AgentsDir:   cfg.AgentsDir,
		Extensions:  cfg.Extensions,
	}
	if len(l.Extensions) == 0 {
		l.Extensions = DefaultExtensions
	}
	return l
}

// Builder scans a repository and builds its dependency report.
type Builder struct {
	root     string
	layout   Layout
	mapping  *PluginMapping
	logger   *zap.Logger
	readFile func(string) ([]byte, error)
	now      func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for scan warnings.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logging.OrNop(l) }
}

// NewBuilder creates a Builder for the repository at root.
func NewBuilder(root string, layout Layout, mapping *PluginMapping, opts ...BuilderOption) *Builder {
	b := &Builder{
		root:     root,
		layout:   layout,
		mapping:  mapping,
		logger:   zap.NewNop(),
		readFile: os.ReadFile,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build scans skills, commands and agents and returns the report.
// A missing skills directory is an error; missing command or agent
// directories and unreadable files are logged and skipped.
func (b *Builder) Build() (*Report, error) {
	skillsRoot := b.resolve(b.layout.SkillsDir)
	info, err := os.Stat(skillsRoot)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSkillsRootMissing, skillsRoot)
	}

	report := &Report{
		ID:            uuid.New().String(),
		GeneratedAt:   b.now().UTC(),
		Root:          b.root,
		PluginMapping: b.mapping,
		Dependencies: Dependencies{
			SkillToSkill:   []Edge{},
			CommandToSkill: []Edge{},
			AgentToSkill:   []Edge{},
		},
	}

	skills, err := SkillDirs(skillsRoot, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	for _, skill := range skills {
		report.Summary.SkillsScanned++
		report.Dependencies.SkillToSkill = append(report.Dependencies.SkillToSkill,
			b.scanSkill(skillsRoot, skill)...)
	}

	var n int
	n, report.Dependencies.CommandToSkill = b.scanEntries(b.layout.CommandsDir, "commands")
	report.Summary.CommandsScanned = n
	n, report.Dependencies.AgentToSkill = b.scanEntries(b.layout.AgentsDir, "agents")
	report.Summary.AgentsScanned = n

	report.summarize()

	b.logger.Debug("dependency scan complete",
		zap.Int("skills", report.Summary.SkillsScanned),
		zap.Int("skill_edges", report.Summary.TotalSkillToSkill),
		zap.Int("cross_plugin", report.Summary.CrossPluginDeps))
	return report, nil
}

// SkillDirs returns the names of the skill directories directly under dir,
// sorted. When manifest is set, only directories containing a file of that
// name are skill directories.
func SkillDirs(dir, manifest string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if manifest != "" {
			info, err := os.Stat(filepath.Join(dir, entry.Name(), manifest))
			if err != nil || info.IsDir() {
				continue
			}
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (b *Builder) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(b.root, dir)
}

func (b *Builder) scanSkill(skillsRoot, skill string) []Edge {
	var edges []Edge
	dir := filepath.Join(skillsRoot, skill)

	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			b.logger.Warn("skipping unreadable path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !b.wanted(p) {
			return nil
		}

		content, err := b.readFile(p)
		if err != nil {
			b.logger.Warn("skipping unreadable file", zap.String("path", p), zap.Error(err))
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		sourceFile := path.Join("skills", skill, filepath.ToSlash(rel))
		edges = append(edges, skillEdges(skill, sourceFile, string(content), b.mapping)...)
		return nil
	})
	return edges
}

func (b *Builder) wanted(p string) bool {
	ext := filepath.Ext(p)
	for _, e := range b.layout.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// scanEntries scans the flat markdown files of a command or agent
// directory. It returns the number of markdown files found, readable or
// not, and their edges.
func (b *Builder) scanEntries(dir, kind string) (int, []Edge) {
	edges := []Edge{}
	if dir == "" {
		return 0, edges
	}

	full := b.resolve(dir)
	entries, err := os.ReadDir(full)
	if err != nil {
		b.logger.Warn("directory not found, skipping", zap.String("kind", kind), zap.String("path", full))
		return 0, edges
	}

	scanned := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		scanned++
		p := filepath.Join(full, name)
		content, err := b.readFile(p)
		if err != nil {
			b.logger.Warn("skipping unreadable file", zap.String("path", p), zap.Error(err))
			continue
		}
		source := strings.TrimSuffix(name, ".md")
		edges = append(edges, entryEdges(source, path.Join(kind, name), string(content), b.mapping)...)
	}
	return scanned, edges
}

// skillEdges extracts the edges of one skill file, dropping references
// from the skill to itself.
func skillEdges(skill, sourceFile, content string, mapping *PluginMapping) []Edge {
	var edges []Edge
	for _, ref := range Extract(content) {
		if ref.Skill == skill {
			continue
		}
		edges = append(edges, Edge{
			Source:       skill,
			Target:       ref.Skill,
			SourceFile:   sourceFile,
			Pattern:      ref.Pattern,
			SourcePlugin: mapping.Resolve(skill),
			TargetPlugin: mapping.Resolve(ref.Skill),
		})
	}
	return edges
}

// entryEdges extracts the edges of one command or agent file.
func entryEdges(source, sourceFile, content string, mapping *PluginMapping) []Edge {
	var edges []Edge
	for _, ref := range Extract(content) {
		edges = append(edges, Edge{
			Source:       source,
			Target:       ref.Skill,
			SourceFile:   sourceFile,
			Pattern:      ref.Pattern,
			TargetPlugin: mapping.Resolve(ref.Skill),
		})
	}
	return edges
}
