package depgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Summary holds the counts of a dependency report.
type Summary struct {
	SkillsScanned     int `json:"skillsScanned"`
	CommandsScanned   int `json:"commandsScanned"`
	AgentsScanned     int `json:"agentsScanned"`
	TotalSkillToSkill int `json:"totalSkillToSkill"`
	SamePluginDeps    int `json:"samePluginDeps"`
	CrossPluginDeps   int `json:"crossPluginDeps"`
	CommandToSkill    int `json:"commandToSkill"`
	AgentToSkill      int `json:"agentToSkill"`
}

// Dependencies holds the edge lists of a report.
type Dependencies struct {
	SkillToSkill   []Edge `json:"skillToSkill"`
	CommandToSkill []Edge `json:"commandToSkill"`
	AgentToSkill   []Edge `json:"agentToSkill"`
}

// Report is the result of one dependency scan.
type Report struct {
	ID            string         `json:"id"`
	GeneratedAt   time.Time      `json:"timestamp"`
	Root          string         `json:"root"`
	Summary       Summary        `json:"summary"`
	PluginMapping *PluginMapping `json:"pluginMapping"`
	Dependencies  Dependencies   `json:"dependencies"`
}

func (r *Report) summarize() {
	s := &r.Summary
	s.TotalSkillToSkill = len(r.Dependencies.SkillToSkill)
	s.CrossPluginDeps = len(r.CrossPlugin())
	s.SamePluginDeps = len(r.SamePlugin())
	s.CommandToSkill = len(r.Dependencies.CommandToSkill)
	s.AgentToSkill = len(r.Dependencies.AgentToSkill)
}

// SamePlugin returns the skill to skill edges within one plugin group.
func (r *Report) SamePlugin() []Edge {
	var out []Edge
	for _, e := range r.Dependencies.SkillToSkill {
		if !e.CrossPlugin() {
			out = append(out, e)
		}
	}
	return out
}

// CrossPlugin returns the skill to skill edges between plugin groups.
func (r *Report) CrossPlugin() []Edge {
	var out []Edge
	for _, e := range r.Dependencies.SkillToSkill {
		if e.CrossPlugin() {
			out = append(out, e)
		}
	}
	return out
}

// WriteFile writes the report as indented JSON, creating parent directories.
func (r *Report) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

const banner = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// palette holds the text styles of the rendered analysis. Colors are only
// emitted when the destination writer is a color terminal.
type palette struct {
	heading lipgloss.Style
	section lipgloss.Style
	warn    lipgloss.Style
	danger  lipgloss.Style
	ok      lipgloss.Style
	dim     lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		heading: r.NewStyle().Foreground(lipgloss.Color("6")),
		section: r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		danger:  r.NewStyle().Foreground(lipgloss.Color("1")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
		dim:     r.NewStyle().Faint(true),
	}
}

// Render writes the human-readable analysis to w.
func (r *Report) Render(w io.Writer) error {
	var sb strings.Builder
	p := newPalette(w)

	// line writes one styled line; styles never span a newline.
	line := func(style lipgloss.Style, format string, args ...any) {
		sb.WriteString(style.Render(fmt.Sprintf(format, args...)) + "\n")
	}
	blank := func() { sb.WriteString("\n") }
	heading := func(title string) {
		line(p.heading, "%s", banner)
		line(p.heading, "  %s", title)
		line(p.heading, "%s", banner)
		blank()
	}

	heading("Dependency analysis")

	line(p.warn, "📌 Skill to skill dependencies:")
	cross := r.CrossPlugin()
	same := r.SamePlugin()
	if len(r.Dependencies.SkillToSkill) == 0 {
		line(p.dim, "  none")
	} else {
		blank()
		line(p.dim, "  %d references (%d cross-plugin)", len(r.Dependencies.SkillToSkill), len(cross))
		blank()

		if len(cross) > 0 {
			line(p.danger, "  ⚠️  Cross-plugin dependencies (need attention):")
			for _, e := range cross {
				line(p.warn, "    %s [%s]", e.Source, e.SourcePlugin)
				line(p.warn, "      → %s [%s]", e.Target, e.TargetPlugin)
				line(p.dim, "      file: %s", e.SourceFile)
				line(p.dim, "      pattern: %s", e.Pattern)
				blank()
			}
		}

		if len(same) > 0 {
			line(p.ok, "  ✓ Same-plugin dependencies (%d):", len(same))
			var order []string
			grouped := make(map[string][]Edge)
			for _, e := range same {
				if _, ok := grouped[e.SourcePlugin]; !ok {
					order = append(order, e.SourcePlugin)
				}
				grouped[e.SourcePlugin] = append(grouped[e.SourcePlugin], e)
			}
			for _, plugin := range order {
				blank()
				line(p.section, "    [%s]", plugin)
				for _, e := range grouped[plugin] {
					line(p.dim, "      %s → %s", e.Source, e.Target)
				}
			}
		}
	}

	entries := func(title string, edges []Edge) {
		blank()
		line(p.warn, "%s", title)
		if len(edges) == 0 {
			line(p.dim, "  none")
			return
		}
		for _, e := range edges {
			line(p.dim, "  %s → %s [%s]", e.Source, e.Target, e.TargetPlugin)
		}
	}
	entries("📌 Command to skill dependencies:", r.Dependencies.CommandToSkill)
	entries("📌 Agent to skill dependencies:", r.Dependencies.AgentToSkill)

	blank()
	heading("Summary and recommendations")
	if len(cross) == 0 {
		line(p.ok, "✅ No cross-plugin dependencies: plugins can be split safely")
	} else {
		line(p.warn, "⚠️  %d cross-plugin dependencies found", len(cross))
		blank()
		line(p.warn, "To resolve:")
		line(p.dim, "  1. Call skills in other plugins by their full name:")
		line(p.dim, "     Skill(\"plugin-name:skill-name\")")
		line(p.dim, "  2. Move heavily coupled skills into the same plugin")
		line(p.dim, "  3. Declare the dependencies in plugin.json")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
