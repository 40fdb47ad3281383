package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andywolf/skillkit/internal/config"
	"github.com/andywolf/skillkit/internal/depgraph"
	"github.com/andywolf/skillkit/internal/skills"
)

const combinedRules = `{
  "version": "1.0",
  "skills": {
    "route-tester": {"type": "domain", "enforcement": "suggest", "priority": "medium"},
    "error-tracking": {"type": "domain", "enforcement": "suggest", "priority": "high"},
    "orphan": {"type": "domain", "enforcement": "suggest", "priority": "low"}
  }
}`

func TestSplitRules(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "skill-rules.json")
	require.NoError(t, os.WriteFile(source, []byte(combinedRules), 0o644))
	mapping := depgraph.MappingFromConfig([]config.PluginConfig{
		{Name: "testing", Skills: []string{"route-tester", "e2e-runner"}},
		{Name: "ops", Skills: []string{"error-tracking"}},
	})
	plugins := filepath.Join(dir, "plugins")

	tests := []struct {
		name   string
		dryRun bool
		want   string
	}{
		{name: "dry run", dryRun: true, want: "2 plugin rule files would be written (dry run)"},
		{name: "write", want: "✅ Split into 2 plugin rule files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, splitRules(&buf, source, plugins, mapping, tt.dryRun))
			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "✓ testing: 1 skills → "+filepath.Join(plugins, "testing", "skills", skills.RulesFileName))
			assert.Contains(t, out, "⚠️  no rule for: e2e-runner")
			assert.Contains(t, out, "⚠️  not in any plugin group: orphan")

			_, err := os.Stat(filepath.Join(plugins, "ops", "skills", skills.RulesFileName))
			if tt.dryRun {
				assert.True(t, os.IsNotExist(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	rs, err := skills.Load([]string{filepath.Join(plugins, "testing", "skills", skills.RulesFileName)})
	require.NoError(t, err)
	assert.Equal(t, []string{"route-tester"}, rs.Names())
}

func TestSplitRules_BadSource(t *testing.T) {
	dir := t.TempDir()
	mapping := depgraph.MappingFromConfig(nil)

	var buf bytes.Buffer
	err := splitRules(&buf, filepath.Join(dir, "missing.json"), dir, mapping, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read rule file")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1, 2]`), 0o644))
	err = splitRules(&buf, bad, dir, mapping, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}
