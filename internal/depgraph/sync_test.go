package depgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSync(t *testing.T) {
	root := t.TempDir()
	// In sync.
	writeFile(t, root, "core/skills/alpha/SKILL.md", "# alpha")
	writeFile(t, root, "core/skills/skill-rules.json", `{"skills": {"alpha": {}}}`)
	// beta has no rule, gamma has no directory, notes/ has no SKILL.md.
	writeFile(t, root, "extras/skills/beta/SKILL.md", "# beta")
	writeFile(t, root, "extras/skills/notes/README.md", "not a skill")
	writeFile(t, root, "extras/skills/skill-rules.json", `{"skills": {"gamma": {}, "gamma": {}}}`)
	// Broken rule file registers nothing.
	writeFile(t, root, "broken/skills/delta/SKILL.md", "# delta")
	writeFile(t, root, "broken/skills/skill-rules.json", `{"skills": `)
	// Ignored: no skills dir, hidden dir.
	writeFile(t, root, "docs/README.md", "")
	writeFile(t, root, ".cache/skills/x/SKILL.md", "")

	results, err := CheckSync(root, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "broken", results[0].Plugin)
	assert.Equal(t, []string{"delta"}, results[0].MissingInRules)
	assert.False(t, results[0].InSync)

	assert.Equal(t, SyncResult{
		Plugin:           "core",
		ActualSkills:     []string{"alpha"},
		RegisteredSkills: []string{"alpha"},
		MissingInRules:   []string{},
		ExtraInRules:     []string{},
		InSync:           true,
	}, results[1])

	assert.Equal(t, SyncResult{
		Plugin:           "extras",
		ActualSkills:     []string{"beta"},
		RegisteredSkills: []string{"gamma"},
		MissingInRules:   []string{"beta"},
		ExtraInRules:     []string{"gamma"},
		InSync:           false,
	}, results[2])
}

func TestCheckSync_MissingPluginsDir(t *testing.T) {
	_, err := CheckSync(t.TempDir()+"/nope", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPluginsDirMissing))
}

func TestSkillDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/SKILL.md", "")
	writeFile(t, root, "a/notes.md", "")
	writeFile(t, root, "c/SKILL.md/inner", "")
	writeFile(t, root, "file.md", "")

	all, err := SkillDirs(root, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, all)

	withManifest, err := SkillDirs(root, SkillManifest)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, withManifest)
}
