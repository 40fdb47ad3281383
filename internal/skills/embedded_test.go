package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStarterRulesAreValid(t *testing.T) {
	content, err := StarterRules()
	require.NoError(t, err)

	rs, err := Parse(content, "starter")
	require.NoError(t, err)
	assert.Equal(t, []string{"backend-dev-guidelines", "error-tracking", "route-tester"}, rs.Names())
	assert.Len(t, rs.Enhancements, 2)
	assert.Empty(t, Lint(rs))
}

func TestInstallStarterRules(t *testing.T) {
	root := t.TempDir()

	path, installed, err := InstallStarterRules(root, false)
	require.NoError(t, err)
	assert.True(t, installed)
	assert.Equal(t, filepath.Join(root, ".claude", "skills", RulesFileName), path)

	require.NoError(t, os.WriteFile(path, []byte(`{"skills": {}}`), 0o644))

	_, installed, err = InstallStarterRules(root, false)
	require.NoError(t, err)
	assert.False(t, installed)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"skills": {}}`, string(data))

	_, installed, err = InstallStarterRules(root, true)
	require.NoError(t, err)
	assert.True(t, installed)

	rs, err := Load([]string{path})
	require.NoError(t, err)
	assert.Len(t, rs.Skills, 3)
}
