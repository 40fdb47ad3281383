package skills

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed starter/skill-rules.json
var embeddedRules embed.FS

// StarterRules returns the embedded starter rule file.
func StarterRules() ([]byte, error) {
	content, err := embeddedRules.ReadFile("starter/" + RulesFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded rules: %w", err)
	}
	return content, nil
}

// InstallStarterRules writes the starter rule file to
// <rootDir>/.claude/skills/skill-rules.json and returns its path.
// An existing file is kept unless force is set; installed reports whether
// the file was written.
func InstallStarterRules(rootDir string, force bool) (path string, installed bool, err error) {
	skillsDir := filepath.Join(rootDir, ".claude", "skills")
	path = filepath.Join(skillsDir, RulesFileName)

	// Check if already exists
	if _, err := os.Stat(path); err == nil && !force {
		return path, false, nil
	}

	content, err := StarterRules()
	if err != nil {
		return path, false, err
	}

	if err := os.MkdirAll(skillsDir, 0o755); err != nil {
		return path, false, fmt.Errorf("failed to create skills directory: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return path, false, fmt.Errorf("failed to write rule file: %w", err)
	}
	return path, true, nil
}
