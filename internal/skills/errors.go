package skills

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfigurationMissing means no rule file exists at any candidate
	// location. Callers on the activation path treat it as "do nothing".
	ErrConfigurationMissing = errors.New("skill rule configuration not found")

	// ErrConfigurationInvalid means a rule file was found but is not usable.
	ErrConfigurationInvalid = errors.New("skill rule configuration invalid")
)

// Problem is one validation failure inside a rule file.
type Problem struct {
	// Skill is the rule name, empty for file-level problems.
	Skill   string
	Field   string
	Message string
}

func (p Problem) String() string {
	var sb strings.Builder
	if p.Skill != "" {
		sb.WriteString("[" + p.Skill + "] ")
	}
	if p.Field != "" {
		sb.WriteString(p.Field + ": ")
	}
	sb.WriteString(p.Message)
	return sb.String()
}

// InvalidError lists every problem found while loading a rule file.
type InvalidError struct {
	Path     string
	Problems []Problem
}

func (e *InvalidError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("%s: %s: %s", ErrConfigurationInvalid, e.Path, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrConfigurationInvalid) hold for *InvalidError.
func (e *InvalidError) Is(target error) bool {
	return target == ErrConfigurationInvalid
}

// Skills returns the distinct skill names that have problems, in order.
func (e *InvalidError) Skills() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range e.Problems {
		if p.Skill == "" || seen[p.Skill] {
			continue
		}
		seen[p.Skill] = true
		names = append(names, p.Skill)
	}
	return names
}
