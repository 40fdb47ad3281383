package depgraph

import (
	"bytes"
	"encoding/json"

	"github.com/andywolf/skillkit/internal/config"
)

// Unassigned is the plugin tag of a skill that no plugin group lists.
const Unassigned = "unassigned"

// PluginGroup is a named set of skills packaged together.
type PluginGroup struct {
	Name   string
	Skills []string
}

// PluginMapping resolves skills to the plugin group that packages them.
// A skill listed by several groups belongs to the first one.
type PluginMapping struct {
	groups []PluginGroup
	owner  map[string]string
}

// NewPluginMapping creates a mapping from groups, keeping their order.
func NewPluginMapping(groups []PluginGroup) *PluginMapping {
	m := &PluginMapping{owner: make(map[string]string)}
	for _, g := range groups {
		m.groups = append(m.groups, PluginGroup{Name: g.Name, Skills: append([]string(nil), g.Skills...)})
		for _, skill := range g.Skills {
			if _, ok := m.owner[skill]; !ok {
				m.owner[skill] = g.Name
			}
		}
	}
	return m
}

// MappingFromConfig converts the configured plugin groups.
func MappingFromConfig(plugins []config.PluginConfig) *PluginMapping {
	groups := make([]PluginGroup, 0, len(plugins))
	for _, p := range plugins {
		groups = append(groups, PluginGroup{Name: p.Name, Skills: p.Skills})
	}
	return NewPluginMapping(groups)
}

// Resolve returns the plugin group of skill, or Unassigned.
func (m *PluginMapping) Resolve(skill string) string {
	if m == nil {
		return Unassigned
	}
	if name, ok := m.owner[skill]; ok {
		return name
	}
	return Unassigned
}

// Groups returns the plugin groups in configuration order.
func (m *PluginMapping) Groups() []PluginGroup {
	if m == nil {
		return nil
	}
	return m.groups
}

// MarshalJSON encodes the mapping as an object from group name to skill
// list, in configuration order.
func (m *PluginMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range m.Groups() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		skills := g.Skills
		if skills == nil {
			skills = []string{}
		}
		value, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
