package skills

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// decodeJSON builds a yaml node tree from a JSON document, keeping object
// key order. A repeated key keeps its first position and its last value,
// as JSON.parse does.
func decodeJSON(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return jsonNode(dec)
}

func jsonNode(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return jsonObject(dec)
		case '[':
			return jsonArray(dec)
		}
	case string:
		return scalarNode("!!str", v), nil
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return scalarNode("!!int", v.String()), nil
		}
		return scalarNode("!!float", v.String()), nil
	case bool:
		return scalarNode("!!bool", strconv.FormatBool(v)), nil
	case nil:
		return scalarNode("!!null", "null"), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func jsonObject(dec *json.Decoder) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		value, err := jsonNode(dec)
		if err != nil {
			return nil, err
		}
		if i, ok := index[key]; ok {
			node.Content[i+1] = value
			continue
		}
		index[key] = len(node.Content)
		node.Content = append(node.Content, scalarNode("!!str", key), value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func jsonArray(dec *json.Decoder) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for dec.More() {
		value, err := jsonNode(dec)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func scalarNode(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

// Document is a rule file decoded without validation. It keeps key order
// and every field, including the ones the matcher ignores, so subsets of it
// can be written back out.
type Document struct {
	root *yaml.Node
}

// ParseDocument decodes rule file content into a Document.
func ParseDocument(data []byte) (*Document, error) {
	root, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// SkillNames returns the keys of the "skills" mapping in file order.
func (d *Document) SkillNames() []string {
	node := lookup(d.root, "skills")
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	var names []string
	for _, p := range pairs(node) {
		names = append(names, p.key.Value)
	}
	return names
}

// Subset returns a document holding the named skills, in the given order,
// under a new description. "version" and "notes" are carried over when
// present. Names with no rule in d are returned as missing.
func (d *Document) Subset(names []string, description string) (*Document, []string) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if v := lookup(d.root, "version"); v != nil {
		root.Content = append(root.Content, scalarNode("!!str", "version"), v)
	}
	root.Content = append(root.Content,
		scalarNode("!!str", "description"), scalarNode("!!str", description))

	skills := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var missing []string
	source := lookup(d.root, "skills")
	for _, name := range names {
		var rule *yaml.Node
		if source != nil && source.Kind == yaml.MappingNode {
			rule = lookup(source, name)
		}
		if rule == nil {
			missing = append(missing, name)
			continue
		}
		skills.Content = append(skills.Content, scalarNode("!!str", name), rule)
	}
	root.Content = append(root.Content, scalarNode("!!str", "skills"), skills)

	if v := lookup(d.root, "notes"); v != nil {
		root.Content = append(root.Content, scalarNode("!!str", "notes"), v)
	}
	return &Document{root: root}, missing
}

// MarshalJSON encodes the document with its key order intact.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, d.root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, n.Content[0])
	case yaml.AliasNode:
		return writeJSON(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i, p := range pairs(n) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, p.key.Value); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, p.value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return err
		}
		return writeValue(buf, v)
	}
	return nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte("\n")))
	return nil
}
