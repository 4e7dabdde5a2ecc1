package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is an insertion-ordered string-to-string mapping for the metadata
// block attached to a record. Iteration order is the order keys were first
// set, which is what the writer emits and what round-trips through a file.
//
// Meta is not safe for concurrent mutation; a record's metadata is owned by
// a single goroutine for its whole lifetime.
type Meta struct {
	keys   []string
	values map[string]string
}

// NewMeta returns an empty metadata block.
func NewMeta() *Meta {
	return &Meta{values: make(map[string]string)}
}

// Set stores value under key, preserving the original insertion position
// when the key already exists.
func (m *Meta) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Meta) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Meta) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Del removes key if present.
func (m *Meta) Del(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (m *Meta) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Meta) Len() int { return len(m.keys) }

// Clone returns a deep copy.
func (m *Meta) Clone() *Meta {
	c := NewMeta()
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// MarshalJSON encodes the mapping as a JSON object in insertion order.
func (m *Meta) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON decodes a JSON object. Key order follows the document.
func (m *Meta) UnmarshalJSON(data []byte) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("meta: expected JSON object, got %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("meta: non-string key %v", kt)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("meta: value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	_, err = dec.Token() // closing brace
	return err
}

// MarshalYAML encodes the mapping as a YAML map node in insertion order.
func (m *Meta) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range m.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: m.values[k]},
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a YAML mapping. Key order follows the document.
func (m *Meta) UnmarshalYAML(node *yaml.Node) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("meta: expected mapping node, got kind %d", node.Kind)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		m.Set(node.Content[i].Value, node.Content[i+1].Value)
	}
	return nil
}
