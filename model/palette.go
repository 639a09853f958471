package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Color is a single named palette entry.
type Color struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Palette is an ordered mapping from color name to color value. A name set
// twice keeps its first position and takes the last value, the way an object
// literal behaves. The zero value is an empty palette ready to use. Like a
// map, copies of a non-empty palette share storage; use Clone for an
// independent copy.
type Palette struct {
	s *paletteState
}

type paletteState struct {
	entries []Color
	index   map[string]int
}

// NewPalette builds a palette from entries in order.
func NewPalette(colors ...Color) Palette {
	var p Palette
	for _, c := range colors {
		p.Set(c.Name, c.Value)
	}
	return p
}

// PaletteFromMap builds a palette from a plain map. Map iteration order is
// random, so the result is sorted by name.
func PaletteFromMap(m map[string]string) Palette {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var p Palette
	for _, name := range names {
		p.Set(name, m[name])
	}
	return p
}

func (p Palette) list() []Color {
	if p.s == nil {
		return nil
	}
	return p.s.entries
}

// Set adds or overrides a color.
func (p *Palette) Set(name, value string) {
	if p.s == nil {
		p.s = &paletteState{index: make(map[string]int)}
	}
	if i, ok := p.s.index[name]; ok {
		p.s.entries[i].Value = value
		return
	}
	p.s.index[name] = len(p.s.entries)
	p.s.entries = append(p.s.entries, Color{Name: name, Value: value})
}

// Get returns the value for name.
func (p Palette) Get(name string) (string, bool) {
	if p.s == nil {
		return "", false
	}
	i, ok := p.s.index[name]
	if !ok {
		return "", false
	}
	return p.s.entries[i].Value, true
}

func (p Palette) Has(name string) bool {
	if p.s == nil {
		return false
	}
	_, ok := p.s.index[name]
	return ok
}

// Delete removes name, keeping the order of the remaining entries.
func (p *Palette) Delete(name string) bool {
	if p.s == nil {
		return false
	}
	i, ok := p.s.index[name]
	if !ok {
		return false
	}
	p.s.entries = append(p.s.entries[:i], p.s.entries[i+1:]...)
	delete(p.s.index, name)
	for j := i; j < len(p.s.entries); j++ {
		p.s.index[p.s.entries[j].Name] = j
	}
	return true
}

func (p Palette) Len() int {
	return len(p.list())
}

// IsZero reports whether the palette is empty. It lets encoders omit empty
// palettes.
func (p Palette) IsZero() bool {
	return len(p.list()) == 0
}

// Names returns color names in declaration order.
func (p Palette) Names() []string {
	names := make([]string, 0, len(p.list()))
	for _, c := range p.list() {
		names = append(names, c.Name)
	}
	return names
}

// Entries returns a copy of the entries in declaration order.
func (p Palette) Entries() []Color {
	return append([]Color(nil), p.list()...)
}

// Map returns the palette as a plain map.
func (p Palette) Map() map[string]string {
	m := make(map[string]string, len(p.list()))
	for _, c := range p.list() {
		m[c.Name] = c.Value
	}
	return m
}

func (p Palette) Clone() Palette {
	return NewPalette(p.list()...)
}

// Equal compares the name to value mapping, ignoring order.
func (p Palette) Equal(other Palette) bool {
	if p.Len() != other.Len() {
		return false
	}
	for _, c := range p.list() {
		v, ok := other.Get(c.Name)
		if !ok || v != c.Value {
			return false
		}
	}
	return true
}

// ShadeName joins a nested shade key onto its parent color name. DEFAULT
// names the parent itself.
func ShadeName(parent, key string) string {
	switch {
	case parent == "":
		return key
	case key == "DEFAULT":
		return parent
	default:
		return parent + "-" + key
	}
}

// MarshalJSON writes entries in declaration order.
func (p Palette) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range p.list() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of colors, keeping key order, applying
// last-wins to repeated keys and flattening nested shade objects.
func (p *Palette) UnmarshalJSON(data []byte) error {
	*p = Palette{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return p.decodeJSONObject(json.NewDecoder(bytes.NewReader(data)), "")
}

func (p *Palette) decodeJSONObject(dec *json.Decoder, parent string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("palette: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("palette: unexpected key %v", tok)
		}
		name := ShadeName(parent, key)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("palette: color %q: %w", name, err)
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			return fmt.Errorf("palette: color %q has no value", name)
		}

		switch raw[0] {
		case '{':
			if err := p.decodeJSONObject(json.NewDecoder(bytes.NewReader(raw)), name); err != nil {
				return err
			}
		case '"':
			var value string
			if err := json.Unmarshal(raw, &value); err != nil {
				return fmt.Errorf("palette: color %q: %w", name, err)
			}
			p.Set(name, value)
		default:
			return fmt.Errorf("palette: color %q must be a string", name)
		}
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML emits an ordered mapping with quoted values; a bare #rrggbb
// would otherwise read back as a comment.
func (p Palette) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range p.list() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Value, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// UnmarshalYAML walks the mapping node directly so repeated keys resolve
// last-wins instead of failing the whole document.
func (p *Palette) UnmarshalYAML(node *yaml.Node) error {
	*p = Palette{}
	return p.decodeYAMLMapping(node, "")
}

func (p *Palette) decodeYAMLMapping(node *yaml.Node, parent string) error {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("palette: line %d: expected mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		name := ShadeName(parent, key.Value)
		if val.Kind == yaml.AliasNode && val.Alias != nil {
			val = val.Alias
		}

		switch val.Kind {
		case yaml.MappingNode:
			if err := p.decodeYAMLMapping(val, name); err != nil {
				return err
			}
		case yaml.ScalarNode:
			// An unquoted "#rrggbb" parses as null; keep the name so
			// validation can report it.
			if val.Tag == "!!null" {
				p.Set(name, "")
				continue
			}
			p.Set(name, val.Value)
		default:
			return fmt.Errorf("palette: line %d: color %q must be a string", val.Line, name)
		}
	}
	return nil
}
