package model

import (
    "time"
)

// ThemeConfig is a theme configuration descriptor: the content globs a
// utility-class scanner inspects and the colors that extend its base theme.
type ThemeConfig struct {
    Content []string `json:"content" yaml:"content"`
    Theme   Theme    `json:"theme" yaml:"theme"`
    Plugins []string `json:"plugins" yaml:"plugins"`
}

// Theme holds the palette sections of a descriptor. Colors replaces the
// base palette when set; Extend.Colors is merged on top.
type Theme struct {
    Colors Palette `json:"colors,omitzero" yaml:"colors,omitempty"`
    Extend Extend  `json:"extend" yaml:"extend"`
}

type Extend struct {
    Colors Palette `json:"colors" yaml:"colors"`
}

// Colors returns the extension palette, the part most descriptors use.
func (c *ThemeConfig) Colors() *Palette {
    return &c.Theme.Extend.Colors
}

// Clone returns a deep copy of the descriptor.
func (c ThemeConfig) Clone() ThemeConfig {
    out := ThemeConfig{
        Content: append([]string(nil), c.Content...),
        Plugins: append([]string(nil), c.Plugins...),
    }
    out.Theme.Colors = c.Theme.Colors.Clone()
    out.Theme.Extend.Colors = c.Theme.Extend.Colors.Clone()
    return out
}

// Equal reports whether two descriptors declare the same globs (in order),
// the same palettes and the same plugins.
func (c ThemeConfig) Equal(other ThemeConfig) bool {
    if !equalStrings(c.Content, other.Content) || !equalStrings(c.Plugins, other.Plugins) {
        return false
    }
    return c.Theme.Colors.Equal(other.Theme.Colors) && c.Theme.Extend.Colors.Equal(other.Theme.Extend.Colors)
}

func equalStrings(a, b []string) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if a[i] != b[i] {
            return false
        }
    }
    return true
}

// Revision is a stored snapshot of a named descriptor.
type Revision struct {
    ID        string      `json:"id"`
    Name      string      `json:"name"`
    Timestamp time.Time   `json:"timestamp"`
    Source    string      `json:"source,omitempty"`
    Config    ThemeConfig `json:"config"`
}
