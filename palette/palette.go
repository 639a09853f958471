// Package palette implements hex color handling and theme extension over
// model.Palette.
package palette

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"themeplane/model"
)

// ErrMalformedHex is returned for values that are not six hex digits.
var ErrMalformedHex = errors.New("malformed hex color")

var hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsHex reports whether v is a "#rrggbb" literal.
func IsHex(v string) bool {
	return hexPattern.MatchString(v)
}

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as lower-case "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "rrggbb" with or without a leading '#', in any case.
func ParseHex(v string) (RGB, error) {
	s := strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrMalformedHex, v)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrMalformedHex, v)
	}
	return RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// Normalize returns v as lower-case "#rrggbb".
func Normalize(v string) (string, error) {
	c, err := ParseHex(v)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// Extend merges ext over base. Base order is kept, overridden names keep
// their base position and new names are appended in ext order. Neither
// input is modified.
func Extend(base, ext model.Palette) model.Palette {
	out := base.Clone()
	for _, c := range ext.Entries() {
		out.Set(c.Name, c.Value)
	}
	return out
}

// Resolve computes the effective palette of cfg on top of base: a non-empty
// theme.colors replaces base, then theme.extend.colors extends the result.
func Resolve(base model.Palette, cfg model.ThemeConfig) model.Palette {
	root := base
	if cfg.Theme.Colors.Len() > 0 {
		root = cfg.Theme.Colors
	}
	return Extend(root, cfg.Theme.Extend.Colors)
}

// Duplicates groups names sharing the same color value (compared after
// normalization). Groups and names inside them follow declaration order.
func Duplicates(p model.Palette) [][]string {
	groups := make(map[string][]string)
	var order []string
	for _, c := range p.Entries() {
		key, err := Normalize(c.Value)
		if err != nil {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c.Name)
	}

	var out [][]string
	for _, key := range order {
		if len(groups[key]) > 1 {
			out = append(out, groups[key])
		}
	}
	return out
}

// Luminance returns the WCAG relative luminance of a hex color.
func Luminance(v string) (float64, error) {
	c, err := toColorful(v)
	if err != nil {
		return 0, err
	}
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b, nil
}

// ContrastRatio returns the WCAG contrast ratio between two hex colors.
func ContrastRatio(a, b string) (float64, error) {
	la, err := Luminance(a)
	if err != nil {
		return 0, err
	}
	lb, err := Luminance(b)
	if err != nil {
		return 0, err
	}
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05), nil
}

// ContrastText picks black or white text for a swatch of color v, whichever
// reads better. Malformed values get black.
func ContrastText(v string) string {
	black, errBlack := ContrastRatio(v, "#000000")
	white, errWhite := ContrastRatio(v, "#ffffff")
	if errBlack != nil || errWhite != nil || black >= white {
		return "#000000"
	}
	return "#ffffff"
}

// Nearest returns the palette entry closest to v in CIEDE2000 distance.
func Nearest(p model.Palette, v string) (model.Color, float64, error) {
	target, err := toColorful(v)
	if err != nil {
		return model.Color{}, 0, err
	}

	type scored struct {
		color model.Color
		dist  float64
	}
	var candidates []scored
	for _, c := range p.Entries() {
		cc, err := toColorful(c.Value)
		if err != nil {
			continue
		}
		candidates = append(candidates, scored{color: c, dist: target.DistanceCIEDE2000(cc)})
	}
	if len(candidates) == 0 {
		return model.Color{}, 0, fmt.Errorf("no valid colors in palette")
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	return candidates[0].color, candidates[0].dist, nil
}

func toColorful(v string) (colorful.Color, error) {
	rgb, err := ParseHex(v)
	if err != nil {
		return colorful.Color{}, err
	}
	return colorful.Color{
		R: float64(rgb.R) / 255,
		G: float64(rgb.G) / 255,
		B: float64(rgb.B) / 255,
	}, nil
}
