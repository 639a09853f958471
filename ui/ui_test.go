package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"themeplane/model"
)

func TestPalette_OneLinePerColor(t *testing.T) {
	p := model.NewPalette(
		model.Color{Name: "coreblue", Value: "#007acc"},
		model.Color{Name: "mineshaft", Value: "#2c2c2c"},
	)

	out := Palette("colors", p)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "coreblue")
	assert.Contains(t, lines[1], "#007acc")
	assert.Contains(t, lines[2], "mineshaft")
}

func TestPalette_Empty(t *testing.T) {
	assert.Contains(t, Palette("", model.Palette{}), "(no colors)")
}

func TestSwatch_FlagsMalformed(t *testing.T) {
	out := Swatch(model.Color{Name: "bad", Value: "#12"}, 3)
	assert.Contains(t, out, "bad")
	assert.Contains(t, out, `"#12" invalid`)
}

func TestList(t *testing.T) {
	out := List("files", []string{"a.rs", "b.rs"})
	assert.Contains(t, out, "  - a.rs\n")
	assert.Contains(t, out, "  - b.rs\n")
	assert.Contains(t, List("files", nil), "(none)")
}
