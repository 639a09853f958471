package palette

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"themeplane/model"
)

func TestIsHex(t *testing.T) {
	testCases := []struct {
		input string
		want  bool
	}{
		{"#007acc", true},
		{"#E9E9E9", true},
		{"#Ff00fF", true},
		{"#12", false},
		{"007acc", false},
		{"#007acc0", false},
		{"#00zacc", false},
		{"", false},
		{" #007acc", false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, IsHex(tc.input))
		})
	}
}

// TestParseHex covers prefix handling, case and byte order.
func TestParseHex(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  RGB
	}{
		{"with hash", "#007acc", RGB{0x00, 0x7a, 0xcc}},
		{"without hash", "007acc", RGB{0x00, 0x7a, 0xcc}},
		{"uppercase", "#FF0000", RGB{255, 0, 0}},
		{"mixed case", "Ff00fF", RGB{255, 0, 255}},
		{"byte order", "#123456", RGB{0x12, 0x34, 0x56}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseHex(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseHex_Invalid(t *testing.T) {
	for _, input := range []string{"", "#", "#12", "#1234567", "#gggggg", "#+12345", "#-12345"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseHex(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedHex))
		})
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("#E9E9E9")
	require.NoError(t, err)
	assert.Equal(t, "#e9e9e9", got)

	_, err = Normalize("#12")
	require.Error(t, err)
}

func TestExtend_OverridesAndPreserves(t *testing.T) {
	base := model.NewPalette(
		model.Color{Name: "gray", Value: "#000000"},
		model.Color{Name: "red", Value: "#ff0000"},
	)
	ext := model.NewPalette(
		model.Color{Name: "coreblue", Value: "#007acc"},
		model.Color{Name: "gray", Value: "#e9e9e9"},
	)

	out := Extend(base, ext)

	assert.Equal(t, []string{"gray", "red", "coreblue"}, out.Names())
	v, _ := out.Get("gray")
	assert.Equal(t, "#e9e9e9", v)
	v, _ = out.Get("red")
	assert.Equal(t, "#ff0000", v)

	// inputs untouched
	v, _ = base.Get("gray")
	assert.Equal(t, "#000000", v)
	assert.Equal(t, 2, ext.Len())
}

func TestResolve_ReplaceThenExtend(t *testing.T) {
	base := model.NewPalette(model.Color{Name: "gray", Value: "#000000"})

	var cfg model.ThemeConfig
	cfg.Theme.Extend.Colors.Set("coreblue", "#007acc")

	out := Resolve(base, cfg)
	assert.Equal(t, []string{"gray", "coreblue"}, out.Names())

	cfg.Theme.Colors.Set("white", "#ffffff")
	out = Resolve(base, cfg)
	assert.Equal(t, []string{"white", "coreblue"}, out.Names())
	assert.False(t, out.Has("gray"))
}

func TestDuplicates(t *testing.T) {
	p := model.NewPalette(
		model.Color{Name: "offblack", Value: "#2c2c2c"},
		model.Color{Name: "gray", Value: "#e9e9e9"},
		model.Color{Name: "mineshaft", Value: "#2C2C2C"},
		model.Color{Name: "broken", Value: "#12"},
	)

	assert.Equal(t, [][]string{{"offblack", "mineshaft"}}, Duplicates(p))
}

func TestContrastText(t *testing.T) {
	assert.Equal(t, "#ffffff", ContrastText("#2c2c2c"))
	assert.Equal(t, "#000000", ContrastText("#f3f3f3"))
	assert.Equal(t, "#000000", ContrastText("not-a-color"))
}

func TestContrastRatio(t *testing.T) {
	ratio, err := ContrastRatio("#000000", "#ffffff")
	require.NoError(t, err)
	assert.InDelta(t, 21.0, ratio, 0.01)

	ratio, err = ContrastRatio("#007acc", "#007acc")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 0.0001)
}

func TestNearest(t *testing.T) {
	p := model.NewPalette(
		model.Color{Name: "offblack", Value: "#2c2c2c"},
		model.Color{Name: "coreblue", Value: "#007acc"},
		model.Color{Name: "gray", Value: "#e9e9e9"},
	)

	c, _, err := Nearest(p, "#0077cc")
	require.NoError(t, err)
	assert.Equal(t, "coreblue", c.Name)

	_, _, err = Nearest(model.Palette{}, "#0077cc")
	require.Error(t, err)
}

func TestDefault_AllValid(t *testing.T) {
	p := Default()
	require.NotZero(t, p.Len())
	for _, c := range p.Entries() {
		assert.True(t, IsHex(c.Value), "%s=%s", c.Name, c.Value)
	}
}
