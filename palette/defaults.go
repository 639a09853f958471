package palette

import "themeplane/model"

// Default is the flat base palette theme extensions apply to when no other
// base is configured. It mirrors the 500 shades of the upstream defaults.
func Default() model.Palette {
	return model.NewPalette(
		model.Color{Name: "black", Value: "#000000"},
		model.Color{Name: "white", Value: "#ffffff"},
		model.Color{Name: "slate", Value: "#64748b"},
		model.Color{Name: "gray", Value: "#6b7280"},
		model.Color{Name: "zinc", Value: "#71717a"},
		model.Color{Name: "neutral", Value: "#737373"},
		model.Color{Name: "stone", Value: "#78716c"},
		model.Color{Name: "red", Value: "#ef4444"},
		model.Color{Name: "orange", Value: "#f97316"},
		model.Color{Name: "amber", Value: "#f59e0b"},
		model.Color{Name: "yellow", Value: "#eab308"},
		model.Color{Name: "lime", Value: "#84cc16"},
		model.Color{Name: "green", Value: "#22c55e"},
		model.Color{Name: "emerald", Value: "#10b981"},
		model.Color{Name: "teal", Value: "#14b8a6"},
		model.Color{Name: "cyan", Value: "#06b6d4"},
		model.Color{Name: "sky", Value: "#0ea5e9"},
		model.Color{Name: "blue", Value: "#3b82f6"},
		model.Color{Name: "indigo", Value: "#6366f1"},
		model.Color{Name: "violet", Value: "#8b5cf6"},
		model.Color{Name: "purple", Value: "#a855f7"},
		model.Color{Name: "fuchsia", Value: "#d946ef"},
		model.Color{Name: "pink", Value: "#ec4899"},
		model.Color{Name: "rose", Value: "#f43f5e"},
	)
}
