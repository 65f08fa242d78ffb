package profile

import "smartCV/internal/style"

type swatch struct {
	id, name, primary string
}

// 编辑器色板中的预设主色，第一个即默认方案。
var swatches = []swatch{
	{"blue", "Default Blue", "#3b82f6"},
	{"crimson", "Crimson", "#ef4444"},
	{"emerald", "Emerald", "#10b981"},
	{"amber", "Amber", "#f59e0b"},
	{"violet", "Violet", "#8b5cf6"},
	{"slate", "Slate", "#1f2937"},
	{"rose", "Rose", "#ec4899"},
	{"indigo", "Indigo", "#6366f1"},
}

// Builtins 返回内置方案的新副本。
func Builtins() []Profile {
	out := make([]Profile, 0, len(swatches))
	for _, s := range swatches {
		out = append(out, Profile{
			ID:   BuiltinPrefix + s.id,
			Name: s.name,
			Colors: style.Palette{
				Primary:       s.primary,
				Secondary:     "#4b5563",
				Text:          "#111827",
				Background:    "#ffffff",
				Heading:       s.primary,
				TagBackground: s.primary,
				TagText:       "#ffffff",
			},
		})
	}
	return out
}

// DefaultID 是默认配色方案的 id。
var DefaultID = BuiltinPrefix + swatches[0].id
