package resume

import (
	"smartCV/internal/style"
	"smartCV/internal/table"
)

// 默认值。
const (
	DefaultFont         = "Inter, sans-serif"
	DefaultLanguage     = "si"
	DefaultSpacing      = 2
	DefaultBorderRadius = 4
	DefaultLineWidth    = 2
	// DefaultProfileID 与 DefaultPalette 对应的内置配色方案。
	DefaultProfileID = "builtin-blue"
)

// DefaultPalette 是新会话使用的配色。
func DefaultPalette() style.Palette {
	return style.Palette{
		Primary:       "#3b82f6",
		Secondary:     "#4b5563",
		Text:          "#111827",
		Background:    "#ffffff",
		Heading:       "#3b82f6",
		TagBackground: "#3b82f6",
		TagText:       "#ffffff",
	}
}

// DefaultGlobalDesign 由旧版圆角推导全局设计参数。
func DefaultGlobalDesign(borderRadius float64) style.GlobalDesign {
	return style.GlobalDesign{
		HeadingScale: 1,
		BodyScale:    1,
		LineWidth:    DefaultLineWidth,
		BorderStyle:  style.BorderSolid,
		BorderRadius: borderRadius,
	}
}

// DefaultConfig 返回新会话的配置。
func DefaultConfig() *AppConfig {
	return &AppConfig{
		TemplateID:      TemplateModern,
		Colors:          DefaultPalette(),
		ActiveProfileID: DefaultProfileID,
		Fonts:           Fonts{Heading: DefaultFont, Body: DefaultFont},
		GlobalDesign:    DefaultGlobalDesign(DefaultBorderRadius),
		Spacing:         DefaultSpacing,
		BorderRadius:    DefaultBorderRadius,
		Language:        DefaultLanguage,
	}
}

// DefaultDocument 返回示例简历。
func DefaultDocument() *Document {
	return &Document{
		PersonalInfo: PersonalInfo{
			FullName: "සමන් කුමාර",
			Title:    "Software Engineer",
			Email:    "saman@example.com",
			Phone:    "077-1234567",
			Address:  "කොළඹ, ශ්‍රී ලංකාව",
			LinkedIn: "linkedin.com/in/saman",
			Summary:  "වසර 5ක අත්දැකීම් සහිත මෘදුකාංග ඉංජිනේරුවෙකි. React සහ Node.js පිළිබඳ විශේෂඥ දැනුමක් ඇත.",
			ImageURL: "https://picsum.photos/200",
		},
		Experience: []Experience{
			{ID: "1", Role: "Senior Developer", Company: "Tech Corp", Duration: "2020 - Present", Description: "කණ්ඩායම් මෙහෙයවීම සහ නව ව්‍යාපෘති සැලසුම් කිරීම."},
		},
		Education: []Education{
			{ID: "1", Degree: "BSc in Computer Science", School: "University of Colombo", Year: "2019"},
		},
		Skills: []Skill{
			{ID: "1", Name: "React", Level: 5},
			{ID: "2", Name: "TypeScript", Level: 4},
		},
		CustomTables:  []table.Table{},
		SectionStyles: map[style.SectionID]style.SectionStyle{},
	}
}
