package resume

import (
	"smartCV/internal/style"
	"smartCV/internal/table"
)

// TemplateID 选择三种固定布局之一。
type TemplateID string

const (
	// TemplateModern 侧栏布局。
	TemplateModern TemplateID = "modern"
	// TemplateClassic 单栏布局。
	TemplateClassic TemplateID = "classic"
	// TemplateCreative 顶部色带布局。
	TemplateCreative TemplateID = "creative"
)

// Valid reports whether t names a known layout.
func (t TemplateID) Valid() bool {
	switch t {
	case TemplateModern, TemplateClassic, TemplateCreative:
		return true
	}
	return false
}

// PersonalInfo 个人信息。
type PersonalInfo struct {
	FullName   string            `json:"fullName"`
	Title      string            `json:"title"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	Address    string            `json:"address"`
	LinkedIn   string            `json:"linkedin"`
	Summary    string            `json:"summary"`
	ImageURL   string            `json:"imageUrl,omitempty"`
	ImageStyle *style.ImageStyle `json:"imageStyle,omitempty"`
}

type Experience struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Education struct {
	ID     string `json:"id"`
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

// Skill 的 Level 取值 1-5。
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Document 是简历内容及分区覆盖样式。
type Document struct {
	PersonalInfo  PersonalInfo                           `json:"personalInfo"`
	Experience    []Experience                           `json:"experience"`
	Education     []Education                            `json:"education"`
	Skills        []Skill                                `json:"skills"`
	CustomTables  []table.Table                          `json:"customTables"`
	SectionStyles map[style.SectionID]style.SectionStyle `json:"sectionStyles"`
}

// Fonts 标题与正文字体。
type Fonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// AppConfig 是与文档分开保存的应用配置。
type AppConfig struct {
	TemplateID TemplateID    `json:"templateId"`
	Colors     style.Palette `json:"colors"`
	// ActiveProfileID 记录 Colors 复制自哪个配色方案，可为空。
	ActiveProfileID string             `json:"activeProfileId,omitempty"`
	Fonts           Fonts              `json:"fonts"`
	GlobalDesign    style.GlobalDesign `json:"globalDesign"`
	// Spacing 旧版间距等级 1-3。
	Spacing int `json:"spacing"`
	// BorderRadius 旧版圆角，存在 GlobalDesign 时以后者为准。
	BorderRadius float64 `json:"borderRadius"`
	Language     string  `json:"language"`
}

// Bundle 是一次加载的结果；Config 为 nil 表示导入文件未携带配置。
type Bundle struct {
	Document Document
	Config   *AppConfig
}

// Clone 深拷贝文档。
func (d *Document) Clone() *Document {
	out := *d
	if d.PersonalInfo.ImageStyle != nil {
		img := *d.PersonalInfo.ImageStyle
		out.PersonalInfo.ImageStyle = &img
	}
	out.Experience = append([]Experience{}, d.Experience...)
	out.Education = append([]Education{}, d.Education...)
	out.Skills = append([]Skill{}, d.Skills...)
	out.CustomTables = make([]table.Table, len(d.CustomTables))
	for i, t := range d.CustomTables {
		out.CustomTables[i] = t.Clone()
	}
	out.SectionStyles = make(map[style.SectionID]style.SectionStyle, len(d.SectionStyles))
	for k, v := range d.SectionStyles {
		out.SectionStyles[k] = *v.Clone()
	}
	return &out
}

// Clone 返回配置副本；配置只含值类型字段。
func (c *AppConfig) Clone() *AppConfig {
	out := *c
	return &out
}

// Override 返回分区的覆盖样式，没有时为 nil。
func (d *Document) Override(id style.SectionID) *style.SectionStyle {
	s, ok := d.SectionStyles[id]
	if !ok {
		return nil
	}
	return &s
}
