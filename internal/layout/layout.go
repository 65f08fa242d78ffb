package layout

import (
	"fmt"
	"sort"

	"smartCV/internal/resume"
	"smartCV/internal/style"
)

// PageMinHeightPx 是 A4 在 96dpi 下的高度。
const PageMinHeightPx = 1123

// 各布局的分区标识。这些标识是样式覆盖的键，改名会让已保存的覆盖失效。
const (
	SidebarProfile style.SectionID = "sidebar-profile"
	SidebarContact style.SectionID = "sidebar-contact"
	SidebarSkills  style.SectionID = "sidebar-skills"
	MainHeader     style.SectionID = "main-header"
	MainExperience style.SectionID = "main-experience"
	MainEducation  style.SectionID = "main-education"
	MainTables     style.SectionID = "main-tables"
	ClassicHeader  style.SectionID = "classic-header"
	ClassicSummary style.SectionID = "classic-summary"
	ClassicExp     style.SectionID = "classic-experience"
	ClassicEdu     style.SectionID = "classic-education"
	ClassicTables  style.SectionID = "classic-tables"
	BandHeader     style.SectionID = "band-header"
	BandIntro      style.SectionID = "band-intro"
	BandProfile    style.SectionID = "band-profile"
	BandExperience style.SectionID = "band-experience"
	BandTables     style.SectionID = "band-tables"
	BandAside      style.SectionID = "band-aside"
	BandEducation  style.SectionID = "band-education"
	BandSkills     style.SectionID = "band-skills"
)

type sectionSpec struct {
	id        style.SectionID
	intrinsic style.Intrinsic
}

var onPrimary = style.Intrinsic{Text: style.RoleOnPrimary, Heading: style.RoleOnPrimary}

var specs = map[resume.TemplateID][]sectionSpec{
	resume.TemplateModern: {
		{SidebarProfile, style.Intrinsic{Text: style.RoleOnPrimary, Heading: style.RoleOnPrimary, TextAlign: style.AlignCenter}},
		{SidebarContact, onPrimary},
		{SidebarSkills, onPrimary},
		{MainHeader, style.Intrinsic{Text: style.RoleSecondary, FontWeight: style.WeightBold}},
		{MainExperience, style.Intrinsic{}},
		{MainEducation, style.Intrinsic{}},
		{MainTables, style.Intrinsic{}},
	},
	resume.TemplateClassic: {
		{ClassicHeader, style.Intrinsic{Text: style.RoleSecondary, TextAlign: style.AlignCenter, FontWeight: style.WeightBold}},
		{ClassicSummary, style.Intrinsic{Text: style.RoleSecondary, TextAlign: style.AlignCenter}},
		{ClassicExp, style.Intrinsic{}},
		{ClassicEdu, style.Intrinsic{}},
		{ClassicTables, style.Intrinsic{}},
	},
	resume.TemplateCreative: {
		{BandHeader, style.Intrinsic{Background: style.RolePrimary}},
		{BandIntro, style.Intrinsic{Text: style.RoleSecondary, FontWeight: style.WeightBold}},
		{BandProfile, style.Intrinsic{}},
		{BandExperience, style.Intrinsic{}},
		{BandTables, style.Intrinsic{}},
		{BandAside, style.Intrinsic{Boxed: true, Padding: 24, BackgroundColor: "rgba(0,0,0,0.03)"}},
		{BandEducation, style.Intrinsic{Heading: style.RoleSecondary}},
		{BandSkills, style.Intrinsic{Heading: style.RoleSecondary}},
	},
}

// Sections 返回布局会输出的全部分区标识，顺序与树中出现的顺序一致。
// 未知模板按侧栏布局处理。
func Sections(t resume.TemplateID) []style.SectionID {
	list := specs[normalize(t)]
	out := make([]style.SectionID, len(list))
	for i, s := range list {
		out[i] = s.id
	}
	return out
}

// Orphans 返回文档中当前布局不会使用的样式键，按字典序排列。
// 这些键会被保留，只是不会被读取。
func Orphans(doc *resume.Document, t resume.TemplateID) []style.SectionID {
	known := map[style.SectionID]bool{}
	for _, id := range Sections(t) {
		known[id] = true
	}
	var out []style.SectionID
	for id := range doc.SectionStyles {
		if !known[id] {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build 生成 (文档, 配置) 对应的可视树。
func Build(doc *resume.Document, cfg *resume.AppConfig) *Node {
	t := normalize(cfg.TemplateID)
	b := &builder{doc: doc, cfg: cfg, intrinsic: map[style.SectionID]style.Intrinsic{}}
	spacing := style.SpacingPx(cfg.Spacing)
	for _, s := range specs[t] {
		in := s.intrinsic
		in.ItemSpacing = spacing
		b.intrinsic[s.id] = in
	}

	page := &Node{
		Kind: KindPage,
		Theme: &Theme{
			Template:    t,
			Palette:     cfg.Colors,
			Fonts:       cfg.Fonts,
			Global:      cfg.GlobalDesign,
			SpacingPx:   spacing,
			RadiusPx:    cfg.GlobalDesign.BorderRadius,
			PageWidthPx: PageWidthPx,
			MinHeightPx: PageMinHeightPx,
			Language:    cfg.Language,
		},
	}
	switch t {
	case resume.TemplateClassic:
		page.Children = b.classic()
	case resume.TemplateCreative:
		page.Children = b.creative()
	default:
		page.Children = b.modern()
	}
	return page
}

func normalize(t resume.TemplateID) resume.TemplateID {
	if t.Valid() {
		return t
	}
	return resume.TemplateModern
}

type builder struct {
	doc       *resume.Document
	cfg       *resume.AppConfig
	intrinsic map[style.SectionID]style.Intrinsic
}

// section 创建分区节点并解析其样式。
func (b *builder) section(id style.SectionID, children ...*Node) *Node {
	r := style.Resolve(style.Inputs{
		Section:   id,
		Global:    b.cfg.GlobalDesign,
		Palette:   b.cfg.Colors,
		Override:  b.doc.Override(id),
		Intrinsic: b.intrinsic[id],
	})
	return &Node{Kind: KindSection, Section: id, Style: &r, Children: children}
}

func (b *builder) add(sec *Node, children ...*Node) *Node {
	sec.Children = append(sec.Children, children...)
	return sec
}

func heading(sec *Node, role, text string, base float64) *Node {
	return &Node{Kind: KindHeading, Role: role, Text: text, FontSize: sec.Style.HeadingSize(base), Color: sec.Style.HeadingColor}
}

func text(sec *Node, role, value string, base float64) *Node {
	return &Node{Kind: KindText, Role: role, Text: value, FontSize: sec.Style.BodySize(base), Color: sec.Style.TextColor}
}

func (b *builder) image() *Node {
	pi := b.doc.PersonalInfo
	return &Node{Kind: KindImage, Image: &ImageView{
		URL:   pi.ImageURL,
		Style: style.ResolveImage(pi.ImageStyle, b.cfg.GlobalDesign),
	}}
}

func (b *builder) contacts(sec *Node, withLinkedIn bool) []*Node {
	pi := b.doc.PersonalInfo
	items := []struct{ role, value string }{
		{"phone", pi.Phone},
		{"email", pi.Email},
		{"address", pi.Address},
	}
	if withLinkedIn && pi.LinkedIn != "" {
		items = append(items, struct{ role, value string }{"linkedin", pi.LinkedIn})
	}
	out := make([]*Node, 0, len(items))
	for _, it := range items {
		out = append(out, &Node{Kind: KindContact, Role: it.role, Text: it.value, FontSize: sec.Style.BodySize(bodySize), Color: sec.Style.TextColor})
	}
	return out
}

func (b *builder) skillBars(sec *Node) []*Node {
	out := make([]*Node, 0, len(b.doc.Skills))
	for _, s := range b.doc.Skills {
		out = append(out, &Node{
			Kind:     KindSkillBar,
			Text:     s.Name,
			Fill:     float64(s.Level * 20),
			FontSize: sec.Style.BodySize(bodySize),
			Color:    sec.Style.TextColor,
		})
	}
	return out
}

func (b *builder) skillTags(sec *Node) []*Node {
	out := make([]*Node, 0, len(b.doc.Skills))
	for _, s := range b.doc.Skills {
		out = append(out, &Node{
			Kind:       KindTag,
			Text:       s.Name,
			FontSize:   sec.Style.BodySize(bodySize),
			Color:      sec.Style.ItemText,
			Background: sec.Style.ItemBackground,
		})
	}
	return out
}

func (b *builder) experience(sec *Node) []*Node {
	out := make([]*Node, 0, len(b.doc.Experience))
	for _, e := range b.doc.Experience {
		out = append(out, &Node{Kind: KindEntry, Role: "experience", Children: []*Node{
			heading(sec, "role", e.Role, entryTitleSize),
			text(sec, "company", e.Company, bodySize),
			text(sec, "duration", e.Duration, bodySize),
			text(sec, "description", e.Description, bodySize),
		}})
	}
	return out
}

func (b *builder) education(sec *Node) []*Node {
	out := make([]*Node, 0, len(b.doc.Education))
	for _, e := range b.doc.Education {
		out = append(out, &Node{Kind: KindEntry, Role: "education", Children: []*Node{
			heading(sec, "degree", e.Degree, bodySize),
			text(sec, "school", e.School, bodySize),
			text(sec, "year", e.Year, smallSize),
		}})
	}
	return out
}

// tables 按文档顺序输出表格，表头颜色缺省取主色。
func (b *builder) tables() []*Node {
	out := make([]*Node, 0, len(b.doc.CustomTables))
	primary := b.cfg.Colors.Primary
	for i, t := range b.doc.CustomTables {
		out = append(out, &Node{Kind: KindTable, Table: &TableView{
			ID:         t.ID,
			Index:      i,
			Title:      t.Title,
			TitleColor: primary,
			Headers:    t.Headers,
			Rows:       t.Rows,
			Colors:     t.Styles.Resolve(primary),
			RadiusPx:   b.cfg.GlobalDesign.BorderRadius,
		}})
	}
	return out
}

func (b *builder) modern() []*Node {
	pi := b.doc.PersonalInfo

	profile := b.section(SidebarProfile)
	b.add(profile, b.image(), heading(profile, "title", pi.Title, titleSize))

	contact := b.section(SidebarContact)
	b.add(contact, heading(contact, "label", "Contact", bodySize))
	b.add(contact, b.contacts(contact, true)...)

	skills := b.section(SidebarSkills)
	b.add(skills, heading(skills, "label", "Skills", bodySize))
	b.add(skills, b.skillBars(skills)...)

	header := b.section(MainHeader)
	b.add(header, heading(header, "name", pi.FullName, nameSize), text(header, "summary", pi.Summary, bodySize))

	exp := b.section(MainExperience)
	b.add(exp, heading(exp, "label", "Experience", headingSize))
	b.add(exp, b.experience(exp)...)

	edu := b.section(MainEducation)
	b.add(edu, heading(edu, "label", "Education", headingSize))
	b.add(edu, b.education(edu)...)

	tables := b.add(b.section(MainTables), b.tables()...)

	return []*Node{
		{Kind: KindColumn, Role: "sidebar", Width: "33.333%", Background: b.cfg.Colors.Primary, Children: []*Node{profile, contact, skills}},
		{Kind: KindColumn, Role: "main", Width: "66.667%", Background: b.cfg.Colors.Background, Children: []*Node{header, exp, edu, tables}},
	}
}

func (b *builder) classic() []*Node {
	pi := b.doc.PersonalInfo

	header := b.section(ClassicHeader)
	b.add(header, heading(header, "name", pi.FullName, classicNameSize), text(header, "title", pi.Title, entryTitleSize))
	b.add(header, b.contacts(header, false)...)

	summary := b.add(b.section(ClassicSummary))
	b.add(summary, text(summary, "summary", pi.Summary, bodySize))

	exp := b.section(ClassicExp)
	b.add(exp, heading(exp, "label", "Experience", headingSize))
	b.add(exp, b.experience(exp)...)

	edu := b.section(ClassicEdu)
	b.add(edu, heading(edu, "label", "Education", headingSize))
	b.add(edu, b.education(edu)...)

	tables := b.section(ClassicTables)
	if len(b.doc.CustomTables) > 0 {
		b.add(tables, heading(tables, "label", "Additional Data", headingSize))
	}
	b.add(tables, b.tables()...)

	return []*Node{{
		Kind:       KindColumn,
		Role:       "single",
		Width:      "100%",
		Background: b.cfg.Colors.Background,
		Children:   []*Node{header, summary, exp, edu, tables},
	}}
}

func (b *builder) creative() []*Node {
	pi := b.doc.PersonalInfo

	band := b.add(b.section(BandHeader), b.image())

	intro := b.section(BandIntro)
	b.add(intro, heading(intro, "name", pi.FullName, nameSize), text(intro, "title", pi.Title, titleSize))
	b.add(intro, b.contacts(intro, false)...)

	profile := b.section(BandProfile)
	b.add(profile, heading(profile, "label", "Profile", headingSize), text(profile, "summary", pi.Summary, bodySize))

	exp := b.section(BandExperience)
	b.add(exp, heading(exp, "label", "Experience", headingSize))
	b.add(exp, b.experience(exp)...)

	tables := b.add(b.section(BandTables), b.tables()...)

	edu := b.section(BandEducation)
	b.add(edu, heading(edu, "label", "Education", entryTitleSize))
	b.add(edu, b.education(edu)...)

	skills := b.section(BandSkills)
	b.add(skills, heading(skills, "label", "Skills", entryTitleSize))
	b.add(skills, b.skillTags(skills)...)

	aside := b.add(b.section(BandAside), edu, skills)

	return []*Node{
		band,
		intro,
		{Kind: KindColumn, Role: "body", Width: "100%", Background: b.cfg.Colors.Background, Children: []*Node{
			{Kind: KindColumn, Role: "main", Width: "66.667%", Children: []*Node{profile, exp, tables}},
			{Kind: KindColumn, Role: "aside", Width: "33.333%", Children: []*Node{aside}},
		}},
	}
}

// Describe 返回树的简短描述，便于日志输出。
func Describe(n *Node) string {
	sections, tables := 0, 0
	n.Walk(func(x *Node) bool {
		switch x.Kind {
		case KindSection:
			sections++
		case KindTable:
			tables++
		}
		return true
	})
	return fmt.Sprintf("%s: %d sections, %d tables", n.Theme.Template, sections, tables)
}
