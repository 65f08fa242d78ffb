// Package layout 把文档与配置映射为带分区标识的可视树，纯函数，不做任何 IO。
package layout

import (
	"smartCV/internal/resume"
	"smartCV/internal/style"
	"smartCV/internal/table"
)

// Kind 节点类型。
type Kind string

const (
	KindPage     Kind = "page"
	KindColumn   Kind = "column"
	KindSection  Kind = "section"
	KindHeading  Kind = "heading"
	KindText     Kind = "text"
	KindImage    Kind = "image"
	KindContact  Kind = "contact"
	KindSkillBar Kind = "skill-bar"
	KindTag      Kind = "tag"
	KindEntry    Kind = "entry"
	KindTable    Kind = "table"
)

// PageWidthPx 是 A4 在 96dpi 下的宽度。
const PageWidthPx = 794

// 基准字号 (px)，再乘以全局与分区倍率。
const (
	nameSize        = 48
	classicNameSize = 36
	titleSize       = 24
	headingSize     = 20
	entryTitleSize  = 18
	bodySize        = 14
	smallSize       = 12
)

// Node 是可视树中的一个节点。只有 section 节点携带 Section 与 Style。
type Node struct {
	Kind     Kind            `json:"kind"`
	Section  style.SectionID `json:"section,omitempty"`
	Role     string          `json:"role,omitempty"`
	Text     string          `json:"text,omitempty"`
	Style    *style.Resolved `json:"style,omitempty"`
	FontSize float64         `json:"fontSize,omitempty"`
	Color    string          `json:"color,omitempty"`
	// Background 用于列与色带等非分区容器。
	Background string     `json:"background,omitempty"`
	Width      string     `json:"width,omitempty"`
	Fill       float64    `json:"fill,omitempty"`
	Image      *ImageView `json:"image,omitempty"`
	Table      *TableView `json:"table,omitempty"`
	Theme      *Theme     `json:"theme,omitempty"`
	Children   []*Node    `json:"children,omitempty"`
}

// Theme 是整页共享的设计值，挂在 page 节点上。
type Theme struct {
	Template    resume.TemplateID  `json:"template"`
	Palette     style.Palette      `json:"palette"`
	Fonts       resume.Fonts       `json:"fonts"`
	Global      style.GlobalDesign `json:"global"`
	SpacingPx   float64            `json:"spacingPx"`
	RadiusPx    float64            `json:"radiusPx"`
	PageWidthPx int                `json:"pageWidthPx"`
	MinHeightPx int                `json:"minHeightPx"`
	Language    string             `json:"language"`
}

// ImageView 头像。URL 为空时渲染占位块。
type ImageView struct {
	URL   string              `json:"url,omitempty"`
	Style style.ImageResolved `json:"style"`
}

// TableView 是表格及其解析后的颜色。
type TableView struct {
	ID         string         `json:"id"`
	Index      int            `json:"index"`
	Title      string         `json:"title"`
	TitleColor string         `json:"titleColor"`
	Headers    []string       `json:"headers"`
	Rows       [][]string     `json:"rows"`
	Colors     table.Resolved `json:"colors"`
	RadiusPx   float64        `json:"radiusPx"`
}

// Walk 先序遍历，fn 返回 false 时跳过子树。
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find 返回分区标识为 id 的节点。
func (n *Node) Find(id style.SectionID) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if found != nil {
			return false
		}
		if x.Kind == KindSection && x.Section == id {
			found = x
			return false
		}
		return true
	})
	return found
}
