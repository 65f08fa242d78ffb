// Package render 把布局引擎输出的可视树转成可打印的 HTML。
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"smartCV/internal/layout"
	"smartCV/internal/resume"
	"smartCV/internal/style"
)

// RenderReadyID 是渲染完成标记元素的 id，打印前等待它出现。
const RenderReadyID = "pdf-render-ready"

var (
	// 颜色与字体只允许简单字符，防止注入额外的 CSS 声明。
	safeColor = regexp.MustCompile(`^[#a-zA-Z0-9(),.%\s]{1,64}$`)
	safeFont  = regexp.MustCompile(`^[a-zA-Z0-9 ,'"\-]{1,128}$`)
)

var funcs = template.FuncMap{
	"sectionCSS": sectionCSS,
	"nodeCSS":    nodeCSS,
	"imageCSS":   imageCSS,
	"pageCSS":    pageCSS,
	"safeURL":    safeURL,
	"color":      color,
	"px":         px,
	"pct":        func(v float64) template.CSS { return template.CSS(fmt.Sprintf("%g%%", v)) },
	"readyID":    func() string { return RenderReadyID },
}

var page = template.Must(template.New("page").Funcs(funcs).Parse(pageTemplate))

// HTML 渲染整页文档。tree 必须是 layout.Build 返回的 page 节点。
func HTML(tree *layout.Node) ([]byte, error) {
	if tree == nil || tree.Kind != layout.KindPage || tree.Theme == nil {
		return nil, fmt.Errorf("render: expected a page node")
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, tree); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Document 排版并渲染文档。
func Document(doc *resume.Document, cfg *resume.AppConfig) ([]byte, error) {
	return HTML(layout.Build(doc, cfg))
}

func color(v string) template.CSS {
	v = strings.TrimSpace(v)
	if v == "" || !safeColor.MatchString(v) {
		return "inherit"
	}
	return template.CSS(v)
}

func font(v string) string {
	if !safeFont.MatchString(v) {
		return "sans-serif"
	}
	return v
}

func px(v float64) template.CSS {
	return template.CSS(fmt.Sprintf("%gpx", v))
}

func pageCSS(t *layout.Theme) template.CSS {
	var b strings.Builder
	fmt.Fprintf(&b, "width:%dpx;min-height:%dpx;", t.PageWidthPx, t.MinHeightPx)
	fmt.Fprintf(&b, "background:%s;color:%s;", color(t.Palette.Background), color(t.Palette.Text))
	fmt.Fprintf(&b, "font-family:%s;", font(t.Fonts.Body))
	fmt.Fprintf(&b, "--font-head:%s;--radius:%gpx;--spacing:%gpx;", font(t.Fonts.Heading), t.RadiusPx, t.SpacingPx)
	return template.CSS(b.String())
}

func sectionCSS(r *style.Resolved) template.CSS {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "background-color:%s;color:%s;", color(r.BackgroundColor), color(r.TextColor))
	fmt.Fprintf(&b, "border:%gpx %s %s;border-radius:%gpx;", r.BorderWidth, borderStyle(r.BorderStyle), color(r.BorderColor), r.BorderRadius)
	fmt.Fprintf(&b, "padding:%gpx;font-weight:%s;text-align:%s;", r.Padding, weight(r.FontWeight), align(r.TextAlign))
	fmt.Fprintf(&b, "--item-gap:%gpx;--line-color:%s;--line-width:%gpx;", r.ItemSpacing, color(r.LineColor), r.LineWidth)
	return template.CSS(b.String())
}

func nodeCSS(n *layout.Node) template.CSS {
	var b strings.Builder
	if n.FontSize > 0 {
		fmt.Fprintf(&b, "font-size:%gpx;", n.FontSize)
	}
	if n.Color != "" {
		fmt.Fprintf(&b, "color:%s;", color(n.Color))
	}
	if n.Background != "" {
		fmt.Fprintf(&b, "background:%s;", color(n.Background))
	}
	if n.Width != "" {
		fmt.Fprintf(&b, "width:%s;", color(n.Width))
	}
	return template.CSS(b.String())
}

func imageCSS(img *layout.ImageView) template.CSS {
	s := img.Style
	return template.CSS(fmt.Sprintf("border-radius:%s;border:%gpx solid %s;", color(s.BorderRadius), s.BorderWidth, color(s.BorderColor)))
}

// safeURL 只放行 http(s) 链接与内联图片。
func safeURL(u string) template.URL {
	u = strings.TrimSpace(u)
	switch {
	case strings.HasPrefix(u, "data:image/"),
		strings.HasPrefix(u, "https://"),
		strings.HasPrefix(u, "http://"):
		return template.URL(u)
	}
	return ""
}

func borderStyle(s style.BorderStyle) string {
	switch s {
	case style.BorderSolid, style.BorderDashed, style.BorderDotted, style.BorderNone:
		return string(s)
	}
	return string(style.BorderSolid)
}

func weight(w style.FontWeight) string {
	switch w {
	case style.WeightBold:
		return "700"
	case style.WeightLight:
		return "300"
	}
	return "400"
}

func align(a style.TextAlign) string {
	switch a {
	case style.AlignCenter, style.AlignRight, style.AlignJustify:
		return string(a)
	}
	return string(style.AlignLeft)
}
