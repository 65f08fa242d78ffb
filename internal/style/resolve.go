package style

import "fmt"

// 模板固有的兜底值。
const (
	DefaultTextColor     = "#111827"
	DefaultBorderColor   = "#e5e7eb"
	DefaultLineColor     = "#000000"
	DefaultItemBg        = "#3b82f6"
	DefaultItemText      = "#ffffff"
	DefaultImageBorder   = "#ffffff"
	DefaultImageWidthPx  = 4
	TransparentColor     = "transparent"
	defaultSpacingMedium = 16
)

// ColorRole 指向配色方案中的某个颜色槽位。
type ColorRole string

const (
	RoleNone       ColorRole = ""
	RolePrimary    ColorRole = "primary"
	RoleSecondary  ColorRole = "secondary"
	RoleText       ColorRole = "text"
	RoleBackground ColorRole = "background"
	RoleHeading    ColorRole = "heading"
	// RoleOnPrimary 是叠在主色块上的文字颜色。
	RoleOnPrimary ColorRole = "on-primary"
)

// Color returns the palette value for role, or "" when the slot is empty.
func (p Palette) Color(role ColorRole) string {
	switch role {
	case RolePrimary:
		return p.Primary
	case RoleSecondary:
		return p.Secondary
	case RoleText:
		return p.Text
	case RoleBackground:
		return p.Background
	case RoleHeading:
		if p.Heading != "" {
			return p.Heading
		}
		return p.Primary
	case RoleOnPrimary:
		return DefaultItemText
	default:
		return ""
	}
}

// Intrinsic 描述布局给某个分区设定的固有默认值，优先级最低。
type Intrinsic struct {
	Background ColorRole
	Text       ColorRole
	Heading    ColorRole
	FontWeight FontWeight
	TextAlign  TextAlign
	Padding    float64
	// ItemSpacing 来自旧版 spacing 等级。
	ItemSpacing float64
	// Boxed 的分区在没有覆盖时使用全局线宽作为边框宽度。
	Boxed bool
	// BackgroundColor 是配色槽位为空时使用的字面背景色。
	BackgroundColor string
}

// Inputs 是一次解析所需的全部输入。
type Inputs struct {
	Section   SectionID
	Global    GlobalDesign
	Palette   Palette
	Override  *SectionStyle
	Intrinsic Intrinsic
}

// Resolved 是某个分区最终使用的具体样式。
type Resolved struct {
	Section         SectionID   `json:"section"`
	BackgroundColor string      `json:"backgroundColor"`
	TextColor       string      `json:"textColor"`
	HeadingColor    string      `json:"headingColor"`
	FontScale       float64     `json:"fontScale"`
	HeadingScale    float64     `json:"headingScale"`
	BodyScale       float64     `json:"bodyScale"`
	FontWeight      FontWeight  `json:"fontWeight"`
	TextAlign       TextAlign   `json:"textAlign"`
	BorderColor     string      `json:"borderColor"`
	BorderWidth     float64     `json:"borderWidth"`
	BorderRadius    float64     `json:"borderRadius"`
	BorderStyle     BorderStyle `json:"borderStyle"`
	Padding         float64     `json:"padding"`
	ItemSpacing     float64     `json:"itemSpacing"`
	LineColor       string      `json:"lineColor"`
	LineWidth       float64     `json:"lineWidth"`
	ItemBackground  string      `json:"itemBackground"`
	ItemText        string      `json:"itemText"`
}

// Resolve 按 覆盖 → 全局 → 配色 → 固有默认 的顺序逐项解析样式。
// 纯函数，不会失败。
func Resolve(in Inputs) Resolved {
	o := in.Override
	if o == nil {
		o = &SectionStyle{}
	}
	g := in.Global
	p := in.Palette
	intr := in.Intrinsic

	textRole := intr.Text
	if textRole == RoleNone {
		textRole = RoleText
	}
	headingRole := intr.Heading
	if headingRole == RoleNone {
		headingRole = RoleHeading
	}

	r := Resolved{
		Section:         in.Section,
		BackgroundColor: str(o.BackgroundColor, firstNonEmpty(p.Color(intr.Background), intr.BackgroundColor), TransparentColor),
		TextColor:       str(o.Color, p.Color(textRole), DefaultTextColor),
		HeadingColor:    str(o.HeadingColor, p.Color(headingRole), DefaultTextColor),
		FontScale:       num(o.FontSize, nil, 1),
		HeadingScale:    positive(g.HeadingScale),
		BodyScale:       positive(g.BodyScale),
		FontWeight:      enum(o.FontWeight, intr.FontWeight, WeightNormal),
		TextAlign:       enum(o.TextAlign, intr.TextAlign, AlignLeft),
		BorderColor:     str(o.BorderColor, g.BorderColor, DefaultBorderColor),
		BorderRadius:    num(o.BorderRadius, &g.BorderRadius, 0),
		Padding:         num(o.Padding, nil, intr.Padding),
		ItemSpacing:     num(o.MarginBottom, nil, spacingOr(intr.ItemSpacing)),
		LineColor:       str(o.LineColor, firstNonEmpty(g.LineColor, p.Primary), DefaultLineColor),
		LineWidth:       num(o.LineWidth, &g.LineWidth, 0),
		ItemBackground:  str(o.ItemBackgroundColor, firstNonEmpty(p.TagBackground, p.Primary), DefaultItemBg),
		ItemText:        str(o.ItemTextColor, p.TagText, DefaultItemText),
	}

	var globalWidth *float64
	if intr.Boxed {
		globalWidth = &g.LineWidth
	}
	r.BorderWidth = num(o.BorderWidth, globalWidth, 0)
	r.BorderStyle = resolveBorderStyle(o, g)
	return r
}

func resolveBorderStyle(o *SectionStyle, g GlobalDesign) BorderStyle {
	if o.BorderStyle != nil {
		return *o.BorderStyle
	}
	if o.BorderWidth != nil && *o.BorderWidth > 0 {
		return BorderSolid
	}
	if g.BorderStyle != "" {
		return g.BorderStyle
	}
	return BorderSolid
}

// HeadingSize 返回标题字号：base × headingScale × 分区倍率。
func (r Resolved) HeadingSize(base float64) float64 {
	return base * positive(r.HeadingScale) * positive(r.FontScale)
}

// BodySize 返回正文字号：base × bodyScale × 分区倍率。
func (r Resolved) BodySize(base float64) float64 {
	return base * positive(r.BodyScale) * positive(r.FontScale)
}

// ImageResolved 是头像最终使用的边框样式。
type ImageResolved struct {
	BorderRadius string  `json:"borderRadius"`
	BorderWidth  float64 `json:"borderWidth"`
	BorderColor  string  `json:"borderColor"`
}

// ResolveImage 解析头像边框；未设置时使用模板默认值（全局圆角、4px 白边）。
func ResolveImage(img *ImageStyle, g GlobalDesign) ImageResolved {
	if img == nil {
		return ImageResolved{
			BorderRadius: fmt.Sprintf("%gpx", g.BorderRadius),
			BorderWidth:  DefaultImageWidthPx,
			BorderColor:  DefaultImageBorder,
		}
	}
	return ImageResolved{
		BorderRadius: fmt.Sprintf("%g%%", img.BorderRadius),
		BorderWidth:  img.BorderWidth,
		BorderColor:  firstNonEmpty(img.BorderColor, DefaultImageBorder),
	}
}

// SpacingPx 把旧版 spacing 等级 (1-3) 换算为像素。
func SpacingPx(level int) float64 {
	switch level {
	case 1:
		return 8
	case 3:
		return 24
	default:
		return defaultSpacingMedium
	}
}

func str(override *string, layered, fallback string) string {
	if override != nil {
		return *override
	}
	if layered != "" {
		return layered
	}
	return fallback
}

func num(override *float64, global *float64, fallback float64) float64 {
	if override != nil {
		return *override
	}
	if global != nil {
		return *global
	}
	return fallback
}

func enum[T ~string](override *T, intrinsic, fallback T) T {
	if override != nil {
		return *override
	}
	if intrinsic != "" {
		return intrinsic
	}
	return fallback
}

func positive(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

func spacingOr(v float64) float64 {
	if v == 0 {
		return defaultSpacingMedium
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
