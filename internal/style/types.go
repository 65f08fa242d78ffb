// Package style 负责把全局设计参数、配色方案与分区覆盖样式合并成最终的具体样式。
package style

// SectionID 是布局中某个结构区域的稳定标识，由布局引擎定义。
type SectionID string

// FontWeight 字重。
type FontWeight string

const (
	WeightLight  FontWeight = "light"
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// TextAlign 文本对齐方式。
type TextAlign string

const (
	AlignLeft    TextAlign = "left"
	AlignCenter  TextAlign = "center"
	AlignRight   TextAlign = "right"
	AlignJustify TextAlign = "justify"
)

// BorderStyle 边框线型。
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
	BorderNone   BorderStyle = "none"
)

// Palette 是一组主题色，按值复制到配置中。
type Palette struct {
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	Text          string `json:"text"`
	Background    string `json:"background"`
	Heading       string `json:"heading"`
	TagBackground string `json:"tagBackground,omitempty"`
	TagText       string `json:"tagText,omitempty"`
}

// GlobalDesign 全局设计参数，与当前配色方案无关。
type GlobalDesign struct {
	HeadingScale float64     `json:"headingScale"`
	BodyScale    float64     `json:"bodyScale"`
	LineColor    string      `json:"lineColor,omitempty"`
	LineWidth    float64     `json:"lineWidth"`
	BorderColor  string      `json:"borderColor,omitempty"`
	BorderStyle  BorderStyle `json:"borderStyle"`
	BorderRadius float64     `json:"borderRadius"`
}

// SectionStyle 是单个分区的覆盖样式。
// 所有字段均为指针：nil 表示沿用下一层，不等同于零值。
type SectionStyle struct {
	BackgroundColor *string `json:"backgroundColor,omitempty"`

	Color        *string     `json:"color,omitempty"`
	HeadingColor *string     `json:"headingColor,omitempty"`
	FontSize     *float64    `json:"fontSize,omitempty" validate:"omitempty,min=0.5,max=2.5"`
	FontWeight   *FontWeight `json:"fontWeight,omitempty" validate:"omitempty,oneof=light normal bold"`
	TextAlign    *TextAlign  `json:"textAlign,omitempty" validate:"omitempty,oneof=left center right justify"`

	BorderColor  *string      `json:"borderColor,omitempty"`
	BorderWidth  *float64     `json:"borderWidth,omitempty" validate:"omitempty,min=0"`
	BorderRadius *float64     `json:"borderRadius,omitempty" validate:"omitempty,min=0"`
	BorderStyle  *BorderStyle `json:"borderStyle,omitempty" validate:"omitempty,oneof=solid dashed dotted none"`

	Padding      *float64 `json:"padding,omitempty" validate:"omitempty,min=0"`
	MarginBottom *float64 `json:"marginBottom,omitempty" validate:"omitempty,min=0"`

	LineColor *string  `json:"lineColor,omitempty"`
	LineWidth *float64 `json:"lineWidth,omitempty" validate:"omitempty,min=0"`

	ItemBackgroundColor *string `json:"itemBackgroundColor,omitempty"`
	ItemTextColor       *string `json:"itemTextColor,omitempty"`
}

// IsEmpty reports whether no field is set.
func (s *SectionStyle) IsEmpty() bool {
	if s == nil {
		return true
	}
	return *s == SectionStyle{}
}

// Clone returns a copy that shares no pointers with s.
func (s *SectionStyle) Clone() *SectionStyle {
	if s == nil {
		return nil
	}
	out := SectionStyle{
		BackgroundColor:     cloneP(s.BackgroundColor),
		Color:               cloneP(s.Color),
		HeadingColor:        cloneP(s.HeadingColor),
		FontSize:            cloneP(s.FontSize),
		FontWeight:          cloneP(s.FontWeight),
		TextAlign:           cloneP(s.TextAlign),
		BorderColor:         cloneP(s.BorderColor),
		BorderWidth:         cloneP(s.BorderWidth),
		BorderRadius:        cloneP(s.BorderRadius),
		BorderStyle:         cloneP(s.BorderStyle),
		Padding:             cloneP(s.Padding),
		MarginBottom:        cloneP(s.MarginBottom),
		LineColor:           cloneP(s.LineColor),
		LineWidth:           cloneP(s.LineWidth),
		ItemBackgroundColor: cloneP(s.ItemBackgroundColor),
		ItemTextColor:       cloneP(s.ItemTextColor),
	}
	return &out
}

// ImageStyle 头像边框样式。
type ImageStyle struct {
	// BorderRadius 是百分比。
	BorderRadius float64 `json:"borderRadius" validate:"min=0,max=50"`
	BorderWidth  float64 `json:"borderWidth" validate:"min=0"`
	BorderColor  string  `json:"borderColor"`
}

// Ptr 返回 v 的指针，便于构造覆盖样式。
func Ptr[T any](v T) *T {
	return &v
}

func cloneP[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
