package resume

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"smartCV/internal/style"
	"smartCV/internal/table"
)

//go:embed schema/document.schema.json
var documentSchema []byte

var loadSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
})

// configWire 用指针区分字段缺失与零值，只在加载路径中使用。
type configWire struct {
	TemplateID      TemplateID          `json:"templateId"`
	Colors          style.Palette       `json:"colors"`
	ActiveProfileID string              `json:"activeProfileId"`
	Fonts           Fonts               `json:"fonts"`
	GlobalDesign    *style.GlobalDesign `json:"globalDesign"`
	Spacing         *int                `json:"spacing"`
	BorderRadius    *float64            `json:"borderRadius"`
	Language        string              `json:"language"`
}

// envelope 是导出文件的形状：文档字段平铺，外加 config。
type envelope struct {
	*Document
	Config *AppConfig `json:"config,omitempty"`
}

// Decode 解析导入或持久化的文档 JSON，校验结构后执行迁移。
// 任何错误都不会产生部分结果。
func Decode(data []byte) (*Bundle, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newParseError(err)
	}
	if err := validate(data); err != nil {
		return nil, err
	}

	var w struct {
		Document
		Config *configWire `json:"config"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fieldError(err)
	}

	b := &Bundle{Document: w.Document}
	MigrateDocument(&b.Document)
	if w.Config != nil {
		b.Config = w.Config.migrate()
	}
	return b, nil
}

// DecodeConfig 解析单独保存的配置记录。
func DecodeConfig(data []byte) (*AppConfig, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newParseError(err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "config must be an object"}}}
	}
	var w configWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fieldError(err)
	}
	return w.migrate(), nil
}

// Encode 生成导出文件 {...document, config}。cfg 为 nil 时不写 config。
func Encode(doc *Document, cfg *AppConfig) ([]byte, error) {
	data, err := json.MarshalIndent(envelope{Document: doc, Config: cfg}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// MigrateDocument 把旧版文档补齐为当前形状。对已是当前形状的文档不做任何修改。
func MigrateDocument(d *Document) {
	if d.SectionStyles == nil {
		d.SectionStyles = map[style.SectionID]style.SectionStyle{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.CustomTables == nil {
		d.CustomTables = []table.Table{}
	}

	ids := newIDSet()
	for i := range d.Experience {
		d.Experience[i].ID = ids.claim(d.Experience[i].ID)
	}
	ids = newIDSet()
	for i := range d.Education {
		d.Education[i].ID = ids.claim(d.Education[i].ID)
	}
	ids = newIDSet()
	for i := range d.Skills {
		d.Skills[i].ID = ids.claim(d.Skills[i].ID)
		d.Skills[i].Level = ClampLevel(d.Skills[i].Level)
	}
	ids = newIDSet()
	for i := range d.CustomTables {
		d.CustomTables[i].ID = ids.claim(d.CustomTables[i].ID)
		d.CustomTables[i].Normalize()
	}
}

// MigrateConfig 补齐已解码配置中缺失的可推导字段。
func MigrateConfig(c *AppConfig) {
	w := configWire{
		TemplateID:      c.TemplateID,
		Colors:          c.Colors,
		ActiveProfileID: c.ActiveProfileID,
		Fonts:           c.Fonts,
		GlobalDesign:    &c.GlobalDesign,
		Spacing:         &c.Spacing,
		BorderRadius:    &c.BorderRadius,
		Language:        c.Language,
	}
	*c = *w.migrate()
}

func (w *configWire) migrate() *AppConfig {
	c := &AppConfig{
		TemplateID:      w.TemplateID,
		Colors:          w.Colors,
		ActiveProfileID: w.ActiveProfileID,
		Fonts:           w.Fonts,
		Spacing:         DefaultSpacing,
		BorderRadius:    DefaultBorderRadius,
		Language:        w.Language,
	}
	if !c.TemplateID.Valid() {
		c.TemplateID = TemplateModern
	}
	if w.Spacing != nil && *w.Spacing >= 1 && *w.Spacing <= 3 {
		c.Spacing = *w.Spacing
	}
	if w.BorderRadius != nil {
		c.BorderRadius = *w.BorderRadius
	}
	if w.GlobalDesign != nil {
		c.GlobalDesign = *w.GlobalDesign
		if c.GlobalDesign.BorderStyle == "" {
			c.GlobalDesign.BorderStyle = style.BorderSolid
		}
	} else {
		c.GlobalDesign = DefaultGlobalDesign(c.BorderRadius)
	}

	def := DefaultPalette()
	c.Colors.Primary = or(c.Colors.Primary, def.Primary)
	c.Colors.Secondary = or(c.Colors.Secondary, def.Secondary)
	c.Colors.Text = or(c.Colors.Text, def.Text)
	c.Colors.Background = or(c.Colors.Background, def.Background)
	if c.Colors.TagBackground == "" {
		c.Colors.TagBackground = c.Colors.Primary
	}
	if c.Colors.TagText == "" {
		c.Colors.TagText = style.DefaultItemText
	}
	if c.Fonts.Heading == "" {
		c.Fonts.Heading = DefaultFont
	}
	if c.Fonts.Body == "" {
		c.Fonts.Body = DefaultFont
	}
	if c.Language != "en" && c.Language != "si" {
		c.Language = DefaultLanguage
	}
	return c
}

// 技能等级范围。
const (
	MinSkillLevel = 1
	MaxSkillLevel = 5
)

// ClampLevel 把技能等级限制在 MinSkillLevel..MaxSkillLevel。
func ClampLevel(level int) int {
	return min(max(level, MinSkillLevel), MaxSkillLevel)
}

// NewID 生成列表项 id。
func NewID() string {
	return uuid.NewString()
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

type idSet map[string]struct{}

func newIDSet() idSet { return idSet{} }

// claim 返回可用的 id：空值或重复值会被替换为新 id。
func (s idSet) claim(id string) string {
	if _, dup := s[id]; id == "" || dup {
		id = NewID()
	}
	s[id] = struct{}{}
	return id
}

func validate(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return fmt.Errorf("load document schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return newParseError(err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

func newParseError(err error) *ParseError {
	pe := &ParseError{Cause: err}
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		pe.Offset = syntax.Offset
	}
	return pe
}

func fieldError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Errors: []FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}}}
	}
	return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
}
