package resume

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartCV/internal/style"
	"smartCV/internal/table"
)

const legacyDoc = `{
  "personalInfo": {"fullName": "Saman", "title": "Engineer", "email": "s@example.com",
    "phone": "1", "address": "Colombo", "linkedin": "", "summary": "hi"},
  "experience": [{"id": "1", "role": "Dev", "company": "ACME", "duration": "2020", "description": "x"}],
  "education": [],
  "skills": [{"id": "1", "name": "Go", "level": 9}, {"id": "1", "name": "SQL", "level": 0}],
  "customTables": [{"id": "t", "title": "Marks", "headers": ["A", "B", "C"], "rows": [["1"], ["1", "2", "3", "4"]]}],
  "config": {
    "templateId": "classic",
    "colors": {"primary": "#ff0000", "secondary": "#00ff00", "text": "#000000", "background": "#ffffff", "heading": "#ff0000"},
    "fonts": {"heading": "Merriweather, serif", "body": "Inter, sans-serif"},
    "spacing": 3,
    "borderRadius": 10,
    "language": "en"
  }
}`

func TestDecode_LegacyDocumentIsMigrated(t *testing.T) {
	b, err := Decode([]byte(legacyDoc))
	require.NoError(t, err)

	d := b.Document
	assert.NotNil(t, d.SectionStyles)
	assert.Empty(t, d.SectionStyles)
	assert.Equal(t, 5, d.Skills[0].Level)
	assert.Equal(t, 1, d.Skills[1].Level)
	assert.Equal(t, "1", d.Skills[0].ID)
	assert.NotEqual(t, "1", d.Skills[1].ID, "duplicate ids are regenerated")
	assert.NotEmpty(t, d.Skills[1].ID)
	assert.Equal(t, [][]string{{"1", table.Placeholder, table.Placeholder}, {"1", "2", "3"}}, d.CustomTables[0].Rows)

	require.NotNil(t, b.Config)
	c := b.Config
	assert.Equal(t, TemplateClassic, c.TemplateID)
	assert.Equal(t, style.GlobalDesign{
		HeadingScale: 1,
		BodyScale:    1,
		LineWidth:    2,
		BorderStyle:  style.BorderSolid,
		BorderRadius: 10,
	}, c.GlobalDesign)
	assert.Equal(t, "#ff0000", c.Colors.TagBackground)
	assert.Equal(t, "#ffffff", c.Colors.TagText)
	assert.Equal(t, 3, c.Spacing)
	assert.Equal(t, "en", c.Language)
}

func TestDecode_MissingSectionStylesOnly(t *testing.T) {
	b, err := Decode([]byte(`{"personalInfo": {"fullName": "A"}}`))
	require.NoError(t, err)
	assert.Equal(t, map[style.SectionID]style.SectionStyle{}, b.Document.SectionStyles)
	assert.Equal(t, []Experience{}, b.Document.Experience)
	assert.Nil(t, b.Config, "no embedded config means keep the current one")
}

func TestDecode_MissingPersonalInfoIsValidationError(t *testing.T) {
	_, err := Decode([]byte(`{"experience": []}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	require.NotEmpty(t, ve.Errors)
	assert.Contains(t, ve.Errors[0].Message, "personalInfo")

	_, err = Decode([]byte(`{"personalInfo": null}`))
	assert.True(t, errors.As(err, &ve))

	_, err = Decode([]byte(`[1, 2]`))
	assert.True(t, errors.As(err, &ve))
}

func TestDecode_ParseError(t *testing.T) {
	_, err := Decode([]byte(`{"personalInfo": {`))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))

	_, err = Decode([]byte(`{"personalInfo": {}} trailing`))
	require.True(t, errors.As(err, &pe))
	assert.Greater(t, pe.Offset, int64(0))
}

func TestDecode_BadFieldTypeIsValidationError(t *testing.T) {
	_, err := Decode([]byte(`{"personalInfo": {}, "skills": [{"id": "1", "name": "Go", "level": "high"}]}`))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Errors[0].Field, "skills")
}

func TestRoundTrip(t *testing.T) {
	doc := DefaultDocument()
	doc.SectionStyles["main-header"] = style.SectionStyle{
		BorderWidth: style.Ptr(0.0),
		Padding:     style.Ptr(0.0),
		FontWeight:  style.Ptr(style.WeightBold),
	}
	doc.PersonalInfo.ImageStyle = &style.ImageStyle{BorderRadius: 50, BorderWidth: 0, BorderColor: "#000000"}
	doc.CustomTables = append(doc.CustomTables, table.New("t1"))
	cfg := DefaultConfig()
	cfg.ActiveProfileID = "builtin-blue"

	data, err := Encode(doc, cfg)
	require.NoError(t, err)

	b, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, &b.Document)
	assert.Equal(t, cfg, b.Config)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "personalInfo")
	assert.Contains(t, raw, "config")
}

func TestMigrate_Idempotent(t *testing.T) {
	first, err := Decode([]byte(legacyDoc))
	require.NoError(t, err)
	once, err := Encode(&first.Document, first.Config)
	require.NoError(t, err)

	second, err := Decode(once)
	require.NoError(t, err)
	twice, err := Encode(&second.Document, second.Config)
	require.NoError(t, err)

	assert.Equal(t, string(once), string(twice))

	cfg := second.Config.Clone()
	MigrateConfig(cfg)
	assert.Equal(t, second.Config, cfg)

	doc := second.Document.Clone()
	MigrateDocument(doc)
	assert.Equal(t, &second.Document, doc)
}

func TestDecode_UnknownSectionKeysPreserved(t *testing.T) {
	in := `{"personalInfo": {}, "sectionStyles": {
		"future-layout-block": {"backgroundColor": "#abcdef"},
		"main-header": {"lineColor": "#3b82f6", "borderWidth": 0}
	}}`
	b, err := Decode([]byte(in))
	require.NoError(t, err)

	require.Contains(t, b.Document.SectionStyles, style.SectionID("future-layout-block"))
	hdr := b.Document.SectionStyles["main-header"]
	require.NotNil(t, hdr.LineColor)
	require.NotNil(t, hdr.BorderWidth)
	assert.Equal(t, 0.0, *hdr.BorderWidth)
	assert.Nil(t, hdr.Padding)

	out, err := Encode(&b.Document, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"future-layout-block"`)
	assert.Contains(t, string(out), `"lineColor": "#3b82f6"`)
	assert.NotContains(t, string(out), `"config"`)
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig([]byte(`{"templateId": "bogus", "colors": {"primary": "#123456"}, "spacing": 7}`))
	require.NoError(t, err)
	assert.Equal(t, TemplateModern, cfg.TemplateID)
	assert.Equal(t, DefaultSpacing, cfg.Spacing)
	assert.Equal(t, "#123456", cfg.Colors.TagBackground)
	assert.Equal(t, DefaultGlobalDesign(DefaultBorderRadius), cfg.GlobalDesign)

	_, err = DecodeConfig([]byte(`nope`))
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))

	_, err = DecodeConfig([]byte(`"str"`))
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestDocumentClone(t *testing.T) {
	doc := DefaultDocument()
	doc.SectionStyles["x"] = style.SectionStyle{Padding: style.Ptr(3.0)}
	doc.CustomTables = []table.Table{table.New("a")}

	c := doc.Clone()
	c.Skills[0].Level = 1
	c.CustomTables[0].Rows[0][0] = "changed"
	*c.SectionStyles["x"].Padding = 9

	assert.Equal(t, 5, doc.Skills[0].Level)
	assert.Equal(t, table.Placeholder, doc.CustomTables[0].Rows[0][0])
	assert.Equal(t, 3.0, *doc.SectionStyles["x"].Padding)
}

func TestValidateSectionStyle(t *testing.T) {
	assert.NoError(t, ValidateSectionStyle(style.SectionStyle{}))
	assert.NoError(t, ValidateSectionStyle(style.SectionStyle{
		FontSize:   style.Ptr(2.5),
		FontWeight: style.Ptr(style.WeightBold),
		TextAlign:  style.Ptr(style.AlignJustify),
	}))

	err := ValidateSectionStyle(style.SectionStyle{
		FontWeight: style.Ptr(style.FontWeight("heavy")),
		FontSize:   style.Ptr(3.0),
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	fields := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"fontSize", "fontWeight"}, fields)

	err = ValidateSectionStyle(style.SectionStyle{Padding: style.Ptr(-1.0)})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "padding", ve.Errors[0].Field)
	assert.Equal(t, "must be at least 0", ve.Errors[0].Message)
}

func TestValidateImageStyle(t *testing.T) {
	assert.NoError(t, ValidateImageStyle(style.ImageStyle{BorderRadius: 50}))
	var ve *ValidationError
	require.ErrorAs(t, ValidateImageStyle(style.ImageStyle{BorderRadius: 60}), &ve)
	assert.Equal(t, "borderRadius", ve.Errors[0].Field)
}

func TestDecode_OutOfRangeFontSizeRejected(t *testing.T) {
	_, err := Decode([]byte(`{"personalInfo": {}, "sectionStyles": {"main-header": {"fontSize": 3}}}`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Errors[0].Field, "fontSize")
}
