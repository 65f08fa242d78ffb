// Package suggest 封装 AI 协作方：从 CV 图片推荐样式、润色文本。
// 样式推荐失败时返回固定兜底结果与 ErrUnavailable，文本润色失败时原样返回。
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"smartCV/internal/metrics"
	"smartCV/internal/resume"
)

// TextKind 待润色文本所属的分区。
type TextKind string

const (
	KindSummary    TextKind = "summary"
	KindExperience TextKind = "experience"
)

// 推荐结果中的字体。
const (
	SerifFont = "Playfair Display, serif"
	SansFont  = "Inter, sans-serif"
)

// ErrUnavailable 表示协作方没有给出推荐，随错误返回的是兜底样式，不应写入配置。
var ErrUnavailable = errors.New("style suggestion unavailable")

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Image 是上传的 CV 图片。
type Image struct {
	MIMEType string
	Data     []byte
}

// Style 是一次样式推荐。
type Style struct {
	TemplateID      resume.TemplateID `json:"templateId"`
	PrimaryColor    string            `json:"primaryColor"`
	SecondaryColor  string            `json:"secondaryColor"`
	BackgroundColor string            `json:"backgroundColor"`
	HeadingColor    string            `json:"headingColor"`
	HeadingFont     string            `json:"headingFont"`
}

// Fallback 是协作方不可用时使用的固定推荐。
func Fallback() Style {
	return Style{
		TemplateID:      resume.TemplateModern,
		PrimaryColor:    "#3b82f6",
		SecondaryColor:  "#6b7280",
		BackgroundColor: "#ffffff",
		HeadingColor:    "#3b82f6",
		HeadingFont:     SansFont,
	}
}

// Generator 是底层大模型调用。
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string, img *Image) (string, error)
}

// Service 把 Generator 的结果转换成领域值。Generator 为 nil 表示未配置密钥。
type Service struct {
	gen    Generator
	logger *slog.Logger
}

// NewService 创建服务。
func NewService(gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger}
}

const stylePrompt = "Analyze this CV image. 1. Identify the style (Modern, Classic, or Creative). " +
	"2. Extract the dominant primary color (hex code). 3. Extract a secondary accent color (hex). " +
	"4. Extract the background color (hex). 5. Extract the heading text color (hex). " +
	"6. Suggest a font style (Sans-serif or Serif). Return JSON."

// SuggestStyle 返回推荐样式。失败时返回 Fallback() 和包装了 ErrUnavailable 的错误。
func (s *Service) SuggestStyle(ctx context.Context, img Image) (Style, error) {
	if s.gen == nil {
		s.logger.Warn("style suggestion skipped: no AI credentials configured")
		return s.fallback(errors.New("no AI credentials configured"))
	}
	raw, err := s.gen.GenerateJSON(ctx, stylePrompt, &img)
	if err != nil {
		s.logger.Error("style suggestion failed", slog.Any("error", err))
		return s.fallback(err)
	}
	st, err := ParseStyle(raw)
	if err != nil {
		s.logger.Error("style suggestion unparsable", slog.Any("error", err))
		return s.fallback(err)
	}
	return st, nil
}

func (s *Service) fallback(cause error) (Style, error) {
	metrics.ObserveSuggestFallback("style")
	return Fallback(), fmt.Errorf("%w: %v", ErrUnavailable, cause)
}

// ImproveText 返回润色后的文本，失败或结果为空时原样返回。
func (s *Service) ImproveText(ctx context.Context, text string, kind TextKind) string {
	if s.gen == nil || strings.TrimSpace(text) == "" {
		return text
	}
	prompt := fmt.Sprintf("Rewrite and improve the following resume %s to be more professional, concise, and impactful. "+
		"Keep it under 50 words if possible. Text: %q", kind, text)
	out, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Error("text improvement failed", slog.String("kind", string(kind)), slog.Any("error", err))
		metrics.ObserveSuggestFallback(string(kind))
		return text
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return text
	}
	return out
}

type styleReply struct {
	Style           string `json:"style"`
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	BackgroundColor string `json:"backgroundColor"`
	HeadingColor    string `json:"headingColor"`
	FontType        string `json:"fontType"`
}

// ParseStyle 解析模型返回的 JSON，缺失或非法的字段用兜底值补齐。
func ParseStyle(raw string) (Style, error) {
	var r styleReply
	if err := json.Unmarshal([]byte(cleanJSONBlock(raw)), &r); err != nil {
		return Style{}, fmt.Errorf("decode style suggestion: %w", err)
	}
	fb := Fallback()
	st := Style{
		TemplateID:      resume.TemplateID(strings.ToLower(strings.TrimSpace(r.Style))),
		PrimaryColor:    colorOr(r.PrimaryColor, fb.PrimaryColor),
		SecondaryColor:  colorOr(r.SecondaryColor, fb.SecondaryColor),
		BackgroundColor: colorOr(r.BackgroundColor, fb.BackgroundColor),
		HeadingFont:     SansFont,
	}
	if !st.TemplateID.Valid() {
		st.TemplateID = fb.TemplateID
	}
	st.HeadingColor = colorOr(r.HeadingColor, st.PrimaryColor)
	if strings.EqualFold(strings.TrimSpace(r.FontType), "serif") {
		st.HeadingFont = SerifFont
	}
	return st, nil
}

func colorOr(v, fallback string) string {
	v = strings.TrimSpace(v)
	if hexColor.MatchString(v) {
		return strings.ToLower(v)
	}
	return fallback
}

// cleanJSONBlock 去掉模型偶尔附带的 markdown 代码块包裹。
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
