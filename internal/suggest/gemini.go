package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel 默认使用的 Gemini 模型。
const DefaultModel = "gemini-2.5-flash"

// GeminiGenerator 通过 Google Gemini 实现 Generator。
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator 创建 Gemini 客户端；apiKey 为空时返回错误。
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// GenerateText 生成纯文本。
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return extractText(resp)
}

// GenerateJSON 生成符合样式推荐结构的 JSON，img 可为 nil。
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, img *Image) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0.1)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"style":           {Type: genai.TypeString, Enum: []string{"Modern", "Classic", "Creative"}},
			"primaryColor":    {Type: genai.TypeString},
			"secondaryColor":  {Type: genai.TypeString},
			"backgroundColor": {Type: genai.TypeString},
			"headingColor":    {Type: genai.TypeString},
			"fontType":        {Type: genai.TypeString, Enum: []string{"Sans-serif", "Serif"}},
		},
	}

	parts := []genai.Part{genai.Text(prompt)}
	if img != nil && len(img.Data) > 0 {
		parts = append(parts, genai.ImageData(imageFormat(img.MIMEType), img.Data))
	}
	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return extractText(resp)
}

// Close 释放客户端。
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func imageFormat(mime string) string {
	format := strings.TrimPrefix(strings.ToLower(mime), "image/")
	if format == "" || strings.Contains(format, "/") {
		return "png"
	}
	return format
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	c := resp.Candidates[0]
	if c.Content == nil || len(c.Content.Parts) == 0 {
		return "", errors.New("no content in response")
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("no text parts in response")
	}
	return sb.String(), nil
}
