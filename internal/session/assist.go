package session

import (
	"context"
	"fmt"

	"smartCV/internal/persist"
	"smartCV/internal/resume"
	"smartCV/internal/style"
	"smartCV/internal/suggest"
)

// 加载标记。
const (
	BusyStyle  = "style"
	BusyExport = "export"
)

// TextTarget 指定要润色的字段：摘要或某条经历的描述。
type TextTarget struct {
	Kind         suggest.TextKind `json:"kind"`
	ExperienceID string           `json:"experienceId,omitempty"`
}

func (t TextTarget) busyKey() string {
	if t.Kind == suggest.KindExperience {
		return "text:experience:" + t.ExperienceID
	}
	return "text:" + string(t.Kind)
}

// StylePatch 是样式推荐可以修改的全部字段。
type StylePatch struct {
	TemplateID      resume.TemplateID
	PrimaryColor    string
	SecondaryColor  string
	BackgroundColor string
	HeadingColor    string
	HeadingFont     string
}

func (p StylePatch) apply(cfg *resume.AppConfig) {
	if p.TemplateID.Valid() {
		cfg.TemplateID = p.TemplateID
	}
	cfg.Colors.Primary = p.PrimaryColor
	// 标签颜色跟随新的主色，不沿用旧方案
	cfg.Colors.TagBackground = p.PrimaryColor
	cfg.Colors.TagText = style.DefaultItemText
	cfg.Colors.Secondary = p.SecondaryColor
	cfg.Colors.Background = p.BackgroundColor
	cfg.Colors.Heading = p.HeadingColor
	cfg.Fonts.Heading = p.HeadingFont
	cfg.ActiveProfileID = ""
}

// SuggestStyle 调用协作方分析 CV 图片，把结果作为字段级补丁合并进配置。
// 同类请求进行中返回 ErrBusy；ctx 在结果返回前结束时丢弃结果，状态不变。
// 协作方失败时返回兜底推荐和错误，配置不变。
func (s *Session) SuggestStyle(ctx context.Context, img suggest.Image) (suggest.Style, error) {
	release, err := s.acquire(BusyStyle)
	if err != nil {
		return suggest.Style{}, err
	}
	defer release()

	st, suggestErr := s.suggester.SuggestStyle(ctx, img)
	if err := ctx.Err(); err != nil {
		return suggest.Style{}, fmt.Errorf("style suggestion abandoned: %w", err)
	}
	if suggestErr != nil {
		return st, suggestErr
	}

	patch := StylePatch(st)
	err = s.mutateConfig(func(cfg *resume.AppConfig) error {
		patch.apply(cfg)
		return nil
	})
	return st, err
}

// ImproveText 润色目标字段并只写回该字段。润色期间目标条目被删除时返回 ErrNotFound。
func (s *Session) ImproveText(ctx context.Context, target TextTarget) (string, error) {
	release, err := s.acquire(target.busyKey())
	if err != nil {
		return "", err
	}
	defer release()

	doc := s.Document()
	original, err := target.read(doc)
	if err != nil {
		return "", err
	}

	improved := s.suggester.ImproveText(ctx, original, target.Kind)
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("text improvement abandoned: %w", err)
	}

	err = s.mutate(func(doc *resume.Document, _ *resume.AppConfig) error {
		return target.write(doc, improved)
	}, persist.KeyDocument)
	return improved, err
}

func (t TextTarget) read(doc *resume.Document) (string, error) {
	switch t.Kind {
	case suggest.KindSummary:
		return doc.PersonalInfo.Summary, nil
	case suggest.KindExperience:
		for _, e := range doc.Experience {
			if e.ID == t.ExperienceID {
				return e.Description, nil
			}
		}
		return "", fmt.Errorf("experience %q: %w", t.ExperienceID, ErrNotFound)
	default:
		return "", &resume.ValidationError{Errors: []resume.FieldError{{Field: "kind", Message: fmt.Sprintf("unknown text kind %q", t.Kind)}}}
	}
}

func (t TextTarget) write(doc *resume.Document, text string) error {
	if t.Kind == suggest.KindSummary {
		doc.PersonalInfo.Summary = text
		return nil
	}
	for i := range doc.Experience {
		if doc.Experience[i].ID == t.ExperienceID {
			doc.Experience[i].Description = text
			return nil
		}
	}
	return fmt.Errorf("experience %q: %w", t.ExperienceID, ErrNotFound)
}

// BeginExport 占用导出标记，调用方完成后调用返回的函数。
func (s *Session) BeginExport() (func(), error) {
	return s.acquire(BusyExport)
}
