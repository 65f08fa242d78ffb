package session

import (
	"fmt"

	"smartCV/internal/persist"
	"smartCV/internal/profile"
	"smartCV/internal/resume"
	"smartCV/internal/style"
)

// ConfigPatch 只修改非 nil 字段。
type ConfigPatch struct {
	TemplateID   *resume.TemplateID  `json:"templateId"`
	Colors       *style.Palette      `json:"colors"`
	Fonts        *resume.Fonts       `json:"fonts"`
	GlobalDesign *style.GlobalDesign `json:"globalDesign"`
	Spacing      *int                `json:"spacing"`
	BorderRadius *float64            `json:"borderRadius"`
	Language     *string             `json:"language"`
}

// UpdateConfig 合并配置补丁。非法模板、间距或语言返回 *resume.ValidationError 且不做修改。
func (s *Session) UpdateConfig(p ConfigPatch) error {
	if err := p.validate(); err != nil {
		return err
	}
	return s.mutateConfig(func(cfg *resume.AppConfig) error {
		set(&cfg.TemplateID, p.TemplateID)
		if p.Colors != nil {
			// 手动改色后不再对应任何方案
			cfg.Colors = *p.Colors
			cfg.ActiveProfileID = ""
		}
		set(&cfg.Fonts, p.Fonts)
		set(&cfg.GlobalDesign, p.GlobalDesign)
		set(&cfg.Spacing, p.Spacing)
		set(&cfg.BorderRadius, p.BorderRadius)
		set(&cfg.Language, p.Language)
		return nil
	})
}

func (p ConfigPatch) validate() error {
	var errs []resume.FieldError
	if p.TemplateID != nil && !p.TemplateID.Valid() {
		errs = append(errs, resume.FieldError{Field: "templateId", Message: fmt.Sprintf("unknown template %q", *p.TemplateID)})
	}
	if p.Spacing != nil && (*p.Spacing < 1 || *p.Spacing > 3) {
		errs = append(errs, resume.FieldError{Field: "spacing", Message: "must be between 1 and 3"})
	}
	if p.Language != nil && *p.Language != "en" && *p.Language != "si" {
		errs = append(errs, resume.FieldError{Field: "language", Message: "must be en or si"})
	}
	if p.BorderRadius != nil && *p.BorderRadius < 0 {
		errs = append(errs, resume.FieldError{Field: "borderRadius", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return &resume.ValidationError{Errors: errs}
	}
	return nil
}

// Profiles 返回全部配色方案，内置在前。
func (s *Session) Profiles() []profile.Profile {
	return s.profiles.List()
}

// SelectProfile 把方案颜色按值复制进配置。id 不存在时返回 ErrNotFound，配置不变。
func (s *Session) SelectProfile(id string) error {
	return s.mutateConfig(func(cfg *resume.AppConfig) error {
		colors, ok := s.profiles.Select(id)
		if !ok {
			return fmt.Errorf("profile %q: %w", id, ErrNotFound)
		}
		cfg.Colors = colors
		cfg.ActiveProfileID = id
		return nil
	})
}

// CreateProfile 把当前颜色保存为新方案并返回其 id。
func (s *Session) CreateProfile(name string) (string, error) {
	var id string
	err := s.mutate(func(_ *resume.Document, cfg *resume.AppConfig) error {
		id = s.profiles.Create(name, cfg.Colors)
		cfg.ActiveProfileID = id
		return nil
	}, persist.KeyProfiles, persist.KeyConfig)
	return id, err
}

// DeleteProfile 删除用户方案；被删除的方案正在使用时回退到第一个内置方案。
// 内置方案返回 *profile.ProtectedResourceError，注册表与配置均不变。
func (s *Session) DeleteProfile(id string) error {
	return s.mutate(func(_ *resume.Document, cfg *resume.AppConfig) error {
		if err := s.profiles.Delete(id); err != nil {
			return err
		}
		if cfg.ActiveProfileID == id {
			first := s.profiles.First()
			cfg.Colors = first.Colors
			cfg.ActiveProfileID = first.ID
		}
		return nil
	}, persist.KeyProfiles, persist.KeyConfig)
}

// ExportProfiles 导出用户方案数组。
func (s *Session) ExportProfiles() ([]byte, error) {
	return s.profiles.ExportUser()
}

// ImportProfiles 导入方案数组，返回新增数量。
func (s *Session) ImportProfiles(data []byte) (int, error) {
	var added int
	err := s.mutate(func(_ *resume.Document, _ *resume.AppConfig) error {
		n, err := s.profiles.ImportUser(data)
		added = n
		return err
	}, persist.KeyProfiles)
	return added, err
}
