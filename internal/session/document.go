package session

import (
	"fmt"
	"slices"

	"smartCV/internal/resume"
	"smartCV/internal/style"
)

// PersonalInfoPatch 只修改非 nil 字段。
type PersonalInfoPatch struct {
	FullName *string `json:"fullName"`
	Title    *string `json:"title"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	LinkedIn *string `json:"linkedin"`
	Summary  *string `json:"summary"`
	ImageURL *string `json:"imageUrl"`
}

// ReplaceDocument 用整份文档替换当前文档（表单整体提交），先经过迁移。
func (s *Session) ReplaceDocument(next *resume.Document) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		*doc = *next.Clone()
		resume.MigrateDocument(doc)
		return nil
	})
}

// UpdatePersonalInfo 合并个人信息补丁。
func (s *Session) UpdatePersonalInfo(p PersonalInfoPatch) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		info := &doc.PersonalInfo
		set(&info.FullName, p.FullName)
		set(&info.Title, p.Title)
		set(&info.Email, p.Email)
		set(&info.Phone, p.Phone)
		set(&info.Address, p.Address)
		set(&info.LinkedIn, p.LinkedIn)
		set(&info.Summary, p.Summary)
		set(&info.ImageURL, p.ImageURL)
		return nil
	})
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// SetImageStyle 设置头像样式；nil 表示恢复模板默认。
func (s *Session) SetImageStyle(img *style.ImageStyle) error {
	if img != nil {
		if err := resume.ValidateImageStyle(*img); err != nil {
			return err
		}
	}
	return s.mutateDocument(func(doc *resume.Document) error {
		if img == nil {
			doc.PersonalInfo.ImageStyle = nil
			return nil
		}
		cp := *img
		doc.PersonalInfo.ImageStyle = &cp
		return nil
	})
}

// AddExperience 追加一条经历，id 为空时生成。
func (s *Session) AddExperience(e resume.Experience) (resume.Experience, error) {
	err := s.mutateDocument(func(doc *resume.Document) error {
		e.ID = freshID(e.ID, slices.ContainsFunc(doc.Experience, func(x resume.Experience) bool { return x.ID == e.ID }))
		doc.Experience = append(doc.Experience, e)
		return nil
	})
	return e, err
}

// RemoveExperience 按 id 删除经历，其余条目保持顺序。
func (s *Session) RemoveExperience(id string) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		n := len(doc.Experience)
		doc.Experience = slices.DeleteFunc(doc.Experience, func(x resume.Experience) bool { return x.ID == id })
		return found(n != len(doc.Experience), "experience", id)
	})
}

// AddEducation 追加一条教育经历。
func (s *Session) AddEducation(e resume.Education) (resume.Education, error) {
	err := s.mutateDocument(func(doc *resume.Document) error {
		e.ID = freshID(e.ID, slices.ContainsFunc(doc.Education, func(x resume.Education) bool { return x.ID == e.ID }))
		doc.Education = append(doc.Education, e)
		return nil
	})
	return e, err
}

// RemoveEducation 按 id 删除教育经历。
func (s *Session) RemoveEducation(id string) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		n := len(doc.Education)
		doc.Education = slices.DeleteFunc(doc.Education, func(x resume.Education) bool { return x.ID == id })
		return found(n != len(doc.Education), "education", id)
	})
}

// AddSkill 追加技能；等级必须在 1-5 之间。
func (s *Session) AddSkill(sk resume.Skill) (resume.Skill, error) {
	if sk.Level < resume.MinSkillLevel || sk.Level > resume.MaxSkillLevel {
		return sk, &resume.ValidationError{Errors: []resume.FieldError{{
			Field:   "level",
			Message: fmt.Sprintf("must be between %d and %d", resume.MinSkillLevel, resume.MaxSkillLevel),
		}}}
	}
	err := s.mutateDocument(func(doc *resume.Document) error {
		sk.ID = freshID(sk.ID, slices.ContainsFunc(doc.Skills, func(x resume.Skill) bool { return x.ID == sk.ID }))
		doc.Skills = append(doc.Skills, sk)
		return nil
	})
	return sk, err
}

// RemoveSkill 按 id 删除技能。
func (s *Session) RemoveSkill(id string) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		n := len(doc.Skills)
		doc.Skills = slices.DeleteFunc(doc.Skills, func(x resume.Skill) bool { return x.ID == id })
		return found(n != len(doc.Skills), "skill", id)
	})
}

// SetSectionStyle 整体替换一个分区的覆盖样式；取值越界时返回 *resume.ValidationError。
func (s *Session) SetSectionStyle(id style.SectionID, st style.SectionStyle) error {
	if err := resume.ValidateSectionStyle(st); err != nil {
		return err
	}
	return s.mutateDocument(func(doc *resume.Document) error {
		if st.IsEmpty() {
			delete(doc.SectionStyles, id)
			return nil
		}
		doc.SectionStyles[id] = *st.Clone()
		return nil
	})
}

// ResetSectionStyle 删除分区覆盖，恢复默认。
func (s *Session) ResetSectionStyle(id style.SectionID) error {
	return s.mutateDocument(func(doc *resume.Document) error {
		delete(doc.SectionStyles, id)
		return nil
	})
}

func freshID(id string, taken bool) string {
	if id == "" || taken {
		return resume.NewID()
	}
	return id
}

func found(ok bool, kind, id string) error {
	if !ok {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
