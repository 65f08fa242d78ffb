package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartCV/internal/layout"
	"smartCV/internal/resume"
	"smartCV/internal/session"
	"smartCV/internal/style"
)

// DocumentHandler 处理文档内容、分区样式与导入导出。
type DocumentHandler struct {
	session *session.Session
}

// NewDocumentHandler 构造 DocumentHandler。
func NewDocumentHandler(s *session.Session) *DocumentHandler {
	return &DocumentHandler{session: s}
}

type imageStyleRequest struct {
	BorderRadius float64 `json:"borderRadius" binding:"min=0,max=50"`
	BorderWidth  float64 `json:"borderWidth" binding:"min=0"`
	BorderColor  string  `json:"borderColor" binding:"omitempty,hexcolor"`
}

type experienceRequest struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type educationRequest struct {
	ID     string `json:"id"`
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

type skillRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Level int    `json:"level" binding:"required,min=1,max=5"`
}

// GetDocument 返回当前文档。
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Document())
}

// ReplaceDocument 用请求体整体替换文档，请求体经过与导入相同的解析与迁移。
func (h *DocumentHandler) ReplaceDocument(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}
	b, err := resume.Decode(body)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.session.ReplaceDocument(&b.Document); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Document())
}

// UpdatePersonalInfo 合并个人信息，未出现的字段保持不变。
func (h *DocumentHandler) UpdatePersonalInfo(c *gin.Context) {
	var req session.PersonalInfoPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.session.UpdatePersonalInfo(req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Document().PersonalInfo)
}

// SetImageStyle 设置头像样式。
func (h *DocumentHandler) SetImageStyle(c *gin.Context) {
	var req imageStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	img := style.ImageStyle{
		BorderRadius: req.BorderRadius,
		BorderWidth:  req.BorderWidth,
		BorderColor:  req.BorderColor,
	}
	if err := h.session.SetImageStyle(&img); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

// ResetImageStyle 恢复模板默认的头像样式。
func (h *DocumentHandler) ResetImageStyle(c *gin.Context) {
	if err := h.session.SetImageStyle(nil); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DocumentHandler) AddExperience(c *gin.Context) {
	var req experienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	e, err := h.session.AddExperience(resume.Experience(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *DocumentHandler) RemoveExperience(c *gin.Context) {
	h.remove(c, h.session.RemoveExperience)
}

func (h *DocumentHandler) AddEducation(c *gin.Context) {
	var req educationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	e, err := h.session.AddEducation(resume.Education(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *DocumentHandler) RemoveEducation(c *gin.Context) {
	h.remove(c, h.session.RemoveEducation)
}

// AddSkill 追加技能，等级超出 1-5 时返回 400。
func (h *DocumentHandler) AddSkill(c *gin.Context) {
	var req skillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	sk, err := h.session.AddSkill(resume.Skill(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sk)
}

func (h *DocumentHandler) RemoveSkill(c *gin.Context) {
	h.remove(c, h.session.RemoveSkill)
}

func (h *DocumentHandler) remove(c *gin.Context, fn func(id string) error) {
	if err := fn(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetSectionStyle 整体替换分区覆盖样式；空对象等同于重置。
func (h *DocumentHandler) SetSectionStyle(c *gin.Context) {
	id, ok := sectionParam(c)
	if !ok {
		return
	}
	var req style.SectionStyle
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.session.SetSectionStyle(id, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ResetSectionStyle 删除分区覆盖样式。
func (h *DocumentHandler) ResetSectionStyle(c *gin.Context) {
	id, ok := sectionParam(c)
	if !ok {
		return
	}
	if err := h.session.ResetSectionStyle(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// sectionParam 只接受某个布局会输出的分区标识。
func sectionParam(c *gin.Context) (style.SectionID, bool) {
	id := style.SectionID(c.Param("section"))
	for _, t := range []resume.TemplateID{resume.TemplateModern, resume.TemplateClassic, resume.TemplateCreative} {
		for _, known := range layout.Sections(t) {
			if known == id {
				return id, true
			}
		}
	}
	NotFound(c, "unknown section "+string(id))
	return "", false
}

// Import 接收导出文件并整体替换文档与（若携带）配置。失败时状态不变。
func (h *DocumentHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}
	if err := h.session.Import(body); err != nil {
		respondError(c, err)
		return
	}
	doc, cfg := h.session.Snapshot()
	c.JSON(http.StatusOK, gin.H{"document": doc, "config": cfg})
}

// Export 以附件形式返回 {...document, config}。
func (h *DocumentHandler) Export(c *gin.Context) {
	data, err := h.session.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cv.json"`)
	c.Data(http.StatusOK, "application/json", data)
}
