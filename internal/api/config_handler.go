package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartCV/internal/session"
)

// ConfigHandler 处理应用配置与配色方案。
type ConfigHandler struct {
	session *session.Session
}

// NewConfigHandler 构造 ConfigHandler。
func NewConfigHandler(s *session.Session) *ConfigHandler {
	return &ConfigHandler{session: s}
}

type createProfileRequest struct {
	Name string `json:"name" binding:"required,max=60"`
}

func (h *ConfigHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Config())
}

// UpdateConfig 合并配置补丁，非法取值返回 422 且配置不变。
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	var req session.ConfigPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if err := h.session.UpdateConfig(req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Config())
}

// ListProfiles 返回内置与用户方案，以及当前选中的方案 id。
func (h *ConfigHandler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items":    h.session.Profiles(),
		"activeId": h.session.Config().ActiveProfileID,
	})
}

// CreateProfile 把当前颜色保存为新方案。
func (h *ConfigHandler) CreateProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	id, err := h.session.CreateProfile(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *ConfigHandler) SelectProfile(c *gin.Context) {
	if err := h.session.SelectProfile(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Config())
}

// DeleteProfile 删除用户方案，内置方案返回 403。
func (h *ConfigHandler) DeleteProfile(c *gin.Context) {
	if err := h.session.DeleteProfile(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportProfiles 以附件形式返回用户方案数组。
func (h *ConfigHandler) ExportProfiles(c *gin.Context) {
	data, err := h.session.ExportProfiles()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="color-profiles.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ImportProfiles 追加文件中的方案，返回新增数量。
func (h *ConfigHandler) ImportProfiles(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "failed to read body")
		return
	}
	n, err := h.session.ImportProfiles(body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": n})
}
