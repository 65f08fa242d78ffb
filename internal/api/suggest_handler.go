package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartCV/internal/errcode"
	"smartCV/internal/session"
	"smartCV/internal/suggest"
)

// SuggestHandler 调用 AI 协作方：按图片推荐样式、润色文本。
type SuggestHandler struct {
	session  *session.Session
	maxBytes int64
}

// NewSuggestHandler 构造 SuggestHandler。
func NewSuggestHandler(s *session.Session, maxBytes int64) *SuggestHandler {
	return &SuggestHandler{session: s, maxBytes: maxBytes}
}

type improveTextRequest struct {
	Kind         suggest.TextKind `json:"kind" binding:"required,oneof=summary experience"`
	ExperienceID string           `json:"experienceId" binding:"required_if=Kind experience"`
}

// SuggestStyle 分析上传的 CV 图片并合并推荐结果。
// 协作方失败时仍返回兜底样式供展示，但 applied 为 false，配置不变。
func (h *SuggestHandler) SuggestStyle(c *gin.Context) {
	_, data, ok := readUpload(c, "image", h.maxBytes, nil)
	if !ok {
		return
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		Error(c, http.StatusUnsupportedMediaType, errcode.Unsupported, "image required")
		return
	}

	st, err := h.session.SuggestStyle(c.Request.Context(), suggest.Image{MIMEType: mimeType, Data: data})
	applied := err == nil
	if err != nil && !errors.Is(err, suggest.ErrUnavailable) {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestion": st, "applied": applied, "config": h.session.Config()})
}

// ImproveText 润色摘要或某条经历描述，只写回该字段。
func (h *SuggestHandler) ImproveText(c *gin.Context) {
	var req improveTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	text, err := h.session.ImproveText(c.Request.Context(), session.TextTarget{
		Kind:         req.Kind,
		ExperienceID: req.ExperienceID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}
