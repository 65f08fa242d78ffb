package api

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"smartCV/internal/api/middleware"
	"smartCV/internal/errcode"
	"smartCV/internal/session"
	"smartCV/internal/storage"
)

// AssetHandler 负责头像上传。
type AssetHandler struct {
	session  *session.Session
	assets   AssetStore
	scanner  Scanner
	maxBytes int64
}

// NewAssetHandler 返回 AssetHandler 实例。
func NewAssetHandler(s *session.Session, assets AssetStore, scanner Scanner, maxBytes int64) *AssetHandler {
	return &AssetHandler{session: s, assets: assets, scanner: scanner, maxBytes: maxBytes}
}

// UploadPhoto 扫描并保存头像，然后把对象 key 写入 personalInfo.imageUrl。
func (h *AssetHandler) UploadPhoto(c *gin.Context) {
	if h.assets == nil {
		Unavailable(c, "object storage is not configured")
		return
	}

	_, data, ok := readUpload(c, "file", h.maxBytes, h.scanner)
	if !ok {
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		Error(c, http.StatusUnsupportedMediaType, errcode.Unsupported, "unsupported image type "+contentType)
		return
	}

	objectKey := storage.PrefixAssets + uuid.NewString() + ext
	if _, err := h.assets.UploadFile(c.Request.Context(), objectKey, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		middleware.LoggerFromContext(c).Error("upload photo failed", slog.String("object_key", objectKey), slog.Any("error", err))
		Internal(c, "failed to upload file")
		return
	}

	previous := h.session.Document().PersonalInfo.ImageURL
	if err := h.session.UpdatePersonalInfo(session.PersonalInfoPatch{ImageURL: &objectKey}); err != nil {
		respondError(c, err)
		return
	}
	// 被替换的旧头像不再被任何文档引用
	if isValidAssetObjectKey(previous) && previous != objectKey {
		if err := h.assets.DeleteObject(c.Request.Context(), previous); err != nil {
			middleware.LoggerFromContext(c).Warn("delete replaced photo failed", slog.String("object_key", previous), slog.Any("error", err))
		}
	}
	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}
