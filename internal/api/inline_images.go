package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"smartCV/internal/resume"
	"smartCV/internal/storage"
)

// inlineImageError 表示头像引用了不合法的对象 key。
type inlineImageError struct {
	key string
}

func (e *inlineImageError) Error() string {
	return fmt.Sprintf("invalid image object key %q", e.key)
}

// inlineImages 把文档中指向对象存储的头像替换为 data URI，使渲染结果不依赖外部访问。
// 其他形式的 imageUrl 保持不变；未配置对象存储或对象已不存在时头像被省略。
func inlineImages(ctx context.Context, assets AssetStore, doc *resume.Document) error {
	key := strings.TrimSpace(doc.PersonalInfo.ImageURL)
	if !isAssetKey(key) {
		return nil
	}
	if !isValidAssetObjectKey(key) {
		return &inlineImageError{key: key}
	}
	if assets == nil {
		doc.PersonalInfo.ImageURL = ""
		return nil
	}

	data, err := assets.GetBytes(ctx, key)
	if storage.IsNoSuchKey(err) {
		doc.PersonalInfo.ImageURL = ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch image %s: %w", key, err)
	}
	contentType := http.DetectContentType(data)
	if _, ok := imageExtensions[contentType]; !ok {
		contentType = "image/png"
	}
	doc.PersonalInfo.ImageURL = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return nil
}
