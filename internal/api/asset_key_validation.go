package api

import (
	"strings"
	"unicode/utf8"

	"smartCV/internal/storage"
)

const maxAssetKeyLen = 200

// imageExtensions 把允许的图片类型映射到对象扩展名。
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

func isAssetKey(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), storage.PrefixAssets)
}

func isValidAssetObjectKey(key string) bool {
	if key == "" || !utf8.ValidString(key) || len(key) > maxAssetKeyLen {
		return false
	}
	if !strings.HasPrefix(key, storage.PrefixAssets) {
		return false
	}
	if strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.Contains(key, "//") {
		return false
	}
	lower := strings.ToLower(key)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
