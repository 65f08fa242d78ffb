package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"

	"smartCV/internal/errcode"
)

// ErrInfected 表示上传文件未通过病毒扫描。
var ErrInfected = errors.New("malicious file detected")

// Scanner 在文件落盘或解析前扫描上传内容。
type Scanner interface {
	Scan(r io.Reader) error
}

// ClamdScanner 通过 clamd 的 INSTREAM 命令扫描。
type ClamdScanner struct {
	client *clamd.Clamd
}

// NewClamdScanner 返回 ClamdScanner；address 为空时返回 nil，表示不扫描。
func NewClamdScanner(address string) Scanner {
	if address == "" {
		return nil
	}
	return &ClamdScanner{client: clamd.NewClamd(address)}
}

func (s *ClamdScanner) Scan(r io.Reader) error {
	abort := make(chan bool)
	defer close(abort)

	results, err := s.client.ScanStream(r, abort)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	for result := range results {
		switch result.Status {
		case clamd.RES_OK:
		case clamd.RES_FOUND:
			return fmt.Errorf("%w: %s", ErrInfected, result.Description)
		default:
			return fmt.Errorf("scan failed: %s", result.Raw)
		}
	}
	return nil
}

// readUpload 读取 multipart 字段 field 的全部内容，超限或扫描失败时直接写响应并返回 false。
func readUpload(c *gin.Context, field string, maxBytes int64, scanner Scanner) (*multipart.FileHeader, []byte, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		BadRequest(c, "missing file")
		return nil, nil, false
	}
	if maxBytes > 0 && file.Size > maxBytes {
		Error(c, http.StatusRequestEntityTooLarge, errcode.TooLarge, "file too large")
		return nil, nil, false
	}

	f, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return nil, nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		Internal(c, "failed to read file")
		return nil, nil, false
	}

	if scanner != nil {
		if err := scanner.Scan(bytes.NewReader(data)); err != nil {
			if errors.Is(err, ErrInfected) {
				BadRequest(c, ErrInfected.Error())
				return nil, nil, false
			}
			_ = c.Error(err)
			Internal(c, "failed to scan file")
			return nil, nil, false
		}
	}
	return file, data, true
}
