package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"smartCV/internal/errcode"
	"smartCV/internal/render"
	"smartCV/internal/resume"
	"smartCV/internal/storage"
	"smartCV/internal/tasks"
)

// Printer 把 HTML 打印成 PDF，*pdf.Generator 满足该接口。
type Printer interface {
	Print(ctx context.Context, html []byte) ([]byte, error)
}

// ObjectStore 是导出结果的存放位置，*storage.Client 满足该接口。
type ObjectStore interface {
	PutBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
}

// PDFTaskHandler 负责消费 PDF 导出任务。
type PDFTaskHandler struct {
	printer   Printer
	objects   ObjectStore
	publisher Publisher
	logger    *slog.Logger
	urlExpiry time.Duration
}

// NewPDFTaskHandler 创建任务处理器。
func NewPDFTaskHandler(printer Printer, objects ObjectStore, publisher Publisher, logger *slog.Logger, urlExpiry time.Duration) *PDFTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &PDFTaskHandler{
		printer:   printer,
		objects:   objects,
		publisher: publisher,
		logger:    logger,
		urlExpiry: urlExpiry,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	var payload tasks.PDFRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("unmarshal payload: %w", asynq.SkipRetry)
	}

	log := h.logger.With(slog.String("correlation_id", payload.CorrelationID))
	log.Info("pdf export task started")

	defer func() {
		if retErr == nil {
			return
		}
		// 不可重试的错误立即通知；其余等到最后一次重试
		if !errors.Is(retErr, asynq.SkipRetry) && !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := ExportNotifyMessage{
			Status:        StatusError,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.RenderFailed,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := PublishNotify(ctx, h.publisher, notify); err != nil {
			log.Error("publish pdf error notification failed", slog.Any("error", err))
		}
	}()

	bundle, err := resume.Decode(payload.Bundle)
	if err != nil {
		log.Error("decode export bundle failed", slog.Any("error", err))
		return fmt.Errorf("decode bundle: %v: %w", err, asynq.SkipRetry)
	}
	cfg := bundle.Config
	if cfg == nil {
		cfg = resume.DefaultConfig()
	}

	html, err := render.Document(&bundle.Document, cfg)
	if err != nil {
		log.Error("render html failed", slog.Any("error", err))
		return fmt.Errorf("render: %v: %w", err, asynq.SkipRetry)
	}

	pdfBytes, err := h.printer.Print(ctx, html)
	if err != nil {
		log.Error("print pdf failed", slog.Any("error", err))
		return err
	}

	objectKey := storage.PrefixExports + uuid.NewString() + ".pdf"
	if err := h.objects.PutBytes(ctx, objectKey, pdfBytes, "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	url, err := h.objects.GeneratePresignedURLWithParams(ctx, objectKey, h.urlExpiry, map[string]string{
		"response-content-disposition": `attachment; filename="` + Filename(&bundle.Document) + `"`,
	})
	if err != nil {
		log.Error("presign pdf url failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        StatusCompleted,
		ObjectKey:     objectKey,
		URL:           url,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := PublishNotify(ctx, h.publisher, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("pdf export task completed", slog.String("object_key", objectKey), slog.Int("bytes", len(pdfBytes)))
	return nil
}

// Filename 返回导出文件名，姓名中的空白替换为下划线。
func Filename(doc *resume.Document) string {
	name := strings.Join(strings.Fields(doc.PersonalInfo.FullName), "_")
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '/' || r == '\\' {
			return -1
		}
		return r
	}, name)
	if name == "" {
		return "CV.pdf"
	}
	return name + "_CV.pdf"
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
