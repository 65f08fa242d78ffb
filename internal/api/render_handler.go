package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartCV/internal/api/middleware"
	"smartCV/internal/errcode"
	"smartCV/internal/layout"
	"smartCV/internal/metrics"
	"smartCV/internal/render"
	"smartCV/internal/resume"
	"smartCV/internal/session"
	"smartCV/internal/tasks"
	"smartCV/internal/worker"
)

// RenderHandler 负责预览渲染与 PDF 导出。
type RenderHandler struct {
	session *session.Session
	printer worker.Printer
	assets  AssetStore
	tasks   TaskEnqueuer
}

// NewRenderHandler 构造 RenderHandler。tasks 不为 nil 时 PDF 导出走异步队列。
func NewRenderHandler(s *session.Session, printer worker.Printer, assets AssetStore, enqueuer TaskEnqueuer) *RenderHandler {
	return &RenderHandler{session: s, printer: printer, assets: assets, tasks: enqueuer}
}

type sectionsURI struct {
	Template string `uri:"template" binding:"required,template"`
}

// Tree 返回当前文档的布局树。
func (h *RenderHandler) Tree(c *gin.Context) {
	doc, cfg := h.session.Snapshot()
	c.JSON(http.StatusOK, layout.Build(doc, cfg))
}

// HTML 返回可直接打印的页面，头像已内联。
func (h *RenderHandler) HTML(c *gin.Context) {
	doc, cfg := h.session.Snapshot()
	if err := inlineImages(c.Request.Context(), h.assets, doc); err != nil {
		respondError(c, err)
		return
	}
	page, err := render.Document(doc, cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// Sections 列出模板会输出的分区标识，以及当前文档中该模板不会读取的样式键。
func (h *RenderHandler) Sections(c *gin.Context) {
	var uri sectionsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		NotFound(c, "unknown template "+c.Param("template"))
		return
	}
	t := resume.TemplateID(uri.Template)
	c.JSON(http.StatusOK, gin.H{
		"template": t,
		"sections": layout.Sections(t),
		"orphans":  layout.Orphans(h.session.Document(), t),
	})
}

// ExportPDF 同步模式下直接返回 PDF；异步模式下投递任务并返回 202，
// 结果通过 /v1/ws 推送。同一时间只允许一个导出。
func (h *RenderHandler) ExportPDF(c *gin.Context) {
	release, err := h.session.BeginExport()
	if err != nil {
		respondError(c, err)
		return
	}
	defer release()

	ctx := c.Request.Context()
	log := middleware.LoggerFromContext(c)

	doc, cfg := h.session.Snapshot()
	if err := inlineImages(ctx, h.assets, doc); err != nil {
		respondError(c, err)
		return
	}

	if h.tasks != nil {
		bundle, err := resume.Encode(doc, cfg)
		if err != nil {
			respondError(c, err)
			return
		}
		correlationID := middleware.GetCorrelationID(c)
		task, err := tasks.NewPDFRenderTask(bundle, correlationID)
		if err != nil {
			Internal(c, "failed to create task")
			return
		}
		info, err := h.tasks.EnqueueContext(ctx, task)
		if err != nil {
			log.Error("enqueue pdf export failed", slog.Any("error", err))
			Internal(c, "failed to enqueue pdf export")
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"message":       "PDF export request accepted",
			"taskId":        info.ID,
			"correlationId": correlationID,
		})
		return
	}

	if h.printer == nil {
		Unavailable(c, "pdf export is not configured")
		return
	}
	page, err := render.Document(doc, cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	pdfBytes, err := h.printer.Print(ctx, page)
	metrics.ObserveExport("sync", err)
	if err != nil {
		log.Error("print pdf failed", slog.Any("error", err))
		Error(c, http.StatusInternalServerError, errcode.RenderFailed, "failed to render pdf")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+worker.Filename(doc)+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
