package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartCV/internal/resume"
	"smartCV/internal/session"
	"smartCV/internal/table"
)

// TableHandler 处理自定义表格及其编辑会话。
type TableHandler struct {
	session  *session.Session
	scanner  Scanner
	maxBytes int64
}

// NewTableHandler 构造 TableHandler，scanner 为 nil 时不扫描上传的表格文件。
func NewTableHandler(s *session.Session, scanner Scanner, maxBytes int64) *TableHandler {
	return &TableHandler{session: s, scanner: scanner, maxBytes: maxBytes}
}

// tableOpRequest 描述对工作副本的一次修改。
type tableOpRequest struct {
	Op     string        `json:"op" binding:"required,oneof=addColumn removeColumn addRow removeRow updateHeader updateCell setTitle setStyles"`
	Index  int           `json:"index"`
	Row    int           `json:"row"`
	Col    int           `json:"col"`
	Value  string        `json:"value"`
	Styles *table.Styles `json:"styles"`
}

func (r tableOpRequest) apply(e *table.Editor) error {
	switch r.Op {
	case "addColumn":
		return e.AddColumn()
	case "removeColumn":
		return e.RemoveColumn(r.Index)
	case "addRow":
		return e.AddRow()
	case "removeRow":
		return e.RemoveRow(r.Index)
	case "updateHeader":
		return e.UpdateHeader(r.Index, r.Value)
	case "updateCell":
		return e.UpdateCell(r.Row, r.Col, r.Value)
	case "setTitle":
		return e.SetTitle(r.Value)
	case "setStyles":
		return e.SetStyles(r.Styles)
	}
	return &resume.ValidationError{Errors: []resume.FieldError{{Field: "op", Message: fmt.Sprintf("unknown op %q", r.Op)}}}
}

// AddTable 追加一张初始表格。
func (h *TableHandler) AddTable(c *gin.Context) {
	t, err := h.session.AddTable()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TableHandler) RemoveTable(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	if err := h.session.RemoveTable(index); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportWorkbook 读取上传 xlsx 的第一个工作表并追加为新表格。
func (h *TableHandler) ImportWorkbook(c *gin.Context) {
	file, data, ok := readUpload(c, "file", h.maxBytes, h.scanner)
	if !ok {
		return
	}
	t, err := h.session.ImportWorkbook(bytes.NewReader(data), file.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// BeginEdit 打开编辑会话，返回编辑 id 与工作副本。
func (h *TableHandler) BeginEdit(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	id, t, err := h.session.BeginTableEdit(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"editId": id, "table": t})
}

// ApplyOp 修改工作副本，文档不变。
func (h *TableHandler) ApplyOp(c *gin.Context) {
	var req tableOpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	t, err := h.session.EditTable(c.Param("edit"), req.apply)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Commit 把工作副本写回原位置；原表格已变化时返回 412。
func (h *TableHandler) Commit(c *gin.Context) {
	t, err := h.session.CommitTableEdit(c.Param("edit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TableHandler) Cancel(c *gin.Context) {
	if err := h.session.CancelTableEdit(c.Param("edit")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		BadRequest(c, "invalid table index")
		return 0, false
	}
	return index, true
}
