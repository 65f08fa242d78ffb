package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartCV/internal/api/middleware"
	"smartCV/internal/errcode"
	"smartCV/internal/profile"
	"smartCV/internal/resume"
	"smartCV/internal/session"
	"smartCV/internal/table"
)

// errorBody 是所有失败响应的格式。
type errorBody struct {
	Code   int                 `json:"code"`
	Error  string              `json:"error"`
	Fields []resume.FieldError `json:"fields,omitempty"`
}

func Error(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Code: code, Error: msg})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.BadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.ResourceMissing, msg) }
func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, msg)
}
func Unavailable(c *gin.Context, msg string) {
	Error(c, http.StatusServiceUnavailable, errcode.Unavailable, msg)
}

// respondError 把领域错误映射为 HTTP 状态与错误码；未知错误记日志并返回 500。
func respondError(c *gin.Context, err error) {
	var (
		parseErr     *resume.ParseError
		validErr     *resume.ValidationError
		protectedErr *profile.ProtectedResourceError
		imageErr     *inlineImageError
	)
	switch {
	case errors.As(err, &parseErr):
		Error(c, http.StatusBadRequest, errcode.BadRequest, parseErr.Error())
	case errors.As(err, &validErr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorBody{
			Code:   errcode.Invalid,
			Error:  "validation failed",
			Fields: validErr.Errors,
		})
	case errors.As(err, &protectedErr):
		Error(c, http.StatusForbidden, errcode.Forbidden, protectedErr.Error())
	case errors.As(err, &imageErr):
		Error(c, http.StatusForbidden, errcode.Forbidden, imageErr.Error())
	case errors.Is(err, session.ErrBusy):
		Error(c, http.StatusConflict, errcode.Busy, err.Error())
	case errors.Is(err, table.ErrStaleEdit):
		Error(c, http.StatusPreconditionFailed, errcode.StaleEdit, err.Error())
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, session.ErrEditNotFound),
		errors.Is(err, table.ErrTableRange):
		NotFound(c, err.Error())
	case errors.Is(err, table.ErrUnreadableWorkbook):
		BadRequest(c, err.Error())
	case errors.Is(err, table.ErrLastColumn),
		errors.Is(err, table.ErrColumnRange),
		errors.Is(err, table.ErrRowRange),
		errors.Is(err, table.ErrEditorClosed),
		errors.Is(err, table.ErrEmptySheet):
		Error(c, http.StatusUnprocessableEntity, errcode.Invalid, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusRequestTimeout, errcode.SystemError, "request abandoned")
	default:
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
		Internal(c, "internal error")
	}
}
