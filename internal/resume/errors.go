package resume

import (
	"fmt"
	"strings"
)

// ParseError 表示输入不是合法 JSON。
type ParseError struct {
	// Offset 是出错的字节位置，未知时为 0。
	Offset int64
	Cause  error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("parse error at byte %d: %v", e.Offset, e.Cause)
	}
	return fmt.Sprintf("parse error: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// FieldError 是某个字段上的校验错误。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 表示 JSON 合法但结构不符合文档要求。
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for i, fe := range e.Errors {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}
