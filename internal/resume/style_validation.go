package resume

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"smartCV/internal/style"
)

// styleValidator 读取 style 包结构体上的 validate 标签，字段名取 json 名。
var styleValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// ValidateSectionStyle 检查覆盖样式的取值范围，与加载时的 schema 约束一致。
func ValidateSectionStyle(st style.SectionStyle) error {
	return validateStyle(st)
}

// ValidateImageStyle 检查头像边框样式，圆角为 0–50 的百分比。
func ValidateImageStyle(img style.ImageStyle) error {
	return validateStyle(img)
}

func validateStyle(v any) error {
	err := styleValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate style: %w", err)
	}
	out := &ValidationError{Errors: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: describeRule(fe)})
	}
	return out
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "is invalid"
}
