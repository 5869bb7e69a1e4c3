package service

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"classsync/internal/model"
	apperrors "classsync/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator 返回共享的校验器
// 与 gin 绑定共用 binding 标签，CLI 等非 HTTP 入口也走同一套规则
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		v.RegisterTagNameFunc(jsonFieldName)
		_ = RegisterValidations(v)
		validate = v
	})
	return validate
}

// RegisterValidations 注册自定义校验标签（gin 的 binding 引擎也需调用）
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("daytoken", func(fl validator.FieldLevel) bool {
		return model.DayToken(fl.Field().String()).Valid()
	})
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// validateStruct 校验请求结构体，失败时返回 *ValidationError，并以 sentinel 作为根因
func validateStruct(req interface{}, sentinel error) error {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(sentinel)
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Error: fe.Tag()})
	}
	return apperrors.NewValidationError(sentinel, fields...)
}
