package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_UnwrapMatchesSentinel(t *testing.T) {
	sentinel := errors.New("宿題名を入力してください")
	err := fmt.Errorf("创建宿题: %w", NewValidationError(sentinel, FieldError{Field: "title", Error: "required"}))

	if !errors.Is(err, sentinel) {
		t.Error("期望 errors.Is 能匹配到哨兵错误")
	}
	if !IsValidation(err) {
		t.Error("期望 IsValidation=true")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("期望 errors.As 成功")
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "title" {
		t.Errorf("字段错误不符: %+v", ve.Fields)
	}
}

func TestValidationError_NilErrHasMessage(t *testing.T) {
	err := NewValidationError(nil)
	if err.Error() == "" {
		t.Error("空 Err 时仍应返回提示文字")
	}
}

func TestIsValidation_PlainError(t *testing.T) {
	if IsValidation(ErrNotFound) {
		t.Error("ErrNotFound 不是校验错误")
	}
}
