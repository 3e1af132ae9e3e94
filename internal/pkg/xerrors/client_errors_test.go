package xerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCanceled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "哨兵错误", err: ErrCanceled, want: true},
		{name: "包装的取消原因", err: Canceled(context.Canceled), want: true},
		{name: "context.Canceled", err: fmt.Errorf("do request: %w", context.Canceled), want: true},
		{name: "超时不是取消", err: context.DeadlineExceeded, want: false},
		{name: "APIError 不是取消", err: NewAPIError(http.StatusInternalServerError, "boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCanceled(tt.err))
		})
	}
}

func TestValidationErrorEnumeratesFields(t *testing.T) {
	err := &ValidationError{
		Operation: "cart.add",
		Fields: []FieldError{
			{Field: "variantId", Tag: "objectid", Message: "variantId must be a 24-character hex id"},
			{Field: "quantity", Tag: "gt", Message: "quantity must be greater than 0"},
		},
	}

	assert.True(t, err.Has("variantId"))
	assert.True(t, err.Has("quantity"))
	assert.False(t, err.Has("price"))
	assert.Equal(t, []string{"variantId", "quantity"}, err.FieldNames())
	assert.Contains(t, err.Error(), "variantId")
	assert.Contains(t, err.Error(), "quantity")
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, CodeInvalidParams, err.AsAppError().Code)
}

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantCode ErrorCode
		wantMsg  string
	}{
		{name: "401 空消息", status: http.StatusUnauthorized, wantCode: CodeAuthenticationFailed, wantMsg: "Unauthorized"},
		{name: "404 带消息", status: http.StatusNotFound, message: "Product not found", wantCode: CodeResourceNotFound, wantMsg: "Product not found"},
		{name: "409", status: http.StatusConflict, wantCode: CodeDuplicateResource, wantMsg: "Conflict"},
		{name: "503", status: http.StatusServiceUnavailable, wantCode: CodeServiceUnavailable, wantMsg: "Service Unavailable"},
		{name: "网络错误", status: 0, message: "network error", wantCode: CodeExternalServiceError, wantMsg: "network error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.status, tt.message)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil, "generic"))
	assert.Equal(t, "Out of stock", UserMessage(NewAPIError(http.StatusBadRequest, "Out of stock"), "generic"))
	assert.Equal(t, "boom", UserMessage(errors.New("boom"), "generic"))

	vErr := &ValidationError{Fields: []FieldError{{Field: "rating", Message: "rating must be at most 5"}}}
	assert.Equal(t, "rating must be at most 5", UserMessage(vErr, "generic"))
}

func TestWrapKeepsAppError(t *testing.T) {
	original := FromCode(CodeStorageError)
	wrapped := Wrap(fmt.Errorf("ctx: %w", original), CodeInternalError, "x")
	require.Same(t, original, wrapped)
	assert.Nil(t, Wrap(nil, CodeInternalError, "x"))

	plain := Wrap(errors.New("disk full"), CodeStorageError, "write failed")
	assert.Equal(t, CodeStorageError, plain.Code)
	assert.True(t, plain.IsRetryable() == false)
}
