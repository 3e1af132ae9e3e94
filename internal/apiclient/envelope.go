package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"shopfront/internal/pkg/xerrors"
)

// Pagination 列表响应的分页信息
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext 是否还有下一页
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Envelope 单个资源的响应信封
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ListEnvelope 列表响应信封，pagination 必须存在
type ListEnvelope[T any] struct {
	Success    bool       `json:"success"`
	Data       []T        `json:"data"`
	Message    string     `json:"message,omitempty"`
	Pagination Pagination `json:"pagination"`
}

// MessageEnvelope 只有消息的响应
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Page 解包后的列表结果
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// errorBody 非 2xx 响应体
type errorBody struct {
	Success    *bool  `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// rawEnvelope 用于检查字段是否存在
type rawEnvelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Pagination json.RawMessage `json:"pagination"`
}

var (
	errMissingSuccess    = errors.New("envelope has no success flag")
	errMissingData       = errors.New("envelope has no data")
	errMissingPagination = errors.New("list envelope has no pagination")
)

// DecodeEnvelope 解析单资源信封：success=true 时 data 必须存在
func DecodeEnvelope[T any](raw *RawResponse) (Envelope[T], error) {
	var env Envelope[T]
	head, err := inspect(raw)
	if err != nil {
		return env, err
	}
	if isNull(head.Data) {
		return env, invalidResponse(raw, errMissingData)
	}
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		return env, invalidResponse(raw, fmt.Errorf("decode data: %w", err))
	}
	return env, nil
}

// DecodeList 解析列表信封：data 必须是数组且 pagination 必须存在
func DecodeList[T any](raw *RawResponse) (ListEnvelope[T], error) {
	var env ListEnvelope[T]
	head, err := inspect(raw)
	if err != nil {
		return env, err
	}
	if isNull(head.Data) {
		return env, invalidResponse(raw, errMissingData)
	}
	if isNull(head.Pagination) {
		return env, invalidResponse(raw, errMissingPagination)
	}
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		return env, invalidResponse(raw, fmt.Errorf("decode list: %w", err))
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return env, nil
}

// DecodeMessage 解析只有消息的信封
func DecodeMessage(raw *RawResponse) (MessageEnvelope, error) {
	head, err := inspect(raw)
	if err != nil {
		return MessageEnvelope{}, err
	}
	return MessageEnvelope{Success: true, Message: head.Message}, nil
}

// inspect 检查公共部分；2xx 却带 success=false 违反约定，按传输错误处理
func inspect(raw *RawResponse) (rawEnvelope, error) {
	var head rawEnvelope
	if err := json.Unmarshal(raw.Body, &head); err != nil {
		return head, invalidResponse(raw, fmt.Errorf("decode envelope: %w", err))
	}
	if head.Success == nil {
		return head, invalidResponse(raw, errMissingSuccess)
	}
	if !*head.Success {
		apiErr := xerrors.NewAPIError(raw.StatusCode, head.Message)
		apiErr.Code = xerrors.CodeInvalidResponse
		apiErr.Method, apiErr.Path = raw.Method, raw.Path
		return head, apiErr
	}
	return head, nil
}

func invalidResponse(raw *RawResponse, cause error) *xerrors.APIError {
	apiErr := xerrors.NewAPIError(raw.StatusCode, "unexpected response from server")
	apiErr.Code = xerrors.CodeInvalidResponse
	apiErr.Method, apiErr.Path = raw.Method, raw.Path
	apiErr.Err = xerrors.NewInvalidResponseError(raw.Path, cause)
	return apiErr
}

// parseErrorBody 非 2xx：优先使用响应体中的 message，否则使用状态文本
func parseErrorBody(raw *RawResponse) *xerrors.APIError {
	var body errorBody
	_ = json.Unmarshal(raw.Body, &body)
	apiErr := xerrors.NewAPIError(raw.StatusCode, body.Message)
	apiErr.Method, apiErr.Path = raw.Method, raw.Path
	return apiErr
}

func isNull(msg json.RawMessage) bool {
	trimmed := bytes.TrimSpace(msg)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
