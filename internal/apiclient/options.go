package apiclient

import (
	"net/http"
	"net/url"
)

// RequestOption 单次请求的可选参数
type RequestOption func(*requestOptions)

type requestOptions struct {
	query     url.Values
	header    http.Header
	noRefresh bool
	noAuth    bool
}

func buildOptions(opts []RequestOption) requestOptions {
	ro := requestOptions{query: url.Values{}, header: http.Header{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&ro)
		}
	}
	return ro
}

// WithQuery 追加查询参数
func WithQuery(q url.Values) RequestOption {
	return func(ro *requestOptions) {
		for k, vs := range q {
			for _, v := range vs {
				ro.query.Add(k, v)
			}
		}
	}
}

// WithParam 追加单个查询参数
func WithParam(key, value string) RequestOption {
	return func(ro *requestOptions) {
		ro.query.Add(key, value)
	}
}

// WithHeader 追加请求头
func WithHeader(key, value string) RequestOption {
	return func(ro *requestOptions) {
		ro.header.Set(key, value)
	}
}

// WithoutRefresh 401 时不尝试刷新（登录、登出等）
func WithoutRefresh() RequestOption {
	return func(ro *requestOptions) {
		ro.noRefresh = true
	}
}

// WithoutAuth 不附带 Authorization 头
func WithoutAuth() RequestOption {
	return func(ro *requestOptions) {
		ro.noAuth = true
	}
}
