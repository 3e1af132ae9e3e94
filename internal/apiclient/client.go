// Package apiclient 远端 REST API 的 HTTP 客户端：令牌注入、401 刷新重试、错误归一化、GET 合并
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"shopfront/internal/pkg/i18n"
	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/metrics"
	"shopfront/internal/pkg/trace"
	"shopfront/internal/pkg/xerrors"
)

// TokenStore 令牌来源，由会话实现
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	AccessTokenExpired() bool
	// Epoch 登录或登出时变化，用来识别过期的刷新结果
	Epoch() uint64
	UpdateTokens(ctx context.Context, epoch uint64, accessToken, refreshToken string) error
	ClearAuth(ctx context.Context) error
}

// Options 客户端配置
type Options struct {
	BaseURL string
	// Timeout 为 0 时不设置截止时间
	Timeout     time.Duration
	RefreshPath string
	HTTPClient  *http.Client
	Tokens      TokenStore
	Logger      log.Logger
	Metrics     *metrics.ClientMetrics

	// RateLimit 每秒请求数，0 表示不限流
	RateLimit float64
	RateBurst int

	// BreakerMaxFailures 连续失败多少次后熔断，0 表示不启用
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// RawResponse 一次成功往返（2xx）的原始响应
type RawResponse struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client API 客户端
type Client struct {
	baseURL     string
	refreshPath string
	httpClient  *http.Client
	tokens      TokenStore
	logger      log.Logger
	metrics     *metrics.ClientMetrics
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker

	refreshGroup singleflight.Group
	queue        *requestQueue
}

// errServerFailure 标记 5xx，让熔断器计入失败但仍保留响应体
var errServerFailure = errors.New("server failure")

// New 创建客户端
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, xerrors.New(xerrors.CodeInvalidParams, "api base url is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	refreshPath := opts.RefreshPath
	if refreshPath == "" {
		refreshPath = "/auth/refresh"
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.Default()
	}

	c := &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		refreshPath: refreshPath,
		httpClient:  httpClient,
		tokens:      opts.Tokens,
		logger:      log.OrDefault(opts.Logger, "apiclient"),
		metrics:     m,
		queue:       newRequestQueue(),
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	if opts.BreakerMaxFailures > 0 {
		c.breaker = newBreaker(opts.BreakerMaxFailures, opts.BreakerOpenTimeout, c.logger)
	}

	return c, nil
}

// Request 发送请求并返回 2xx 响应。
// 失败时返回 *xerrors.APIError；ctx 被取消时返回 xerrors.ErrCanceled（不是 APIError）。
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*RawResponse, error) {
	if err := ctx.Err(); err != nil && errors.Is(err, context.Canceled) {
		return nil, xerrors.Canceled(err)
	}
	ro := buildOptions(opts)
	ctx, _ = trace.Ensure(ctx)

	var payload []byte
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, xerrors.NewWithError(xerrors.CodeInternalError, "encode request body", err)
		}
		payload = buf
	}

	canRefresh := c.tokens != nil && !ro.noRefresh && !ro.noAuth && !c.isRefreshPath(path)

	// 访问令牌已过期时先刷新，省去一次必然的 401
	if canRefresh && c.tokens.RefreshToken() != "" && c.tokens.AccessTokenExpired() {
		if err := c.refresh(ctx, c.tokens.Epoch(), c.tokens.AccessToken()); err != nil && xerrors.IsCanceled(err) {
			return nil, err
		}
	}

	var epoch uint64
	if canRefresh {
		epoch = c.tokens.Epoch()
	}
	raw, usedToken, err := c.attempt(ctx, method, path, payload, ro)
	if err != nil {
		return nil, err
	}

	if raw.StatusCode == http.StatusUnauthorized && canRefresh {
		original := parseErrorBody(raw)

		// 请求期间已登出或换了账号：不刷新也不重试
		if c.tokens.Epoch() != epoch {
			return nil, original
		}

		// 其他请求已经完成刷新时直接重试
		if c.tokens.AccessToken() == usedToken || usedToken == "" {
			if err := c.refresh(ctx, epoch, usedToken); err != nil {
				if xerrors.IsCanceled(err) {
					return nil, err
				}
				return nil, original
			}
		}

		raw, _, err = c.attempt(ctx, method, path, payload, ro)
		if err != nil {
			return nil, err
		}
	}

	if raw.StatusCode < 200 || raw.StatusCode > 299 {
		return nil, parseErrorBody(raw)
	}
	return raw, nil
}

// attempt 发送一次 HTTP 请求；非 2xx 也作为 RawResponse 返回，由调用方分类
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, ro requestOptions) (*RawResponse, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
				return nil, "", xerrors.Canceled(ctxErr)
			}
			return nil, "", xerrors.NewNetworkError(err)
		}
	}

	req, err := c.newRequest(ctx, method, path, payload, ro)
	if err != nil {
		return nil, "", xerrors.NewWithError(xerrors.CodeInternalError, "build request", err)
	}
	token := ""
	if !ro.noAuth && c.tokens != nil {
		token = c.tokens.AccessToken()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	c.metrics.IncInFlight()
	raw, err := c.execute(req, method, path)
	c.metrics.DecInFlight()
	duration := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			c.logger.DebugContext(ctx, "api request canceled", log.String("method", method), log.String("path", path))
			return nil, "", xerrors.Canceled(ctxErr)
		}
		c.metrics.RecordRequest(path, method, 0, duration)
		log.LogAPIRequest(ctx, c.logger, method, path, 0, duration.Milliseconds())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			apiErr := xerrors.NewAPIError(http.StatusServiceUnavailable, i18n.GetErrorMessage(xerrors.CodeServiceUnavailable, i18n.GetLanguage(ctx)))
			apiErr.Method, apiErr.Path, apiErr.Err = method, path, err
			return nil, "", apiErr
		}
		apiErr := xerrors.NewNetworkError(err)
		apiErr.Method, apiErr.Path = method, path
		return nil, "", apiErr
	}

	c.metrics.RecordRequest(path, method, raw.StatusCode, duration)
	log.LogAPIRequest(ctx, c.logger, method, path, raw.StatusCode, duration.Milliseconds())
	return raw, token, nil
}

// execute 通过熔断器（如果启用）发送请求并读取响应体
func (c *Client) execute(req *http.Request, method, path string) (*RawResponse, error) {
	roundTrip := func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		raw := &RawResponse{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return raw, errServerFailure
		}
		return raw, nil
	}

	var (
		result interface{}
		err    error
	)
	if c.breaker != nil {
		result, err = c.breaker.Execute(roundTrip)
	} else {
		result, err = roundTrip()
	}

	raw, _ := result.(*RawResponse)
	if errors.Is(err, errServerFailure) {
		return raw, nil
	}
	return raw, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte, ro requestOptions) (*http.Request, error) {
	target := c.baseURL + path
	if len(ro.query) > 0 {
		target += "?" + ro.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept-Language", i18n.GetLanguageCode(i18n.GetLanguage(ctx)))
	trace.Inject(req, trace.GetTraceID(ctx))
	for k, vs := range ro.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

// ctxError 取消 -> ErrCanceled；调用方设置的截止时间到期 -> 网络错误
func ctxError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.Canceled) {
		return xerrors.Canceled(err)
	}
	return xerrors.NewNetworkError(err)
}

func (c *Client) isRefreshPath(path string) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path == c.refreshPath
}

// Do 发送请求并返回信封中的 data
func Do[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (T, error) {
	var zero T
	raw, err := c.Request(ctx, method, path, body, opts...)
	if err != nil {
		return zero, err
	}
	env, err := DecodeEnvelope[T](raw)
	if err != nil {
		return zero, err
	}
	return env.Data, nil
}

// DoList 发送请求并返回列表与分页
func DoList[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (Page[T], error) {
	raw, err := c.Request(ctx, method, path, body, opts...)
	if err != nil {
		return Page[T]{}, err
	}
	env, err := DecodeList[T](raw)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: env.Data, Pagination: env.Pagination}, nil
}

// DoMessage 发送请求并返回 message
func DoMessage(ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (string, error) {
	raw, err := c.Request(ctx, method, path, body, opts...)
	if err != nil {
		return "", err
	}
	env, err := DecodeMessage(raw)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
