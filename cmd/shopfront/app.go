package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"shopfront/internal/apiclient"
	"shopfront/internal/pkg/config"
	"shopfront/internal/pkg/i18n"
	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/metrics"
	"shopfront/internal/pkg/xerrors"
	"shopfront/internal/realtime"
	"shopfront/internal/service"
	"shopfront/internal/session"
	"shopfront/internal/storage"
)

var errNotLoggedIn = xerrors.New(xerrors.CodeAuthenticationFailed, "Not logged in. Run `shopfront login` first.")

// app 一次命令执行期间共享的依赖
type app struct {
	cfg      *config.Config
	logger   log.Logger
	store    storage.Store
	auth     *session.AuthStore
	theme    *session.ThemeStore
	client   *apiclient.Client
	svc      *service.Container
	metrics  *metrics.ClientMetrics
	registry *prometheus.Registry
}

func newApp(ctx context.Context, cfgPath string, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log.InitWithWriter(stderr, log.ParseLevel(cfg.Log.Level), cfg.Env)
	logger := log.GetLogger().With("component", "cli")
	logger.Debug("config loaded", log.Any("config", cfg.LogFields()))

	store, err := storage.Open(ctx, storage.Options{
		Backend:       cfg.Storage.Backend,
		Dir:           cfg.Storage.Dir,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		Prefix:        cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(cfg.Metrics.Namespace, registry)

	auth := session.NewAuthStore(store, logger)
	system := session.DetectSystemTheme()
	if t, ok := session.ParseTheme(cfg.UI.SystemTheme); ok {
		system = t
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:            cfg.API.BaseURL,
		Timeout:            cfg.API.Timeout,
		RefreshPath:        cfg.API.RefreshPath,
		Tokens:             auth,
		Logger:             logger,
		Metrics:            m,
		RateLimit:          cfg.API.RateLimit,
		RateBurst:          cfg.API.RateBurst,
		BreakerMaxFailures: cfg.API.Breaker.MaxFailures,
		BreakerOpenTimeout: cfg.API.Breaker.OpenTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		auth:     auth,
		theme:    session.NewThemeStore(store, system),
		client:   client,
		svc:      service.NewContainer(client),
		metrics:  m,
		registry: registry,
	}, nil
}

// Close 释放存储连接
func (a *app) Close() {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Warn("close storage failed", log.Err(err))
		}
	}
}

// withLanguage 按配置注入消息语言
func (a *app) withLanguage(ctx context.Context) context.Context {
	return i18n.WithLanguage(ctx, i18n.ParseLanguageCode(a.cfg.UI.Language))
}

// resolve 从存储恢复会话。401 会清除令牌，其他失败原样返回。
func (a *app) resolve(ctx context.Context) (session.Session, error) {
	if err := a.auth.Resolve(ctx, a.svc.Auth.Me); err != nil {
		return a.auth.Snapshot(), err
	}
	return a.auth.Snapshot(), nil
}

// requireLogin 恢复会话，未登录时返回 errNotLoggedIn
func (a *app) requireLogin(ctx context.Context) (session.Session, error) {
	s, err := a.resolve(ctx)
	if err != nil {
		return s, err
	}
	if !s.IsAuthenticated {
		return s, errNotLoggedIn
	}
	return s, nil
}

// openSource 按配置连接实时通道
func (a *app) openSource(ctx context.Context) (realtime.Source, error) {
	rt := a.cfg.Realtime
	switch rt.Transport {
	case "nats":
		src, err := realtime.ConnectNATS(realtime.NATSOptions{
			URL:           rt.URL,
			SubjectPrefix: rt.SubjectPrefix,
			Name:          "shopfront-cli",
			Logger:        a.logger,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	case "websocket":
		header := http.Header{}
		if token := a.auth.AccessToken(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
		src, err := realtime.DialWebSocket(ctx, realtime.WebSocketOptions{
			URL:    rt.URL,
			Header: header,
			Logger: a.logger,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, xerrors.New(xerrors.CodeInvalidParams, "realtime transport is disabled; set realtime.transport to nats or websocket")
	}
}
