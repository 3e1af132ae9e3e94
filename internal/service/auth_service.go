// Package service 每个资源一个服务：先校验输入，再调用 API 客户端，返回解包后的 data / message。
// 服务不捕获传输错误，校验错误总是在任何请求之前返回。
package service

import (
	"context"
	"net/http"

	"shopfront/internal/apiclient"
	"shopfront/internal/pkg/ctxkey"
	"shopfront/internal/session"
	"shopfront/internal/validation"
)

// withOp 标记逻辑操作名，校验错误与日志会带上它
func withOp(ctx context.Context, operation string) context.Context {
	return ctxkey.WithOperation(ctx, operation)
}

// AuthService 认证服务
type AuthService struct {
	client *apiclient.Client
}

// NewAuthService 创建认证服务
func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client}
}

// Login 登录。401 代表凭证错误，不触发刷新。
func (s *AuthService) Login(ctx context.Context, in validation.LoginInput) (AuthResult, error) {
	ctx = withOp(ctx, "auth.login")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return AuthResult{}, err
	}
	return apiclient.Do[AuthResult](ctx, s.client, http.MethodPost, "/auth/login", in,
		apiclient.WithoutAuth(), apiclient.WithoutRefresh())
}

// Register 注册
func (s *AuthService) Register(ctx context.Context, in validation.RegisterInput) (AuthResult, error) {
	ctx = withOp(ctx, "auth.register")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return AuthResult{}, err
	}
	body := struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Phone    string `json:"phone,omitempty"`
	}{in.Name, in.Email, in.Password, in.Phone}
	return apiclient.Do[AuthResult](ctx, s.client, http.MethodPost, "/auth/register", body,
		apiclient.WithoutAuth(), apiclient.WithoutRefresh())
}

// Me 当前登录用户，可直接作为 session.MeFetcher
func (s *AuthService) Me(ctx context.Context) (*session.User, error) {
	ctx = withOp(ctx, "auth.me")
	user, err := apiclient.Do[session.User](ctx, s.client, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile 修改个人资料
func (s *AuthService) UpdateProfile(ctx context.Context, in validation.UpdateProfileInput) (session.User, error) {
	ctx = withOp(ctx, "auth.update_profile")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return session.User{}, err
	}
	return apiclient.Do[session.User](ctx, s.client, http.MethodPut, "/auth/profile", in)
}

// Logout 注销服务端的刷新令牌
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (string, error) {
	ctx = withOp(ctx, "auth.logout")
	body := map[string]string{}
	if refreshToken != "" {
		body["refreshToken"] = refreshToken
	}
	return apiclient.DoMessage(ctx, s.client, http.MethodPost, "/auth/logout", body, apiclient.WithoutRefresh())
}

// RefreshTokens 显式调用刷新接口，只返回新令牌，不写入会话。
// 401 时的自动刷新由 apiclient 内部完成，不经过这里。
func (s *AuthService) RefreshTokens(ctx context.Context, in validation.RefreshInput) (apiclient.TokenPair, error) {
	ctx = withOp(ctx, "auth.refresh")
	in, err := validation.ParseContext(ctx, in)
	if err != nil {
		return apiclient.TokenPair{}, err
	}
	return apiclient.Do[apiclient.TokenPair](ctx, s.client, http.MethodPost, "/auth/refresh", in,
		apiclient.WithoutAuth())
}
