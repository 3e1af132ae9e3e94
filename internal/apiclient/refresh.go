package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/xerrors"
)

// TokenPair 刷新接口返回的令牌
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

var errNoRefreshToken = errors.New("no refresh token")

// refresh 用刷新令牌换取新令牌。epoch 为发起请求时的会话代数，staleAccess 为触发刷新时使用的访问令牌。
// 并发调用共享同一次刷新；失败时清空会话（会话已变化时不动它）。
// 刷新本身不受单个调用方取消的影响，调用方取消只让自己提前返回。
func (c *Client) refresh(ctx context.Context, epoch uint64, staleAccess string) error {
	refreshToken := c.tokens.RefreshToken()
	if refreshToken == "" {
		c.metrics.IncRefresh("skipped")
		c.clearIfCurrent(ctx, epoch)
		return errNoRefreshToken
	}

	ch := c.refreshGroup.DoChan(refreshToken, func() (any, error) {
		// 上一轮刷新已经换过令牌
		if staleAccess != "" && c.tokens.AccessToken() != staleAccess {
			return nil, nil
		}
		return nil, c.doRefresh(context.WithoutCancel(ctx), epoch, refreshToken)
	})

	select {
	case <-ctx.Done():
		return ctxError(ctx)
	case res := <-ch:
		return res.Err
	}
}

func (c *Client) doRefresh(ctx context.Context, epoch uint64, refreshToken string) error {
	payload, _ := json.Marshal(map[string]string{"refreshToken": refreshToken})
	raw, _, err := c.attempt(ctx, http.MethodPost, c.refreshPath, payload, requestOptions{noAuth: true})
	if err == nil && (raw.StatusCode < 200 || raw.StatusCode > 299) {
		err = parseErrorBody(raw)
	}

	var pair TokenPair
	if err == nil {
		var env Envelope[TokenPair]
		env, err = DecodeEnvelope[TokenPair](raw)
		pair = env.Data
		if err == nil && pair.AccessToken == "" {
			err = invalidResponse(raw, errors.New("refresh returned empty access token"))
		}
	}

	if err != nil {
		c.metrics.IncRefresh("failed")
		c.logger.WarnContext(ctx, "token refresh failed, clearing session", log.Err(err))
		c.clearIfCurrent(ctx, epoch)
		return err
	}

	if err := c.tokens.UpdateTokens(ctx, epoch, pair.AccessToken, pair.RefreshToken); err != nil {
		if errors.Is(err, xerrors.ErrSessionChanged) {
			c.metrics.IncRefresh("discarded")
			c.logger.DebugContext(ctx, "session changed during refresh, discarding tokens")
			return err
		}
		c.metrics.IncRefresh("failed")
		return err
	}
	c.metrics.IncRefresh("success")
	c.logger.DebugContext(ctx, "token refreshed")
	return nil
}

// clearIfCurrent 只清除发起刷新的那一代会话
func (c *Client) clearIfCurrent(ctx context.Context, epoch uint64) {
	if c.tokens.Epoch() != epoch {
		return
	}
	if err := c.tokens.ClearAuth(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear session", log.Err(err))
	}
}
