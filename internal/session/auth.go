package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"shopfront/internal/pkg/log"
	"shopfront/internal/pkg/xerrors"
	"shopfront/internal/storage"
)

// AuthStore 登录会话。只有 SetAuth / ClearAuth / SetUser / SetLoading 可以修改状态
// （另有 API 客户端刷新令牌时的 UpdateTokens），
// 观察者在状态变更后按注册顺序同步调用（不持有锁）。
//
// 每次 SetAuth / ClearAuth 都会推进 epoch；UpdateTokens 只接受同一 epoch 内发起的刷新。
type AuthStore struct {
	store  storage.Store
	logger log.Logger
	now    func() time.Time

	// writeMu 串行化持久化写入，保证 ClearAuth 之后不会有旧刷新写回令牌
	writeMu sync.Mutex

	mu          sync.RWMutex
	state       Session
	epoch       uint64
	nextID      int
	observers   []authObserver
	beforeClear []authObserver
}

type authObserver struct {
	id int
	fn func(Session)
}

// MeFetcher 用当前令牌拉取用户信息
type MeFetcher func(ctx context.Context) (*User, error)

// NewAuthStore 创建会话，初始处于 loading，直到 Resolve 完成
func NewAuthStore(store storage.Store, logger log.Logger) *AuthStore {
	return &AuthStore{
		store:  store,
		logger: log.OrDefault(logger, "session"),
		now:    time.Now,
		state:  Session{IsLoading: true},
	}
}

// Snapshot 返回当前会话的副本
func (a *AuthStore) Snapshot() Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.clone()
}

// Resolve 从本地存储恢复会话：无令牌 -> 未登录；有令牌 -> 调用 fetchMe 确认。
// 401 视为令牌失效并清除；其他错误保留持久化的令牌，仅将内存状态置为未登录。
func (a *AuthStore) Resolve(ctx context.Context, fetchMe MeFetcher) error {
	a.SetLoading(true)

	access, _, err := a.store.Get(ctx, KeyAccessToken)
	if err != nil {
		a.finishUnauthenticated()
		return err
	}
	refresh, _, err := a.store.Get(ctx, KeyRefreshToken)
	if err != nil {
		a.finishUnauthenticated()
		return err
	}
	if access == "" && refresh == "" {
		a.finishUnauthenticated()
		return nil
	}

	a.update(func(s *Session) {
		s.AccessToken = access
		s.RefreshToken = refresh
	})

	user, err := fetchMe(ctx)
	if err != nil {
		if apiErr, ok := xerrors.AsAPIError(err); ok && apiErr.IsUnauthorized() {
			a.logger.InfoContext(ctx, "stored session rejected, clearing")
			return a.ClearAuth(ctx)
		}
		a.finishUnauthenticated()
		if xerrors.IsCanceled(err) {
			return err
		}
		a.logger.WarnContext(ctx, "session resolution failed", log.Err(err))
		return err
	}
	if user == nil {
		a.finishUnauthenticated()
		return xerrors.NewInvalidResponseError("/auth/me", errors.New("empty user"))
	}

	// fetchMe 期间令牌可能已被刷新，以内存中的最新值为准
	a.update(func(s *Session) {
		u := *user
		s.User = &u
		s.IsAuthenticated = s.AccessToken != ""
		s.IsLoading = false
	})
	return nil
}

// SetAuth 登录成功：先持久化令牌，再切换到已登录
func (a *AuthStore) SetAuth(ctx context.Context, user User, accessToken, refreshToken string) error {
	a.writeMu.Lock()
	if err := a.storeTokens(ctx, accessToken, refreshToken); err != nil {
		a.writeMu.Unlock()
		return err
	}
	snapshot, observers := a.apply(func(s *Session) {
		u := user
		s.User = &u
		s.AccessToken = accessToken
		s.RefreshToken = refreshToken
		s.IsAuthenticated = true
		s.IsLoading = false
		a.epoch++
	})
	a.writeMu.Unlock()

	notify(snapshot, observers)
	a.logger.InfoContext(ctx, "session established", log.String("user_id", user.ID), log.String("role", string(user.Role)))
	return nil
}

// ClearAuth 登出或刷新失败：先通知 OnBeforeClear（例如停止实时桥），再清空内存与存储
func (a *AuthStore) ClearAuth(ctx context.Context) error {
	a.mu.RLock()
	hooks := append([]authObserver(nil), a.beforeClear...)
	current := a.state.clone()
	a.mu.RUnlock()

	for _, h := range hooks {
		h.fn(current)
	}

	a.writeMu.Lock()
	snapshot, observers := a.apply(func(s *Session) {
		*s = Session{}
		a.epoch++
	})
	err := a.store.Delete(ctx, KeyAccessToken, KeyRefreshToken)
	a.writeMu.Unlock()

	notify(snapshot, observers)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to delete stored tokens", log.Err(err))
		return err
	}
	return nil
}

// SetUser 更新用户资料（例如修改昵称后）
func (a *AuthStore) SetUser(user User) {
	a.update(func(s *Session) {
		u := user
		s.User = &u
		s.IsLoading = false
		s.IsAuthenticated = s.AccessToken != ""
	})
}

// SetLoading 进入或退出 loading；loading 期间不视为已登录
func (a *AuthStore) SetLoading(loading bool) {
	a.update(func(s *Session) {
		s.IsLoading = loading
		if loading {
			s.IsAuthenticated = false
			return
		}
		s.IsAuthenticated = s.User != nil && s.AccessToken != ""
	})
}

// Subscribe 注册状态观察者，返回取消函数
func (a *AuthStore) Subscribe(fn func(Session)) (unsubscribe func()) {
	return a.register(&a.observers, fn)
}

// OnBeforeClear 注册在会话清空之前执行的回调（参数为清空前的快照）
func (a *AuthStore) OnBeforeClear(fn func(Session)) (remove func()) {
	return a.register(&a.beforeClear, fn)
}

// Reset 回到初始状态并移除所有观察者，不触碰本地存储
func (a *AuthStore) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = Session{IsLoading: true}
	a.observers = nil
	a.beforeClear = nil
}

// AccessToken 当前访问令牌
func (a *AuthStore) AccessToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.AccessToken
}

// RefreshToken 当前刷新令牌
func (a *AuthStore) RefreshToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.RefreshToken
}

// AccessTokenExpired 访问令牌是否已过期（无法解析时返回 false）
func (a *AuthStore) AccessTokenExpired() bool {
	return TokenExpired(a.AccessToken(), a.now())
}

// Epoch 当前会话代数，刷新开始前读取并交给 UpdateTokens
func (a *AuthStore) Epoch() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.epoch
}

// UpdateTokens 刷新成功后替换令牌，用户与登录状态保持不变。
// epoch 已变化（期间登出或重新登录）时不写入任何内容，返回 xerrors.ErrSessionChanged。
func (a *AuthStore) UpdateTokens(ctx context.Context, epoch uint64, accessToken, refreshToken string) error {
	a.writeMu.Lock()
	if a.Epoch() != epoch {
		a.writeMu.Unlock()
		return xerrors.ErrSessionChanged
	}
	if err := a.storeTokens(ctx, accessToken, refreshToken); err != nil {
		a.writeMu.Unlock()
		return err
	}
	snapshot, observers := a.apply(func(s *Session) {
		s.AccessToken = accessToken
		if refreshToken != "" {
			s.RefreshToken = refreshToken
		}
	})
	a.writeMu.Unlock()

	notify(snapshot, observers)
	return nil
}

// storeTokens 空的 refreshToken 表示保留原值
func (a *AuthStore) storeTokens(ctx context.Context, accessToken, refreshToken string) error {
	if err := a.store.Set(ctx, KeyAccessToken, accessToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	return a.store.Set(ctx, KeyRefreshToken, refreshToken)
}

func (a *AuthStore) finishUnauthenticated() {
	a.update(func(s *Session) {
		s.User = nil
		s.IsAuthenticated = false
		s.IsLoading = false
	})
}

func (a *AuthStore) update(mutate func(s *Session)) {
	notify(a.apply(mutate))
}

// apply 在锁内修改状态，返回快照与需要通知的观察者
func (a *AuthStore) apply(mutate func(s *Session)) (Session, []authObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	mutate(&a.state)
	return a.state.clone(), append([]authObserver(nil), a.observers...)
}

func notify(snapshot Session, observers []authObserver) {
	for _, o := range observers {
		o.fn(snapshot)
	}
}

func (a *AuthStore) register(list *[]authObserver, fn func(Session)) func() {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	*list = append(*list, authObserver{id: id, fn: fn})
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			for i, o := range *list {
				if o.id == id {
					*list = append((*list)[:i:i], (*list)[i+1:]...)
					return
				}
			}
		})
	}
}
