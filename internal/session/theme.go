package session

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"shopfront/internal/pkg/xerrors"
	"shopfront/internal/storage"
)

// Theme 界面主题
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme 只接受 light / dark
func ParseTheme(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

// Opposite 另一个主题
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// DetectSystemTheme 根据终端的 COLORFGBG（"前景;背景"）推断系统偏好，背景色 0-6 或 8 视为深色
func DetectSystemTheme() Theme {
	raw := os.Getenv("COLORFGBG")
	if raw == "" {
		return ThemeLight
	}
	parts := strings.Split(raw, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return ThemeLight
	}
	if bg <= 6 || bg == 8 {
		return ThemeDark
	}
	return ThemeLight
}

// ThemeStore 主题偏好。未持久化时使用系统偏好，Toggle / Set 会写入存储。
type ThemeStore struct {
	store  storage.Store
	system Theme

	mu        sync.RWMutex
	current   Theme
	nextID    int
	observers []themeObserver
}

type themeObserver struct {
	id int
	fn func(Theme)
}

// NewThemeStore system 为空或非法时按 light 处理
func NewThemeStore(store storage.Store, system Theme) *ThemeStore {
	if _, ok := ParseTheme(string(system)); !ok {
		system = ThemeLight
	}
	return &ThemeStore{
		store:   store,
		system:  system,
		current: system,
	}
}

// Resolve 读取持久化的偏好；缺失或非法时回落到系统偏好
func (t *ThemeStore) Resolve(ctx context.Context) (Theme, error) {
	raw, ok, err := t.store.Get(ctx, KeyTheme)
	if err != nil {
		t.set(t.system)
		return t.system, err
	}
	theme, valid := ParseTheme(raw)
	if !ok || !valid {
		theme = t.system
	}
	t.set(theme)
	return theme, nil
}

// Current 当前主题
func (t *ThemeStore) Current() Theme {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Toggle 在 light / dark 之间切换并持久化
func (t *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	next := t.Current().Opposite()
	if err := t.Set(ctx, next); err != nil {
		return t.Current(), err
	}
	return next, nil
}

// Set 设置并持久化主题
func (t *ThemeStore) Set(ctx context.Context, theme Theme) error {
	parsed, ok := ParseTheme(string(theme))
	if !ok {
		return &xerrors.ValidationError{
			Operation: "theme.set",
			Fields: []xerrors.FieldError{{
				Field:   "theme",
				Tag:     "oneof",
				Param:   "light dark",
				Message: "theme must be one of: light dark",
			}},
		}
	}
	if err := t.store.Set(ctx, KeyTheme, string(parsed)); err != nil {
		return err
	}
	t.set(parsed)
	return nil
}

// Subscribe 主题变更观察者
func (t *ThemeStore) Subscribe(fn func(Theme)) (unsubscribe func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.observers = append(t.observers, themeObserver{id: id, fn: fn})
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, o := range t.observers {
			if o.id == id {
				t.observers = append(t.observers[:i:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Reset 回到系统偏好并移除观察者，不触碰存储
func (t *ThemeStore) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = t.system
	t.observers = nil
}

func (t *ThemeStore) set(theme Theme) {
	t.mu.Lock()
	changed := t.current != theme
	t.current = theme
	var fns []func(Theme)
	if changed {
		for _, o := range t.observers {
			fns = append(fns, o.fn)
		}
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(theme)
	}
}
