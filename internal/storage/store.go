// Package storage 保存客户端需要跨进程保留的少量键值（令牌、主题偏好）
package storage

import (
	"context"
	"fmt"
	"strings"

	"shopfront/internal/pkg/xerrors"
)

// Store 本地持久化存储
type Store interface {
	// Get 读取 key；不存在时 ok 为 false 且 err 为 nil
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Options 根据配置选择后端
type Options struct {
	Backend       string // file | redis | memory
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
}

// Open 按 Backend 创建对应的 Store
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "file":
		fs, err := NewFileStore(opts.Dir, opts.Prefix)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "redis":
		rs, err := NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, xerrors.New(xerrors.CodeInvalidParams, fmt.Sprintf("unknown storage backend %q", opts.Backend))
	}
}
