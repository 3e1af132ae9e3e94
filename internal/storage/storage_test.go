package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/pkg/xerrors"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client, "test"), mr
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	builders := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"file": func(t *testing.T) Store {
			fs, err := NewFileStore(t.TempDir(), "default")
			require.NoError(t, err)
			return fs
		},
		"redis": func(t *testing.T) Store {
			rs, _ := newRedisStore(t)
			return rs
		},
	}

	for name, build := range builders {
		t.Run(name, func(t *testing.T) {
			s := build(t)

			_, ok, err := s.Get(ctx, "accessToken")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "accessToken", "tok1"))
			require.NoError(t, s.Set(ctx, "refreshToken", "tok2"))
			require.NoError(t, s.Set(ctx, "theme", "dark"))

			v, ok, err := s.Get(ctx, "accessToken")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok1", v)

			require.NoError(t, s.Delete(ctx, "accessToken", "refreshToken"))
			_, ok, _ = s.Get(ctx, "accessToken")
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, "refreshToken")
			assert.False(t, ok)

			v, ok, _ = s.Get(ctx, "theme")
			assert.True(t, ok)
			assert.Equal(t, "dark", v)

			// 删除不存在的 key 不报错
			require.NoError(t, s.Delete(ctx, "missing"))
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir, "Work Profile")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "theme", "light"))
	assert.Equal(t, filepath.Join(dir, "work_profile.json"), first.Path())

	info, err := os.Stat(first.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := NewFileStore(dir, "work profile")
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, "theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "light", v)
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.json"), []byte("{not json"), 0o600))

	fs, err := NewFileStore(dir, "")
	require.NoError(t, err)

	_, _, err = fs.Get(context.Background(), "theme")
	require.Error(t, err)
	var appErr *xerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, xerrors.CodeStorageError, appErr.Code)
}

func TestRedisStoreUsesPrefix(t *testing.T) {
	rs, mr := newRedisStore(t)
	require.NoError(t, rs.Set(context.Background(), "accessToken", "tok1"))

	got, err := mr.Get("test:accessToken")
	require.NoError(t, err)
	assert.Equal(t, "tok1", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	mr := miniredis.RunT(t)
	s, err = Open(ctx, Options{Backend: "redis", RedisAddr: mr.Addr(), Prefix: "p"})
	require.NoError(t, err)
	require.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.(*RedisStore).Close())

	_, err = Open(ctx, Options{Backend: "sqlite"})
	assert.Error(t, err)
}
