package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"shopfront/internal/pkg/xerrors"
)

// FileStore 将所有键值保存在一个 JSON 文件中（权限 0600），内存中保留副本
type FileStore struct {
	path   string
	mu     sync.Mutex
	cache  map[string]string
	loaded bool
}

// NewFileStore 在 dir 下创建 <profile>.json
func NewFileStore(dir, profile string) (*FileStore, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "shopfront")
	}
	profile = sanitizeProfile(profile)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, xerrors.NewStorageError("mkdir", dir, err)
	}
	return &FileStore{
		path:  filepath.Join(dir, profile+".json"),
		cache: make(map[string]string),
	}, nil
}

// Path 存储文件路径
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return "", false, err
	}
	v, ok := s.cache[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	s.cache[key] = value
	return s.writeLocked(key)
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	for _, k := range keys {
		delete(s.cache, k)
	}
	return s.writeLocked(strings.Join(keys, ","))
}

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return xerrors.NewStorageError("read", s.path, err)
	}
	values := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return xerrors.NewStorageError("decode", s.path, err)
		}
	}
	s.cache = values
	s.loaded = true
	return nil
}

// writeLocked 先写临时文件再 rename，避免中途崩溃留下半个文件
func (s *FileStore) writeLocked(key string) error {
	buf, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return xerrors.NewStorageError("encode", key, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return xerrors.NewStorageError("write", key, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) // nolint:errcheck
		return xerrors.NewStorageError("rename", key, err)
	}
	return nil
}

func sanitizeProfile(profile string) string {
	profile = strings.TrimSpace(strings.ToLower(profile))
	if profile == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range profile {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
