package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/studio-b12/gowebdav"
)

// WebDAVConfig WebDAV 配置结构
type WebDAVConfig struct {
	URL      string
	Username string
	Password string
	RootPath string
	Timeout  time.Duration
}

// WebDAVStorage WebDAV 存储实现
type WebDAVStorage struct {
	client   *gowebdav.Client
	baseURL  string
	rootPath string
}

// NewWebDAVStorage 创建 WebDAV 存储提供者
func NewWebDAVStorage(cfg WebDAVConfig) (*WebDAVStorage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webdav URL is required")
	}

	rootPath := normalizeRootPath(cfg.RootPath)

	client := gowebdav.NewClient(cfg.URL, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	client.SetTransport(&http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	})

	s := &WebDAVStorage{
		client:   client,
		rootPath: rootPath,
		baseURL:  strings.TrimRight(cfg.URL, "/"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.ensureRoot(ctx); err != nil {
		return nil, fmt.Errorf("webdav connection test failed: %w", err)
	}

	return s, nil
}

func normalizeRootPath(rootPath string) string {
	rootPath = strings.Trim(rootPath, "/")
	if rootPath == "" {
		return ""
	}
	return "/" + rootPath
}

// await 在独立 goroutine 中执行阻塞的 WebDAV 调用，支持上下文取消
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-done:
		return res.val, res.err
	}
}

// ensureRoot 确认根目录存在，不存在时创建
func (s *WebDAVStorage) ensureRoot(ctx context.Context) error {
	if s.rootPath == "" {
		_, err := await(ctx, func() ([]os.FileInfo, error) { return s.client.ReadDir("/") })
		return err
	}
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.MkdirAll(s.rootPath, 0755)
	})
	return err
}

// fullPath 生成完整的 WebDAV 路径
func (s *WebDAVStorage) fullPath(name string) string {
	return s.rootPath + "/" + name
}

// SaveWithContext 保存文件到 WebDAV
func (s *WebDAVStorage) SaveWithContext(ctx context.Context, name string, file io.Reader) error {
	if !IsValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("failed to read file content: %w", err)
	}

	_, err = await(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.Write(s.fullPath(name), data, 0644)
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}
	return nil
}

// GetWithContext 从 WebDAV 获取文件
func (s *WebDAVStorage) GetWithContext(ctx context.Context, name string) (io.ReadCloser, error) {
	if !IsValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	data, err := await(ctx, func() ([]byte, error) { return s.client.Read(s.fullPath(name)) })
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// StatWithContext 返回文件大小
func (s *WebDAVStorage) StatWithContext(ctx context.Context, name string) (int64, error) {
	if !IsValidName(name) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	info, err := await(ctx, func() (os.FileInfo, error) { return s.client.Stat(s.fullPath(name)) })
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return 0, fmt.Errorf("failed to stat file %s: %w", name, err)
	}
	return info.Size(), nil
}

// DeleteWithContext 从 WebDAV 删除文件
func (s *WebDAVStorage) DeleteWithContext(ctx context.Context, name string) error {
	if !IsValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, s.client.Remove(s.fullPath(name))
	})
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("failed to delete file %s: %w", name, err)
	}
	return nil
}

// ListWithContext 列出根目录下的全部文件
func (s *WebDAVStorage) ListWithContext(ctx context.Context) ([]string, error) {
	dir := s.rootPath
	if dir == "" {
		dir = "/"
	}

	infos, err := await(ctx, func() ([]os.FileInfo, error) { return s.client.ReadDir(dir) })
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || !IsValidName(info.Name()) {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists 检查文件是否存在
func (s *WebDAVStorage) Exists(ctx context.Context, name string) (bool, error) {
	if _, err := s.StatWithContext(ctx, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health 检查存储健康状态
func (s *WebDAVStorage) Health(ctx context.Context) error {
	// 如果 client 为 nil（测试场景），直接返回
	if s.client == nil {
		return ctx.Err()
	}
	return s.ensureRoot(ctx)
}

// Name 返回存储名称
func (s *WebDAVStorage) Name() string {
	if s.baseURL == "" {
		return "webdav"
	}
	return fmt.Sprintf("webdav:%s%s", s.baseURL, s.rootPath)
}
