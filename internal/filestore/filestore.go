// Package filestore resolves graph sources to local files. Remote sources are
// downloaded once into a cache directory and reused.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

type FileStore struct {
	cacheDir string
	http     *http.Client
	s3       S3Getter
	logger   *slog.Logger

	entries *xsync.MapOf[string, *entry]
}

type entry struct {
	done chan struct{}
	path string
	err  error
}

type Option func(*FileStore)

// WithS3 enables s3:// sources.
func WithS3(client S3Getter) Option {
	return func(fs *FileStore) { fs.s3 = client }
}

func WithHTTPClient(client *http.Client) Option {
	return func(fs *FileStore) { fs.http = client }
}

// New creates a FileStore caching downloads under cacheDir.
func New(cacheDir string, logger *slog.Logger, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	fs := &FileStore{
		cacheDir: cacheDir,
		http:     http.DefaultClient,
		logger:   logger,
		entries:  xsync.NewMapOf[string, *entry](),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs, nil
}

// IsRemote reports whether src names an http(s) or s3 location.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "s3":
		return true
	}
	return false
}

// Schedule starts fetching src in the background unless it is local, cached or
// already scheduled.
func (fs *FileStore) Schedule(ctx context.Context, src string) {
	if !IsRemote(src) {
		return
	}
	e, loaded := fs.entries.LoadOrCompute(src, func() *entry {
		return &entry{done: make(chan struct{})}
	})
	if loaded {
		return
	}
	go func() {
		defer close(e.done)
		e.path, e.err = fs.fetch(ctx, src)
	}()
}

// Await returns the local path of src, waiting for its download if needed.
func (fs *FileStore) Await(ctx context.Context, src string) (string, error) {
	if !IsRemote(src) {
		if _, err := os.Stat(src); err != nil {
			return "", err
		}
		return src, nil
	}
	fs.Schedule(ctx, src)
	e, _ := fs.entries.Load(src)

	select {
	case <-e.done:
		return e.path, e.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Prefetch downloads all remote srcs concurrently and returns the first error.
func (fs *FileStore) Prefetch(ctx context.Context, srcs []string) error {
	for _, src := range srcs {
		fs.Schedule(ctx, src)
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, src := range srcs {
		eg.Go(func() error {
			_, err := fs.Await(ctx, src)
			return err
		})
	}
	return eg.Wait()
}

func (fs *FileStore) cachePath(src string) string {
	sum := sha256.Sum256([]byte(src))
	return filepath.Join(fs.cacheDir, hex.EncodeToString(sum[:])+".txt")
}

func (fs *FileStore) fetch(ctx context.Context, src string) (string, error) {
	dst := fs.cachePath(src)
	if _, err := os.Stat(dst); err == nil {
		fs.logger.Debug("using cached file", slog.String("src", src), slog.String("path", dst))
		return dst, nil
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse url %s: %w", src, err)
	}

	fs.logger.Info("downloading graph", slog.String("src", src))
	var body io.ReadCloser
	var contentType string
	switch u.Scheme {
	case "s3":
		body, contentType, err = fs.openS3(ctx, u)
	default:
		body, contentType, err = fs.openHTTP(ctx, src)
	}
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", src, err)
	}
	defer body.Close()

	var r io.Reader = body
	if contentType == "application/zstd" || path.Ext(u.Path) == ".zst" {
		d, err := zstd.NewReader(body)
		if err != nil {
			return "", fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer d.Close()
		r = d
	}

	tmp, err := os.CreateTemp(fs.cacheDir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", src, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("failed to move %s into cache: %w", src, err)
	}
	return dst, nil
}

func (fs *FileStore) openHTTP(ctx context.Context, src string) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := fs.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, strings.TrimSpace(resp.Header.Get("Content-Type")), nil
}
