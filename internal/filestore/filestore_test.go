package filestore_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
	"github.com/programme-lv/pathtester/internal/filestore"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const chain = "3 2 1\n0 1 5\n1 2 7\n0\n"

func compress(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	packed := compress(t, chain)
	mux := http.NewServeMux()
	mux.HandleFunc("/chain.txt", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(chain))
	})
	mux.HandleFunc("/chain.txt.zst", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(packed)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAwaitDownloadsOnceAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)
	ctx := context.Background()

	cache := t.TempDir()
	fs, err := filestore.New(cache, discard)
	require.NoError(t, err)

	for _, name := range []string{"/chain.txt", "/chain.txt.zst"} {
		p, err := fs.Await(ctx, srv.URL+name)
		require.NoError(t, err)
		body, err := os.ReadFile(p)
		require.NoError(t, err)
		require.Equal(t, chain, string(body), name)

		again, err := fs.Await(ctx, srv.URL+name)
		require.NoError(t, err)
		require.Equal(t, p, again)
	}
	require.Equal(t, int32(2), hits.Load())

	// A fresh store over the same directory reuses the cached files.
	fs2, err := filestore.New(cache, discard)
	require.NoError(t, err)
	_, err = fs2.Await(ctx, srv.URL+"/chain.txt")
	require.NoError(t, err)
	require.Equal(t, int32(2), hits.Load())

	entries, err := os.ReadDir(cache)
	require.NoError(t, err)
	require.Len(t, entries, 2, "no temporary download files are left behind")
}

func TestAwaitReportsHTTPErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	fs, err := filestore.New(t.TempDir(), discard)
	require.NoError(t, err)
	_, err = fs.Await(context.Background(), srv.URL+"/missing.txt")
	require.ErrorContains(t, err, "404")
}

func TestLocalPathsPassThrough(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "g.txt")
	require.NoError(t, os.WriteFile(local, []byte(chain), 0o644))

	fs, err := filestore.New(t.TempDir(), discard)
	require.NoError(t, err)

	p, err := fs.Await(context.Background(), local)
	require.NoError(t, err)
	require.Equal(t, local, p)

	_, err = fs.Await(context.Background(), filepath.Join(dir, "nope.txt"))
	require.Error(t, err)
}

func TestPrefetch(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, &hits)

	fs, err := filestore.New(t.TempDir(), discard)
	require.NoError(t, err)

	srcs := []string{srv.URL + "/chain.txt", srv.URL + "/chain.txt.zst", srv.URL + "/chain.txt"}
	require.NoError(t, fs.Prefetch(context.Background(), srcs))
	require.Equal(t, int32(2), hits.Load())

	require.Error(t, fs.Prefetch(context.Background(), []string{srv.URL + "/missing.txt"}))
}

type fakeS3 struct {
	bucket, key string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader([]byte(chain))),
		ContentType: aws.String("text/plain"),
	}, nil
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{}
	fs, err := filestore.New(t.TempDir(), discard, filestore.WithS3(client))
	require.NoError(t, err)

	p, err := fs.Await(context.Background(), "s3://graphs/stress/max.txt")
	require.NoError(t, err)
	require.Equal(t, "graphs", client.bucket)
	require.Equal(t, "stress/max.txt", client.key)

	body, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, chain, string(body))

	noS3, err := filestore.New(t.TempDir(), discard)
	require.NoError(t, err)
	_, err = noS3.Await(context.Background(), "s3://graphs/a.txt")
	require.ErrorContains(t, err, "s3 client not configured")
}

func TestIsRemote(t *testing.T) {
	require.True(t, filestore.IsRemote("https://example.com/g.txt"))
	require.True(t, filestore.IsRemote("s3://bucket/g.txt"))
	require.False(t, filestore.IsRemote("graphs/g.txt"))
	require.False(t, filestore.IsRemote("/abs/g.txt.zst"))
}
