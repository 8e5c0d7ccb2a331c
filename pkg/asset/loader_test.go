package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type mockFetcher struct {
	data   []byte
	err    error
	called int
}

func (m *mockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.called++
	return m.data, m.err
}

type mockOpener struct {
	files map[string][]byte
}

func (m *mockOpener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	data, ok := m.files[uri]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// --- Tests ---

func TestNewLoader(t *testing.T) {
	_, err := NewLoader(nil, nil)
	assert.Error(t, err)
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("ローカルファイルを読み込める", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cat.png")
		require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))

		loader, err := NewLoader(&mockFetcher{}, nil)
		require.NoError(t, err)

		data, err := loader.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), data)
	})

	t.Run("存在しないローカルファイルはエラー", func(t *testing.T) {
		loader, _ := NewLoader(&mockFetcher{}, nil)
		_, err := loader.Load(ctx, filepath.Join(t.TempDir(), "missing.png"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("公開URLはFetcher経由で取得する", func(t *testing.T) {
		fetcher := &mockFetcher{data: []byte("remote")}
		loader, _ := NewLoader(fetcher, nil)

		data, err := loader.Load(ctx, "https://93.184.216.34/cat.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("remote"), data)
		assert.Equal(t, 1, fetcher.called)
	})

	t.Run("上限を超えるURLの画像は拒否する", func(t *testing.T) {
		fetcher := &mockFetcher{data: make([]byte, MaxImageBytes+1)}
		loader, _ := NewLoader(fetcher, nil)

		_, err := loader.Load(ctx, "https://93.184.216.34/huge.jpg")
		assert.ErrorContains(t, err, "image exceeds")
	})

	t.Run("上限を超えるローカルファイルは読み込み途中で拒否する", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "huge.png")
		require.NoError(t, os.WriteFile(path, make([]byte, MaxImageBytes+1), 0o600))
		loader, _ := NewLoader(&mockFetcher{}, nil)

		_, err := loader.Load(ctx, path)
		assert.ErrorContains(t, err, "image exceeds")
	})

	t.Run("ループバックへのURLはブロックされる", func(t *testing.T) {
		fetcher := &mockFetcher{data: []byte("secret")}
		loader, _ := NewLoader(fetcher, nil)

		_, err := loader.Load(ctx, "http://127.0.0.1/evil.png")
		assert.Error(t, err)
		assert.Zero(t, fetcher.called)
	})

	t.Run("gs:// は remote Opener で読み込む", func(t *testing.T) {
		remote := &mockOpener{files: map[string][]byte{"gs://bucket/a.png": []byte("gcs")}}
		loader, _ := NewLoader(&mockFetcher{}, remote)

		data, err := loader.Load(ctx, "gs://bucket/a.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("gcs"), data)
	})

	t.Run("remote 未設定で gs:// はエラー", func(t *testing.T) {
		loader, _ := NewLoader(&mockFetcher{}, nil)
		_, err := loader.Load(ctx, "gs://bucket/a.png")
		assert.Error(t, err)
	})

	t.Run("空のソースはエラー", func(t *testing.T) {
		loader, _ := NewLoader(&mockFetcher{}, nil)
		_, err := loader.Load(ctx, "")
		assert.Error(t, err)
	})
}

func TestIsSafeURL(t *testing.T) {
	tests := []struct {
		url  string
		safe bool
	}{
		{"https://93.184.216.34/img.png", true},
		{"http://127.0.0.1/img.png", false},
		{"http://10.0.0.8/img.png", false},
		{"http://169.254.169.254/latest/meta-data", false},
		{"http://0.0.0.0/img.png", false},
		{"ftp://93.184.216.34/img.png", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		safe, err := IsSafeURL(tt.url)
		assert.Equal(t, tt.safe, safe, tt.url)
		if !tt.safe {
			assert.Error(t, err, tt.url)
		}
	}
}

func TestSourceKinds(t *testing.T) {
	assert.True(t, IsRemoteURL("https://example.com/a.png"))
	assert.False(t, IsRemoteURL("gs://bucket/a.png"))
	assert.True(t, IsGCSURI("gs://bucket/a.png"))
	assert.False(t, IsGCSURI("/tmp/a.png"))
}
