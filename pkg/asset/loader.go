package asset

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxImageBytes は1枚の画像として読み込むデータの上限です。
// ローカルと gs:// は読み込み中に打ち切ります。http(s) は Fetcher が本文を読み切った後に判定します。
const MaxImageBytes = 50 << 20

// Fetcher は URL から画像データを取得します。httpkit.ClientInterface が満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Opener は URI を開きます。remoteio.InputReader が満たします。
type Opener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// Loader は画像ソース（http(s) URL、gs:// URI、ローカルパス）からバイト列を読み込みます。
type Loader struct {
	fetcher Fetcher
	remote  Opener
	local   Opener
}

// NewLoader は Loader を初期化します。
// remote は gs:// ソースを扱わない場合 nil でも構いません。
func NewLoader(fetcher Fetcher, remote Opener) (*Loader, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	return &Loader{
		fetcher: fetcher,
		remote:  remote,
		local:   LocalOpener{},
	}, nil
}

// Load はソースの種類に応じて画像データを取得します。
func (l *Loader) Load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == "":
		return nil, fmt.Errorf("empty image source")
	case IsRemoteURL(source):
		safe, err := IsSafeURL(source)
		if err != nil {
			return nil, fmt.Errorf("URLの検証に失敗しました: %w", err)
		}
		if !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %s", source)
		}
		// FetchBytes は本文全体を返すため、上限の判定はダウンロード後になる
		data, err := l.fetcher.FetchBytes(ctx, source)
		if err != nil {
			return nil, err
		}
		if len(data) > MaxImageBytes {
			return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
		}
		return data, nil
	case IsGCSURI(source):
		if l.remote == nil {
			return nil, fmt.Errorf("no reader configured for %s", source)
		}
		return readBounded(ctx, l.remote, source)
	default:
		return readBounded(ctx, l.local, source)
	}
}

// IsRemoteURL は http(s) のソースかどうかを判定します。
func IsRemoteURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// IsGCSURI は gs:// のソースかどうかを判定します。
func IsGCSURI(source string) bool {
	return strings.HasPrefix(source, "gs://")
}

func readBounded(ctx context.Context, o Opener, uri string) ([]byte, error) {
	rc, err := o.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}
	return data, nil
}

// LocalOpener はローカルファイルを開きます。
type LocalOpener struct{}

func (LocalOpener) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(path)
}
