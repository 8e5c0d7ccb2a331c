package generator

import (
	"context"

	"github.com/shouni/alt-text-kit/pkg/domain"
)

// Describer は1枚の画像について代替テキストを生成する外部 API 呼び出しです。
type Describer interface {
	// Describe は base64 エンコード済みの画像と PromptSpec から代替テキストを返します。
	Describe(ctx context.Context, encodedImage string, spec domain.PromptSpec) (string, error)
}

// ReadyChecker は Describer が任意で実装します。
// バッチ開始時に一度だけ呼ばれ、エラーならどの画像も読み込まずに失敗します。
type ReadyChecker interface {
	Ready() error
}

// AssetLoader は画像ソースからバイト列を読み込みます。
type AssetLoader interface {
	Load(ctx context.Context, source string) ([]byte, error)
}

// ImageEncoder は画像データを送信用の base64 文字列に変換します。
type ImageEncoder interface {
	Encode(data []byte) (string, error)
}
