package builder

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/shouni/alt-text-kit/internal/config"
	"github.com/shouni/alt-text-kit/pkg/asset"
	"github.com/shouni/alt-text-kit/pkg/credential"
	"github.com/shouni/alt-text-kit/pkg/generator"
	"github.com/shouni/alt-text-kit/pkg/imgutil"
	"github.com/shouni/alt-text-kit/pkg/vision"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// BuildCredentialStore は OS のキーチェーンを優先し、環境変数にフォールバックするストアを返します。
// 書き込みと削除はキーチェーンに対して行われます。
func BuildCredentialStore(cfg *config.Config) credential.Store {
	return credential.Chain{
		credential.NewKeyringStore(cfg.CredentialService),
		credential.NewEnvStore(credential.DefaultEnvVars),
	}
}

// BuildLoader は画像ソースの読み込みに使う Loader を構築します。
// gs:// のソースが含まれる場合のみ GCS クライアントを初期化します。
func BuildLoader(ctx context.Context, sources []string) (*asset.Loader, error) {
	httpClient := httpkit.New(config.DefaultImageFetchTimeout)

	var remote asset.Opener
	if slices.ContainsFunc(sources, asset.IsGCSURI) {
		gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
		}
		reader, err := gcsFactory.NewInputReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create GCS input reader: %w", err)
		}
		remote = reader
	}

	return asset.NewLoader(httpClient, remote)
}

// BuildVisionClient は設定に従って API クライアントを構築します。
func BuildVisionClient(cfg *config.Config, creds credential.Getter) (*vision.Client, error) {
	return vision.NewClient(&http.Client{}, creds, vision.Config{
		Endpoint:       cfg.APIEndpoint,
		Model:          cfg.Model,
		RequestTimeout: cfg.RequestTimeout,
	})
}

// BuildGenerator は sources を処理するための AltTextGenerator を組み立てます。
func BuildGenerator(ctx context.Context, cfg *config.Config, creds credential.Getter, sources []string) (*generator.AltTextGenerator, error) {
	loader, err := BuildLoader(ctx, sources)
	if err != nil {
		return nil, fmt.Errorf("画像ローダーの初期化に失敗しました: %w", err)
	}

	client, err := BuildVisionClient(cfg, creds)
	if err != nil {
		return nil, fmt.Errorf("APIクライアントの初期化に失敗しました: %w", err)
	}

	opts := cfg.Options
	encoder := imgutil.NewEncoder(opts.Quality, opts.MaxDimension)

	return generator.NewAltTextGenerator(client, loader, encoder, generator.Options{
		MaxConcurrency: opts.Concurrency,
		RateInterval:   opts.RateInterval,
	})
}
