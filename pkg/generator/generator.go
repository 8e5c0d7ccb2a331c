package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/alt-text-kit/pkg/domain"
	"github.com/shouni/alt-text-kit/pkg/prompt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// AltTextGenerator は画像ごとに1回ずつ API を呼び出し、入力順に結果をまとめます。
type AltTextGenerator struct {
	describer Describer
	loader    AssetLoader
	encoder   ImageEncoder
	opts      Options
}

// NewAltTextGenerator は依存関係を注入して AltTextGenerator を初期化します。
// loader は Data を持たない ImageAsset を扱う場合にのみ必要です。
func NewAltTextGenerator(describer Describer, loader AssetLoader, encoder ImageEncoder, opts Options) (*AltTextGenerator, error) {
	if describer == nil {
		return nil, fmt.Errorf("describer is required")
	}
	if encoder == nil {
		return nil, fmt.Errorf("encoder is required")
	}
	if opts.RateInterval > 0 && opts.RateBurst <= 0 {
		opts.RateBurst = DefaultRateBurst
	}

	return &AltTextGenerator{
		describer: describer,
		loader:    loader,
		encoder:   encoder,
		opts:      opts,
	}, nil
}

// Generate は1枚の画像の代替テキストを返します。GenerateBatch に1件渡した場合と同じ結果になります。
func (g *AltTextGenerator) Generate(ctx context.Context, asset domain.ImageAsset, cfg domain.GenerationConfig) (string, error) {
	return g.GenerateBatch(ctx, []domain.ImageAsset{asset}, cfg)
}

// GenerateBatch は全画像を並列に処理し、入力順に連結した代替テキストを返します。
// 1枚でも失敗した場合は残りの処理をキャンセルし、最初のエラーのみを返します。部分的な結果は返しません。
func (g *AltTextGenerator) GenerateBatch(ctx context.Context, assets []domain.ImageAsset, cfg domain.GenerationConfig) (string, error) {
	if len(assets) == 0 {
		return "", domain.ErrEmptyBatch
	}
	if err := g.ready(); err != nil {
		return "", err
	}

	spec := prompt.Build(cfg)
	limiter := g.newLimiter()
	texts := make([]string, len(assets))

	eg, egCtx := errgroup.WithContext(ctx)
	if g.opts.MaxConcurrency > 0 {
		eg.SetLimit(g.opts.MaxConcurrency)
	}

	startTime := time.Now()
	for i, asset := range assets {
		eg.Go(func() error {
			text, err := g.describeOne(egCtx, limiter, i, asset, spec)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		slog.WarnContext(ctx, "Alt text batch failed", "images", len(assets), "kind", domain.KindOf(err).String(), "error", err)
		return "", err
	}

	slog.InfoContext(ctx, "Alt text batch completed", "images", len(assets), "duration", time.Since(startTime).Round(time.Millisecond))
	return domain.CombineAltTexts(texts), nil
}

// GenerateEach は全画像を並列に処理し、失敗を含む画像ごとの結果を入力順で返します。
// 個々の失敗は他の画像の処理を中断しません。
// エラーを返すのは画像が0枚の場合と、describer が ReadyChecker として準備未完了を返した場合のみです。
func (g *AltTextGenerator) GenerateEach(ctx context.Context, assets []domain.ImageAsset, cfg domain.GenerationConfig) ([]domain.GenerationResult, error) {
	if len(assets) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if err := g.ready(); err != nil {
		return nil, err
	}

	spec := prompt.Build(cfg)
	limiter := g.newLimiter()
	results := make([]domain.GenerationResult, len(assets))

	var eg errgroup.Group
	if g.opts.MaxConcurrency > 0 {
		eg.SetLimit(g.opts.MaxConcurrency)
	}

	for i, asset := range assets {
		eg.Go(func() error {
			text, err := g.describeOne(ctx, limiter, i, asset, spec)
			results[i] = domain.GenerationResult{Index: i, AltText: text, Err: err}
			return nil
		})
	}
	_ = eg.Wait()

	return results, nil
}

// describeOne は1枚分の読み込み、エンコード、API 呼び出しを順に行います。
// 返すエラーには 1 始まりの画像番号が付与されます。
func (g *AltTextGenerator) describeOne(ctx context.Context, limiter *rate.Limiter, i int, asset domain.ImageAsset, spec domain.PromptSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("image %d: %w", i+1, &domain.TransportError{Err: err})
	}
	logger := slog.With("image_index", i+1, "source", asset.Label())

	data := asset.Data
	if len(data) == 0 {
		if g.loader == nil {
			return "", fmt.Errorf("image %d: %w", i+1, &domain.ImageLoadError{Index: i, Source: asset.Source, Err: fmt.Errorf("no data and no loader configured")})
		}
		loaded, err := g.loader.Load(ctx, asset.Source)
		if err != nil {
			return "", fmt.Errorf("image %d: %w", i+1, &domain.ImageLoadError{Index: i, Source: asset.Source, Err: err})
		}
		data = loaded
	}

	encoded, err := g.encoder.Encode(data)
	if err != nil {
		return "", fmt.Errorf("image %d: %w", i+1, &domain.ImageLoadError{Index: i, Source: asset.Source, Err: err})
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("image %d: %w", i+1, &domain.TransportError{Err: err})
		}
	}

	logger.Debug("Requesting alt text", "encoded_bytes", len(encoded), "max_tokens", spec.MaxTokens)
	startTime := time.Now()
	text, err := g.describer.Describe(ctx, encoded, spec)
	if err != nil {
		logger.Debug("Alt text request failed", "error", err)
		return "", fmt.Errorf("image %d: %w", i+1, err)
	}

	logger.Info("Alt text generated", "duration", time.Since(startTime).Round(time.Millisecond))
	return text, nil
}

// ready は画像の読み込みより前に describer の準備状態を確認します。
func (g *AltTextGenerator) ready() error {
	if rc, ok := g.describer.(ReadyChecker); ok {
		return rc.Ready()
	}
	return nil
}

func (g *AltTextGenerator) newLimiter() *rate.Limiter {
	if g.opts.RateInterval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(g.opts.RateInterval), g.opts.RateBurst)
}
