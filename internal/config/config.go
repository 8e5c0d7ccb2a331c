package config

import (
	"log/slog"
	"time"

	"github.com/shouni/alt-text-kit/pkg/credential"
	"github.com/shouni/alt-text-kit/pkg/domain"
	"github.com/shouni/alt-text-kit/pkg/imgutil"
	"github.com/shouni/alt-text-kit/pkg/vision"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultEndpoint          = vision.DefaultEndpoint
	DefaultModel             = vision.DefaultModel
	DefaultRequestTimeout    = vision.DefaultRequestTimeout
	DefaultCredentialService = credential.DefaultService
	DefaultImageFetchTimeout = 30 * time.Second
	DefaultQuality           = imgutil.DefaultQuality
	DefaultMaxDimension      = imgutil.DefaultMaxDimension
)

// Config は環境変数から読み込む接続設定です。
type Config struct {
	APIEndpoint       string
	Model             string
	RequestTimeout    time.Duration
	CredentialService string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込みます。解釈できない値はデフォルトに戻します。
func LoadConfig() *Config {
	return &Config{
		APIEndpoint:       envutil.GetEnv("ALTTEXT_API_ENDPOINT", DefaultEndpoint),
		Model:             envutil.GetEnv("ALTTEXT_MODEL", DefaultModel),
		RequestTimeout:    durationEnv("ALTTEXT_REQUEST_TIMEOUT", DefaultRequestTimeout),
		CredentialService: envutil.GetEnv("ALTTEXT_CREDENTIAL_SERVICE", DefaultCredentialService),
		Options: GenerateOptions{
			Detail:       string(domain.DetailNormally),
			Focus:        string(domain.FocusWholeScreen),
			Quality:      DefaultQuality,
			MaxDimension: DefaultMaxDimension,
		},
	}
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := envutil.GetEnv(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		slog.Warn("Ignoring invalid duration", "key", key, "value", raw)
		return def
	}
	return d
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータです。
type GenerateOptions struct {
	// 生成設定
	Detail string // --detail
	Focus  string // --focus
	Each   bool   // --each: 画像ごとに成否を出力する

	// 並列実行の制御
	Concurrency  int           // --concurrency
	RateInterval time.Duration // --rate-interval

	// 画像の前処理
	Quality      int // --quality
	MaxDimension int // --max-dimension
}

// GenerationConfig はフラグの文字列を検証して domain.GenerationConfig に変換します。
func (o GenerateOptions) GenerationConfig() (domain.GenerationConfig, error) {
	var cfg domain.GenerationConfig
	if o.Detail != "" {
		detail, err := domain.ParseDetailLevel(o.Detail)
		if err != nil {
			return cfg, err
		}
		cfg.Detail = detail
	}
	if o.Focus != "" {
		focus, err := domain.ParseFocusLevel(o.Focus)
		if err != nil {
			return cfg, err
		}
		cfg.Focus = focus
	}
	return cfg.Normalized(), nil
}
