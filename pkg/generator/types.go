package generator

import (
	"time"
)

// DefaultRateBurst は RateInterval 指定時のバースト数です。
const DefaultRateBurst = 1

// Options はファンアウトの挙動を調整します。ゼロ値は同時実行数無制限・レート制限なしです。
type Options struct {
	// MaxConcurrency は同時に処理する画像数の上限です。0 以下なら無制限です。
	MaxConcurrency int
	// RateInterval はリクエスト開始の最小間隔です。0 なら制限しません。
	RateInterval time.Duration
	// RateBurst は RateInterval 使用時に許容するバースト数です。
	RateBurst int
}
