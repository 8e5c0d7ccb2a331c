package domain

import (
	"fmt"
	"strings"
)

// DetailLevel は代替テキストの長さと詳しさを表します。
type DetailLevel string

const (
	DetailQuickly  DetailLevel = "quickly"
	DetailNormally DetailLevel = "normally"
	DetailFully    DetailLevel = "fully"
)

// FocusLevel は説明の対象範囲（画面全体か、目立つ要素のみか）を表します。
type FocusLevel string

const (
	FocusWholeScreen FocusLevel = "whole screen"
	FocusLargeImages FocusLevel = "large images"
)

// ParseDetailLevel は文字列を DetailLevel に変換します。大文字小文字は区別しません。
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch normalizeLevel(s) {
	case "quickly", "quick":
		return DetailQuickly, nil
	case "normally", "normal":
		return DetailNormally, nil
	case "fully", "full":
		return DetailFully, nil
	}
	return "", fmt.Errorf("unknown detail level: %q (quickly, normally, fully)", s)
}

// ParseFocusLevel は文字列を FocusLevel に変換します。
// "whole-screen" や "large_images" のような表記も受け付けます。
func ParseFocusLevel(s string) (FocusLevel, error) {
	switch normalizeLevel(s) {
	case "whole screen", "wholescreen":
		return FocusWholeScreen, nil
	case "large images", "largeimages":
		return FocusLargeImages, nil
	}
	return "", fmt.Errorf("unknown focus level: %q (whole screen, large images)", s)
}

func normalizeLevel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// GenerationConfig はバッチ全体で共有される生成設定です。
// ゼロ値は (normally, whole screen) として扱われます。
type GenerationConfig struct {
	Detail DetailLevel
	Focus  FocusLevel
}

// Normalized は未指定のフィールドをデフォルト値で埋めた設定を返します。
func (c GenerationConfig) Normalized() GenerationConfig {
	if c.Detail == "" {
		c.Detail = DetailNormally
	}
	if c.Focus == "" {
		c.Focus = FocusWholeScreen
	}
	return c
}

// PromptSpec は GenerationConfig から導出される指示文とトークン上限の組です。
type PromptSpec struct {
	Instruction string
	MaxTokens   int
}

// ImageAsset は1枚の画像への参照です。
// Data が空の場合は Source（ローカルパス、http(s) URL、gs:// URI）から読み込みます。
// バッチ処理ではスライス上の位置が Index として扱われます。
type ImageAsset struct {
	Index  int
	Source string
	Data   []byte
}

// NewImageAssets はソースの並び順どおりに Index を振った ImageAsset を作成します。
func NewImageAssets(sources ...string) []ImageAsset {
	assets := make([]ImageAsset, len(sources))
	for i, src := range sources {
		assets[i] = ImageAsset{Index: i, Source: src}
	}
	return assets
}

// Label はログやエラーメッセージ用の識別子を返します。
func (a ImageAsset) Label() string {
	if a.Source != "" {
		return a.Source
	}
	return fmt.Sprintf("<%d bytes>", len(a.Data))
}

// GenerationResult は1枚分の生成結果です。Err が nil なら成功です。
type GenerationResult struct {
	Index   int
	AltText string
	Err     error
}

// Kind は結果のエラー種別を返します。成功時は KindNone です。
func (r GenerationResult) Kind() ErrorKind {
	return KindOf(r.Err)
}

// CombineAltTexts は入力順の代替テキストを1つの文字列にまとめます。
// 1件ならそのまま、複数なら "Image k: ..." を付けて空行区切りで連結します。
func CombineAltTexts(texts []string) string {
	if len(texts) == 1 {
		return texts[0]
	}
	parts := make([]string, len(texts))
	for i, text := range texts {
		parts[i] = fmt.Sprintf("Image %d: %s", i+1, text)
	}
	return strings.Join(parts, "\n\n")
}
