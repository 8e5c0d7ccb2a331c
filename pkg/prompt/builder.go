package prompt

import (
	"strings"

	"github.com/shouni/alt-text-kit/pkg/domain"
)

// 詳細度ごとの応答トークン上限です。quickly < normally < fully の順で増加します。
const (
	QuicklyMaxTokens  = 75
	NormallyMaxTokens = 150
	FullyMaxTokens    = 300
)

type detailTier struct {
	instruction string
	maxTokens   int
}

var detailTiers = map[domain.DetailLevel]detailTier{
	domain.DetailQuickly: {
		instruction: "Generate a brief alt text for this image. Provide a concise description focusing only on the main subject. Maximum 1-2 sentences.",
		maxTokens:   QuicklyMaxTokens,
	},
	domain.DetailNormally: {
		instruction: "Generate a concise and descriptive alt text for this image. The alt text should be suitable for accessibility purposes and describe the main content of the image in a clear, informative way.",
		maxTokens:   NormallyMaxTokens,
	},
	domain.DetailFully: {
		instruction: "Generate a detailed and comprehensive alt text for this image. Include all important elements, their relationships, colors, emotions, and context. Provide a thorough description suitable for someone who cannot see the image.",
		maxTokens:   FullyMaxTokens,
	},
}

var focusClauses = map[domain.FocusLevel]string{
	domain.FocusWholeScreen: "Describe the entire image, including background elements, overall composition, and spatial relationships.",
	domain.FocusLargeImages: "Focus primarily on the most prominent, large, or important visual elements. Give less attention to small details or background elements.",
}

// Build は生成設定から指示文とトークン上限を導出します。
// 同じ設定に対しては常に同じ PromptSpec を返す純粋関数です。
// 未知のレベルはデフォルト (normally, whole screen) として扱います。
func Build(cfg domain.GenerationConfig) domain.PromptSpec {
	cfg = cfg.Normalized()

	tier, ok := detailTiers[cfg.Detail]
	if !ok {
		tier = detailTiers[domain.DetailNormally]
	}
	clause, ok := focusClauses[cfg.Focus]
	if !ok {
		clause = focusClauses[domain.FocusWholeScreen]
	}

	return domain.PromptSpec{
		Instruction: strings.Join([]string{tier.instruction, clause}, " "),
		MaxTokens:   tier.maxTokens,
	}
}
