package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/alt-text-kit/internal/builder"
	"github.com/shouni/alt-text-kit/pkg/domain"

	"github.com/spf13/cobra"
)

func newGenerateCmd(a *app) *cobra.Command {
	opts := &a.cfg.Options

	cmd := &cobra.Command{
		Use:   "generate IMAGE...",
		Short: "画像の代替テキストを生成します。",
		Long: `ローカルパス、http(s) URL、gs:// URI で指定した画像の代替テキストを生成します。
複数指定した場合は "Image k:" を付けて入力順に出力します。
デフォルトでは1枚でも失敗すると結果を出力しません。--each を指定すると画像ごとに成否を出力します。`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, a, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Detail, "detail", "d", opts.Detail, "詳細度 (quickly, normally, fully)")
	flags.StringVarP(&opts.Focus, "focus", "f", opts.Focus, "説明の対象 (whole screen, large images)")
	flags.BoolVar(&opts.Each, "each", false, "画像ごとに結果を出力し、失敗した画像があっても他の結果を返す")
	flags.IntVarP(&opts.Concurrency, "concurrency", "c", 0, "同時に処理する画像数の上限（0 で無制限）")
	flags.DurationVar(&opts.RateInterval, "rate-interval", 0, "リクエスト開始の最小間隔（0 で制限なし）")
	flags.IntVar(&opts.Quality, "quality", opts.Quality, "送信する JPEG の品質 (1-100)")
	flags.IntVar(&opts.MaxDimension, "max-dimension", opts.MaxDimension, "長辺の最大ピクセル数（0 でリサイズしない）")

	return cmd
}

func runGenerate(cmd *cobra.Command, a *app, sources []string) error {
	ctx := cmd.Context()
	genCfg, err := a.cfg.Options.GenerationConfig()
	if err != nil {
		return err
	}

	gen, err := builder.BuildGenerator(ctx, a.cfg, a.newStore(a.cfg), sources)
	if err != nil {
		return err
	}

	slog.Debug("Generating alt text",
		"images", len(sources),
		"detail", genCfg.Detail,
		"focus", genCfg.Focus,
		"model", a.cfg.Model)

	assets := domain.NewImageAssets(sources...)
	out := cmd.OutOrStdout()

	if !a.cfg.Options.Each {
		text, err := gen.GenerateBatch(ctx, assets, genCfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
		return nil
	}

	results, err := gen.GenerateEach(ctx, assets, genCfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, formatResults(results))

	failed := 0
	var lastErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			lastErr = r.Err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed: %w", failed, len(results), lastErr)
	}
	return nil
}

// formatResults は画像ごとの結果をバッチ出力と同じく空行区切りで連結します。
func formatResults(results []domain.GenerationResult) string {
	items := make([]string, len(results))
	for i, r := range results {
		if r.Err != nil {
			items[i] = fmt.Sprintf("Image %d: [%s] %s", r.Index+1, r.Kind(), domain.Guidance(r.Err))
			continue
		}
		items[i] = fmt.Sprintf("Image %d: %s", r.Index+1, r.AltText)
	}
	return strings.Join(items, "\n\n")
}
