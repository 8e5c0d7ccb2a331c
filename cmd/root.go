package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/alt-text-kit/internal/builder"
	"github.com/shouni/alt-text-kit/internal/config"
	"github.com/shouni/alt-text-kit/pkg/credential"
	"github.com/shouni/alt-text-kit/pkg/domain"

	"github.com/spf13/cobra"
)

const appName = "alttext"

// app はサブコマンド間で共有する設定と依存関係です。
type app struct {
	cfg     *config.Config
	verbose bool

	// newStore は認証情報ストアを作成します。テストで差し替えます。
	newStore func(*config.Config) credential.Store
}

func newApp() *app {
	return &app{
		cfg:      config.LoadConfig(),
		newStore: builder.BuildCredentialStore,
	}
}

// newRootCmd はルートコマンドを組み立てます。環境変数の値がフラグのデフォルトになります。
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "画像から代替テキストを生成します。",
		Long: `Vision-Language Model API を使って、画像のアクセシビリティ向け代替テキストを生成します。
API キーは OS のキーチェーン（または OPENAI_API_KEY）から読み込みます。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfg.Model, "model", a.cfg.Model, "使用するモデル名")
	flags.StringVar(&a.cfg.APIEndpoint, "endpoint", a.cfg.APIEndpoint, "chat completions API のエンドポイント")
	flags.DurationVar(&a.cfg.RequestTimeout, "timeout", a.cfg.RequestTimeout, "1リクエストあたりのタイムアウト（0 で無制限）")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "デバッグログを出力する")

	rootCmd.AddCommand(newGenerateCmd(a), newKeyCmd(a))
	return rootCmd
}

func setupLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Execute はアプリケーションのエントリポイントです。main.go から呼び出されます。
// Ctrl+C で実行中のリクエストをキャンセルします。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", domain.Guidance(err))
		stop()
		os.Exit(1)
	}
}
