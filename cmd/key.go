package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/shouni/alt-text-kit/pkg/credential"

	"github.com/spf13/cobra"
)

func newKeyCmd(a *app) *cobra.Command {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "API キーを管理します。",
	}

	keyCmd.AddCommand(
		&cobra.Command{
			Use:   "set [KEY]",
			Short: "API キーを保存します。省略時は標準入力から読み込みます。",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				secret, err := readSecret(cmd, args)
				if err != nil {
					return err
				}
				if err := credential.Save(a.newStore(a.cfg), credential.DefaultName, secret); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "保存した API キーを削除します。",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.newStore(a.cfg).Delete(credential.DefaultName); err != nil {
					return fmt.Errorf("failed to delete API key: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "API key deleted.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "API キーが設定されているか表示します。",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				secret, err := a.newStore(a.cfg).Get(credential.DefaultName)
				switch {
				case errors.Is(err, credential.ErrNotFound), err == nil && strings.TrimSpace(secret) == "":
					fmt.Fprintln(cmd.OutOrStdout(), "API key: not configured")
					return nil
				case err != nil:
					return fmt.Errorf("failed to read API key: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "API key: configured (%s)\n", maskSecret(secret))
				return nil
			},
		},
	)
	return keyCmd
}

func readSecret(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read API key from stdin: %w", err)
	}
	return "", credential.ErrEmptySecret
}

// maskSecret は末尾4文字以外を伏せた表記を返します。
func maskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return "..." + secret[len(secret)-4:]
}
