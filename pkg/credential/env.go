package credential

import (
	"github.com/shouni/go-utils/envutil"
)

// DefaultEnvVars はシークレット名と環境変数名の対応です。
var DefaultEnvVars = map[string]string{
	DefaultName: "OPENAI_API_KEY",
}

// EnvStore は環境変数からシークレットを読み出す読み取り専用のストアです。
type EnvStore struct {
	vars map[string]string
}

// NewEnvStore は EnvStore を作成します。vars が nil なら DefaultEnvVars を使います。
func NewEnvStore(vars map[string]string) *EnvStore {
	if vars == nil {
		vars = DefaultEnvVars
	}
	return &EnvStore{vars: vars}
}

func (e *EnvStore) Get(name string) (string, error) {
	key, ok := e.vars[name]
	if !ok {
		return "", ErrNotFound
	}
	v := envutil.GetEnv(key, "")
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

func (e *EnvStore) Set(string, string) error { return ErrReadOnly }

func (e *EnvStore) Delete(string) error { return ErrReadOnly }
