package credential

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultName は API キーを保存するシークレット名です。
const DefaultName = "openai"

var (
	// ErrNotFound は指定した名前のシークレットが存在しないことを示します。
	ErrNotFound = errors.New("credential: secret not found")
	// ErrReadOnly は書き込みに対応していないストアであることを示します。
	ErrReadOnly = errors.New("credential: store is read-only")
	// ErrEmptySecret は空のシークレットを保存しようとしたことを示します。
	ErrEmptySecret = errors.New("credential: secret is empty")
)

// Getter はシークレットを読み出すだけの利用者向けインターフェースです。
type Getter interface {
	Get(name string) (string, error)
}

// Store は名前付きシークレットの取得・保存・削除を行うセキュアストアです。
type Store interface {
	Getter
	Set(name, secret string) error
	// Delete は存在しないシークレットに対しても成功します。
	Delete(name string) error
}

// Save は前後の空白を取り除いてから保存します。空になる場合は ErrEmptySecret です。
func Save(s Store, name, secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return ErrEmptySecret
	}
	if err := s.Set(name, trimmed); err != nil {
		return fmt.Errorf("failed to save %q to secure storage: %w", name, err)
	}
	return nil
}

// MemoryStore はプロセス内だけで保持するストアです。テストや一時利用向けです。
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore は初期値を指定して MemoryStore を作成します。
func NewMemoryStore(initial map[string]string) *MemoryStore {
	secrets := make(map[string]string, len(initial))
	for k, v := range initial {
		secrets[k] = v
	}
	return &MemoryStore{secrets: secrets}
}

func (m *MemoryStore) Get(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.secrets[name]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(name, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[name] = secret
	return nil
}

func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, name)
	return nil
}

// Chain は複数のストアを順に参照します。
// Get はシークレットを返した最初のストアに従います。利用できないストアは読み飛ばし、
// どのストアからも取得できなかった場合にのみ最初のエラーを返します。
// Set と Delete は先頭のストアに委譲します。
type Chain []Store

func (c Chain) Get(name string) (string, error) {
	var firstErr error
	for _, s := range c {
		v, err := s.Get(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return "", firstErr
	}
	return "", ErrNotFound
}

func (c Chain) Set(name, secret string) error {
	if len(c) == 0 {
		return ErrReadOnly
	}
	return c[0].Set(name, secret)
}

func (c Chain) Delete(name string) error {
	if len(c) == 0 {
		return ErrReadOnly
	}
	return c[0].Delete(name)
}
