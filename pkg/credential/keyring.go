package credential

import (
	"errors"

	"github.com/zalando/go-keyring"
)

// DefaultService は OS のキーチェーンに登録するサービス名です。
const DefaultService = "alt-text-kit.apikey"

// KeyringStore は OS のキーチェーン（macOS Keychain, Secret Service, Windows Credential Manager）を利用するストアです。
type KeyringStore struct {
	service string
}

// NewKeyringStore は KeyringStore を作成します。service が空なら DefaultService を使います。
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = DefaultService
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Get(name string) (string, error) {
	v, err := keyring.Get(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (k *KeyringStore) Set(name, secret string) error {
	return keyring.Set(k.service, name, secret)
}

func (k *KeyringStore) Delete(name string) error {
	err := keyring.Delete(k.service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
