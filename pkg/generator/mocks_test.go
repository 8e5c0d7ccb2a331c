package generator

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/shouni/alt-text-kit/pkg/domain"
)

// --- Mocks ---

// mockDescriber はエンコード済み画像（= 元データの base64）をキーに応答を返します。
type mockDescriber struct {
	mu       sync.Mutex
	texts    map[string]string
	errs     map[string]error
	specs    []domain.PromptSpec
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	// gates が設定されている場合、そのチャネルが閉じられるまで応答を待ちます。
	gates map[string]chan struct{}
	// done は応答を返した順に元データを記録します。
	done []string
	// readyErr は Ready が返すエラーです。
	readyErr error
}

func (m *mockDescriber) Ready() error {
	return m.readyErr
}

func newMockDescriber() *mockDescriber {
	return &mockDescriber{
		texts: map[string]string{},
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (m *mockDescriber) Describe(ctx context.Context, encodedImage string, spec domain.PromptSpec) (string, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	raw, _ := base64.StdEncoding.DecodeString(encodedImage)
	key := string(raw)

	m.mu.Lock()
	m.specs = append(m.specs, spec)
	gate := m.gates[key]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", &domain.TransportError{Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.done = append(m.done, key)
	if err, ok := m.errs[key]; ok {
		return "", err
	}
	if text, ok := m.texts[key]; ok {
		return text, nil
	}
	return "alt for " + key, nil
}

// mockEncoder はデータを base64 にするだけのエンコーダーです。"corrupt" はデコード失敗として扱います。
type mockEncoder struct{}

func (mockEncoder) Encode(data []byte) (string, error) {
	if string(data) == "corrupt" {
		return "", errors.New("image: unknown format")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// mockLoader はソース名をキーにデータを返します。
type mockLoader struct {
	data  map[string][]byte
	calls atomic.Int32
}

func (m *mockLoader) Load(ctx context.Context, source string) ([]byte, error) {
	m.calls.Add(1)
	if data, ok := m.data[source]; ok {
		return data, nil
	}
	return nil, errors.New("no such file")
}

func assetsOf(keys ...string) []domain.ImageAsset {
	assets := make([]domain.ImageAsset, len(keys))
	for i, k := range keys {
		assets[i] = domain.ImageAsset{Index: i, Data: []byte(k)}
	}
	return assets
}
