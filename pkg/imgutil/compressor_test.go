package imgutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// テスト用のダミー画像（w x h のグラデーション）を作成するヘルパー
func createDummyImageData(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), uint8(x * y), 255})
		}
	}

	buf := new(bytes.Buffer)
	var err error
	switch format {
	case "png":
		err = png.Encode(buf, img)
	case "jpeg":
		err = jpeg.Encode(buf, img, nil)
	default:
		t.Fatalf("unsupported format: %s", format)
	}
	require.NoError(t, err, "failed to encode dummy image")
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	return img
}

func TestEncoder_Prepare(t *testing.T) {
	t.Run("PNG画像をJPEGに変換できること", func(t *testing.T) {
		enc := NewEncoder(DefaultQuality, DefaultMaxDimension)
		got, err := enc.Prepare(createDummyImageData(t, "png", 10, 10))
		require.NoError(t, err)

		img := decodeJPEG(t, got)
		assert.Equal(t, 10, img.Bounds().Dx())
	})

	t.Run("不正なデータを与えた場合にエラーを返すこと", func(t *testing.T) {
		_, err := NewEncoder(DefaultQuality, 0).Prepare([]byte("this is not an image"))
		assert.Error(t, err)
	})

	t.Run("Quality設定によってサイズが変化すること", func(t *testing.T) {
		input := createDummyImageData(t, "png", 64, 64)

		highQuality, err := NewEncoder(100, 0).Prepare(input)
		require.NoError(t, err)
		lowQuality, err := NewEncoder(10, 0).Prepare(input)
		require.NoError(t, err)

		assert.Less(t, len(lowQuality), len(highQuality))
	})

	t.Run("長辺が上限を超える場合は縦横比を保って縮小すること", func(t *testing.T) {
		got, err := NewEncoder(DefaultQuality, 100).Prepare(createDummyImageData(t, "jpeg", 400, 200))
		require.NoError(t, err)

		b := decodeJPEG(t, got).Bounds()
		assert.Equal(t, 100, b.Dx())
		assert.Equal(t, 50, b.Dy())
	})

	t.Run("透過部分は白で塗りつぶされること", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
		buf := new(bytes.Buffer)
		require.NoError(t, png.Encode(buf, img))

		got, err := NewEncoder(100, 0).Prepare(buf.Bytes())
		require.NoError(t, err)

		r, g, b, _ := decodeJPEG(t, got).At(4, 4).RGBA()
		assert.Greater(t, r>>8, uint32(240))
		assert.Greater(t, g>>8, uint32(240))
		assert.Greater(t, b>>8, uint32(240))
	})
}

func TestEncoder_Encode(t *testing.T) {
	encoded, err := NewEncoder(0, 0).Encode(createDummyImageData(t, "png", 4, 4))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err, "output must be standard base64")
	decodeJPEG(t, raw)
}

func TestTargetSize(t *testing.T) {
	tests := []struct {
		w, h, limit, wantW, wantH int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{4000, 3000, 2048, 2048, 1536},
		{3000, 4000, 2048, 1536, 2048},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := targetSize(tt.w, tt.h, tt.limit)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
