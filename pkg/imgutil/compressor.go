package imgutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultQuality は送信用 JPEG の品質です。
	DefaultQuality = 80
	// DefaultMaxDimension は長辺の上限ピクセル数です。
	DefaultMaxDimension = 2048
)

// Encoder は画像データを送信用の JPEG に正規化し、base64 文字列に変換します。
// キャッシュは持たず、呼び出しごとに再エンコードします。
type Encoder struct {
	quality      int
	maxDimension int
}

// NewEncoder は Encoder を初期化します。
// quality が範囲外ならデフォルト値を使い、maxDimension が 0 以下ならリサイズしません。
func NewEncoder(quality, maxDimension int) *Encoder {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	if maxDimension < 0 {
		maxDimension = 0
	}
	return &Encoder{quality: quality, maxDimension: maxDimension}
}

// Encode は Prepare の結果を標準 base64 で返します。data URI にそのまま埋め込めます。
func (e *Encoder) Encode(data []byte) (string, error) {
	jpg, err := e.Prepare(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(jpg), nil
}

// Prepare は画像（JPEG, PNG, GIF, WebP, BMP, TIFF）をデコードし、
// EXIF の向きを補正、長辺を maxDimension 以下に縮小したうえで JPEG に圧縮します。
func (e *Encoder) Prepare(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = applyOrientation(img, readOrientation(data))
	img = e.flatten(img)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// flatten は白背景の RGBA に描画し直します。必要なら同時に縮小します。
// JPEG はアルファを持たないため、透過部分は白になります。
func (e *Encoder) flatten(src image.Image) image.Image {
	sb := src.Bounds()
	w, h := targetSize(sb.Dx(), sb.Dy(), e.maxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)

	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}

// targetSize はアスペクト比を保ったまま長辺が limit に収まるサイズを返します。
func targetSize(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		nh := h * limit / w
		if nh < 1 {
			nh = 1
		}
		return limit, nh
	}
	nw := w * limit / h
	if nw < 1 {
		nw = 1
	}
	return nw, limit
}
