package imgutil

import (
	"bytes"
	"image"

	"github.com/rwcarlsen/goexif/exif"
)

// readOrientation は EXIF の Orientation タグ (1-8) を返します。
// タグが無い、または読めない場合は 1（補正不要）です。
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// applyOrientation は EXIF の向きに従って画像を正立させます。
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// 5-8 は縦横が入れ替わる
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2: // 左右反転
				dx, dy = w-1-x, y
			case 3: // 180度回転
				dx, dy = w-1-x, h-1-y
			case 4: // 上下反転
				dx, dy = x, h-1-y
			case 5: // 転置
				dx, dy = y, x
			case 6: // 時計回りに90度
				dx, dy = h-1-y, x
			case 7: // 反転転置
				dx, dy = h-1-y, w-1-x
			case 8: // 反時計回りに90度
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
