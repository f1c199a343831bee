package capture

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
)

// downscale resizes img to w x h via nearest-neighbor sampling, writing
// RGBA pixels in canonical row-major order so the same source image always
// produces byte-identical thumbnail bytes.
func downscale(img image.Image, w, h int) []byte {
	bounds := img.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	if sw == 0 || sh == 0 {
		return make([]byte, w*h*4)
	}

	out := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		sy := bounds.Min.Y + y*sh/h
		for x := 0; x < w; x++ {
			sx := bounds.Min.X + x*sw/w
			r, g, b, a := img.At(sx, sy).RGBA()
			c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
			out = append(out, c.R, c.G, c.B, c.A)
		}
	}
	return out
}

// thumbFingerprint computes sha256 over the downscaled thumbnail's raw
// pixel bytes (spec.md §4.2 step 2: "sha256 over the thumbnail bytes in a
// canonical normalized form").
func thumbFingerprint(img image.Image, thumbSize string) string {
	w, h := thumbDims(thumbSize)

	var buf bytes.Buffer
	buf.Write(downscale(img, w, h))

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
