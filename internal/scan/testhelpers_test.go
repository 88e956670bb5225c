package scan

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// testImage renders deterministic 8x8-pixel blocky noise. The blocks are
// large enough to survive the hash's downsampling, so different seeds
// give images with different difference hashes while the same seed
// always gives identical bytes.
func testImage(seed int) image.Image {
	const w, h = 64, 64
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			block := uint32(x/8 + 17*(y/8) + 131*seed)
			v := uint8((block * 2654435761) >> 24)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// encodePNG returns the PNG bytes for seed's test image.
func encodePNG(tb testing.TB, seed int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(seed)); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// writeImage writes seed's test image to dir/name and returns its path.
// Parent directories are created as needed.
func writeImage(tb testing.TB, dir, name string, seed int) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		tb.Fatalf("mkdir for %q: %v", p, err)
	}
	if err := os.WriteFile(p, encodePNG(tb, seed), 0o644); err != nil {
		tb.Fatalf("write %q: %v", p, err)
	}
	return p
}

// noErrors is an ErrorReporter that fails the test if invoked.
func noErrors(tb testing.TB) ErrorReporter {
	return func(path, stage, reason string) {
		tb.Errorf("unexpected scan error: path=%q stage=%q reason=%q", path, stage, reason)
	}
}
