package fingerprint

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// gradientImage returns a horizontal gradient, which produces a
// non-trivial difference hash (a flat image hashes to all zeros).
func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(255 * x / w)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// checkerImage returns an alternating pattern distinct from a gradient.
func checkerImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/8+y/8)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// writePNG encodes img to a new file under dir and returns its path.
func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestFile_IdenticalContentSameFingerprint(t *testing.T) {
	dir := t.TempDir()
	img := gradientImage(64, 64)
	a := writePNG(t, dir, "a.png", img)
	b := writePNG(t, dir, "b.png", img)

	fa, err := File(a)
	if err != nil {
		t.Fatalf("File(a): %v", err)
	}
	fb, err := File(b)
	if err != nil {
		t.Fatalf("File(b): %v", err)
	}
	if fa != fb {
		t.Errorf("identical content produced different fingerprints: %s vs %s", fa, fb)
	}
}

func TestFile_Purity(t *testing.T) {
	p := writePNG(t, t.TempDir(), "img.png", gradientImage(48, 32))
	first, err := File(p)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := File(p)
		if err != nil {
			t.Fatalf("File (repeat %d): %v", i, err)
		}
		if again != first {
			t.Fatalf("repeat %d: fingerprint changed %s -> %s", i, first, again)
		}
	}
}

func TestFile_DistinctContentDistinctFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "gradient.png", gradientImage(64, 64))
	b := writePNG(t, dir, "checker.png", checkerImage(64, 64))

	fa, _ := File(a)
	fb, _ := File(b)
	if fa == fb {
		t.Errorf("visually distinct images share fingerprint %s", fa)
	}
}

func TestFile_CorruptFileIsDecodeError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(p, []byte("this is not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := File(p)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
	if de.Path != p {
		t.Errorf("DecodeError.Path = %q, want %q", de.Path, p)
	}
}

func TestFile_MissingFileIsDecodeError(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.jpg"))
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("got %v, want *DecodeError", err)
	}
}

func TestFromImage_DegenerateDimensions(t *testing.T) {
	_, err := FromImage(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if err == nil {
		t.Fatal("expected error for 0x0 image")
	}
	_, err = FromImage(image.NewRGBA(image.Rect(0, 0, 10, 0)))
	if err == nil {
		t.Fatal("expected error for zero-height image")
	}
}

func TestFingerprint_String(t *testing.T) {
	if got := Fingerprint(0xdeadbeef).String(); got != "00000000deadbeef" {
		t.Errorf("String() = %q, want %q", got, "00000000deadbeef")
	}
}
