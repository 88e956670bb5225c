// Package fingerprint computes 64-bit perceptual fingerprints (difference
// hashes) of images. Hashing is pure: the same bytes always produce the
// same fingerprint, and no shared state is touched, so any number of
// goroutines may hash concurrently without synchronization.
package fingerprint

import (
	"fmt"
	"image"
	"os"

	"github.com/corona10/goimagehash"
	"github.com/disintegration/imaging"

	// Extend the set of formats image.Decode (and therefore
	// imaging.Decode) understands beyond jpeg/png/gif.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Fingerprint is a 64-bit difference hash of an image's visual content.
// Two images are duplicates iff their fingerprints are bit-identical;
// no distance threshold is applied anywhere in this program.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x", uint64(f))
}

// DecodeError reports that a file could not be parsed as an image.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// HashError reports an image whose geometry makes hashing undefined
// (zero width or height — downsampling has nothing to sample).
type HashError struct {
	Path string
	Err  error
}

func (e *HashError) Error() string {
	return fmt.Sprintf("hash %q: %v", e.Path, e.Err)
}

func (e *HashError) Unwrap() error { return e.Err }

// File decodes the image at path and returns its fingerprint.
// Returns *DecodeError for unreadable or unparseable files and
// *HashError for degenerate images.
func File(path string) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	// AutoOrientation applies the EXIF orientation tag before hashing so
	// that byte-identical copies with normalized vs tagged rotation still
	// collide.
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return 0, &DecodeError{Path: path, Err: err}
	}

	fp, err := FromImage(img)
	if err != nil {
		return 0, &HashError{Path: path, Err: err}
	}
	return fp, nil
}

// FromImage computes the fingerprint of an already-decoded image.
func FromImage(img image.Image) (Fingerprint, error) {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0, fmt.Errorf("degenerate image %dx%d", b.Dx(), b.Dy())
	}
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return 0, err
	}
	return Fingerprint(h.GetHash()), nil
}
