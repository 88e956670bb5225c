// Package media classifies files by extension so the walker can cheaply
// decide which paths are worth fingerprinting.
package media

import (
	"path/filepath"
	"strings"
)

// imageExts lists the extensions the fingerprint decoder can actually
// handle. heic/heif/avif are deliberately absent: there is no pure-Go
// decoder for them, so admitting them would only produce decode skips.
var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".tif": true,
}

// IsImage reports whether path has a recognized image extension.
// The check is purely name-based; content validation happens at decode.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}
