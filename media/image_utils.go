package media

import (
	"path/filepath"
	"strings"
)

// extensions the scanner walks and the cache can decode
var supportedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// IsRasterImage reports whether the filename carries a supported raster
// image extension.
func IsRasterImage(filename string) bool {
	return supportedImageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// IsJPEG reports whether the filename carries a JPEG extension. IPTC
// metadata is read and written for JPEG files only.
func IsJPEG(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".jpg" || ext == ".jpeg"
}
