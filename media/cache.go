package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	ThumbnailJpegQuality   = 85
	PreviewJpegQuality     = 90
	PlaceholderJpegQuality = 60

	cacheFileExtension = ".jpg"
)

// Cache generates and stores derived images (thumbnails and previews)
// in hidden directories next to the originals, so the cache travels
// with the photo folder and is cleaned up by deleting it.
//
// Cache file names are content-address-like: a SHA-256 of the absolute
// source path (plus the edge length for previews), so renaming a source
// invalidates naturally and nothing collides.
type Cache struct {
	thumbnailDirName string
	previewDirName   string
	thumbnailSize    int
	previewMaxEdge   int
}

// NewCache creates a derived-image cache using the given hidden
// directory names and default sizes.
func NewCache(thumbnailDirName, previewDirName string, thumbnailSize, previewMaxEdge int) *Cache {
	return &Cache{
		thumbnailDirName: thumbnailDirName,
		previewDirName:   previewDirName,
		thumbnailSize:    thumbnailSize,
		previewMaxEdge:   previewMaxEdge,
	}
}

// ThumbnailDirName returns the hidden directory name used for
// thumbnails, so directory walks can skip it.
func (c *Cache) ThumbnailDirName() string { return c.thumbnailDirName }

// PreviewDirName returns the hidden directory name used for previews.
func (c *Cache) PreviewDirName() string { return c.previewDirName }

func (c *Cache) thumbnailPath(imagePath string) (string, error) {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", imagePath, err)
	}
	sum := sha256.Sum256([]byte(abs))
	dir := filepath.Join(filepath.Dir(abs), c.thumbnailDirName)
	return filepath.Join(dir, hex.EncodeToString(sum[:])+cacheFileExtension), nil
}

func (c *Cache) previewPath(imagePath string, edge int) (string, error) {
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", imagePath, err)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s::%d", abs, edge)))
	dir := filepath.Join(filepath.Dir(abs), c.previewDirName)
	return filepath.Join(dir, hex.EncodeToString(sum[:])+cacheFileExtension), nil
}

// saveJPEG writes the encoded image to a temp file in the target
// directory and renames it into place, so readers never see a partial
// file.
func saveJPEG(img *image.NRGBA, path string, quality int) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString()[:8])
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	err = imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// EnsureThumbnail returns the path of a cached thumbnail for the image,
// generating it on first use. A decode failure produces a flat gray
// placeholder so broken files are not re-attempted on every request.
func (c *Cache) EnsureThumbnail(imagePath string) (string, error) {
	thumbPath, err := c.thumbnailPath(imagePath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(thumbPath); err == nil {
		return thumbPath, nil
	}
	if err := os.MkdirAll(filepath.Dir(thumbPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		log.Printf("media.cache: failed to decode %s for thumbnail: %v", imagePath, err)
		placeholder := imaging.New(c.thumbnailSize, c.thumbnailSize, color.NRGBA{R: 210, G: 210, B: 210, A: 255})
		if saveErr := saveJPEG(placeholder, thumbPath, PlaceholderJpegQuality); saveErr != nil {
			return "", saveErr
		}
		return thumbPath, nil
	}

	thumb := imaging.Fit(img, c.thumbnailSize, c.thumbnailSize, imaging.Lanczos)
	if err := saveJPEG(thumb, thumbPath, ThumbnailJpegQuality); err != nil {
		return "", err
	}
	return thumbPath, nil
}

// EnsurePreview returns the path of a cached preview whose longest edge
// is at most edge pixels, generating or refreshing it when the source
// has changed since the cached copy was made. An edge of 0 uses the
// configured default.
func (c *Cache) EnsurePreview(imagePath string, edge int) (string, error) {
	if edge <= 0 {
		edge = c.previewMaxEdge
	}
	previewPath, err := c.previewPath(imagePath, edge)
	if err != nil {
		return "", err
	}

	srcInfo, err := os.Stat(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", imagePath, err)
	}
	if cacheInfo, err := os.Stat(previewPath); err == nil {
		if !cacheInfo.ModTime().Before(srcInfo.ModTime()) {
			return previewPath, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(previewPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create preview directory: %w", err)
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s for preview: %w", imagePath, err)
	}
	preview := imaging.Fit(img, edge, edge, imaging.Lanczos)
	if err := saveJPEG(preview, previewPath, PreviewJpegQuality); err != nil {
		return "", err
	}

	// stamp the preview with the source time so freshness checks hold
	// across copies
	if err := os.Chtimes(previewPath, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		log.Printf("media.cache: failed to set preview mtime for %s: %v", imagePath, err)
	}
	return previewPath, nil
}
