package media

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func newTestCache() *Cache {
	return NewCache(".thumbnails", ".previews", 250, 2048)
}

func writeSourceImage(t *testing.T, dir string, width, height int) string {
	t.Helper()
	path := filepath.Join(dir, "source.jpg")
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 140, B: 60, A: 255})
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(90)))
	return path
}

func TestEnsureThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceImage(t, dir, 1200, 800)
	cache := newTestCache()

	thumbPath, err := cache.EnsureThumbnail(src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".thumbnails"), filepath.Dir(thumbPath))

	thumb, err := imaging.Open(thumbPath)
	require.NoError(t, err)
	require.Equal(t, 250, thumb.Bounds().Dx())
	require.Equal(t, 166, thumb.Bounds().Dy())

	// second call serves the cached file
	info, err := os.Stat(thumbPath)
	require.NoError(t, err)
	cachedPath, err := cache.EnsureThumbnail(src)
	require.NoError(t, err)
	require.Equal(t, thumbPath, cachedPath)
	after, err := os.Stat(thumbPath)
	require.NoError(t, err)
	require.Equal(t, info.ModTime(), after.ModTime())
}

func TestEnsureThumbnailSmallSourceKeepsSize(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceImage(t, dir, 100, 60)
	cache := newTestCache()

	thumbPath, err := cache.EnsureThumbnail(src)
	require.NoError(t, err)

	thumb, err := imaging.Open(thumbPath)
	require.NoError(t, err)
	require.Equal(t, 100, thumb.Bounds().Dx())
	require.Equal(t, 60, thumb.Bounds().Dy())
}

func TestEnsureThumbnailPlaceholderOnDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))
	cache := newTestCache()

	thumbPath, err := cache.EnsureThumbnail(src)
	require.NoError(t, err)

	placeholder, err := imaging.Open(thumbPath)
	require.NoError(t, err)
	require.Equal(t, 250, placeholder.Bounds().Dx())
	require.Equal(t, 250, placeholder.Bounds().Dy())
}

func TestEnsurePreviewRefreshesWhenSourceChanges(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceImage(t, dir, 4000, 3000)
	cache := newTestCache()

	previewPath, err := cache.EnsurePreview(src, 1024)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ".previews"), filepath.Dir(previewPath))

	preview, err := imaging.Open(previewPath)
	require.NoError(t, err)
	require.Equal(t, 1024, preview.Bounds().Dx())
	require.Equal(t, 768, preview.Bounds().Dy())

	// preview carries the source's mtime
	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	prevInfo, err := os.Stat(previewPath)
	require.NoError(t, err)
	require.WithinDuration(t, srcInfo.ModTime(), prevInfo.ModTime(), time.Second)

	// touching the source invalidates the cache entry
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(src, future, future))
	refreshed, err := cache.EnsurePreview(src, 1024)
	require.NoError(t, err)
	require.Equal(t, previewPath, refreshed)
	prevInfo, err = os.Stat(previewPath)
	require.NoError(t, err)
	require.WithinDuration(t, future, prevInfo.ModTime(), time.Second)
}

func TestEnsurePreviewDistinctEdges(t *testing.T) {
	dir := t.TempDir()
	src := writeSourceImage(t, dir, 4000, 3000)
	cache := newTestCache()

	small, err := cache.EnsurePreview(src, 512)
	require.NoError(t, err)
	large, err := cache.EnsurePreview(src, 2048)
	require.NoError(t, err)
	require.NotEqual(t, small, large)
}

func TestEnsurePreviewMissingSource(t *testing.T) {
	cache := newTestCache()
	_, err := cache.EnsurePreview(filepath.Join(t.TempDir(), "absent.jpg"), 512)
	require.Error(t, err)
}

func TestIsRasterImage(t *testing.T) {
	require.True(t, IsRasterImage("photo.JPG"))
	require.True(t, IsRasterImage("scan.tiff"))
	require.True(t, IsRasterImage("pixel.png"))
	require.False(t, IsRasterImage("anim.gif"))
	require.False(t, IsRasterImage("notes.txt"))
	require.False(t, IsRasterImage("archive.zip"))

	require.True(t, IsJPEG("photo.jpeg"))
	require.False(t, IsJPEG("pixel.png"))
}
