package services_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photometabackend/config"
	"github.com/camden-git/photometabackend/iptc"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/services"
)

type scanFixture struct {
	svc           *services.ScanService
	imageRepo     repository.ImageRepositoryInterface
	directoryRepo repository.DirectoryRepositoryInterface
	folder        string
}

func newScanFixture(t *testing.T) scanFixture {
	t.Helper()
	db := setupTestDB(t)
	imageRepo := repository.NewImageRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	svc := services.NewScanService(
		iptc.DefaultDictionary(),
		imageRepo,
		directoryRepo,
		config.DefaultThumbnailDirName,
		config.DefaultPreviewDirName,
	)
	return scanFixture{svc: svc, imageRepo: imageRepo, directoryRepo: directoryRepo, folder: t.TempDir()}
}

func setKeywords(t *testing.T, path string, values ...string) {
	t.Helper()
	adapter := iptc.NewAdapter(iptc.DefaultDictionary())
	require.NoError(t, adapter.Open(path))
	doc := iptc.Document{IPTC: map[string]iptc.Value{"Keywords": iptc.List(values...)}}
	require.NoError(t, adapter.ImportDocument(doc))
}

func TestImagesInFolderSkipsCacheDirs(t *testing.T) {
	fx := newScanFixture(t)

	writeTestJPEG(t, fx.folder, "b.jpg")
	writeTestJPEG(t, fx.folder, "a.jpg")
	require.NoError(t, os.WriteFile(filepath.Join(fx.folder, "notes.txt"), []byte("not an image"), 0644))

	nested := filepath.Join(fx.folder, "trip")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeTestJPEG(t, nested, "c.jpg")

	for _, cacheDir := range []string{config.DefaultThumbnailDirName, config.DefaultPreviewDirName} {
		dir := filepath.Join(fx.folder, cacheDir)
		require.NoError(t, os.MkdirAll(dir, 0755))
		writeTestJPEG(t, dir, "cached.jpg")
	}

	images, err := fx.svc.ImagesInFolder(fx.folder)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(fx.folder, "a.jpg"),
		filepath.Join(fx.folder, "b.jpg"),
		filepath.Join(nested, "c.jpg"),
	}, images)
}

func TestImagesInFolderNaturalOrder(t *testing.T) {
	fx := newScanFixture(t)

	for _, name := range []string{"img10.jpg", "img2.jpg", "img1.jpg"} {
		writeTestJPEG(t, fx.folder, name)
	}

	images, err := fx.svc.ImagesInFolder(fx.folder)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(fx.folder, "img1.jpg"),
		filepath.Join(fx.folder, "img2.jpg"),
		filepath.Join(fx.folder, "img10.jpg"),
	}, images)
}

func TestCountImagesIsNonRecursive(t *testing.T) {
	fx := newScanFixture(t)

	writeTestJPEG(t, fx.folder, "a.jpg")
	writeTestJPEG(t, fx.folder, "b.jpg")
	nested := filepath.Join(fx.folder, "trip")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeTestJPEG(t, nested, "c.jpg")

	require.Equal(t, 2, fx.svc.CountImages(fx.folder))
	require.Equal(t, 0, fx.svc.CountImages(filepath.Join(fx.folder, "missing")))
}

func TestIndexImageMirrorsFileMetadata(t *testing.T) {
	fx := newScanFixture(t)
	path := writeTestJPEG(t, fx.folder, "photo.jpg")
	setKeywords(t, path, "harbor", "sunset")

	require.NoError(t, fx.svc.IndexImage(path))

	found, err := fx.imageRepo.SearchPaths(fx.folder, []string{"sunset"}, "Keywords", 10, 0)
	require.NoError(t, err)
	require.Equal(t, []string{path}, found)

	tagged, err := fx.imageRepo.TaggedPaths(fx.folder, "Keywords")
	require.NoError(t, err)
	require.Equal(t, []string{path}, tagged)
}

func TestIndexImageReplacesStaleTags(t *testing.T) {
	fx := newScanFixture(t)
	path := writeTestJPEG(t, fx.folder, "photo.jpg")

	setKeywords(t, path, "harbor")
	require.NoError(t, fx.svc.IndexImage(path))

	setKeywords(t, path, "sunset")
	require.NoError(t, fx.svc.IndexImage(path))

	stale, err := fx.imageRepo.SearchPaths(fx.folder, []string{"harbor"}, "", 10, 0)
	require.NoError(t, err)
	require.Empty(t, stale)

	fresh, err := fx.imageRepo.SearchPaths(fx.folder, []string{"sunset"}, "", 10, 0)
	require.NoError(t, err)
	require.Equal(t, []string{path}, fresh)
}

func TestIndexImageHandlesImageWithoutMetadata(t *testing.T) {
	fx := newScanFixture(t)
	path := writeTestJPEG(t, fx.folder, "photo.jpg")

	require.NoError(t, fx.svc.IndexImage(path))

	image, err := fx.imageRepo.GetByPath(path)
	require.NoError(t, err)
	require.NotZero(t, image.ID)

	tagged, err := fx.imageRepo.TaggedPaths(fx.folder, "Keywords")
	require.NoError(t, err)
	require.Empty(t, tagged)
}

func TestIndexImageNonJPEGGetsRowWithoutTags(t *testing.T) {
	fx := newScanFixture(t)
	path := filepath.Join(fx.folder, "flat.png")
	img := imaging.New(8, 8, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))

	require.NoError(t, fx.svc.IndexImage(path))

	image, err := fx.imageRepo.GetByPath(path)
	require.NoError(t, err)
	require.NotZero(t, image.ID)

	tagged, err := fx.imageRepo.TaggedPaths(fx.folder, "Keywords")
	require.NoError(t, err)
	require.Empty(t, tagged)
}

func TestSelectForIndexingSkipsIndexed(t *testing.T) {
	fx := newScanFixture(t)
	first := writeTestJPEG(t, fx.folder, "first.jpg")
	second := writeTestJPEG(t, fx.folder, "second.jpg")

	require.NoError(t, fx.svc.IndexImage(first))

	pending, err := fx.svc.SelectForIndexing(fx.folder, []string{first, second}, false)
	require.NoError(t, err)
	require.Equal(t, []string{second}, pending)

	forced, err := fx.svc.SelectForIndexing(fx.folder, []string{first, second}, true)
	require.NoError(t, err)
	require.Equal(t, []string{first, second}, forced)
}

func TestPruneMissingDropsDeletedFiles(t *testing.T) {
	fx := newScanFixture(t)
	kept := writeTestJPEG(t, fx.folder, "kept.jpg")
	gone := writeTestJPEG(t, fx.folder, "gone.jpg")

	require.NoError(t, fx.svc.IndexImage(kept))
	require.NoError(t, fx.svc.IndexImage(gone))
	require.NoError(t, os.Remove(gone))

	purged, err := fx.svc.PruneMissing(fx.folder, []string{kept})
	require.NoError(t, err)
	require.EqualValues(t, 1, purged)

	indexed, err := fx.imageRepo.ListIndexed(fx.folder)
	require.NoError(t, err)
	require.Contains(t, indexed, kept)
	require.NotContains(t, indexed, gone)
}

func TestMarkScanned(t *testing.T) {
	fx := newScanFixture(t)

	scanned, err := fx.directoryRepo.IsScanned(fx.folder)
	require.NoError(t, err)
	require.False(t, scanned)

	require.NoError(t, fx.svc.MarkScanned(fx.folder))

	scanned, err = fx.directoryRepo.IsScanned(fx.folder)
	require.NoError(t, err)
	require.True(t, scanned)
}
