package services_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/camden-git/photometabackend/database"
	"github.com/camden-git/photometabackend/iptc"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func writeTestJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	img := imaging.New(16, 16, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(85)))
	return path
}

func newMetadataService(t *testing.T) (*services.MetadataService, repository.ImageRepositoryInterface) {
	t.Helper()
	imageRepo := repository.NewImageRepository(setupTestDB(t))
	return services.NewMetadataService(iptc.DefaultDictionary(), imageRepo), imageRepo
}

func TestSetTagValuesWritesFileAndIndex(t *testing.T) {
	svc, imageRepo := newMetadataService(t)
	folder := t.TempDir()
	path := writeTestJPEG(t, folder, "photo.jpg")

	require.NoError(t, svc.SetTagValues(path, "Keywords", []string{"harbor", "sunset"}, "iptc"))

	// values come back from the file, not the index
	require.Equal(t, []string{"harbor", "sunset"}, svc.GetTagValues(path, "Keywords", "iptc"))

	// and the index can find the image through them
	paths, err := imageRepo.SearchPaths(folder, []string{"harbor"}, "", 10, 0)
	require.NoError(t, err)
	require.Equal(t, []string{path}, paths)
}

func TestSetTagValuesScalarKeepsFirstValue(t *testing.T) {
	svc, _ := newMetadataService(t)
	path := writeTestJPEG(t, t.TempDir(), "photo.jpg")

	require.NoError(t, svc.SetTagValues(path, "Caption", []string{"first", "second"}, "iptc"))
	require.Equal(t, []string{"first"}, svc.GetTagValues(path, "Caption", "iptc"))
}

func TestSetTagValuesEmptyListClearsField(t *testing.T) {
	svc, imageRepo := newMetadataService(t)
	folder := t.TempDir()
	path := writeTestJPEG(t, folder, "photo.jpg")

	require.NoError(t, svc.SetTagValues(path, "Keywords", []string{"harbor"}, "iptc"))
	require.NoError(t, svc.SetTagValues(path, "Keywords", nil, "iptc"))

	require.Empty(t, svc.GetTagValues(path, "Keywords", "iptc"))

	paths, err := imageRepo.SearchPaths(folder, []string{"harbor"}, "", 10, 0)
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestSetTagValuesRejectsExif(t *testing.T) {
	svc, _ := newMetadataService(t)
	path := writeTestJPEG(t, t.TempDir(), "photo.jpg")

	err := svc.SetTagValues(path, "Artist", []string{"someone"}, "exif")
	require.ErrorIs(t, err, services.ErrExifReadOnly)
}

func TestGetTagValuesNormalizesWhitespace(t *testing.T) {
	svc, _ := newMetadataService(t)
	path := writeTestJPEG(t, t.TempDir(), "photo.jpg")

	require.NoError(t, svc.SetTagValues(path, "Keywords", []string{"  padded  ", "", "plain"}, "iptc"))
	require.Equal(t, []string{"padded", "plain"}, svc.GetTagValues(path, "Keywords", "iptc"))
}

func TestGetTagValuesAbsentField(t *testing.T) {
	svc, _ := newMetadataService(t)
	path := writeTestJPEG(t, t.TempDir(), "photo.jpg")

	require.Empty(t, svc.GetTagValues(path, "Headline", "iptc"))
	require.Empty(t, svc.GetTagValues(path, "Artist", "exif"))
	require.Empty(t, svc.GetTagValues(path, "Keywords", "unknown"))
}

func TestGetMetadataCombinesSections(t *testing.T) {
	svc, _ := newMetadataService(t)
	path := writeTestJPEG(t, t.TempDir(), "photo.jpg")

	require.NoError(t, svc.SetTagValues(path, "Keywords", []string{"harbor"}, "iptc"))
	require.NoError(t, svc.SetTagValues(path, "Caption", []string{"dusk at the pier"}, "iptc"))

	meta := svc.GetMetadata(path)
	require.Equal(t, []string{"harbor"}, meta.IPTC["Keywords"].Strings())
	require.True(t, meta.IPTC["Keywords"].IsList())
	require.Equal(t, []string{"dusk at the pier"}, meta.IPTC["Caption"].Strings())
	require.NotNil(t, meta.Exif)
}

func TestGetMetadataMissingFile(t *testing.T) {
	svc, _ := newMetadataService(t)

	meta := svc.GetMetadata(filepath.Join(t.TempDir(), "gone.jpg"))
	require.Empty(t, meta.IPTC)
	require.Empty(t, meta.Exif)
}

func TestSetTagValuesMissingFile(t *testing.T) {
	svc, _ := newMetadataService(t)

	err := svc.SetTagValues(filepath.Join(t.TempDir(), "gone.jpg"), "Keywords", []string{"x"}, "iptc")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefinitionsListBothFamilies(t *testing.T) {
	svc, _ := newMetadataService(t)

	defs := svc.Definitions()
	require.Len(t, defs.IPTC, 18)
	require.Len(t, defs.Exif, 11)

	labels := make(map[string]bool, len(defs.IPTC))
	for _, entry := range defs.IPTC {
		labels[entry.Label] = true
	}
	require.True(t, labels["Keywords"])
	require.True(t, labels["Caption"])
}
