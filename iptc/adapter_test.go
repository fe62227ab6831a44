package iptc_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photometabackend/iim"
	"github.com/camden-git/photometabackend/iptc"
)

func writeTestJPEG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	img := imaging.New(16, 16, color.NRGBA{R: 30, G: 90, B: 160, A: 255})
	require.NoError(t, imaging.Save(img, path, imaging.JPEGQuality(85)))
	return path
}

func openAdapter(t *testing.T, path string) *iptc.Adapter {
	t.Helper()
	a := iptc.NewAdapter(iptc.DefaultDictionary())
	require.NoError(t, a.Open(path))
	return a
}

func TestImportExportRoundTrip(t *testing.T) {
	path := writeTestJPEG(t)

	doc := iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("alpha", "beta"),
		"Caption":  iptc.Scalar("An evening view"),
		"By-line":  iptc.Scalar("R. Calder"),
		"City":     iptc.Scalar("Utrecht"),
		"Urgency":  iptc.Scalar("5"),
	}}

	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(doc))

	got, err := a.ExportDocument()
	require.NoError(t, err)
	require.Equal(t, doc.IPTC, got.IPTC)

	// the same document must come back through a fresh adapter
	reopened := openAdapter(t, path)
	got, err = reopened.ExportDocument()
	require.NoError(t, err)
	require.Equal(t, doc.IPTC, got.IPTC)
}

func TestKeywordsExportAsListWithOneValue(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("solo"),
		"City":     iptc.Scalar("Bergen"),
	}}))

	got, err := a.ExportDocument()
	require.NoError(t, err)
	require.True(t, got.IPTC["Keywords"].IsList())
	require.Equal(t, []string{"solo"}, got.IPTC["Keywords"].Strings())
	require.False(t, got.IPTC["City"].IsList())
}

func TestExportDeduplicatesValues(t *testing.T) {
	path := writeTestJPEG(t)

	// plant a duplicated run directly, bypassing the adapter
	f, rs, err := iim.Open(path)
	require.NoError(t, err)
	rs.Add(iim.Record{Record: 2, Dataset: 25, Value: "alpha"})
	rs.Add(iim.Record{Record: 2, Dataset: 25, Value: "beta"})
	rs.Add(iim.Record{Record: 2, Dataset: 25, Value: "alpha"})
	require.NoError(t, f.Flush(rs))

	a := openAdapter(t, path)
	got, err := a.ExportDocument()
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta"}, got.IPTC["Keywords"].Strings())
}

func TestExportFallsBackToRawKey(t *testing.T) {
	path := writeTestJPEG(t)

	f, rs, err := iim.Open(path)
	require.NoError(t, err)
	rs.Add(iim.Record{Record: 2, Dataset: 200, Value: "mystery"})
	require.NoError(t, f.Flush(rs))

	a := openAdapter(t, path)
	got, err := a.ExportDocument()
	require.NoError(t, err)
	require.Equal(t, "mystery", got.IPTC["Iptc.Application2.0x00c8"].Strings()[0])
}

func TestSetTagIdempotent(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.SetTag("Iptc.Application2.City", "Oslo"))
	require.NoError(t, a.SetTag("Iptc.Application2.City", "Oslo"))

	value, err := a.GetTag("Iptc.Application2.City")
	require.NoError(t, err)
	require.Equal(t, "Oslo", value)

	// exactly one record on disk
	_, rs, err := iim.Open(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Oslo"}, rs.ValuesOf(2, 90))
}

func TestSetTagReplacesRun(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("one", "two", "three"),
	}}))
	require.NoError(t, a.SetTag("Iptc.Application2.Keywords", "only"))

	_, rs, err := iim.Open(path)
	require.NoError(t, err)
	require.Equal(t, []string{"only"}, rs.ValuesOf(2, 25))
}

func TestSetTagLeavesOtherFieldsAlone(t *testing.T) {
	path := writeTestJPEG(t)

	seed := iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("alpha", "beta"),
		"Caption":  iptc.Scalar("before"),
		"By-line":  iptc.Scalar("R. Calder"),
	}}
	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(seed))

	require.NoError(t, a.SetTag("Iptc.Application2.City", "Paris"))

	got, err := openAdapter(t, path).ExportDocument()
	require.NoError(t, err)
	require.Equal(t, seed.IPTC["Keywords"], got.IPTC["Keywords"])
	require.Equal(t, seed.IPTC["Caption"], got.IPTC["Caption"])
	require.Equal(t, seed.IPTC["By-line"], got.IPTC["By-line"])
	require.Equal(t, iptc.Scalar("Paris"), got.IPTC["City"])
}

func TestGetTagAbsentReturnsEmpty(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	value, err := a.GetTag("Iptc.Application2.Headline")
	require.NoError(t, err)
	require.Equal(t, "", value)
}

func TestGetTagUnknownKey(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	_, err := a.GetTag("Exif.Image.Artist")
	require.ErrorIs(t, err, iim.ErrUnknownKey)
}

func TestImportSkipsUnknownLabels(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"NotARealField": iptc.Scalar("ignored"),
		"Caption":       iptc.Scalar("kept"),
	}}))

	got, err := a.ExportDocument()
	require.NoError(t, err)
	require.Equal(t, iptc.Scalar("kept"), got.IPTC["Caption"])
	require.NotContains(t, got.IPTC, "NotARealField")
}

func TestImportWithoutSectionIsNoOp(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.SetTag("Iptc.Application2.City", "Kyoto"))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, a.ImportDocument(iptc.Document{}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestImportOverwritesExistingRuns(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("stale", "old"),
		"City":     iptc.Scalar("Lagos"),
	}}))
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("fresh"),
	}}))

	got, err := openAdapter(t, path).ExportDocument()
	require.NoError(t, err)
	require.Equal(t, iptc.List("fresh"), got.IPTC["Keywords"])
	require.Equal(t, iptc.Scalar("Lagos"), got.IPTC["City"])
}

func TestImportEmptyListClearsField(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List("doomed"),
		"Caption":  iptc.Scalar("stays"),
	}}))
	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Keywords": iptc.List(),
	}}))

	got, err := openAdapter(t, path).ExportDocument()
	require.NoError(t, err)
	require.NotContains(t, got.IPTC, "Keywords")
	require.Equal(t, iptc.Scalar("stays"), got.IPTC["Caption"])
}

func TestOperationsBeforeOpen(t *testing.T) {
	a := iptc.NewAdapter(iptc.DefaultDictionary())

	_, err := a.GetTag("Iptc.Application2.City")
	require.ErrorIs(t, err, iptc.ErrNotOpen)
	require.ErrorIs(t, a.SetTag("Iptc.Application2.City", "x"), iptc.ErrNotOpen)
	_, err = a.ExportDocument()
	require.ErrorIs(t, err, iptc.ErrNotOpen)
	require.ErrorIs(t, a.ImportDocument(iptc.Document{}), iptc.ErrNotOpen)
}

func TestFailedOpenIsTerminal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.jpg")

	a := iptc.NewAdapter(iptc.DefaultDictionary())
	err := a.Open(missing)
	require.Error(t, err)

	var openErr *iptc.OpenError
	require.ErrorAs(t, err, &openErr)
	require.Equal(t, missing, openErr.Path)

	// every operation keeps failing, and the adapter cannot be reopened
	_, err = a.GetTag("Iptc.Application2.City")
	require.ErrorIs(t, err, iptc.ErrNotOpen)
	require.ErrorIs(t, a.SetTag("Iptc.Application2.City", "x"), iptc.ErrNotOpen)
	_, err = a.ExportDocument()
	require.ErrorIs(t, err, iptc.ErrNotOpen)
	require.ErrorIs(t, a.ImportDocument(iptc.Document{}), iptc.ErrNotOpen)
	require.ErrorIs(t, a.Open(writeTestJPEG(t)), iptc.ErrAlreadyOpened)
}

func TestOpenRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	a := iptc.NewAdapter(iptc.DefaultDictionary())
	err := a.Open(path)
	var openErr *iptc.OpenError
	require.ErrorAs(t, err, &openErr)
	require.ErrorIs(t, err, iim.ErrNotJPEG)
}

func TestDoubleOpen(t *testing.T) {
	path := writeTestJPEG(t)

	a := openAdapter(t, path)
	require.ErrorIs(t, a.Open(path), iptc.ErrAlreadyOpened)
}

func TestCustomDictionary(t *testing.T) {
	path := writeTestJPEG(t)

	dict := iptc.NewDictionary([]iptc.Entry{
		{Label: "Title", RawKey: "Iptc.Application2.ObjectName"},
		{Label: "Tags", RawKey: "Iptc.Application2.Keywords", Multi: true},
	})
	a := iptc.NewAdapter(dict)
	require.NoError(t, a.Open(path))

	require.NoError(t, a.ImportDocument(iptc.Document{IPTC: map[string]iptc.Value{
		"Title": iptc.Scalar("Renamed"),
		// the default label is unknown to this dictionary
		"ObjectName": iptc.Scalar("dropped"),
	}}))

	// export resolves through the library names, not the dictionary
	got, err := openAdapter(t, path).ExportDocument()
	require.NoError(t, err)
	require.Equal(t, iptc.Scalar("Renamed"), got.IPTC["ObjectName"])
	require.Len(t, got.IPTC, 1)
}
