package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// ExifField describes one EXIF field surfaced by the tag definitions
// endpoint and indexed during scans.
type ExifField struct {
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ExifIndexedFields lists the EXIF fields whose values are indexed as
// searchable tags, keyed by the field's tag name.
var ExifIndexedFields = []ExifField{
	{Tag: "Artist", Name: "Artist", Description: "Name of the photographer or creator."},
	{Tag: "Copyright", Name: "Copyright", Description: "Copyright notice for the image."},
	{Tag: "ImageDescription", Name: "Image Description", Description: "A description of the image content."},
	{Tag: "UserComment", Name: "User Comment", Description: "User-defined comment or notes."},
	{Tag: "Software", Name: "Software", Description: "Software used to create or process the image."},
	{Tag: "Make", Name: "Camera Make", Description: "Manufacturer of the camera."},
	{Tag: "Model", Name: "Camera Model", Description: "Model of the camera."},
	{Tag: "DateTimeOriginal", Name: "Date/Time Original", Description: "Date and time when the photo was taken (YYYY:MM:DD HH:MM:SS)."},
	{Tag: "GPSLatitude", Name: "GPS Latitude", Description: "Latitude coordinate in decimal degrees."},
	{Tag: "GPSLongitude", Name: "GPS Longitude", Description: "Longitude coordinate in decimal degrees."},
	{Tag: "GPSAltitude", Name: "GPS Altitude", Description: "Altitude in meters above sea level."},
}

// helper to safely get and convert a rational tag (like GPSAltitude)
func getRational(exifData *exif.Exif, tagName exif.FieldName) *float64 {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		valInt, errInt := tag.Int(0)
		if errInt == nil {
			fVal := float64(valInt)
			return &fVal
		}
		return nil
	}
	val := float64(num) / float64(den)
	return &val
}

// helper to safely get a string tag, trimming null terminators
func getString(exifData *exif.Exif, tagName exif.FieldName) *string {
	tag, err := exifData.Get(tagName)
	if err != nil || tag == nil {
		return nil
	}
	val, err := tag.StringVal()
	if err != nil {
		return nil
	}
	val = strings.Trim(val, "\x00 ")
	if val == "" {
		return nil
	}
	return &val
}

// getUserComment handles the charset prefix UserComment values carry.
func getUserComment(exifData *exif.Exif) *string {
	tag, err := exifData.Get(exif.UserComment)
	if err != nil || tag == nil {
		return nil
	}
	raw, err := tag.StringVal()
	if err != nil {
		return nil
	}
	for _, prefix := range []string{"ASCII\x00\x00\x00", "UNICODE\x00", "JIS\x00\x00\x00\x00\x00"} {
		raw = strings.TrimPrefix(raw, prefix)
	}
	raw = strings.Trim(raw, "\x00 ")
	if raw == "" {
		return nil
	}
	return &raw
}

// ExifValues extracts the indexable EXIF fields from a file as strings
// keyed by tag name. A file without EXIF data yields an empty map, not
// an error.
func ExifValues(filePath string) (map[string]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	values := make(map[string]string)
	exifData, err := exif.Decode(file)
	if err != nil {
		// file simply lacks EXIF data
		return values, nil
	}

	put := func(field string, v *string) {
		if v != nil {
			values[field] = *v
		}
	}
	put("Artist", getString(exifData, exif.Artist))
	put("Copyright", getString(exifData, exif.Copyright))
	put("ImageDescription", getString(exifData, exif.ImageDescription))
	put("UserComment", getUserComment(exifData))
	put("Software", getString(exifData, exif.Software))
	put("Make", getString(exifData, exif.Make))
	put("Model", getString(exifData, exif.Model))
	put("DateTimeOriginal", getString(exifData, exif.DateTimeOriginal))

	if lat, lng, err := exifData.LatLong(); err == nil {
		values["GPSLatitude"] = strconv.FormatFloat(lat, 'f', 6, 64)
		values["GPSLongitude"] = strconv.FormatFloat(lng, 'f', 6, 64)
	}
	if alt := getRational(exifData, exif.GPSAltitude); alt != nil {
		values["GPSAltitude"] = strconv.FormatFloat(*alt, 'f', 1, 64)
	}

	return values, nil
}
