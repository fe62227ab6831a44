package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/camden-git/photometabackend/iim"
	"github.com/camden-git/photometabackend/iptc"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/utils"
)

// ErrExifReadOnly is returned when a caller asks to modify EXIF fields.
// EXIF values can be read and indexed but not written back.
var ErrExifReadOnly = errors.New("exif metadata is read-only")

// Metadata groups every value embedded in an image by metadata family
type Metadata struct {
	IPTC map[string]iptc.Value `json:"iptc"`
	Exif map[string]string     `json:"exif"`
}

// TagDefinitions lists the fields the API can read and, for IPTC, write
type TagDefinitions struct {
	IPTC []iptc.Entry      `json:"iptc"`
	Exif []utils.ExifField `json:"exif"`
}

// MetadataService reads and writes embedded photo metadata and keeps
// the tag index in step with what the files actually contain
type MetadataService struct {
	dict      iptc.Dictionary
	imageRepo repository.ImageRepositoryInterface
}

// NewMetadataService creates a new metadata service
func NewMetadataService(dict iptc.Dictionary, imageRepo repository.ImageRepositoryInterface) *MetadataService {
	return &MetadataService{
		dict:      dict,
		imageRepo: imageRepo,
	}
}

// Definitions returns the tag fields exposed by the API
func (s *MetadataService) Definitions() TagDefinitions {
	return TagDefinitions{
		IPTC: s.dict.Entries(),
		Exif: utils.ExifIndexedFields,
	}
}

// GetMetadata reads all IPTC and EXIF values from an image. Read
// failures are logged and yield empty sections rather than an error so
// a browse over mixed content keeps working.
func (s *MetadataService) GetMetadata(path string) Metadata {
	meta := Metadata{
		IPTC: map[string]iptc.Value{},
		Exif: map[string]string{},
	}

	adapter := iptc.NewAdapter(s.dict)
	if err := adapter.Open(path); err != nil {
		if !errors.Is(err, iim.ErrNotJPEG) {
			log.Printf("metadata: failed to open %s: %v", path, err)
		}
	} else if doc, err := adapter.ExportDocument(); err != nil {
		log.Printf("metadata: failed to export IPTC from %s: %v", path, err)
	} else if doc.IPTC != nil {
		meta.IPTC = doc.IPTC
	}

	exifValues, err := utils.ExifValues(path)
	if err != nil {
		log.Printf("metadata: failed to read EXIF from %s: %v", path, err)
	} else {
		meta.Exif = exifValues
	}

	return meta
}

// GetTagValues returns the normalized values of one field: trimmed,
// with blanks dropped, and absent fields rendered as an empty list
func (s *MetadataService) GetTagValues(path, tagType, metadataType string) []string {
	meta := s.GetMetadata(path)

	switch metadataType {
	case "exif":
		return normalizeTagValues([]string{meta.Exif[tagType]})
	case "iptc":
		value, ok := meta.IPTC[tagType]
		if !ok {
			return []string{}
		}
		return normalizeTagValues(value.Strings())
	default:
		return []string{}
	}
}

// SetTagValues writes one IPTC field to the image file and then swaps
// the image's index rows of that tag type for the same values
func (s *MetadataService) SetTagValues(path, tagType string, values []string, metadataType string) error {
	if metadataType != "iptc" {
		return fmt.Errorf("cannot write %s field %s: %w", metadataType, tagType, ErrExifReadOnly)
	}

	var value iptc.Value
	if s.dict.IsMulti(tagType) {
		value = iptc.List(values...)
	} else if len(values) > 0 {
		value = iptc.Scalar(values[0])
	} else {
		value = iptc.Scalar("")
	}

	adapter := iptc.NewAdapter(s.dict)
	if err := adapter.Open(path); err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	doc := iptc.Document{IPTC: map[string]iptc.Value{tagType: value}}
	if err := adapter.ImportDocument(doc); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", tagType, path, err)
	}

	return s.reindexField(path, tagType, values)
}

// reindexField refreshes the index rows of one tag type after a write
func (s *MetadataService) reindexField(path, tagType string, values []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s after write: %w", path, err)
	}
	image, err := s.imageRepo.GetOrCreate(path, info.ModTime().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert image row for %s: %w", path, err)
	}
	if err := s.imageRepo.ReplaceTags(image.ID, tagType, values); err != nil {
		return fmt.Errorf("failed to reindex %s for %s: %w", tagType, path, err)
	}
	return nil
}

func normalizeTagValues(values []string) []string {
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
