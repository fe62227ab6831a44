package services

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/facette/natsort"

	"github.com/camden-git/photometabackend/iptc"
	"github.com/camden-git/photometabackend/media"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/utils"
)

// ScanService walks photo folders and mirrors the metadata embedded in
// each image into the tag index
type ScanService struct {
	dict          iptc.Dictionary
	imageRepo     repository.ImageRepositoryInterface
	directoryRepo repository.DirectoryRepositoryInterface
	skipDirNames  map[string]struct{}
}

// NewScanService creates a new scan service. skipDirNames lists the
// directory basenames (cache folders) excluded from every walk.
func NewScanService(
	dict iptc.Dictionary,
	imageRepo repository.ImageRepositoryInterface,
	directoryRepo repository.DirectoryRepositoryInterface,
	skipDirNames ...string,
) *ScanService {
	skip := make(map[string]struct{}, len(skipDirNames))
	for _, name := range skipDirNames {
		skip[name] = struct{}{}
	}
	return &ScanService{
		dict:          dict,
		imageRepo:     imageRepo,
		directoryRepo: directoryRepo,
		skipDirNames:  skip,
	}
}

// ImagesInFolder lists every image under folder recursively, in
// natural sort order, skipping cache directories
func (s *ScanService) ImagesInFolder(folder string) ([]string, error) {
	images := []string{}
	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if _, skip := s.skipDirNames[d.Name()]; skip && path != folder {
				return filepath.SkipDir
			}
			return nil
		}
		if media.IsRasterImage(path) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", folder, err)
	}
	natsort.Sort(images)
	return images, nil
}

// CountImages counts the images sitting directly in dir, without
// descending into subdirectories
func (s *ScanService) CountImages(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && media.IsRasterImage(entry.Name()) {
			count++
		}
	}
	return count
}

// PruneMissing drops index rows under folder whose files are no longer
// in the existing list and returns how many were removed
func (s *ScanService) PruneMissing(folder string, existing []string) (int64, error) {
	keep := make(map[string]struct{}, len(existing))
	for _, path := range existing {
		keep[path] = struct{}{}
	}
	return s.imageRepo.PurgeMissing(folder, keep)
}

// SelectForIndexing picks the images a scan still has to process: all
// of them when force is set, otherwise only paths with no index row
func (s *ScanService) SelectForIndexing(folder string, images []string, force bool) ([]string, error) {
	if force {
		return images, nil
	}
	indexed, err := s.imageRepo.ListIndexed(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed images for %s: %w", folder, err)
	}
	pending := make([]string, 0, len(images))
	for _, path := range images {
		if _, ok := indexed[path]; !ok {
			pending = append(pending, path)
		}
	}
	return pending, nil
}

// IndexImage mirrors the metadata embedded in one image into the tag
// index, replacing whatever the index previously held for it
func (s *ScanService) IndexImage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	image, err := s.imageRepo.GetOrCreate(path, info.ModTime().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert image row for %s: %w", path, err)
	}
	if err := s.imageRepo.ClearTags(image.ID, ""); err != nil {
		return fmt.Errorf("failed to clear tags for %s: %w", path, err)
	}

	// only JPEG files carry an IPTC block this service can read
	if media.IsJPEG(path) {
		adapter := iptc.NewAdapter(s.dict)
		if err := adapter.Open(path); err != nil {
			log.Printf("scan: skipping IPTC for %s: %v", path, err)
		} else {
			doc, err := adapter.ExportDocument()
			if err != nil {
				return fmt.Errorf("failed to read IPTC from %s: %w", path, err)
			}
			for _, entry := range s.dict.Entries() {
				value, ok := doc.IPTC[entry.Label]
				if !ok {
					continue
				}
				if err := s.imageRepo.ReplaceTags(image.ID, entry.Label, value.Strings()); err != nil {
					return fmt.Errorf("failed to index %s for %s: %w", entry.Label, path, err)
				}
			}
		}
	}

	exifValues, err := utils.ExifValues(path)
	if err != nil {
		log.Printf("scan: skipping EXIF for %s: %v", path, err)
	}
	for _, field := range utils.ExifIndexedFields {
		value, ok := exifValues[field.Tag]
		if !ok {
			continue
		}
		if err := s.imageRepo.ReplaceTags(image.ID, field.Tag, []string{value}); err != nil {
			return fmt.Errorf("failed to index %s for %s: %w", field.Tag, path, err)
		}
	}
	return nil
}

// MarkScanned records a completed pass over folder
func (s *ScanService) MarkScanned(folder string) error {
	return s.directoryRepo.MarkScanned(folder, time.Now().Unix())
}
