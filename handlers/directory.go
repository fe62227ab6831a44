package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/camden-git/photometabackend/config"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/services"
	"github.com/camden-git/photometabackend/utils"
	"github.com/camden-git/photometabackend/workers"
)

// DirectoryEntry is one browsable subdirectory
type DirectoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// BrowseResult describes a directory for the folder picker. Parent is
// nil when the browse root is reached.
type BrowseResult struct {
	Current     string           `json:"current"`
	Parent      *string          `json:"parent"`
	Directories []DirectoryEntry `json:"directories"`
	ImageCount  int              `json:"image_count"`
}

type DirectoryHandler struct {
	Cfg           config.Config
	Scanner       *services.ScanService
	Pool          *workers.ScanWorkerPool
	DirectoryRepo repository.DirectoryRepositoryInterface
}

// Browse lists the subdirectories of a path for folder selection. Bad
// paths degrade gracefully: missing ones fall back to their parent or
// the browse root, files fall back to their directory.
func (dh *DirectoryHandler) Browse(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("path")
	if requested == "" {
		requested = dh.Cfg.BrowseRoot
	}

	current, err := utils.PathWithin(dh.Cfg.BrowseRoot, requested)
	if err != nil {
		log.Printf("Attempted browse outside root: Request='%s', Root='%s'", requested, dh.Cfg.BrowseRoot)
		writeError(w, http.StatusForbidden, "Path is outside the browse root")
		return
	}

	if stat, err := os.Stat(current); os.IsNotExist(err) {
		parent := filepath.Dir(current)
		if _, statErr := os.Stat(parent); statErr == nil && withinRoot(dh.Cfg.BrowseRoot, parent) {
			current = parent
		} else {
			current = dh.Cfg.BrowseRoot
		}
	} else if err == nil && !stat.IsDir() {
		current = filepath.Dir(current)
	}

	result := BrowseResult{
		Current:     current,
		Directories: []DirectoryEntry{},
		ImageCount:  dh.Scanner.CountImages(current),
	}

	if parent := filepath.Dir(current); parent != current && current != dh.Cfg.BrowseRoot {
		result.Parent = &parent
	}

	entries, err := os.ReadDir(current)
	if err != nil {
		// unreadable directories still return an empty listing
		log.Printf("Error reading directory %s: %v", current, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			result.Directories = append(result.Directories, DirectoryEntry{
				Name: entry.Name(),
				Path: filepath.Join(current, entry.Name()),
			})
		}
	}
	sort.Slice(result.Directories, func(i, j int) bool {
		return strings.ToLower(result.Directories[i].Name) < strings.ToLower(result.Directories[j].Name)
	})

	writeJSON(w, http.StatusOK, result)
}

// Open validates a folder and returns its first page of images
func (dh *DirectoryHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	folder, ok := dh.resolveFolder(w, req.Path)
	if !ok {
		return
	}

	images, err := dh.Scanner.ImagesInFolder(folder)
	if err != nil {
		log.Printf("Error listing images in %s: %v", folder, err)
		images = []string{}
	}

	pageSize := dh.Cfg.DefaultPageSize
	listing := ImageListing{
		Folder:      folder,
		Images:      pageSlice(images, 0, pageSize),
		Page:        0,
		PageSize:    pageSize,
		TotalImages: len(images),
		TotalPages:  (len(images) + pageSize - 1) / pageSize,
	}
	writeJSON(w, http.StatusOK, listing)
}

// StartScan queues a background metadata scan of a folder
func (dh *DirectoryHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path  string `json:"path"`
		Force bool   `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	folder, ok := dh.resolveFolder(w, req.Path)
	if !ok {
		return
	}

	started := dh.Pool.StartScan(folder, req.Force)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"started": started,
		"status":  dh.Pool.Status(),
	})
}

// CancelScan asks the running scan, if any, to stop
func (dh *DirectoryHandler) CancelScan(w http.ResponseWriter, r *http.Request) {
	dh.Pool.CancelScan()
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// ScanStatus reports the progress of the current scan
func (dh *DirectoryHandler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dh.Pool.Status())
}

// ListScanned returns the folders that completed a scan, most recent
// first
func (dh *DirectoryHandler) ListScanned(w http.ResponseWriter, r *http.Request) {
	dirs, err := dh.DirectoryRepo.ListAll()
	if err != nil {
		log.Printf("Error listing scanned directories: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve scanned directories")
		return
	}

	type scannedDirectory struct {
		Path       string `json:"path"`
		LastScanAt int64  `json:"last_scan_at"`
	}
	result := make([]scannedDirectory, 0, len(dirs))
	for _, dir := range dirs {
		result = append(result, scannedDirectory{Path: dir.Path, LastScanAt: dir.LastScanAt})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"directories": result})
}

// resolveFolder applies root containment and existence checks shared
// by the folder-taking endpoints
func (dh *DirectoryHandler) resolveFolder(w http.ResponseWriter, path string) (string, bool) {
	folder, err := utils.PathWithin(dh.Cfg.BrowseRoot, path)
	if err != nil {
		log.Printf("Attempted access outside root: Request='%s', Root='%s'", path, dh.Cfg.BrowseRoot)
		writeError(w, http.StatusForbidden, "Path is outside the browse root")
		return "", false
	}
	stat, err := os.Stat(folder)
	if err != nil || !stat.IsDir() {
		writeError(w, http.StatusNotFound, "Directory not found")
		return "", false
	}
	return folder, true
}

func withinRoot(root, candidate string) bool {
	_, err := utils.PathWithin(root, candidate)
	return err == nil
}
