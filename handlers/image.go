package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/camden-git/photometabackend/config"
	"github.com/camden-git/photometabackend/media"
	"github.com/camden-git/photometabackend/repository"
	"github.com/camden-git/photometabackend/services"
	"github.com/camden-git/photometabackend/utils"
)

// ImageListing is one page of image paths under a folder
type ImageListing struct {
	Folder      string   `json:"folder"`
	Images      []string `json:"images"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
	TotalImages int      `json:"total_images"`
	TotalPages  int      `json:"total_pages"`
}

type ImageHandler struct {
	Cfg       config.Config
	Cache     *media.Cache
	Scanner   *services.ScanService
	ImageRepo repository.ImageRepositoryInterface
}

// List returns a page of image paths under a folder. Three modes:
// search terms filter through the tag index, a bare tag_type selects
// images missing that tag type, and neither lists everything on disk.
func (ih *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folder := query.Get("folder")
	search := strings.TrimSpace(query.Get("search"))
	tagType := strings.TrimSpace(query.Get("tag_type"))
	page := intQueryParam(query.Get("page"), 0)
	pageSize := intQueryParam(query.Get("page_size"), ih.Cfg.DefaultPageSize)
	if pageSize <= 0 {
		pageSize = ih.Cfg.DefaultPageSize
	}

	resolved, err := utils.PathWithin(ih.Cfg.BrowseRoot, folder)
	if err != nil {
		log.Printf("Attempted listing outside root: Request='%s', Root='%s'", folder, ih.Cfg.BrowseRoot)
		writeError(w, http.StatusForbidden, "Path is outside the browse root")
		return
	}
	folder = resolved

	var images []string
	var total int

	switch {
	case search != "":
		words := strings.Fields(search)
		images, err = ih.ImageRepo.SearchPaths(folder, words, tagType, pageSize, page*pageSize)
		if err != nil {
			log.Printf("Error searching images in %s: %v", folder, err)
			writeError(w, http.StatusInternalServerError, "Failed to search images")
			return
		}
		count, err := ih.ImageRepo.CountSearch(folder, words, tagType)
		if err != nil {
			log.Printf("Error counting search results in %s: %v", folder, err)
			writeError(w, http.StatusInternalServerError, "Failed to search images")
			return
		}
		total = int(count)

	case tagType != "":
		// images carrying no tag of this type at all
		all, err := ih.Scanner.ImagesInFolder(folder)
		if err != nil {
			log.Printf("Error listing images in %s: %v", folder, err)
			all = nil
		}
		tagged, err := ih.ImageRepo.TaggedPaths(folder, tagType)
		if err != nil {
			log.Printf("Error listing tagged images in %s: %v", folder, err)
			writeError(w, http.StatusInternalServerError, "Failed to list images")
			return
		}
		taggedSet := make(map[string]struct{}, len(tagged))
		for _, path := range tagged {
			taggedSet[path] = struct{}{}
		}
		untagged := make([]string, 0, len(all))
		for _, path := range all {
			if _, ok := taggedSet[path]; !ok {
				untagged = append(untagged, path)
			}
		}
		total = len(untagged)
		images = pageSlice(untagged, page, pageSize)

	default:
		all, err := ih.Scanner.ImagesInFolder(folder)
		if err != nil {
			log.Printf("Error listing images in %s: %v", folder, err)
			all = nil
		}
		total = len(all)
		images = pageSlice(all, page, pageSize)
	}

	if images == nil {
		images = []string{}
	}

	totalPages := 1
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	writeJSON(w, http.StatusOK, ImageListing{
		Folder:      folder,
		Images:      images,
		Page:        page,
		PageSize:    pageSize,
		TotalImages: total,
		TotalPages:  totalPages,
	})
}

// Thumbnail serves the cached thumbnail of an image, generating it on
// first access
func (ih *ImageHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	path, ok := ih.resolveImage(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}

	thumbPath, err := ih.Cache.EnsureThumbnail(path)
	if err != nil {
		log.Printf("Error generating thumbnail for %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "Thumbnail generation failed")
		return
	}
	serveCachedJPEG(w, r, thumbPath)
}

// Preview serves a cached screen-size rendition of an image
func (ih *ImageHandler) Preview(w http.ResponseWriter, r *http.Request) {
	path, ok := ih.resolveImage(w, r.URL.Query().Get("path"))
	if !ok {
		return
	}
	edge := intQueryParam(r.URL.Query().Get("edge"), ih.Cfg.PreviewMaxEdge)

	previewPath, err := ih.Cache.EnsurePreview(path, edge)
	if err != nil {
		log.Printf("Error generating preview for %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "Preview generation failed")
		return
	}
	serveCachedJPEG(w, r, previewPath)
}

// OpenInViewer hands an image to the host's default viewer
func (ih *ImageHandler) OpenInViewer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	path, ok := ih.resolveImage(w, req.Path)
	if !ok {
		return
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		writeError(w, http.StatusBadRequest, "Unsupported platform")
		return
	}

	if err := cmd.Run(); err != nil {
		log.Printf("Error opening %s in viewer: %v", path, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// resolveImage applies root containment and requires the path to be an
// existing file
func (ih *ImageHandler) resolveImage(w http.ResponseWriter, path string) (string, bool) {
	resolved, err := utils.PathWithin(ih.Cfg.BrowseRoot, path)
	if err != nil {
		log.Printf("Attempted access outside root: Request='%s', Root='%s'", path, ih.Cfg.BrowseRoot)
		writeError(w, http.StatusForbidden, "Path is outside the browse root")
		return "", false
	}
	stat, err := os.Stat(resolved)
	if err != nil || stat.IsDir() {
		writeError(w, http.StatusNotFound, "Image not found")
		return "", false
	}
	return resolved, true
}

func serveCachedJPEG(w http.ResponseWriter, r *http.Request, path string) {
	cacheDuration := 24 * time.Hour
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(cacheDuration.Seconds())))
	w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))
	http.ServeFile(w, r, path)
}

func pageSlice(paths []string, page, pageSize int) []string {
	start := page * pageSize
	if start < 0 || start >= len(paths) {
		return []string{}
	}
	end := start + pageSize
	if end > len(paths) {
		end = len(paths)
	}
	return paths[start:end]
}

func intQueryParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
