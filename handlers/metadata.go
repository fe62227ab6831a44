package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/camden-git/photometabackend/config"
	"github.com/camden-git/photometabackend/realtime"
	"github.com/camden-git/photometabackend/services"
	"github.com/camden-git/photometabackend/utils"
)

type MetadataHandler struct {
	Cfg  config.Config
	Meta *services.MetadataService
	Hub  *realtime.Hub
}

// Get reads metadata from an image. With tag_type it returns the
// normalized values of that one field, otherwise the full IPTC and
// EXIF snapshot.
func (mh *MetadataHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	path, ok := mh.resolveImage(w, query.Get("path"))
	if !ok {
		return
	}
	tagType := query.Get("tag_type")
	metadataType := query.Get("metadata_type")
	if metadataType == "" {
		metadataType = "iptc"
	}

	if tagType != "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"path":          path,
			"tag_type":      tagType,
			"metadata_type": metadataType,
			"values":        mh.Meta.GetTagValues(path, tagType, metadataType),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":     path,
		"metadata": mh.Meta.GetMetadata(path),
	})
}

// Update writes one field back to the image file and refreshes its
// index rows
func (mh *MetadataHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path         string   `json:"path"`
		TagType      string   `json:"tag_type"`
		MetadataType string   `json:"metadata_type"`
		Values       []string `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.TagType == "" {
		writeError(w, http.StatusBadRequest, "Missing required field: tag_type")
		return
	}
	if req.MetadataType == "" {
		req.MetadataType = "iptc"
	}

	path, ok := mh.resolveImage(w, req.Path)
	if !ok {
		return
	}

	if err := mh.Meta.SetTagValues(path, req.TagType, req.Values, req.MetadataType); err != nil {
		if errors.Is(err, services.ErrExifReadOnly) {
			writeError(w, http.StatusBadRequest, "EXIF fields cannot be modified")
			return
		}
		log.Printf("Error writing metadata to %s: %v", path, err)
		writeError(w, http.StatusInternalServerError, "Failed to write metadata")
		return
	}

	mh.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventMetadataUpdated,
		Path:    path,
		TagType: req.TagType,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Definitions lists the tag fields the API can read and write
func (mh *MetadataHandler) Definitions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mh.Meta.Definitions())
}

func (mh *MetadataHandler) resolveImage(w http.ResponseWriter, path string) (string, bool) {
	resolved, err := utils.PathWithin(mh.Cfg.BrowseRoot, path)
	if err != nil {
		log.Printf("Attempted access outside root: Request='%s', Root='%s'", path, mh.Cfg.BrowseRoot)
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
