package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/photometabackend/repository"
)

// PreferenceEntry is one stored UI preference. Value is nil when the
// key has never been set.
type PreferenceEntry struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

type PreferenceHandler struct {
	PreferenceRepo repository.PreferenceRepositoryInterface
}

// List returns all stored preferences
func (ph *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	prefs, err := ph.PreferenceRepo.ListAll()
	if err != nil {
		log.Printf("Error listing preferences: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve preferences")
		return
	}

	entries := make([]PreferenceEntry, 0, len(prefs))
	for _, pref := range prefs {
		value := pref.Value
		entries = append(entries, PreferenceEntry{Key: pref.Key, Value: &value})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"preferences": entries})
}

// Get returns a single preference, with a null value when it was never
// set
func (ph *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	pref, err := ph.PreferenceRepo.Get(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusOK, PreferenceEntry{Key: key})
			return
		}
		log.Printf("Error getting preference %q: %v", key, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve preference")
		return
	}
	writeJSON(w, http.StatusOK, PreferenceEntry{Key: pref.Key, Value: &pref.Value})
}

// Set stores a preference value
func (ph *PreferenceHandler) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := ph.PreferenceRepo.Set(key, req.Value); err != nil {
		log.Printf("Error setting preference %q: %v", key, err)
		writeError(w, http.StatusInternalServerError, "Failed to store preference")
		return
	}
	writeJSON(w, http.StatusOK, PreferenceEntry{Key: key, Value: &req.Value})
}
