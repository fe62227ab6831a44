package handlers

import (
	"log"
	"net/http"

	"github.com/camden-git/photometabackend/repository"
)

const defaultTagSearchLimit = 20

type TagHandler struct {
	TagRepo repository.TagRepositoryInterface
}

// List returns every distinct tag value, optionally restricted to one
// tag type
func (th *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := th.TagRepo.ListNames(r.URL.Query().Get("tag_type"))
	if err != nil {
		log.Printf("Error listing tags: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve tags")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}

// Search returns tag values containing the query text, for typeahead
func (th *TagHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := intQueryParam(query.Get("limit"), defaultTagSearchLimit)
	if limit <= 0 {
		limit = defaultTagSearchLimit
	}

	tags, err := th.TagRepo.SearchNames(query.Get("q"), query.Get("tag_type"), limit)
	if err != nil {
		log.Printf("Error searching tags for %q: %v", query.Get("q"), err)
		writeError(w, http.StatusInternalServerError, "Failed to search tags")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tags": tags})
}
