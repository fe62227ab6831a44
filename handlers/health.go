package handlers

import "net/http"

// Health reports service liveness for the desktop client's startup probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
