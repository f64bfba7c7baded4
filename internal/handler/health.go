package handler

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth is the unauthenticated liveness probe.
//
// HTTP: GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}
