package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"event-registration-platform/internal/models"
)

// errorResponse is the JSON body for failed requests
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
// Capacity conflicts map to 409 so clients can distinguish them from
// plain validation failures. Anything unrecognized is an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case models.IsCapacityError(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case models.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case models.IsNotFoundError(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case models.IsAuthorizationError(err):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
