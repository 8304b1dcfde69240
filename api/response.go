package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"prizedraw/draw"
	"prizedraw/service"

	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps domain errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, draw.ErrAlreadySpinning):
		writeError(w, http.StatusConflict, "spin already in progress")
	case errors.Is(err, draw.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, service.ErrNoSession):
		writeError(w, http.StatusNotFound, "no active session")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Errorf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
