package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"prizedraw/service"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	spins service.SpinService
}

func NewHandler(spins service.SpinService) *Handler {
	return &Handler{spins: spins}
}

func (h *Handler) Prizes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPrizesResponse(h.spins.Prizes(), h.spins.Cost()))
}

func (h *Handler) EnterSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	var req EnterSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.spins.EnterSession(r.Context(), userID, req.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.spins.GetSession(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(view))
}

func (h *Handler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	if !h.spins.LeaveSession(userID) {
		writeError(w, http.StatusNotFound, "no active session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Spin(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.spins.Spin(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDrawResultResponse(result))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	spins, err := h.spins.GetHistory(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stats, err := h.spins.GetStats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(spins, stats))
}

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
