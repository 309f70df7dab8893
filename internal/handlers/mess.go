package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// rateRequest accepts the rating as a JSON number or a numeric string.
type rateRequest struct {
	Rating  json.Number `json:"rating"`
	Meal    string      `json:"meal"`
	Comment string      `json:"comment"`
}

func (h *Handler) RateMess(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, err := strconv.Atoi(req.Rating.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	rating, err := h.svc.Mess.Rate(ctx, uid(r), value, req.Meal, req.Comment)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": rating.ID})
}

func (h *Handler) MessStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	stats, err := h.svc.Mess.Stats(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// MessSummaries lists the weekly snapshots, newest first.
func (h *Handler) MessSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	summaries, err := h.svc.Mess.Summaries(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}
