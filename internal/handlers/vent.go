package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/hostel-survival-kit/internal/services"
)

type createVentRequest struct {
	Content string `json:"content"`
}

// ListVents returns the vent wall, newest first unless sort=liked.
func (h *Handler) ListVents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	vents, err := h.svc.Vents.List(ctx, services.ParseVentSort(r.URL.Query().Get("sort")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vents)
}

func (h *Handler) CreateVent(w http.ResponseWriter, r *http.Request) {
	var req createVentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	vent, err := h.svc.Vents.Create(ctx, uid(r), req.Content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": vent.ID})
}

// LikeVent toggles the caller's like.
func (h *Handler) LikeVent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	liked, likes, err := h.svc.Vents.Like(ctx, chi.URLParam(r, "id"), uid(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "likes": likes})
}
