package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createTipRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (h *Handler) ListTips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ctx, cancel := requestContext(r)
	defer cancel()

	tips, err := h.svc.Tips.List(ctx, q.Get("tag"), q.Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tips)
}

func (h *Handler) CreateTip(w http.ResponseWriter, r *http.Request) {
	var req createTipRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	tip, err := h.svc.Tips.Create(ctx, uid(r), req.Title, req.Content, req.Category, req.Tags)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": tip.ID})
}

func (h *Handler) UpvoteTip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	upvotes, err := h.svc.Tips.Upvote(ctx, chi.URLParam(r, "id"), uid(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "upvotes": upvotes})
}

// TipLeaderboard returns the top tips with their authors' display names.
func (h *Handler) TipLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	tips, err := h.svc.Tips.Leaderboard(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tips)
}
