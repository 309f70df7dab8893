package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req createComplaintRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	c, err := h.svc.Complaints.Create(ctx, uid(r), req.Title, req.Description, req.Category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": c.ID})
}

// MyComplaints lists the caller's own complaints, newest first.
func (h *Handler) MyComplaints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	list, err := h.svc.Complaints.Mine(ctx, uid(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AllComplaints is the rep dashboard listing, optionally filtered by status
// and category.
func (h *Handler) AllComplaints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ctx, cancel := requestContext(r)
	defer cancel()

	list, err := h.svc.Complaints.All(ctx, q.Get("status"), q.Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	c, err := h.svc.Complaints.Get(ctx, chi.URLParam(r, "id"), uid(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	c, err := h.svc.Complaints.UpdateStatus(ctx, chi.URLParam(r, "id"), uid(r), req.Status, req.Note)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "complaint": c})
}
