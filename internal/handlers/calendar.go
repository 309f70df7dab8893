package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/hostel-survival-kit/internal/models"
	"github.com/AnshRaj112/hostel-survival-kit/internal/services"
)

// parseTimeout covers the upload plus the model round trip.
const parseTimeout = 90 * time.Second

type parseRequest struct {
	FileURL string `json:"fileUrl"`
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ctx, cancel := requestContext(r)
	defer cancel()

	events, err := h.svc.Calendar.List(ctx, q.Get("from"), q.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in services.EventInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	event, err := h.svc.Calendar.Create(ctx, uid(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": event.ID, "event": event})
}

// UpdateEvent applies a partial update. Only the author or a rep may call it.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var in services.EventInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	event, err := h.svc.Calendar.Update(ctx, chi.URLParam(r, "id"), uid(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "event": event})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	if err := h.svc.Calendar.Delete(ctx, chi.URLParam(r, "id"), uid(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) Countdown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	c, err := h.svc.Calendar.Countdown(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ParseCalendar extracts events from a calendar image. The image is either
// referenced by a JSON {"fileUrl"} body or uploaded as multipart field "file".
func (h *Handler) ParseCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), parseTimeout)
	defer cancel()

	var (
		events []models.CalendarEvent
		err    error
	)
	if isMultipart(r) {
		name, data, ok := readUpload(w, r)
		if !ok {
			return
		}
		events, err = h.svc.Calendar.UploadAndParse(ctx, uid(r), name, data)
	} else {
		var req parseRequest
		if derr := decode(w, r, &req); derr != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		events, err = h.svc.Calendar.ParseAndStore(ctx, uid(r), req.FileURL)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  events,
		"count":   len(events),
	})
}
