// Package handlers translates HTTP requests into service calls and service
// results into JSON responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/hostel-survival-kit/internal/auth"
	"github.com/AnshRaj112/hostel-survival-kit/internal/services"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

type Handler struct {
	svc      *services.Services
	hub      *services.Hub
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

// New builds the handler set. allowedOrigins gates WebSocket upgrades the
// same way CORS gates XHR.
func New(svc *services.Services, hub *services.Hub, log *logrus.Logger, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}

	return &Handler{
		svc: svc,
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[strings.ToLower(origin)]
				return ok
			},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

var statusByKind = map[services.Kind]int{
	services.KindValidation:      http.StatusBadRequest,
	services.KindUnauthenticated: http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindUpstream:        http.StatusInternalServerError,
	services.KindStore:           http.StatusInternalServerError,
}

// fail maps a service error onto its status code. Store failures are logged
// and reported generically.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	msg := "Something went wrong"
	var se *services.Error
	if errors.As(err, &se) && kind != services.KindStore {
		msg = se.Message
	}

	if status >= 500 {
		h.log.WithError(err).WithFields(logrus.Fields{
			"request_id": w.Header().Get("X-Request-ID"),
			"kind":       kind.String(),
			"path":       r.URL.Path,
		}).Error("request failed")
	}
	writeError(w, status, msg)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// uid returns the authenticated caller. Routes using it sit behind the auth
// middleware.
func uid(r *http.Request) string {
	if id := auth.FromContext(r.Context()); id != nil {
		return id.UID
	}
	return ""
}

const requestTimeout = 5 * time.Second

// requestContext bounds a store round trip to the request's lifetime and a
// fixed timeout.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}
