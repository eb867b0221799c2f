package sketch

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/auth"
)

const maxBodySize = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeInto(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	sk, err := h.service.Create(r.Context(), req.Name, auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "create sketch", err)
		return
	}
	respond(w, http.StatusCreated, sk)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sk, err := h.service.Get(r.Context(), sketchID(r), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "get sketch", err)
		return
	}
	respond(w, http.StatusOK, sk)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sketches, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "list sketches", err)
		return
	}
	if sketches == nil {
		sketches = []Sketch{}
	}
	respond(w, http.StatusOK, sketches)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), sketchID(r), auth.UserIDFromContext(r.Context())); err != nil {
		h.fail(w, "delete sketch", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeInto(w, r, &req) {
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	err := h.service.InviteByEmail(r.Context(), sketchID(r), auth.UserIDFromContext(r.Context()), req.Email)
	if err != nil {
		h.fail(w, "invite member", err)
		return
	}
	respond(w, http.StatusCreated, map[string]string{"status": "invited"})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), sketchID(r), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "list members", err)
		return
	}
	respond(w, http.StatusOK, members)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveMember(r.Context(), sketchID(r), auth.UserIDFromContext(r.Context()), mux.Vars(r)["userId"])
	if err != nil {
		h.fail(w, "remove member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetLatestSnapshot(r.Context(), sketchID(r), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.fail(w, "get snapshot", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// fail maps service errors onto the API's error taxonomy. Non-members get
// the same 404 as a missing sketch, so the API does not leak which sketch
// ids exist.
func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotMember):
		respondError(w, http.StatusNotFound, "sketch not found")
	case errors.Is(err, ErrForbidden):
		respondError(w, http.StatusForbidden, "owner access required")
	case errors.Is(err, ErrUnknownUser):
		respondError(w, http.StatusNotFound, "no account with that email")
	case errors.Is(err, ErrOwnerImmutable):
		respondError(w, http.StatusBadRequest, "cannot remove sketch owner")
	default:
		slog.Error(op+" failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func sketchID(r *http.Request) string {
	return mux.Vars(r)["sketchId"]
}

func decodeInto(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"error": msg})
}
