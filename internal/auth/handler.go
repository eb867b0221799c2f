package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

const (
	maxBodySize       = 1 << 20
	minPasswordLength = 8
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

func (c *credentials) problem() string {
	switch {
	case c.Email == "":
		return "email is required"
	case !strings.Contains(c.Email, "@"):
		return "email is not valid"
	case c.Password == "":
		return "password is required"
	default:
		return ""
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeInto(w, r, &req) {
		return
	}
	if msg := req.problem(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if req.DisplayName == "" {
		// Default to the local part of the email address.
		req.DisplayName, _, _ = strings.Cut(req.Email, "@")
	}

	result, err := h.service.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered")
	case err != nil:
		slog.Error("register failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respond(w, http.StatusCreated, result)
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeInto(w, r, &req) {
		return
	}
	if msg := req.problem(); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respond(w, http.StatusOK, result)
	}
}

// Me returns the profile of the authenticated user. Unlike the token claims
// this reflects the current database state.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), UserIDFromContext(r.Context()))
	switch {
	case errors.Is(err, ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case err != nil:
		slog.Error("fetch user failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	default:
		respond(w, http.StatusOK, user)
	}
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
