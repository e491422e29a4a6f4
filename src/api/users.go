package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

// UserHandler exposes account and leaderboard endpoints over a UserStore.
type UserHandler struct {
	cfg   Config
	store UserStore
}

func NewUserHandler(cfg Config, store UserStore) *UserHandler {
	return &UserHandler{cfg: cfg, store: store}
}

func (h *UserHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Get("/leaderboard", h.leaderboard)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.cfg))
		r.Get("/users/me", h.me)
	})
	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		errorJSON(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if utf8.RuneCountInString(req.Username) > 20 {
		errorJSON(w, http.StatusBadRequest, "username must be 20 characters or fewer")
		return
	}
	if len(req.Password) < 6 {
		errorJSON(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	if err := h.store.Create(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			errorJSON(w, http.StatusConflict, "username already taken")
			return
		}
		log.Printf("register: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not create user")
		return
	}

	token, err := GenerateToken(h.cfg.JWTSecret, h.cfg.JWTIssuer, req.Username, h.cfg.TokenTTL)
	if err != nil {
		log.Printf("register token: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token, Username: req.Username})
}

func (h *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ok, err := h.store.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("login: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not verify credentials")
		return
	}
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := GenerateToken(h.cfg.JWTSecret, h.cfg.JWTIssuer, req.Username, h.cfg.TokenTTL)
	if err != nil {
		log.Printf("login token: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, Username: req.Username})
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, err := getClaims(r)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rec, err := h.store.Get(r.Context(), claims.Sub)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			errorJSON(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("me: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not load user")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *UserHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	items, err := h.store.TopKillers(r.Context(), limit)
	if err != nil {
		log.Printf("leaderboard: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not load leaderboard")
		return
	}
	if items == nil {
		items = []UserRecord{}
	}
	writeJSON(w, http.StatusOK, items)
}
