package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/auth"
	"github.com/deallens/deallens/internal/models"
)

type userStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type AuthHandler struct {
	store     userStore
	jwtSecret string
	log       zerolog.Logger
}

func NewAuthHandler(store userStore, jwtSecret string, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store:     store,
		jwtSecret: jwtSecret,
		log:       log.With().Str("component", "auth").Logger(),
	}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.Register).Methods("POST")
	router.HandleFunc("/auth/login", h.Login).Methods("POST")
}

// RegisterProtectedRoutes attaches the routes that require an authenticated
// user. The caller mounts them behind the JWT middleware.
func (h *AuthHandler) RegisterProtectedRoutes(router *mux.Router) {
	router.HandleFunc("/auth/me", h.Me).Methods("GET")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		Username     string `json:"username"`
		Password     string `json:"password"`
		FullName     string `json:"full_name"`
		Organization string `json:"organization"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Email and username are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	exists, err := h.store.UserExists(r.Context(), req.Email, req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("User lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "Email or username already registered")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Username:       req.Username,
		FullName:       req.FullName,
		HashedPassword: hashed,
		Organization:   req.Organization,
		IsActive:       true,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.log.Error().Err(err).Msg("User insert failed")
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	h.log.Info().Str("user_id", user.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !user.IsActive || !auth.VerifyPassword(req.Password, user.HashedPassword) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, h.jwtSecret)
	if err != nil {
		h.log.Error().Err(err).Msg("Token generation failed")
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	if err := h.store.TouchLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record login time")
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
