package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues bearer tokens for the single configured admin user.
type AuthHandler struct {
	username     string
	passwordHash []byte
	jwtSecret    string
	expiry       time.Duration
	logger       *slog.Logger
	validate     *validator.Validate
}

// NewAuthHandler creates an AuthHandler. The configured plain password is
// hashed once here so the comparison path is bcrypt everywhere.
func NewAuthHandler(username, password, jwtSecret string, expiryHours int, logger *slog.Logger) (*AuthHandler, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthHandler{
		username:     username,
		passwordHash: hash,
		jwtSecret:    jwtSecret,
		expiry:       time.Duration(expiryHours) * time.Hour,
		logger:       logger.With("handler", "auth"),
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "invalid request payload"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, GenericErrorResponse{Error: "validation failed", Details: err.Error()})
		return
	}

	if req.Username != h.username ||
		bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)) != nil {
		h.logger.WarnContext(r.Context(), "Login failed", "username", req.Username)
		writeJSON(w, http.StatusUnauthorized, GenericErrorResponse{Error: "invalid username or password"})
		return
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   h.username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.expiry)),
	})
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to sign token", "error", err)
		writeJSON(w, http.StatusInternalServerError, GenericErrorResponse{Error: "could not issue token"})
		return
	}

	h.logger.InfoContext(r.Context(), "Login succeeded", "username", req.Username)
	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: signed, Username: h.username})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
