package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"eventhub/internal/auth"
	"eventhub/internal/config"
	"eventhub/internal/logger"
	"eventhub/internal/models"
	"eventhub/internal/users"
	"eventhub/internal/utils"
)

type Handler struct {
	UserService *users.Service
	AuthConfig  config.AuthConfig
	Logger      *logger.Logger
}

func NewHandler(userService *users.Service, authCfg config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, AuthConfig: authCfg, Logger: log}
}

// Signup handles POST /users/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	user, err := h.UserService.Signup(req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, users.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, users.ErrUsernameTaken), errors.Is(err, users.ErrEmailTaken):
			status = http.StatusConflict
		}
		h.Logger.Error("API", fmt.Sprintf("Signup: %v", err))
		h.writeJSON(w, status, utils.ErrorResponse("Signup failed", err.Error()))
		return
	}

	h.Logger.Info("API", fmt.Sprintf("Signup: created user %s (%s)", user.Username, user.Role))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("User created successfully",
		map[string]interface{}{"user": user.ToResponse()}))
}

// Login handles POST /auth/login and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Username == "" || req.Password == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Login failed", "missing credentials"))
		return
	}

	user, err := h.UserService.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrAccountLocked) {
			h.Logger.LogSecurity("LOCKOUT", fmt.Sprintf("login rejected for %s: %v", req.Username, err))
		} else {
			h.Logger.LogSecurity("LOGIN_FAIL", fmt.Sprintf("login rejected for %s", req.Username))
		}
		h.writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Login failed", err.Error()))
		return
	}

	token, err := auth.IssueToken(h.AuthConfig.JWTSecret, user.ID, user.Username, user.Role, h.AuthConfig.TokenTTL)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: failed to issue token: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", "could not issue token"))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Login successful", models.LoginResponse{
		Message: "Login successful",
		User:    user.ToResponse(),
		Token:   token,
	}))
}

// Logout handles POST /auth/logout. Tokens are stateless; the endpoint
// exists so clients have a uniform place to end a session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Logged out", nil))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
