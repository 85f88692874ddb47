package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/personavault/internal/auth"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/http/middlewares"
	"github.com/dropDatabas3/personavault/internal/observability/logger"
	"github.com/dropDatabas3/personavault/internal/security/password"
)

// AuthHandler maneja registro, login y perfil de sesión.
type AuthHandler struct {
	users    repository.UserRepository
	sessions *auth.Issuer
}

func NewAuthHandler(users repository.UserRepository, sessions *auth.Issuer) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type sessionResponse struct {
	UserID      string    `json:"userId"`
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Register maneja POST /v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("AuthHandler.Register"))

	var req registerRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("a valid email is required"))
		return
	}
	if len(req.Password) < 8 {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("password must be at least 8 characters"))
		return
	}

	phc, err := password.Hash(password.Default, req.Password)
	if err != nil {
		log.Error("password hash failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}

	user, err := h.users.Create(ctx, req.Email, req.Name, phc)
	if err != nil {
		if repository.IsConflict(err) {
			helpers.WriteError(w, helpers.ErrConflict.WithDetail("email already registered"))
			return
		}
		log.Error("user create failed", logger.Err(err))
		helpers.WriteError(w, err)
		return
	}

	h.writeSession(w, log, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login maneja POST /v1/auth/login. Credenciales inválidas responden siempre
// el mismo 401, exista o no el email.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("AuthHandler.Login"))

	var req loginRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}

	user, err := h.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if repository.IsNotFound(err) {
			helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("invalid email or password"))
			return
		}
		log.Error("user lookup failed", logger.Err(err))
		helpers.WriteError(w, err)
		return
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("invalid email or password"))
		return
	}

	h.writeSession(w, log, user)
}

// Me maneja GET /v1/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.users.Get(ctx, middlewares.GetUserID(ctx))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"createdAt": user.CreatedAt,
	})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, log *zap.Logger, user *repository.User) {
	token, exp, err := h.sessions.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		log.Error("session issue failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sessionResponse{
		UserID:      user.ID,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
	})
}
