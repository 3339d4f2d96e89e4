package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetsight/fleetsight/internal/platform/httpx"
	"github.com/fleetsight/fleetsight/internal/shared"
)

// Handler exposes login and logout.
type Handler struct {
	service  *Service
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	logger   *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, sessions: sessions, csrf: csrf, logger: logger}
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Login answers POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	user, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, errors.New("session unavailable"))
		return
	}
	sess.SetUser(user.ID)
	httpx.JSON(w, http.StatusOK, loginResponse{UserID: user.ID, Email: user.Email, Name: user.Name})
}

// Logout answers POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.sessions.Destroy(sess)
	}
	httpx.NoContent(w)
}

// CSRFToken answers GET /auth/csrf with the session's CSRF token.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

// Mount attaches the auth routes onto the router.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/csrf", h.CSRFToken)
}
