package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fleetsight/fleetsight/internal/platform/httpx"
	"github.com/fleetsight/fleetsight/internal/shared"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler exposes administrator user management.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

type userResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	TenantID           string    `json:"tenant_id"`
	TenantExternalRef  string    `json:"tenant_external_ref,omitempty"`
	AssignedSiteIDs    []string  `json:"assigned_site_ids"`
	AssignedVehicleIDs []string  `json:"assigned_vehicle_ids"`
	SectionOverride    []string  `json:"section_override"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type updateAccessPayload struct {
	Role               string   `json:"role" validate:"required,oneof=super_admin admin manager user batcher driver viewer"`
	AssignedSiteIDs    []string `json:"assigned_site_ids"`
	AssignedVehicleIDs []string `json:"assigned_vehicle_ids"`
	SectionOverride    []string `json:"section_override"`
}

type userListResponse struct {
	Users      []userResponse `json:"users"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// List answers GET /api/admin/users with page and per_page query params.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := shared.NewPagination(page, perPage, len(found))

	start := (pagination.Page - 1) * pagination.PerPage
	if start > len(found) {
		start = len(found)
	}
	end := start + pagination.PerPage
	if end > len(found) {
		end = len(found)
	}

	out := make([]userResponse, 0, end-start)
	for _, u := range found[start:end] {
		out = append(out, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, userListResponse{
		Users:      out,
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      pagination.Total,
		TotalPages: pagination.TotalPages,
	})
}

// UpdateAccess answers PUT /api/admin/users/{id}/access.
func (h *Handler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload updateAccessPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	user, err := h.service.UpdateAccess(r.Context(), id, payload.Role,
		payload.AssignedSiteIDs, payload.AssignedVehicleIDs, payload.SectionOverride)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("update user access", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

// Mount attaches the user management routes onto the router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/users", h.List)
	r.Put("/users/{id}/access", h.UpdateAccess)
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               u.Role,
		TenantID:           u.TenantID,
		TenantExternalRef:  u.TenantExternalRef,
		AssignedSiteIDs:    emptyIfNil(u.AssignedSiteIDs),
		AssignedVehicleIDs: emptyIfNil(u.AssignedVehicleIDs),
		SectionOverride:    emptyIfNil(u.SectionOverride),
		IsActive:           u.IsActive,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
