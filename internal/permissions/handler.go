package permissions

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fleetsight/fleetsight/internal/authz"
	"github.com/fleetsight/fleetsight/internal/platform/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Handler exposes administrator CRUD over permission records and role
// section overrides.
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

type recordPayload struct {
	ShowAllData            *bool    `json:"show_all_data"`
	RestrictedCustomerName string   `json:"restricted_customer_name"`
	LockCustomerFilter     *bool    `json:"lock_customer_filter"`
	DefaultSite            string   `json:"default_site"`
	VisibleSections        []string `json:"visible_sections" validate:"omitempty,dive,required"`
	HiddenSections         []string `json:"hidden_sections" validate:"omitempty,dive,required"`
	CanViewReports         *bool    `json:"can_view_reports"`
	CanManageUsers         *bool    `json:"can_manage_users"`
	CanExportData          *bool    `json:"can_export_data"`
	CanEditVehicles        *bool    `json:"can_edit_vehicles"`
	CanDeleteRecords       *bool    `json:"can_delete_records"`
	HideCostForecast       *bool    `json:"hide_cost_forecast"`
	HideUsageCosts         *bool    `json:"hide_usage_costs"`
}

type recordResponse struct {
	Scope     authz.RecordScope `json:"scope"`
	Subject   string            `json:"subject"`
	Record    recordPayload     `json:"record"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type overridePayload struct {
	VisibleSections []string `json:"visible_sections" validate:"required,min=1,dive,required"`
}

type overrideResponse struct {
	Role            authz.Role        `json:"role"`
	VisibleSections []authz.SectionID `json:"visible_sections"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ListRecords answers GET /api/admin/permissions.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListRecords(r.Context())
	if err != nil {
		h.logger.Error("list permission records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	httpx.JSON(w, http.StatusOK, out)
}

// UpsertRecord answers PUT /api/admin/permissions/{scope}/{subject}.
func (h *Handler) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	scope, subject, err := recordKeyFromURL(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var payload recordPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	visible, err := parseSections(payload.VisibleSections)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	hidden, err := parseSections(payload.HiddenSections)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	stored, err := h.service.UpsertRecord(r.Context(), Record{
		Subject: subject,
		Stored: authz.PermissionRecord{
			Scope:                  scope,
			ShowAllData:            payload.ShowAllData,
			RestrictedCustomerName: payload.RestrictedCustomerName,
			LockCustomerFilter:     payload.LockCustomerFilter,
			DefaultSite:            payload.DefaultSite,
			VisibleSections:        visible,
			HiddenSections:         hidden,
			CanViewReports:         payload.CanViewReports,
			CanManageUsers:         payload.CanManageUsers,
			CanExportData:          payload.CanExportData,
			CanEditVehicles:        payload.CanEditVehicles,
			CanDeleteRecords:       payload.CanDeleteRecords,
			HideCostForecast:       payload.HideCostForecast,
			HideUsageCosts:         payload.HideUsageCosts,
		},
	})
	if err != nil {
		h.logger.Error("upsert permission record", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRecordResponse(stored))
}

// DeleteRecord answers DELETE /api/admin/permissions/{scope}/{subject}.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	scope, subject, err := recordKeyFromURL(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.DeleteRecord(r.Context(), scope, subject); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete permission record", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// ListOverrides answers GET /api/admin/section-overrides.
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.service.RoleOverrideList(r.Context())
	if err != nil {
		h.logger.Error("list role overrides", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]overrideResponse, 0, len(overrides))
	for _, o := range overrides {
		out = append(out, overrideResponse{Role: o.Role, VisibleSections: o.VisibleSections, UpdatedAt: o.UpdatedAt})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// SetOverride answers PUT /api/admin/section-overrides/{role}.
func (h *Handler) SetOverride(w http.ResponseWriter, r *http.Request) {
	role := authz.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}
	var payload overridePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed JSON body")
		return
	}
	if err := validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sections, err := parseSections(payload.VisibleSections)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	stored, err := h.service.SetRoleOverride(r.Context(), RoleOverride{Role: role, VisibleSections: sections})
	if err != nil {
		h.logger.Error("set role override", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overrideResponse{
		Role:            stored.Role,
		VisibleSections: stored.VisibleSections,
		UpdatedAt:       stored.UpdatedAt,
	})
}

// DeleteOverride answers DELETE /api/admin/section-overrides/{role}.
func (h *Handler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	role := authz.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}
	if err := h.service.DeleteRoleOverride(r.Context(), role); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("delete role override", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// Mount attaches the admin routes onto the router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/permissions", h.ListRecords)
	r.Put("/permissions/{scope}/{subject}", h.UpsertRecord)
	r.Delete("/permissions/{scope}/{subject}", h.DeleteRecord)
	r.Get("/section-overrides", h.ListOverrides)
	r.Put("/section-overrides/{role}", h.SetOverride)
	r.Delete("/section-overrides/{role}", h.DeleteOverride)
}

func recordKeyFromURL(r *http.Request) (authz.RecordScope, string, error) {
	scope := authz.RecordScope(chi.URLParam(r, "scope"))
	subject := chi.URLParam(r, "subject")
	if scope != authz.ScopeUser && scope != authz.ScopeDomain {
		return "", "", errors.New("scope must be user or domain")
	}
	if subject == "" {
		return "", "", errors.New("subject required")
	}
	if scope == authz.ScopeUser {
		if err := validate.Var(subject, "email"); err != nil {
			return "", "", errors.New("user-scope subject must be an email address")
		}
	} else if err := validate.Var(subject, "fqdn"); err != nil {
		return "", "", errors.New("domain-scope subject must be a domain name")
	}
	return scope, subject, nil
}

func toRecordResponse(rec Record) recordResponse {
	stored := rec.Stored
	return recordResponse{
		Scope:   stored.Scope,
		Subject: rec.Subject,
		Record: recordPayload{
			ShowAllData:            stored.ShowAllData,
			RestrictedCustomerName: stored.RestrictedCustomerName,
			LockCustomerFilter:     stored.LockCustomerFilter,
			DefaultSite:            stored.DefaultSite,
			VisibleSections:        sectionStrings(stored.VisibleSections),
			HiddenSections:         sectionStrings(stored.HiddenSections),
			CanViewReports:         stored.CanViewReports,
			CanManageUsers:         stored.CanManageUsers,
			CanExportData:          stored.CanExportData,
			CanEditVehicles:        stored.CanEditVehicles,
			CanDeleteRecords:       stored.CanDeleteRecords,
			HideCostForecast:       stored.HideCostForecast,
			HideUsageCosts:         stored.HideUsageCosts,
		},
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func parseSections(raw []string) ([]authz.SectionID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]authz.SectionID, 0, len(raw))
	for _, s := range raw {
		id, ok := authz.ParseSection(s)
		if !ok {
			return nil, fmt.Errorf("unknown section %q", s)
		}
		out = append(out, id)
	}
	return out, nil
}
