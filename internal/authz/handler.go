package authz

import (
	"net/http"

	"github.com/fleetsight/fleetsight/internal/platform/httpx"
)

// Handler exposes the resolved access snapshot to the navigation layer.
type Handler struct{}

// NewHandler constructs a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

type accessResponse struct {
	PrincipalID       string              `json:"principal_id"`
	Email             string              `json:"email"`
	Role              Role                `json:"role"`
	TenantID          string              `json:"tenant_id"`
	Sections          []SectionID         `json:"sections"`
	DefaultLanding    SectionID           `json:"default_landing"`
	LeaderboardHidden bool                `json:"leaderboard_hidden"`
	Permissions       permissionsResponse `json:"permissions"`
}

type permissionsResponse struct {
	Scope                  RecordScope `json:"scope"`
	ShowAllData            bool        `json:"show_all_data"`
	RestrictedCustomerName string      `json:"restricted_customer_name,omitempty"`
	LockCustomerFilter     bool        `json:"lock_customer_filter"`
	DefaultSite            string      `json:"default_site,omitempty"`
	CanViewReports         bool        `json:"can_view_reports"`
	CanManageUsers         bool        `json:"can_manage_users"`
	CanExportData          bool        `json:"can_export_data"`
	CanEditVehicles        bool        `json:"can_edit_vehicles"`
	CanDeleteRecords       bool        `json:"can_delete_records"`
	HideCostForecast       bool        `json:"hide_cost_forecast"`
	HideUsageCosts         bool        `json:"hide_usage_costs"`
}

// Access answers GET /api/me/access with the sections and permissions
// resolved for the signed-in principal.
func (h *Handler) Access(w http.ResponseWriter, r *http.Request) {
	access, ok := AccessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	perms := access.Permissions
	httpx.JSON(w, http.StatusOK, accessResponse{
		PrincipalID:       access.Principal.ID,
		Email:             access.Principal.Email,
		Role:              access.Principal.Role,
		TenantID:          access.Principal.TenantID,
		Sections:          access.Sections,
		DefaultLanding:    DefaultLanding,
		LeaderboardHidden: LeaderboardHidden(access.Sections),
		Permissions: permissionsResponse{
			Scope:                  perms.Scope,
			ShowAllData:            perms.ShowAllData,
			RestrictedCustomerName: perms.RestrictedCustomerName,
			LockCustomerFilter:     perms.LockCustomerFilter,
			DefaultSite:            perms.DefaultSite,
			CanViewReports:         perms.CanViewReports,
			CanManageUsers:         perms.CanManageUsers,
			CanExportData:          perms.CanExportData,
			CanEditVehicles:        perms.CanEditVehicles,
			CanDeleteRecords:       perms.CanDeleteRecords,
			HideCostForecast:       perms.HideCostForecast,
			HideUsageCosts:         perms.HideUsageCosts,
		},
	})
}
