package fleet

import (
	"log/slog"
	"net/http"

	"github.com/fleetsight/fleetsight/internal/authz"
	"github.com/fleetsight/fleetsight/internal/platform/httpx"
)

// Handler exposes the scoped entity collections to data views.
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

type vehicleResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SiteID string `json:"site_id"`
	RFID   string `json:"rfid,omitempty"`
}

type siteResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CustomerName string `json:"customer_name,omitempty"`
}

type customerResponse struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
}

type overviewResponse struct {
	Vehicles  []vehicleResponse  `json:"vehicles"`
	Sites     []siteResponse     `json:"sites"`
	Customers []customerResponse `json:"customers"`
}

// Overview answers GET /api/fleet/overview with all three scoped
// collections.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	scoped, ok := h.scoped(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toOverviewResponse(scoped))
}

// Vehicles answers GET /api/fleet/vehicles.
func (h *Handler) Vehicles(w http.ResponseWriter, r *http.Request) {
	scoped, ok := h.scoped(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toOverviewResponse(scoped).Vehicles)
}

// Sites answers GET /api/fleet/sites.
func (h *Handler) Sites(w http.ResponseWriter, r *http.Request) {
	scoped, ok := h.scoped(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toOverviewResponse(scoped).Sites)
}

// Customers answers GET /api/fleet/customers.
func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	scoped, ok := h.scoped(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toOverviewResponse(scoped).Customers)
}

func (h *Handler) scoped(w http.ResponseWriter, r *http.Request) (Collections, bool) {
	access, ok := authz.AccessFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return Collections{}, false
	}
	scoped, err := h.service.ScopedCollections(r.Context(), access.Principal, access.Permissions)
	if err != nil {
		h.logger.Error("fetch fleet collections", slog.Any("error", err))
		httpx.RespondError(w, err)
		return Collections{}, false
	}
	return scoped, true
}

func toOverviewResponse(c Collections) overviewResponse {
	out := overviewResponse{
		Vehicles:  make([]vehicleResponse, 0, len(c.Vehicles)),
		Sites:     make([]siteResponse, 0, len(c.Sites)),
		Customers: make([]customerResponse, 0, len(c.Customers)),
	}
	for _, v := range c.Vehicles {
		out.Vehicles = append(out.Vehicles, vehicleResponse{ID: v.ID, Name: v.Name, SiteID: v.SiteID, RFID: v.RFID})
	}
	for _, s := range c.Sites {
		out.Sites = append(out.Sites, siteResponse{ID: s.ID, Name: s.Name, CustomerName: s.CustomerName})
	}
	for _, cust := range c.Customers {
		out.Customers = append(out.Customers, customerResponse{Ref: cust.Ref, Name: cust.Name})
	}
	return out
}
