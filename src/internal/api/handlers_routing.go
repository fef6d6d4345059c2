package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteRequest adds or replaces the route of a destination.
type RouteRequest struct {
	Destination string `json:"destination"`
	Gateway     string `json:"gateway,omitempty"`
	Device      string `json:"device,omitempty"`
	Metric      uint32 `json:"metric"`
}

// GatewayRequest sets the default gateway of the gateway's address family.
type GatewayRequest struct {
	Gateway string `json:"gateway"`
	Device  string `json:"device,omitempty"`
}

// destinationParam reads the destination from the wildcard, so CIDRs need
// no escaping: /routing/routes/10.0.0.0/8.
func destinationParam(r *http.Request) string {
	return chi.URLParam(r, "*")
}

// GET /api/v1/routing/routes
func (h *Handler) ListRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.ListRoutes())
}

// POST /api/v1/routing/routes
func (h *Handler) AddRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.AddRoute(r.Context(), req.Destination, req.Gateway, req.Device, req.Metric); err != nil {
		WriteErr(w, err)
		return
	}
	route, err := h.ctl.GetRoute(req.Destination)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, route)
}

// ClearRoutes removes every registered route and both default gateways.
// DELETE /api/v1/routing/routes
func (h *Handler) ClearRoutes(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.ClearAllRoutes(r.Context()); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// GET /api/v1/routing/routes/{destination}
func (h *Handler) GetRoute(w http.ResponseWriter, r *http.Request) {
	route, err := h.ctl.GetRoute(destinationParam(r))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, route)
}

// DELETE /api/v1/routing/routes/{destination}
func (h *Handler) RemoveRoute(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.RemoveRoute(r.Context(), destinationParam(r)); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// GET /api/v1/routing/gateway
func (h *Handler) GetGateway(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.DefaultGateway())
}

// PUT /api/v1/routing/gateway
func (h *Handler) SetGateway(w http.ResponseWriter, r *http.Request) {
	var req GatewayRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.SetDefaultGateway(r.Context(), req.Gateway, req.Device); err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, h.ctl.DefaultGateway())
}

// ClearGateway clears the IPv4 gateway, or the IPv6 one with ?family=ipv6.
// DELETE /api/v1/routing/gateway
func (h *Handler) ClearGateway(w http.ResponseWriter, r *http.Request) {
	ipv6 := r.URL.Query().Get("family") == "ipv6"
	if err := h.ctl.ClearDefaultGateway(r.Context(), ipv6); err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, h.ctl.DefaultGateway())
}
