package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/maksimkurb/netctl/src/internal/errors"
)

// WiFiConnectRequest associates an interface with a network.
type WiFiConnectRequest struct {
	Interface string `json:"interface,omitempty"`
	SSID      string `json:"ssid"`
	Password  string `json:"password,omitempty"`
}

// WiFiInterfaceRequest names the interface of a call; empty selects the default one.
type WiFiInterfaceRequest struct {
	Interface string `json:"interface,omitempty"`
}

// WiFiStatusResponse reports the association of an interface.
type WiFiStatusResponse struct {
	Interface string `json:"interface,omitempty"`
	SSID      string `json:"ssid"`
	Signal    *int32 `json:"signal_dbm,omitempty"`
}

func ifaceParam(r *http.Request) string {
	return r.URL.Query().Get("interface")
}

// Scan triggers a scan and returns the fresh access point list.
// POST /api/v1/wifi/scan
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	aps, err := h.ctl.Scan(r.Context(), ifaceParam(r))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, aps)
}

// GET /api/v1/wifi/access-points
func (h *Handler) AccessPoints(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.AccessPoints())
}

// POST /api/v1/wifi/connect
func (h *Handler) WiFiConnect(w http.ResponseWriter, r *http.Request) {
	var req WiFiConnectRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.WiFiConnect(r.Context(), req.Interface, req.SSID, req.Password); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// POST /api/v1/wifi/disconnect
func (h *Handler) WiFiDisconnect(w http.ResponseWriter, r *http.Request) {
	var req WiFiInterfaceRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			WriteErr(w, err)
			return
		}
	}
	if err := h.ctl.WiFiDisconnect(r.Context(), req.Interface); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// WiFiStatus returns the associated SSID and, when available, the signal.
// GET /api/v1/wifi/status
func (h *Handler) WiFiStatus(w http.ResponseWriter, r *http.Request) {
	iface := ifaceParam(r)
	ssid, err := h.ctl.WiFiStatus(r.Context(), iface)
	if err != nil {
		WriteErr(w, err)
		return
	}
	resp := WiFiStatusResponse{Interface: iface, SSID: ssid}
	if ssid != "" {
		if rssi, err := h.ctl.SignalStrength(r.Context(), iface); err == nil {
			resp.Signal = &rssi
		}
	}
	writeJSONData(w, resp)
}

// GET /api/v1/wifi/networks
func (h *Handler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := h.ctl.ListNetworks(r.Context(), ifaceParam(r))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, networks)
}

// DELETE /api/v1/wifi/networks/{id}
func (h *Handler) RemoveNetwork(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		WriteErr(w, errors.NewInvalidParameterError("network id must be a non-negative integer", err))
		return
	}
	if err := h.ctl.RemoveNetwork(r.Context(), ifaceParam(r), id); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}
