package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/settings"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// GET /api/v1/vpn
func (h *Handler) ListVpns(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.ListVpns())
}

// AddVpn creates a tunnel from a settings bag.
// POST /api/v1/vpn
func (h *Handler) AddVpn(w http.ResponseWriter, r *http.Request) {
	bag := settings.Bag{}
	if err := decodeJSON(r, &bag); err != nil {
		WriteErr(w, err)
		return
	}
	tunnel, err := h.ctl.AddVpn(bag)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, tunnel)
}

// GET /api/v1/vpn/{name}
func (h *Handler) GetVpn(w http.ResponseWriter, r *http.Request) {
	tunnel, err := h.ctl.GetVpn(chi.URLParam(r, "name"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, tunnel)
}

// DELETE /api/v1/vpn/{name}
func (h *Handler) RemoveVpn(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.RemoveVpn(r.Context(), chi.URLParam(r, "name")); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// POST /api/v1/vpn/{name}/connect
func (h *Handler) ConnectVpn(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.ConnectVpn(r.Context(), chi.URLParam(r, "name")); err != nil {
		WriteErr(w, err)
		return
	}
	h.GetVpn(w, r)
}

// POST /api/v1/vpn/{name}/disconnect
func (h *Handler) DisconnectVpn(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.DisconnectVpn(r.Context(), chi.URLParam(r, "name")); err != nil {
		WriteErr(w, err)
		return
	}
	h.GetVpn(w, r)
}

// PUT /api/v1/vpn/{name}/state
func (h *Handler) UpdateVpnState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	st, err := state.ParseVpnState(req.State)
	if err != nil {
		WriteErr(w, errors.NewInvalidParameterError(err.Error(), err))
		return
	}
	if err := h.ctl.UpdateVpnState(chi.URLParam(r, "name"), st); err != nil {
		WriteErr(w, err)
		return
	}
	h.GetVpn(w, r)
}
