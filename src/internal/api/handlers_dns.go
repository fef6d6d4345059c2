package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DNSStartRequest starts the forwarding server. Empty forwarders keep the current list.
type DNSStartRequest struct {
	Address    string   `json:"address"`
	Port       uint16   `json:"port"`
	Forwarders []string `json:"forwarders,omitempty"`
}

// ForwardersRequest replaces the forwarder list.
type ForwardersRequest struct {
	Forwarders []string `json:"forwarders"`
}

// ForwarderRequest adds one forwarder.
type ForwarderRequest struct {
	Forwarder string `json:"forwarder"`
}

// GET /api/v1/dns
func (h *Handler) DNSStatus(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.DNSStatus())
}

// POST /api/v1/dns/start
func (h *Handler) StartDNS(w http.ResponseWriter, r *http.Request) {
	var req DNSStartRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.StartDNSServer(r.Context(), req.Address, req.Port, req.Forwarders); err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, h.ctl.DNSStatus())
}

// POST /api/v1/dns/stop
func (h *Handler) StopDNS(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.StopDNSServer(r.Context()); err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, h.ctl.DNSStatus())
}

// GET /api/v1/dns/forwarders
func (h *Handler) ListForwarders(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.Forwarders())
}

// PUT /api/v1/dns/forwarders
func (h *Handler) SetForwarders(w http.ResponseWriter, r *http.Request) {
	var req ForwardersRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.SetForwarders(req.Forwarders); err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, h.ctl.Forwarders())
}

// POST /api/v1/dns/forwarders
func (h *Handler) AddForwarder(w http.ResponseWriter, r *http.Request) {
	var req ForwarderRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.AddForwarder(req.Forwarder); err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, h.ctl.Forwarders())
}

// DELETE /api/v1/dns/forwarders/{forwarder}
func (h *Handler) RemoveForwarder(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.RemoveForwarder(chi.URLParam(r, "forwarder")); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}
