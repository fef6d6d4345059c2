package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maksimkurb/netctl/src/internal/control"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// StateRequest sets the state of a device or tunnel by name.
type StateRequest struct {
	State string `json:"state"`
}

// CountResponse reports how many entities an operation touched.
type CountResponse struct {
	Count int `json:"count"`
}

// ListDevices returns all devices, optionally filtered by ?type=.
// GET /api/v1/devices
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	if typ := r.URL.Query().Get("type"); typ != "" {
		t, err := model.ParseDeviceType(typ)
		if err != nil {
			WriteErr(w, errors.NewInvalidParameterError(err.Error(), err))
			return
		}
		writeJSONData(w, h.ctl.GetDevicesByType(t))
		return
	}
	writeJSONData(w, h.ctl.ListDevices())
}

// AddDevice registers a device by hand.
// POST /api/v1/devices
func (h *Handler) AddDevice(w http.ResponseWriter, r *http.Request) {
	var d model.Device
	if err := decodeJSON(r, &d); err != nil {
		WriteErr(w, err)
		return
	}
	if err := h.ctl.AddDevice(&d); err != nil {
		WriteErr(w, err)
		return
	}
	created, err := h.ctl.GetDevice(d.Name)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, created)
}

// GET /api/v1/devices/{name}
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := h.ctl.GetDevice(chi.URLParam(r, "name"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, d)
}

// ConfigureDevice changes link state, MTU, MAC or addresses.
// PATCH /api/v1/devices/{name}
func (h *Handler) ConfigureDevice(w http.ResponseWriter, r *http.Request) {
	var cfg control.DeviceConfig
	if err := decodeJSON(r, &cfg); err != nil {
		WriteErr(w, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.ctl.ConfigureDevice(r.Context(), name, cfg); err != nil {
		WriteErr(w, err)
		return
	}
	d, err := h.ctl.GetDevice(name)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, d)
}

// DeleteDevice removes the link from the kernel. With ?forget=true only the
// registry entry is dropped.
// DELETE /api/v1/devices/{name}
func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var err error
	if r.URL.Query().Get("forget") == "true" {
		err = h.ctl.RemoveDevice(name)
	} else {
		err = h.ctl.DeleteDevice(r.Context(), name)
	}
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// PUT /api/v1/devices/{name}/state
func (h *Handler) UpdateDeviceState(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	st, err := state.ParseDeviceState(req.State)
	if err != nil {
		WriteErr(w, errors.NewInvalidParameterError(err.Error(), err))
		return
	}
	name := chi.URLParam(r, "name")
	if err := h.ctl.UpdateDeviceState(name, st); err != nil {
		WriteErr(w, err)
		return
	}
	d, err := h.ctl.GetDevice(name)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, d)
}

// GET /api/v1/devices/{name}/stats
func (h *Handler) DeviceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ctl.DeviceStats(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, stats)
}

// Discover runs a discovery pass.
// POST /api/v1/devices/discover
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	n, err := h.ctl.Discover(r.Context())
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, CountResponse{Count: n})
}
