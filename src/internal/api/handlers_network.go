package api

import (
	"net/http"

	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/scheduler"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// NetworkResponse is the aggregate network state.
type NetworkResponse struct {
	State        state.NetworkState `json:"state"`
	Connectivity state.Connectivity `json:"connectivity"`
	Discovered   bool               `json:"discovered"`
}

// HealthResponse reports daemon liveness and whether the config on disk
// differs from the one in use.
type HealthResponse struct {
	Status         string             `json:"status"`
	NetworkState   state.NetworkState `json:"network_state"`
	Discovered     bool               `json:"discovered"`
	Subscribers    int                `json:"subscribers"`
	ConfigHash     string             `json:"config_hash,omitempty"`
	ConfigOutdated bool               `json:"config_outdated"`
}

// GET /api/v1/network
func (h *Handler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, NetworkResponse{
		State:        h.ctl.NetworkState(),
		Connectivity: h.ctl.Connectivity(),
		Discovered:   h.ctl.Discovered(),
	})
}

// CheckConnectivity runs the connectivity probe now.
// POST /api/v1/network/connectivity
func (h *Handler) CheckConnectivity(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ctl.CheckConnectivity(r.Context()); err != nil {
		WriteErr(w, err)
		return
	}
	h.GetNetwork(w, r)
}

// GET /api/v1/network/snapshot
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, h.ctl.Snapshot())
}

// GET /api/v1/network/jobs
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	entries := []scheduler.Entry{}
	if h.scheduler != nil {
		entries = append(entries, h.scheduler.Entries()...)
	}
	writeJSONData(w, entries)
}

// GET /health
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:       "ok",
		NetworkState: h.ctl.NetworkState(),
		Discovered:   h.ctl.Discovered(),
		Subscribers:  h.bus.SubscriberCount(),
	}
	if h.hasher != nil {
		resp.ConfigHash = h.hasher.Active()
		outdated, err := h.hasher.Outdated()
		if err != nil {
			log.Warnf("Failed to check config hash: %v", err)
		}
		resp.ConfigOutdated = outdated
	}
	writeJSONData(w, resp)
}
