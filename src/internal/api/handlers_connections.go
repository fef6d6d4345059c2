package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maksimkurb/netctl/src/internal/control"
	"github.com/maksimkurb/netctl/src/internal/settings"
)

// IDResponse returns the identifier of a created entity.
type IDResponse struct {
	ID string `json:"id"`
}

// ActivateRequest binds a connection to a device.
type ActivateRequest struct {
	Device string `json:"device"`
}

// CloneRequest names the copy of a connection.
type CloneRequest struct {
	Name string `json:"name"`
}

// ListConnections returns all profiles, or only active ones with ?active=true.
// GET /api/v1/connections
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("active") == "true" {
		writeJSONData(w, h.ctl.GetActiveConnections())
		return
	}
	writeJSONData(w, h.ctl.ListConnections())
}

// AddConnection creates a profile from a settings bag.
// POST /api/v1/connections
func (h *Handler) AddConnection(w http.ResponseWriter, r *http.Request) {
	bag := settings.Bag{}
	if err := decodeJSON(r, &bag); err != nil {
		WriteErr(w, err)
		return
	}
	id, err := h.ctl.AddConnection(bag)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, IDResponse{ID: id})
}

// GET /api/v1/connections/{id}
func (h *Handler) GetConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.ctl.GetConnection(chi.URLParam(r, "id"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, conn)
}

// ModifyConnection merges a settings bag into a profile.
// PATCH /api/v1/connections/{id}
func (h *Handler) ModifyConnection(w http.ResponseWriter, r *http.Request) {
	bag := settings.Bag{}
	if err := decodeJSON(r, &bag); err != nil {
		WriteErr(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.ctl.ModifyConnection(id, bag); err != nil {
		WriteErr(w, err)
		return
	}
	conn, err := h.ctl.GetConnection(id)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeJSONData(w, conn)
}

// DELETE /api/v1/connections/{id}
func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.DeleteConnection(chi.URLParam(r, "id")); err != nil {
		WriteErr(w, err)
		return
	}
	writeNoContent(w)
}

// POST /api/v1/connections/{id}/activate
func (h *Handler) ActivateConnection(w http.ResponseWriter, r *http.Request) {
	var req ActivateRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.ctl.ActivateConnection(id, req.Device); err != nil {
		WriteErr(w, err)
		return
	}
	h.GetConnection(w, r)
}

// POST /api/v1/connections/{id}/deactivate
func (h *Handler) DeactivateConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.ctl.DeactivateConnection(chi.URLParam(r, "id")); err != nil {
		WriteErr(w, err)
		return
	}
	h.GetConnection(w, r)
}

// POST /api/v1/connections/{id}/clone
func (h *Handler) CloneConnection(w http.ResponseWriter, r *http.Request) {
	var req CloneRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	id, err := h.ctl.CloneConnection(chi.URLParam(r, "id"), req.Name)
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, IDResponse{ID: id})
}

// ExportConnection returns the settings bag as a raw JSON or YAML document
// selected by ?format=.
// GET /api/v1/connections/{id}/export
func (h *Handler) ExportConnection(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	data, err := h.ctl.ExportConnection(chi.URLParam(r, "id"), format)
	if err != nil {
		WriteErr(w, err)
		return
	}
	contentType := "application/json"
	if format == control.FormatYAML || format == "yml" {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImportConnection reads a raw JSON or YAML settings document.
// POST /api/v1/connections/import
func (h *Handler) ImportConnection(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		WriteErr(w, err)
		return
	}
	id, err := h.ctl.ImportConnection(data, r.URL.Query().Get("format"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeCreated(w, IDResponse{ID: id})
}
