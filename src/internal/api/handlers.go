package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/control"
	"github.com/maksimkurb/netctl/src/internal/core"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/scheduler"
)

const maxBodySize = 1 << 20

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// Handler manages all API endpoints and dependencies.
type Handler struct {
	ctl       *control.NetworkControl
	bus       *events.Bus
	hasher    *config.Hasher
	scheduler *scheduler.Scheduler
}

// NewHandler creates a new API handler over the container's components.
func NewHandler(deps *core.AppDependencies) *Handler {
	return &Handler{
		ctl:       deps.Control(),
		bus:       deps.Bus(),
		hasher:    deps.ConfigHasher(),
		scheduler: deps.Scheduler(),
	}
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(DataResponse{Data: data}); err != nil {
		log.Debugf("Failed to write response: %v", err)
	}
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// writeCreated writes a 201 Created response with data.
func writeCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSON decodes JSON from the request body. Malformed input is INVALID_PARAMETER.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return errors.NewInvalidParameterError("invalid JSON body: "+err.Error(), err)
	}
	return nil
}

// readBody returns the raw request body, for payloads that are not JSON.
func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, errors.NewIOError("failed to read request body", err)
	}
	return data, nil
}
