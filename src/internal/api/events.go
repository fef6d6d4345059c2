package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
)

const keepAliveInterval = 15 * time.Second

// StreamEvents forwards bus events as server-sent events until the client
// goes away. ?domain=Devices,VPN limits the stream to those domains.
// GET /api/v1/events
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteInternalError(w, "Streaming not supported")
		return
	}

	var filters []events.Filter
	if param := r.URL.Query().Get("domain"); param != "" {
		var domains []events.Domain
		for _, d := range strings.Split(param, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, events.Domain(d))
			}
		}
		filters = append(filters, events.ForDomains(domains...))
	}

	sub := h.bus.Subscribe(filters...)
	defer sub.Close()

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case e, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				log.Warnf("Failed to encode event %s: %v", e.Kind, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
			flusher.Flush()
		}
	}
}
