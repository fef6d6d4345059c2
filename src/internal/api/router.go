package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/maksimkurb/netctl/src/internal/core"
)

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(deps *core.AppDependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery)
	r.Use(Logger)
	r.Use(PrivateSubnetOnly)
	r.Use(CORS)
	r.Use(BodyContentType)

	h := NewHandler(deps)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", h.ListDevices)
			r.Post("/", h.AddDevice)
			r.Post("/discover", h.Discover)
			r.Get("/{name}", h.GetDevice)
			r.Patch("/{name}", h.ConfigureDevice)
			r.Delete("/{name}", h.DeleteDevice)
			r.Put("/{name}/state", h.UpdateDeviceState)
			r.Get("/{name}/stats", h.DeviceStats)
		})

		r.Route("/connections", func(r chi.Router) {
			r.Get("/", h.ListConnections)
			r.Post("/", h.AddConnection)
			r.Post("/import", h.ImportConnection)
			r.Get("/{id}", h.GetConnection)
			r.Patch("/{id}", h.ModifyConnection)
			r.Delete("/{id}", h.DeleteConnection)
			r.Post("/{id}/activate", h.ActivateConnection)
			r.Post("/{id}/deactivate", h.DeactivateConnection)
			r.Post("/{id}/clone", h.CloneConnection)
			r.Get("/{id}/export", h.ExportConnection)
		})

		r.Route("/routing", func(r chi.Router) {
			r.Get("/routes", h.ListRoutes)
			r.Post("/routes", h.AddRoute)
			r.Delete("/routes", h.ClearRoutes)
			r.Get("/routes/*", h.GetRoute)
			r.Delete("/routes/*", h.RemoveRoute)
			r.Get("/gateway", h.GetGateway)
			r.Put("/gateway", h.SetGateway)
			r.Delete("/gateway", h.ClearGateway)
		})

		r.Route("/vpn", func(r chi.Router) {
			r.Get("/", h.ListVpns)
			r.Post("/", h.AddVpn)
			r.Get("/{name}", h.GetVpn)
			r.Delete("/{name}", h.RemoveVpn)
			r.Post("/{name}/connect", h.ConnectVpn)
			r.Post("/{name}/disconnect", h.DisconnectVpn)
			r.Put("/{name}/state", h.UpdateVpnState)
		})

		r.Route("/wifi", func(r chi.Router) {
			r.Post("/scan", h.Scan)
			r.Get("/access-points", h.AccessPoints)
			r.Post("/connect", h.WiFiConnect)
			r.Post("/disconnect", h.WiFiDisconnect)
			r.Get("/status", h.WiFiStatus)
			r.Get("/networks", h.ListNetworks)
			r.Delete("/networks/{id}", h.RemoveNetwork)
		})

		r.Route("/dns", func(r chi.Router) {
			r.Get("/", h.DNSStatus)
			r.Post("/start", h.StartDNS)
			r.Post("/stop", h.StopDNS)
			r.Get("/forwarders", h.ListForwarders)
			r.Put("/forwarders", h.SetForwarders)
			r.Post("/forwarders", h.AddForwarder)
			r.Delete("/forwarders/{forwarder}", h.RemoveForwarder)
		})

		r.Route("/network", func(r chi.Router) {
			r.Get("/", h.GetNetwork)
			r.Post("/connectivity", h.CheckConnectivity)
			r.Get("/snapshot", h.Snapshot)
			r.Get("/jobs", h.Jobs)
		})

		r.Get("/events", h.StreamEvents)
	})

	r.Get("/health", h.CheckHealth)
	if m := deps.Metrics(); m != nil {
		r.Handle("/metrics", m.Handler())
	}
	registerPprof(r)

	return r
}
