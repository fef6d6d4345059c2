// Package api exposes the network control daemon over HTTP.
//
// Every component of the daemon is reachable under /api/v1:
//   - /devices: registry, discovery, link configuration and counters
//   - /connections: profiles, activation, clone, import and export
//   - /routing: routing table and default gateways
//   - /vpn: tunnel registry and lifecycle
//   - /wifi: scanning, association and saved networks
//   - /dns: forwarding server lifecycle and upstreams
//   - /network: aggregate state, connectivity and scheduled jobs
//   - /events: server-sent stream of bus events
//
// /health and /metrics sit at the root. Only private source addresses are
// served.
//
// # Response Format
//
// All successful responses wrap data in a "data" field:
//
//	{
//	  "data": { /* response payload */ }
//	}
//
// Error responses carry the error code of the failed operation:
//
//	{
//	  "error": {
//	    "code": "NOT_FOUND",
//	    "message": "Human-readable error message",
//	    "details": { /* optional context */ }
//	  }
//	}
//
// Connection export is the exception: it returns the raw JSON or YAML
// document so it can be fed back to import unchanged.
package api
