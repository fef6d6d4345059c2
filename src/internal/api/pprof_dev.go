//go:build dev

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/maksimkurb/netctl/src/internal/log"
)

// registerPprof mounts pprof and expvar under /debug in dev builds. The
// routes sit behind the same private-subnet filter as the API.
func registerPprof(r chi.Router) {
	log.Warnf("Dev build: profiling endpoints are served under /debug/pprof")
	r.Mount("/debug", middleware.Profiler())
}
