package control

import (
	"sync/atomic"

	"github.com/maksimkurb/netctl/src/internal/classifier"
	"github.com/maksimkurb/netctl/src/internal/dnsserver"
	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/maksimkurb/netctl/src/internal/store"
	"github.com/maksimkurb/netctl/src/internal/vpn"
	"github.com/maksimkurb/netctl/src/internal/wifi"
)

// Recorder receives operation outcomes and gauges. The metrics package implements it.
type Recorder interface {
	OperationFailed(operation string, err error)
	SetStoreSizes(sizes map[string]int)
	SetNetworkState(networkState, connectivity uint32)
}

// VpnBackends selects the backend of a tunnel type.
type VpnBackends interface {
	For(t model.VpnType) domain.VpnBackend
}

// Deps are the collaborators of the facade. Publisher and Interfaces are
// required; every other field has a working default.
type Deps struct {
	Interfaces domain.InterfaceController
	Supplicant domain.Supplicant
	Publisher  events.Publisher

	// Routes applies routes to the kernel. Defaults to registry-only.
	Routes domain.RouteBackend
	// Vpns defaults to the link backends with Tor disabled.
	Vpns VpnBackends
	// DNS defaults to a service without forwarders.
	DNS *dnsserver.Service
	// Connectivity is consulted by CheckConnectivity. Without it the
	// connectivity stays Unknown.
	Connectivity domain.ConnectivityChecker
	// Probe feeds the device classifier. nil disables probe-based rules.
	Probe    classifier.Probe
	Recorder Recorder
}

type Options struct {
	// RouteTable is the table of routes added without one.
	RouteTable uint32
	WiFi       wifi.Options
}

// NetworkControl is the facade over the entity stores. Every store has its
// own lock; operations that touch several stores update them one after the
// other, so a concurrent reader may observe only part of such an update.
// No store lock is held while a collaborator is called.
type NetworkControl struct {
	devices     *store.DeviceStore
	connections *store.ConnectionStore
	routes      *store.RouteStore
	vpns        *store.VpnStore
	aps         *store.AccessPointStore

	interfaces   domain.InterfaceController
	routeBackend domain.RouteBackend
	vpnBackends  VpnBackends
	connectivity domain.ConnectivityChecker
	probe        classifier.Probe

	wifi *wifi.Orchestrator
	dns  *dnsserver.Service

	notify   *notifier
	recorder Recorder
	opts     Options

	discovering       atomic.Bool
	discovered        atomic.Bool
	lastState         atomic.Uint32
	connectivityValue atomic.Uint32

	// discoveredNames holds the devices found by the last discovery pass.
	discoveredNames atomic.Pointer[map[string]bool]
}

// New builds a facade with fresh, empty stores.
func New(deps Deps, opts Options) *NetworkControl {
	if opts.RouteTable == 0 {
		opts.RouteTable = model.MainTable
	}
	if deps.Routes == nil {
		deps.Routes = domain.NoopRouteBackend{}
	}
	if deps.Vpns == nil {
		deps.Vpns = vpn.NewBackends(deps.Interfaces, false)
	}
	if deps.DNS == nil {
		deps.DNS = dnsserver.NewService(deps.Publisher, nil, dnsserver.Options{})
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}

	c := &NetworkControl{
		devices:      store.NewDeviceStore(),
		connections:  store.NewConnectionStore(),
		routes:       store.NewRouteStore(),
		vpns:         store.NewVpnStore(),
		aps:          store.NewAccessPointStore(),
		interfaces:   deps.Interfaces,
		routeBackend: deps.Routes,
		vpnBackends:  deps.Vpns,
		connectivity: deps.Connectivity,
		probe:        deps.Probe,
		dns:          deps.DNS,
		recorder:     deps.Recorder,
		opts:         opts,
	}
	c.notify = &notifier{publisher: deps.Publisher, changed: c.storesChanged}
	c.lastState.Store(uint32(state.NetworkInitializing))

	if deps.Supplicant != nil {
		c.wifi = wifi.NewOrchestrator(deps.Supplicant, c.aps, c.devices, deps.Publisher, opts.WiFi)
		c.wifi.SetDeviceStateSink(c)
		if scans, ok := deps.Recorder.(wifi.ScanRecorder); ok {
			c.wifi.SetScanRecorder(scans)
		}
	}
	return c
}

// SetConnectivityChecker installs the checker used by CheckConnectivity.
// Checkers that need the facade itself (for HasDefaultRoute) are installed
// after construction.
func (c *NetworkControl) SetConnectivityChecker(checker domain.ConnectivityChecker) {
	c.connectivity = checker
}

// DNS returns the DNS domain service.
func (c *NetworkControl) DNS() *dnsserver.Service {
	return c.dns
}

// finish types err and records it. Use as a deferred call with the named
// error result of an operation.
func (c *NetworkControl) finish(operation string, err *error) {
	if *err == nil {
		return
	}
	*err = errors.Ensure(*err, operation+" failed")
	c.recorder.OperationFailed(operation, *err)
	log.Debugf("%s: %v", operation, *err)
}

func (c *NetworkControl) storesChanged() {
	c.recorder.SetStoreSizes(map[string]int{
		"devices":       c.devices.Len(),
		"connections":   c.connections.Len(),
		"routes":        c.routes.Len(),
		"vpns":          c.vpns.Len(),
		"access_points": c.aps.Len(),
	})
}

type nopRecorder struct{}

func (nopRecorder) OperationFailed(string, error)  {}
func (nopRecorder) SetStoreSizes(map[string]int)   {}
func (nopRecorder) SetNetworkState(uint32, uint32) {}
