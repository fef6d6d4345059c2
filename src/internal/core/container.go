package core

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/classifier"
	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/control"
	"github.com/maksimkurb/netctl/src/internal/dnsserver"
	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/metrics"
	"github.com/maksimkurb/netctl/src/internal/networking"
	"github.com/maksimkurb/netctl/src/internal/scheduler"
	"github.com/maksimkurb/netctl/src/internal/supplicant"
	"github.com/maksimkurb/netctl/src/internal/vpn"
	"github.com/maksimkurb/netctl/src/internal/wifi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	JobDiscovery    = "discovery"
	JobConnectivity = "connectivity"
)

// AppDependencies is a dependency injection container that holds all application dependencies.
//
// Production code builds it with NewAppDependencies from a loaded config.
// Tests override any collaborator through AppConfig.
//
// Usage:
//
//	deps, err := core.NewAppDependencies(core.AppConfig{Config: cfg})
//	n, err := deps.Control().Discover(ctx)
type AppDependencies struct {
	config *config.Config
	hasher *config.Hasher

	bus       *events.Bus
	collector *metrics.Collector
	registry  *prometheus.Registry

	interfaces domain.InterfaceController
	supplicant domain.Supplicant
	dns        *dnsserver.Service
	control    *control.NetworkControl
	scheduler  *scheduler.Scheduler
}

// AppConfig holds configuration for creating application dependencies.
type AppConfig struct {
	// Config is the daemon configuration. nil means config.Default().
	Config *config.Config

	// Interfaces replaces the netlink link controller.
	Interfaces domain.InterfaceController
	// Supplicant replaces wpa_cli. When nil and wpa_cli is not installed,
	// WiFi operations report NOT_SUPPORTED.
	Supplicant domain.Supplicant
	// Routes replaces the kernel route backend selected by routing.apply_to_kernel.
	Routes domain.RouteBackend
	// Probe replaces the sysfs probe of the classifier.
	Probe classifier.Probe
	// Connectivity replaces the DNS prober.
	Connectivity domain.ConnectivityChecker
}

// NewAppDependencies creates a new dependency container with production implementations.
func NewAppDependencies(cfg AppConfig) (*AppDependencies, error) {
	conf := cfg.Config
	if conf == nil {
		conf = config.Default()
	}

	d := &AppDependencies{
		config:   conf,
		bus:      events.NewBus(conf.Bus.SubscriberBuffer),
		registry: prometheus.NewRegistry(),
	}

	if conf.Path() != "" {
		d.hasher = config.NewHasher(conf.Path())
		if err := d.hasher.SetActive(conf); err != nil {
			log.Warnf("Failed to hash active config: %v", err)
		}
	}

	var recorder control.Recorder
	if conf.Metrics.Enabled {
		d.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector, err := metrics.NewCollector(d.registry)
		if err != nil {
			return nil, err
		}
		d.collector = collector
		d.bus.SetRecorder(collector)
		recorder = collector
	}

	d.interfaces = cfg.Interfaces
	if d.interfaces == nil {
		d.interfaces = networking.NewLinkController()
	}

	d.supplicant = cfg.Supplicant
	if d.supplicant == nil {
		wpa := supplicant.NewWpaCli(conf.WiFi.WpaCliPath)
		if wpa.IsInstalled() {
			d.supplicant = wpa
		} else {
			log.Infof("%s not found, WiFi support disabled", conf.WiFi.WpaCliPath)
		}
	}

	routes := cfg.Routes
	if routes == nil {
		if conf.Routing.ApplyToKernel {
			routes = networking.NewKernelRoutes()
		} else {
			routes = domain.NoopRouteBackend{}
		}
	}

	probe := cfg.Probe
	if probe == nil {
		probe = classifier.NewSysfsProbe(conf.General.SysfsRoot)
	}

	var redirect *dnsserver.Redirect
	if len(conf.DNS.RedirectInterfaces) > 0 {
		r, err := dnsserver.NewRedirect(conf.DNS.RedirectInterfaces)
		if err != nil {
			log.Warnf("DNS redirect disabled: %v", err)
		} else {
			redirect = r
		}
	}
	d.dns = dnsserver.NewService(d.bus, conf.DNS.Forwarders, dnsserver.Options{
		Timeout:  conf.DNSTimeout(),
		Redirect: redirect,
	})

	d.control = control.New(control.Deps{
		Interfaces: d.interfaces,
		Supplicant: d.supplicant,
		Publisher:  d.bus,
		Routes:     routes,
		Vpns:       vpn.NewBackends(d.interfaces, conf.VPN.TorEnabled),
		DNS:        d.dns,
		Probe:      probe,
		Recorder:   recorder,
	}, control.Options{
		RouteTable: conf.Routing.Table,
		WiFi: wifi.Options{
			Interface: conf.WiFi.Interface,
			ScanGrace: conf.ScanGrace(),
		},
	})

	checker := cfg.Connectivity
	if checker == nil {
		checker = dnsserver.NewProber(conf.General.ConnectivityProbe, nil, d.control.Forwarders, d.control.HasDefaultRoute)
	}
	d.control.SetConnectivityChecker(checker)

	d.scheduler = scheduler.New()

	return d, nil
}

// ScheduleJobs registers periodic discovery and connectivity checks for the
// schedules that are not empty. The scheduler is not started.
func (d *AppDependencies) ScheduleJobs() error {
	general := d.config.General
	if general.DiscoverySchedule != "" {
		err := d.scheduler.Add(JobDiscovery, general.DiscoverySchedule, func(ctx context.Context) error {
			_, err := d.control.Discover(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	if general.ConnectivitySchedule != "" {
		err := d.scheduler.Add(JobConnectivity, general.ConnectivitySchedule, func(ctx context.Context) error {
			_, err := d.control.CheckConnectivity(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// StartDNS starts the DNS server with the configured listen address.
func (d *AppDependencies) StartDNS(ctx context.Context) error {
	return d.control.StartDNSServer(ctx, d.config.DNS.ListenAddr, d.config.DNS.ListenPort, nil)
}

// Close stops background work and disconnects bus subscribers.
func (d *AppDependencies) Close(ctx context.Context) error {
	err := d.scheduler.Stop(ctx)
	if d.dns.IsRunning() {
		if stopErr := d.control.StopDNSServer(ctx); stopErr != nil && err == nil {
			err = stopErr
		}
	}
	d.bus.Close()
	return err
}

func (d *AppDependencies) Config() *config.Config {
	return d.config
}

// ConfigHasher is nil for configs that were not loaded from a file.
func (d *AppDependencies) ConfigHasher() *config.Hasher {
	return d.hasher
}

func (d *AppDependencies) Bus() *events.Bus {
	return d.bus
}

// Metrics is nil when metrics are disabled.
func (d *AppDependencies) Metrics() *metrics.Collector {
	return d.collector
}

func (d *AppDependencies) Control() *control.NetworkControl {
	return d.control
}

func (d *AppDependencies) Scheduler() *scheduler.Scheduler {
	return d.scheduler
}
