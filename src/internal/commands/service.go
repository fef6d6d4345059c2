package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/maksimkurb/netctl/src/internal/api"
	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/core"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
)

const shutdownTimeout = 10 * time.Second

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}

	sc.fs.StringVar(&sc.APIListen, "api", "", "Override general.api_listen (empty string in config disables the API)")
	sc.fs.StringVar(&sc.DumpFormat, "dump-format", formatJSON, "Format of the state dump written on SIGUSR1: json or yaml")

	return sc
}

type ServiceCommand struct {
	fs         *flag.FlagSet
	cfg        *config.Config
	ctx        *AppContext
	APIListen  string
	DumpFormat string

	deps *core.AppDependencies

	apiServer atomic.Pointer[api.Server]
	apiRunner *RestartableRunner
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	if s.DumpFormat != formatJSON && s.DumpFormat != formatYAML {
		return errors.NewInvalidParameterError("-dump-format must be json or yaml", nil)
	}

	cfg, err := loadAndValidateConfig(ctx)
	if err != nil {
		return err
	}
	s.cfg = cfg
	if s.APIListen != "" {
		s.cfg.General.APIListen = s.APIListen
	}

	deps, err := core.NewAppDependencies(core.AppConfig{Config: s.cfg})
	if err != nil {
		return err
	}
	s.deps = deps

	return nil
}

func (s *ServiceCommand) Run() error {
	log.Infof("Starting netctl service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)

	s.discover(ctx)

	if err := s.deps.ScheduleJobs(); err != nil {
		return err
	}
	s.deps.Scheduler().Start()

	if s.cfg.DNS.Autostart {
		if err := s.deps.StartDNS(ctx); err != nil {
			log.Errorf("Failed to start DNS server: %v", err)
			log.Warnf("Service will continue without DNS forwarding")
		}
	} else {
		log.Infof("DNS server autostart is disabled")
	}

	if addr := s.cfg.General.APIListen; addr != "" {
		if err := s.startAPIServer(ctx, addr); err != nil {
			log.Errorf("Failed to start API server: %v", err)
		}
	} else {
		log.Infof("REST API is disabled")
	}

	log.Infof("Service started successfully.")
	log.Infof("Send SIGHUP to rediscover devices, SIGUSR1 to dump the current state")

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			log.Infof("Received SIGHUP signal, rediscovering devices...")
			s.discover(ctx)
			if hasher := s.deps.ConfigHasher(); hasher != nil {
				if outdated, err := hasher.Outdated(); err == nil && outdated {
					log.Warnf("Configuration file changed on disk, restart the service to apply it")
				}
			}

		case syscall.SIGUSR1:
			s.dumpState()

		case syscall.SIGINT, syscall.SIGTERM:
			log.Infof("Received signal %v, shutting down...", sig)
			return s.shutdown()
		}
	}
	return nil
}

func (s *ServiceCommand) discover(ctx context.Context) {
	n, err := s.deps.Control().Discover(ctx)
	if err != nil {
		log.Errorf("Device discovery failed: %v", err)
		return
	}
	log.Infof("Discovered %d devices", n)
}

func (s *ServiceCommand) dumpState() {
	data, err := marshalOutput(s.deps.Control().Snapshot(), s.DumpFormat)
	if err != nil {
		log.Errorf("Failed to dump state: %v", err)
		return
	}
	log.Infof("Current state:\n%s", data)
}

// startAPIServer runs the HTTP API in a restartable runner.
func (s *ServiceCommand) startAPIServer(ctx context.Context, bindAddr string) error {
	log.Infof("Starting netctl API server on %s", bindAddr)
	log.Infof("")
	log.Infof("Access restricted to private subnets only:")
	log.Infof("  IPv4: 10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16, 127.0.0.0/8")
	log.Infof("  IPv6: fc00::/7, fe80::/10, ::1/128")
	log.Infof("")

	s.apiRunner = NewRestartableRunner(RunnerConfig{
		Name:           "API server",
		MaxRestarts:    0,
		RestartBackoff: 2 * time.Second,
		MaxBackoff:     30 * time.Second,
		Events:         s.deps.Bus(),
		Recorder:       s.deps.Metrics(),
	}, func(runCtx context.Context) error {
		// A closed http.Server cannot be reused, so each attempt gets its own.
		server := api.NewServer(bindAddr, api.NewRouter(s.deps))
		s.apiServer.Store(server)
		return server.Start()
	})

	return s.apiRunner.Start(ctx)
}

// shutdown performs graceful shutdown of all components.
func (s *ServiceCommand) shutdown() error {
	log.Infof("Shutting down netctl service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if server := s.apiServer.Load(); server != nil {
		log.Infof("Stopping API server...")
		if err := server.Stop(shutdownCtx); err != nil {
			log.Errorf("Error during API server shutdown: %v", err)
		}
	}
	if s.apiRunner != nil {
		if err := s.apiRunner.Stop(); err != nil {
			log.Errorf("Failed to stop API runner: %v", err)
		}
	}

	if err := s.deps.Close(shutdownCtx); err != nil {
		log.Errorf("Failed to stop components: %v", err)
	}

	log.Infof("Service stopped successfully")
	return nil
}
