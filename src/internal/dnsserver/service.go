package dnsserver

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/miekg/dns"
)

const DefaultPort = 53

// Status is a snapshot of the DNS service.
type Status struct {
	Running        bool     `json:"running"`
	ListenAddress  string   `json:"listen_address"`
	ListenPort     uint16   `json:"listen_port"`
	Forwarders     []string `json:"forwarders"`
	ForwarderCount int      `json:"forwarder_count"`
}

type Options struct {
	Timeout time.Duration
	// Redirect is installed while the server runs on a port other than 53.
	Redirect *Redirect
	// Listen replaces the UDP+TCP listener, for tests.
	Listen ListenFunc
	// Client replaces the upstream DNS client, for tests.
	Client Exchanger
}

// Service owns the forwarder list and the lifecycle of the forwarding DNS
// server. The forwarder list can change while the server runs; queries use
// the list current at the time they arrive and never wait for mu.
type Service struct {
	mu         sync.RWMutex
	running    bool
	address    string
	port       uint16
	forwarders []string
	listener   Listener

	// current mirrors forwarders for the query path.
	current atomic.Pointer[[]string]

	publisher events.Publisher
	opts      Options
}

func NewService(publisher events.Publisher, forwarders []string, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Listen == nil {
		opts.Listen = listenUDPAndTCP
	}
	if opts.Client == nil {
		opts.Client = &dns.Client{Net: "udp", Timeout: opts.Timeout}
	}
	s := &Service{
		port:      DefaultPort,
		publisher: publisher,
		opts:      opts,
	}
	var valid []string
	for _, f := range forwarders {
		if err := ValidateForwarder(f); err != nil {
			log.Warnf("Ignoring forwarder: %v", err)
			continue
		}
		valid = append(valid, f)
	}
	s.setForwarders(dedupe(valid))
	return s
}

// setForwarders must be called with mu held or before the service is shared.
func (s *Service) setForwarders(list []string) {
	s.forwarders = list
	snapshot := slices.Clone(list)
	s.current.Store(&snapshot)
}

// queryForwarders is the lock-free read used by the DNS handler.
func (s *Service) queryForwarders() []string {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return nil
}

// Start binds the server. A nil forwarders argument keeps the current list.
func (s *Service) Start(ctx context.Context, address string, port uint16, forwarders []string) error {
	if address == "" {
		return errors.NewInvalidParameterError("listen address cannot be empty", nil)
	}
	if port == 0 {
		return errors.NewInvalidParameterError("listen port cannot be 0", nil)
	}
	for _, f := range forwarders {
		if err := ValidateForwarder(f); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.NewInvalidStateError("DNS server is already running")
	}
	if forwarders != nil {
		s.setForwarders(dedupe(forwarders))
	}

	handler := &forwardingHandler{client: s.opts.Client, timeout: s.opts.Timeout, forwarders: s.queryForwarders}
	listener, err := s.opts.Listen(address, port, handler)
	if err != nil {
		return errors.Ensure(err, "failed to start DNS server")
	}

	if s.opts.Redirect != nil && port != dnsPort {
		if err := s.opts.Redirect.Install(port); err != nil {
			if shutdownErr := listener.Shutdown(); shutdownErr != nil {
				log.Warnf("Failed to stop DNS server after redirect failure: %v", shutdownErr)
			}
			return err
		}
	}

	s.listener = listener
	s.running = true
	s.address = address
	s.port = port

	s.publish(events.ServerStarted, address, map[string]any{"address": address, "port": port})
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return errors.NewInvalidStateError("DNS server is not running")
	}

	if s.opts.Redirect != nil && s.port != dnsPort {
		if err := s.opts.Redirect.Remove(); err != nil {
			log.Warnf("Failed to remove DNS redirect: %v", err)
		}
	}
	if err := s.listener.Shutdown(); err != nil {
		log.Warnf("DNS server shutdown: %v", err)
	}
	s.listener = nil
	s.running = false
	log.Infof("DNS server stopped")

	s.publish(events.ServerStopped, s.address, nil)
	return nil
}

// AddForwarder appends f. Adding a forwarder that is already present succeeds
// without a change.
func (s *Service) AddForwarder(f string) error {
	if err := ValidateForwarder(f); err != nil {
		return err
	}
	f = strings.TrimSpace(f)

	s.mu.Lock()
	if slices.Contains(s.forwarders, f) {
		s.mu.Unlock()
		return nil
	}
	s.setForwarders(append(slices.Clone(s.forwarders), f))
	s.mu.Unlock()

	log.Infof("Added DNS forwarder %s", f)
	s.publish(events.ForwarderAdded, f, map[string]any{"forwarder": f})
	return nil
}

// RemoveForwarder fails with NOT_FOUND when f is absent.
func (s *Service) RemoveForwarder(f string) error {
	f = strings.TrimSpace(f)

	s.mu.Lock()
	i := slices.Index(s.forwarders, f)
	if i < 0 {
		s.mu.Unlock()
		return errors.NewNotFoundError("forwarder", f)
	}
	s.setForwarders(slices.Delete(slices.Clone(s.forwarders), i, i+1))
	s.mu.Unlock()

	log.Infof("Removed DNS forwarder %s", f)
	s.publish(events.ForwarderRemoved, f, map[string]any{"forwarder": f})
	return nil
}

// SetForwarders replaces the list after validating every entry.
func (s *Service) SetForwarders(forwarders []string) error {
	for _, f := range forwarders {
		if err := ValidateForwarder(f); err != nil {
			return err
		}
	}
	next := dedupe(forwarders)

	s.mu.Lock()
	prev := s.forwarders
	s.setForwarders(next)
	s.mu.Unlock()

	for _, f := range prev {
		if !slices.Contains(next, f) {
			s.publish(events.ForwarderRemoved, f, map[string]any{"forwarder": f})
		}
	}
	for _, f := range next {
		if !slices.Contains(prev, f) {
			s.publish(events.ForwarderAdded, f, map[string]any{"forwarder": f})
		}
	}
	return nil
}

func (s *Service) Forwarders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.forwarders))
	copy(out, s.forwarders)
	return out
}

func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	forwarders := make([]string, len(s.forwarders))
	copy(forwarders, s.forwarders)
	return Status{
		Running:        s.running,
		ListenAddress:  s.address,
		ListenPort:     s.port,
		Forwarders:     forwarders,
		ForwarderCount: len(forwarders),
	}
}

func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Service) publish(kind events.Kind, key string, args map[string]any) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(events.New(events.DomainDNS, kind, key, args)); err != nil {
		log.Warnf("Failed to publish %s event: %v", kind, err)
	}
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.TrimSpace(f)
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
