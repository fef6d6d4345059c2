package dnsserver

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/miekg/dns"
)

const (
	// DefaultProbeName is resolved to decide whether the outside world is reachable.
	DefaultProbeName = "example.com."

	// FallbackResolver is queried when no forwarder is configured.
	FallbackResolver = "127.0.0.53"
)

// Prober classifies connectivity by resolving a well-known name.
type Prober struct {
	name            string
	client          Exchanger
	forwarders      func() []string
	hasDefaultRoute func() bool
}

var _ domain.ConnectivityChecker = (*Prober)(nil)

// NewProber resolves name through forwarders, or the local stub resolver when
// the list is empty. hasDefaultRoute gates the probe: no default route means
// no connectivity.
func NewProber(name string, client Exchanger, forwarders func() []string, hasDefaultRoute func() bool) *Prober {
	if name == "" {
		name = DefaultProbeName
	}
	if client == nil {
		client = &dns.Client{Net: "udp", Timeout: DefaultTimeout}
	}
	return &Prober{
		name:            dns.Fqdn(name),
		client:          client,
		forwarders:      forwarders,
		hasDefaultRoute: hasDefaultRoute,
	}
}

// Check returns None without a default route, Full when the probe name
// resolves and Limited otherwise.
func (p *Prober) Check(ctx context.Context) (state.Connectivity, error) {
	if !p.hasDefaultRoute() {
		return state.ConnectivityNone, nil
	}

	servers := p.forwarders()
	if len(servers) == 0 {
		servers = []string{FallbackResolver}
	}

	req := new(dns.Msg)
	req.SetQuestion(p.name, dns.TypeA)
	req.RecursionDesired = true

	resp, err := forward(ctx, p.client, servers, req)
	if err != nil {
		log.Debugf("Connectivity probe for %s failed: %v", p.name, err)
		return state.ConnectivityLimited, nil
	}
	if resp.Rcode != dns.RcodeSuccess || len(resp.Answer) == 0 {
		log.Debugf("Connectivity probe for %s answered %s", p.name, dns.RcodeToString[resp.Rcode])
		return state.ConnectivityLimited, nil
	}
	return state.ConnectivityFull, nil
}
