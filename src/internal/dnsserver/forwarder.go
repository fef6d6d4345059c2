package dnsserver

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/miekg/dns"
)

const (
	defaultDNSPort = "53"

	// DefaultTimeout bounds one upstream exchange.
	DefaultTimeout = 3 * time.Second
)

// ValidateForwarder accepts a non-empty IPv4 or IPv6 address or a hostname,
// optionally with a port. Values without '.' or ':' are rejected.
func ValidateForwarder(f string) error {
	f = strings.TrimSpace(f)
	if f == "" {
		return errors.NewInvalidParameterError("forwarder cannot be empty", nil)
	}
	if !strings.ContainsAny(f, ".:") {
		return errors.NewInvalidParameterError(fmt.Sprintf("invalid forwarder '%s'", f), nil)
	}
	return nil
}

// forwarderAddress appends the default DNS port when f has none.
func forwarderAddress(f string) string {
	if _, _, err := net.SplitHostPort(f); err == nil {
		return f
	}
	return net.JoinHostPort(strings.Trim(f, "[]"), defaultDNSPort)
}

// Exchanger sends one DNS message to one server.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, address string) (*dns.Msg, time.Duration, error)
}

// forward tries each forwarder in order and returns the first answer.
func forward(ctx context.Context, client Exchanger, forwarders []string, req *dns.Msg) (*dns.Msg, error) {
	if len(forwarders) == 0 {
		return nil, errors.NewInvalidStateError("no forwarders configured")
	}

	queryInfo := "unknown"
	if len(req.Question) > 0 {
		q := req.Question[0]
		queryInfo = fmt.Sprintf("%s %s", q.Name, dns.TypeToString[q.Qtype])
	}

	var lastErr error
	for _, f := range forwarders {
		addr := forwarderAddress(f)
		resp, _, err := client.ExchangeContext(ctx, req, addr)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var netErr net.Error
		if stderrors.As(err, &netErr) && netErr.Timeout() {
			log.Debugf("[%04x] Forwarder timeout for query: %s (forwarder: %s)", req.Id, queryInfo, addr)
		} else {
			log.Debugf("[%04x] Forwarder error for query %s (forwarder: %s): %v", req.Id, queryInfo, addr, err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Ensure(lastErr, "all forwarders failed")
}
