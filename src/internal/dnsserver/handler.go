package dnsserver

import (
	"context"
	"time"

	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/miekg/dns"
)

// forwardingHandler answers every query from the current forwarder list.
type forwardingHandler struct {
	client     Exchanger
	timeout    time.Duration
	forwarders func() []string
}

func (h *forwardingHandler) ServeDNS(w dns.ResponseWriter, req *dns.Msg) {
	if len(req.Question) > 0 {
		q := req.Question[0]
		log.Debugf("[%04x] DNS query: %s %s from %s", req.Id, q.Name, dns.TypeToString[q.Qtype], w.RemoteAddr())
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	resp, err := forward(ctx, h.client, h.forwarders(), req)
	if err != nil {
		log.Debugf("[%04x] Answering SERVFAIL: %v", req.Id, err)
		resp = new(dns.Msg)
		resp.SetRcode(req, dns.RcodeServerFailure)
	}
	resp.Id = req.Id

	if err := w.WriteMsg(resp); err != nil {
		log.Debugf("[%04x] Write error: %v", req.Id, err)
	}
}
