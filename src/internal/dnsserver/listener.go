package dnsserver

import (
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/miekg/dns"
)

// Listener is a running DNS server.
type Listener interface {
	Shutdown() error
}

// ListenFunc binds a DNS server to address:port serving handler.
type ListenFunc func(address string, port uint16, handler dns.Handler) (Listener, error)

// listenUDPAndTCP binds both transports before returning, so bind errors
// reach the caller instead of a background goroutine.
func listenUDPAndTCP(address string, port uint16, handler dns.Handler) (Listener, error) {
	addr := net.JoinHostPort(address, strconv.Itoa(int(port)))

	pc, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("failed to listen UDP on %s", addr), err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		pc.Close()
		return nil, errors.NewIOError(fmt.Sprintf("failed to listen TCP on %s", addr), err)
	}

	l := &dualListener{
		udp: &dns.Server{PacketConn: pc, Handler: handler},
		tcp: &dns.Server{Listener: ln, Handler: handler},
	}
	l.serve(l.udp, "UDP")
	l.serve(l.tcp, "TCP")
	log.Infof("DNS server started on %s (UDP/TCP)", addr)
	return l, nil
}

type dualListener struct {
	udp *dns.Server
	tcp *dns.Server
	wg  sync.WaitGroup
}

func (l *dualListener) serve(srv *dns.Server, network string) {
	started := make(chan struct{})
	exited := make(chan struct{})
	srv.NotifyStartedFunc = func() { close(started) }

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(exited)
		if err := srv.ActivateAndServe(); err != nil {
			log.Debugf("DNS %s server exited: %v", network, err)
		}
	}()

	select {
	case <-started:
	case <-exited:
	}
}

func (l *dualListener) Shutdown() error {
	errUDP := l.udp.Shutdown()
	errTCP := l.tcp.Shutdown()
	l.wg.Wait()
	if errUDP != nil {
		return errUDP
	}
	return errTCP
}
