package vpn

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/settings"
)

// LinkBackend drives tunnels whose daemon is managed outside netctl
// (wg-quick, openvpn, strongSwan): connecting brings the tunnel link up and
// disconnecting brings it down.
type LinkBackend struct {
	links domain.InterfaceController
}

func NewLinkBackend(links domain.InterfaceController) *LinkBackend {
	return &LinkBackend{links: links}
}

func (b *LinkBackend) Connect(ctx context.Context, tunnel *model.VpnTunnel) error {
	log.Infof("Bringing up %s tunnel %s on %s", tunnel.Type, tunnel.Name, tunnel.LinkName())
	return b.links.SetUp(ctx, tunnel.LinkName())
}

func (b *LinkBackend) Disconnect(ctx context.Context, tunnel *model.VpnTunnel) error {
	log.Infof("Bringing down %s tunnel %s on %s", tunnel.Type, tunnel.Name, tunnel.LinkName())
	return b.links.SetDown(ctx, tunnel.LinkName())
}

// UnsupportedBackend rejects every request with NOT_SUPPORTED.
type UnsupportedBackend struct {
	Reason string
}

func (b UnsupportedBackend) Connect(context.Context, *model.VpnTunnel) error {
	return errors.NewNotSupportedError(b.Reason)
}

func (b UnsupportedBackend) Disconnect(context.Context, *model.VpnTunnel) error {
	return errors.NewNotSupportedError(b.Reason)
}

// TorBackend accepts Tor tunnels once their options validate. It does not
// bootstrap circuits; the onion-service side runs out of process.
type TorBackend struct{}

func (TorBackend) Connect(ctx context.Context, tunnel *model.VpnTunnel) error {
	opts := tunnel.Tor
	if opts == nil {
		opts = &model.TorOptions{SocksPort: settings.DefaultTorSocksPort}
	}
	if err := settings.ValidateTor(opts); err != nil {
		return err
	}
	log.Infof("Tor tunnel %s registered (socks port %d, exit countries %v)", tunnel.Name, opts.SocksPort, opts.ExitCountries)
	return nil
}

func (TorBackend) Disconnect(ctx context.Context, tunnel *model.VpnTunnel) error {
	log.Infof("Tor tunnel %s released", tunnel.Name)
	return nil
}

// Backends selects the backend for each tunnel type.
type Backends struct {
	byType map[model.VpnType]domain.VpnBackend
}

// NewBackends wires WireGuard, OpenVPN and IPsec to the link backend. Tor
// gets TorBackend only when enabled.
func NewBackends(links domain.InterfaceController, torEnabled bool) *Backends {
	link := NewLinkBackend(links)
	b := &Backends{byType: map[model.VpnType]domain.VpnBackend{
		model.VpnTypeWireGuard: link,
		model.VpnTypeOpenVpn:   link,
		model.VpnTypeIPsec:     link,
		model.VpnTypeTor:       UnsupportedBackend{Reason: "Tor support not compiled in"},
	}}
	if torEnabled {
		b.byType[model.VpnTypeTor] = TorBackend{}
	}
	return b
}

// Set overrides the backend of one type.
func (b *Backends) Set(t model.VpnType, backend domain.VpnBackend) {
	b.byType[t] = backend
}

// For returns the backend of t. Unknown types get an UnsupportedBackend.
func (b *Backends) For(t model.VpnType) domain.VpnBackend {
	if backend, ok := b.byType[t]; ok {
		return backend
	}
	return UnsupportedBackend{Reason: "no backend for VPN type " + t.String()}
}
