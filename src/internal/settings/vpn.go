package settings

import (
	"strings"

	"github.com/maksimkurb/netctl/src/internal/model"
)

// DefaultTorSocksPort is used when a Tor tunnel does not set socks_port.
const DefaultTorSocksPort = 9050

// Tor is the typed form of the "tor" sub-table of a VPN bag.
type Tor struct {
	SocksPort     int      `key:"socks_port" validate:"min=1,max=65535"`
	ExitCountries []string `key:"exit_countries" validate:"dive,country"`
}

// Vpn is the typed form of a VPN settings bag.
type Vpn struct {
	Name          string        `key:"name" validate:"required,ifname"`
	Type          model.VpnType `key:"type"`
	LocalIP       string        `key:"local_ip" validate:"omitempty,ip"`
	RemoteAddress string        `key:"remote_address" validate:"omitempty,endpoint"`
	Interface     string        `key:"interface" validate:"omitempty,ifname"`
	Tor           *Tor          `key:"tor"`
}

// ParseVpn converts a bag with keys name, type, local_ip, remote_address,
// interface and an optional tor table.
func ParseVpn(bag Bag) (*Vpn, error) {
	r := newReader(bag)
	v := &Vpn{
		Name:          r.string("name"),
		LocalIP:       r.string("local_ip"),
		RemoteAddress: r.string("remote_address"),
		Interface:     r.string("interface"),
	}
	if raw, ok := r.enum("type"); ok {
		t, err := model.ParseVpnType(raw)
		if err != nil {
			r.fail("type", err.Error())
		}
		v.Type = t
	}
	if sub := r.sub("tor"); sub != nil || v.Type == model.VpnTypeTor {
		v.Tor = parseTor(r, sub)
	}
	r.check(v)
	if err := r.finish("vpn"); err != nil {
		return nil, err
	}
	return v, nil
}

func parseTor(parent *reader, bag Bag) *Tor {
	r := newReader(bag)
	tor := &Tor{
		SocksPort:     r.int("socks_port", DefaultTorSocksPort),
		ExitCountries: r.strings("exit_countries"),
	}
	for key := range bag {
		if !r.seen[key] {
			r.fail(key, "unknown setting")
		}
	}
	for _, e := range r.errs {
		parent.fail("tor."+e.Key, e.Message)
	}
	return tor
}

// ValidateTor checks Tor options already held by a tunnel.
func ValidateTor(opts *model.TorOptions) error {
	r := newReader(nil)
	tor := &Tor{SocksPort: int(opts.SocksPort), ExitCountries: opts.ExitCountries}
	if tor.SocksPort == 0 {
		tor.SocksPort = DefaultTorSocksPort
	}
	r.check(tor)
	return r.finish("tor")
}

// Tunnel builds the registry entry for these settings.
func (v *Vpn) Tunnel() *model.VpnTunnel {
	t := &model.VpnTunnel{
		Name:          v.Name,
		Type:          v.Type,
		LocalIP:       v.LocalIP,
		RemoteAddress: v.RemoteAddress,
		Interface:     v.Interface,
	}
	if v.Tor != nil {
		countries := make([]string, len(v.Tor.ExitCountries))
		for i, c := range v.Tor.ExitCountries {
			countries[i] = strings.ToUpper(c)
		}
		t.Tor = &model.TorOptions{SocksPort: uint16(v.Tor.SocksPort), ExitCountries: countries}
	}
	return t
}
