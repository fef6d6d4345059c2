package networking

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

func TestFlagNames(t *testing.T) {
	tests := []struct {
		name string
		raw  uint32
		want []string
	}{
		{"none", 0, nil},
		{"loopback up", unix.IFF_LOOPBACK | unix.IFF_UP | unix.IFF_RUNNING, []string{"LOOPBACK", "UP", "RUNNING"}},
		{"ethernet", unix.IFF_BROADCAST | unix.IFF_MULTICAST | unix.IFF_UP | unix.IFF_LOWER_UP, []string{"BROADCAST", "MULTICAST", "UP", "LOWER_UP"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlagNames(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FlagNames(%#x) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"link mtu", describe(cmdLinkMTU, vars{"name": "eth0", "mtu": uint32(9000)}), "ip link set dev eth0 mtu 9000"},
		{"missing variable renders empty", describe(cmdLinkUp, nil), "ip link set dev  up"},
		{
			"route with gateway",
			describe(cmdRouteAdd, routeVars(&model.Route{Destination: "default", Gateway: "10.0.0.1", Device: "eth0", Metric: 5})),
			"ip route replace default via 10.0.0.1 dev eth0 metric 5 table 254",
		},
		{
			"route without gateway",
			describe(cmdRouteAdd, routeVars(&model.Route{Destination: "10.8.0.0/24", Device: "wg0", Table: 100})),
			"ip route replace 10.8.0.0/24 dev wg0 metric 0 table 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("describe() = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestCommandFailed(t *testing.T) {
	err := commandFailed(cmdLinkDel, vars{"name": "veth0"}, unix.EPERM)

	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("commandFailed() returned %T, want *errors.Error", err)
	}
	if e.Code != errors.ErrCodeCommandFailed {
		t.Errorf("Code = %s, want COMMAND_FAILED", e.Code)
	}
	if e.Command != "ip link delete dev veth0" {
		t.Errorf("Command = %q", e.Command)
	}
	if e.ExitCode != nil {
		t.Errorf("ExitCode = %v, want nil for netlink errors", *e.ExitCode)
	}
	if !stderrors.Is(err, unix.EPERM) {
		t.Errorf("cause not preserved")
	}
}

func TestParseDestination(t *testing.T) {
	tests := []struct {
		name       string
		route      model.Route
		wantDst    string
		wantFamily int
		wantErr    bool
	}{
		{"default ipv4", model.Route{Destination: "default", Gateway: "10.0.0.1"}, "0.0.0.0/0", netlink.FAMILY_V4, false},
		{"default ipv6", model.Route{Destination: "default", Gateway: "fe80::1"}, "::/0", netlink.FAMILY_V6, false},
		{"cidr", model.Route{Destination: "192.168.10.0/24"}, "192.168.10.0/24", netlink.FAMILY_V4, false},
		{"host", model.Route{Destination: "2001:db8::5"}, "2001:db8::5/128", netlink.FAMILY_V6, false},
		{"garbage", model.Route{Destination: "not-a-prefix"}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, family, err := parseDestination(&tt.route)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDestination() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.IsCode(err, errors.ErrCodeInvalidParameter) {
					t.Errorf("error code = %s, want INVALID_PARAMETER", errors.CodeOf(err))
				}
				return
			}
			if dst.String() != tt.wantDst || family != tt.wantFamily {
				t.Errorf("parseDestination() = %s/%d, want %s/%d", dst, family, tt.wantDst, tt.wantFamily)
			}
		})
	}
}
