package control

import (
	"context"
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/model"
	"pgregory.net/rapid"
)

func TestAddRoute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		destination string
		gateway     string
		wantErr     bool
	}{
		{"cidr via gateway", "10.0.0.0/8", "192.168.1.1", false},
		{"host address", "192.0.2.7", "", false},
		{"ipv6 prefix", "fd00::/64", "fe80::1", false},
		{"default", "default", "192.168.1.1", false},
		{"empty destination", "", "", true},
		{"garbage destination", "ten-dot-zero", "", true},
		{"gateway is not an address", "10.0.0.0/8", "router", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			err := f.ctl.AddRoute(ctx, tt.destination, tt.gateway, "eth0", 100)
			if tt.wantErr {
				assertCode(t, err, errors.ErrCodeInvalidParameter)
				if len(f.routes.Replaced) != 0 {
					t.Error("invalid routes must not reach the kernel")
				}
				return
			}
			if err != nil {
				t.Fatalf("AddRoute failed: %v", err)
			}
			r, err := f.ctl.GetRoute(tt.destination)
			if err != nil {
				t.Fatalf("GetRoute failed: %v", err)
			}
			if r.Gateway != tt.gateway || r.Metric != 100 || r.Table != model.MainTable {
				t.Errorf("unexpected route %+v", r)
			}
			if len(f.routes.Replaced) != 1 {
				t.Errorf("expected 1 kernel replace, got %d", len(f.routes.Replaced))
			}
		})
	}
}

func TestAddRouteReplacesByDestination(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.ctl.AddRoute(ctx, "default", "192.168.1.1", "eth0", 100); err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}
	if err := f.ctl.AddRoute(ctx, "default", "10.0.0.1", "eth1", 50); err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}

	if n := f.ctl.RouteCount(); n != 1 {
		t.Fatalf("expected 1 route, got %d", n)
	}
	r, _ := f.ctl.GetRoute("default")
	if r.Gateway != "10.0.0.1" || r.Device != "eth1" || r.Metric != 50 {
		t.Errorf("expected the second route to win, got %+v", r)
	}
}

func TestRouteRegistryKeepsLastWrite(t *testing.T) {
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		last := map[string]uint32{}

		n := rapid.IntRange(1, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			dst := rapid.SampledFrom([]string{"default", "10.0.0.0/8", "192.168.0.0/16", "fd00::/8"}).Draw(rt, "destination")
			metric := rapid.Uint32Range(0, 1000).Draw(rt, "metric")
			if err := f.ctl.AddRoute(ctx, dst, "", "eth0", metric); err != nil {
				rt.Fatalf("AddRoute failed: %v", err)
			}
			last[dst] = metric
		}

		if got := f.ctl.RouteCount(); got != len(last) {
			rt.Fatalf("expected %d routes, got %d", len(last), got)
		}
		for dst, metric := range last {
			r, err := f.ctl.GetRoute(dst)
			if err != nil {
				rt.Fatalf("GetRoute(%s) failed: %v", dst, err)
			}
			if r.Metric != metric {
				rt.Fatalf("route %s: expected metric %d, got %d", dst, metric, r.Metric)
			}
		}
	})
}

func TestAddRouteKernelFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.routes.ReplaceFunc = func(ctx context.Context, route *model.Route) error {
		return errors.NewCommandFailedError("ip route replace", nil, "Network is unreachable", nil)
	}

	assertCode(t, f.ctl.AddRoute(ctx, "10.0.0.0/8", "192.168.1.1", "", 0), errors.ErrCodeCommandFailed)
	if n := f.ctl.RouteCount(); n != 0 {
		t.Errorf("failed route must not be stored, got %d routes", n)
	}
	if n := f.pub.Count(events.RouteAdded); n != 0 {
		t.Errorf("expected no RouteAdded, got %d", n)
	}
}

func TestAddRouteEntryDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.ctl.AddRouteEntry(ctx, &model.Route{Destination: "10.1.0.0/16", Device: "eth0"}); err != nil {
		t.Fatalf("AddRouteEntry failed: %v", err)
	}
	r, _ := f.ctl.GetRoute("10.1.0.0/16")
	if r.Type != model.RouteTypeUnicast || r.Scope != model.RouteScopeUniverse || r.Table != model.MainTable {
		t.Errorf("defaults not applied: %+v", r)
	}

	assertCode(t, f.ctl.AddRouteEntry(ctx, nil), errors.ErrCodeInvalidParameter)
}

func TestRemoveRoute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := f.ctl.AddRoute(ctx, "10.0.0.0/8", "", "eth0", 0); err != nil {
		t.Fatalf("AddRoute failed: %v", err)
	}

	if err := f.ctl.RemoveRoute(ctx, "10.0.0.0/8"); err != nil {
		t.Fatalf("RemoveRoute failed: %v", err)
	}
	if len(f.routes.Deleted) != 1 {
		t.Errorf("expected 1 kernel delete, got %d", len(f.routes.Deleted))
	}
	assertCode(t, f.ctl.RemoveRoute(ctx, "10.0.0.0/8"), errors.ErrCodeNotFound)
	assertCode(t, f.ctl.RemoveRoute(ctx, ""), errors.ErrCodeInvalidParameter)
	_, err := f.ctl.GetRoute("")
	assertCode(t, err, errors.ErrCodeInvalidParameter)
}

func TestDefaultGatewayFamilies(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.ctl.SetDefaultGateway(ctx, "192.168.1.1", "eth0"); err != nil {
		t.Fatalf("SetDefaultGateway failed: %v", err)
	}
	if err := f.ctl.SetDefaultGateway(ctx, "fe80::1", "eth0"); err != nil {
		t.Fatalf("SetDefaultGateway failed: %v", err)
	}

	gw := f.ctl.DefaultGateway()
	if gw.IPv4 != "192.168.1.1" || gw.IPv6 != "fe80::1" {
		t.Fatalf("expected both gateways, got %+v", gw)
	}
	r, _ := f.ctl.GetRoute("default")
	if r.Metric != 0 || r.Gateway != "fe80::1" {
		t.Errorf("expected the last gateway's default route with metric 0, got %+v", r)
	}
	if !f.ctl.HasDefaultRoute() {
		t.Error("expected a default route")
	}

	t.Run("clearing one family keeps the other", func(t *testing.T) {
		if err := f.ctl.ClearDefaultGateway(ctx, false); err != nil {
			t.Fatalf("ClearDefaultGateway failed: %v", err)
		}
		gw := f.ctl.DefaultGateway()
		if gw.IPv4 != "" || gw.IPv6 != "fe80::1" {
			t.Errorf("unexpected gateways %+v", gw)
		}
		if _, err := f.ctl.GetRoute("default"); err != nil {
			t.Error("IPv6 default route must survive clearing IPv4")
		}
	})

	t.Run("clearing the route family removes the route", func(t *testing.T) {
		if err := f.ctl.ClearDefaultGateway(ctx, true); err != nil {
			t.Fatalf("ClearDefaultGateway failed: %v", err)
		}
		if _, err := f.ctl.GetRoute("default"); err == nil {
			t.Error("default route should be removed")
		}
		if f.ctl.HasDefaultRoute() {
			t.Error("expected no default route")
		}
	})

	t.Run("invalid gateway", func(t *testing.T) {
		assertCode(t, f.ctl.SetDefaultGateway(ctx, "", "eth0"), errors.ErrCodeInvalidParameter)
		assertCode(t, f.ctl.SetDefaultGateway(ctx, "router", "eth0"), errors.ErrCodeInvalidParameter)
	})
}

func TestGatewayFamiliesAreIndependent(t *testing.T) {
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(t)
		var want model.DefaultGateways

		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			ipv6 := rapid.Bool().Draw(rt, "ipv6")
			if rapid.Bool().Draw(rt, "clear") {
				if err := f.ctl.ClearDefaultGateway(ctx, ipv6); err != nil {
					rt.Fatalf("ClearDefaultGateway failed: %v", err)
				}
				if ipv6 {
					want.IPv6 = ""
				} else {
					want.IPv4 = ""
				}
				continue
			}
			if ipv6 {
				gw := rapid.SampledFrom([]string{"fe80::1", "fe80::2", "2001:db8::1"}).Draw(rt, "gw6")
				if err := f.ctl.SetDefaultGateway(ctx, gw, "eth0"); err != nil {
					rt.Fatalf("SetDefaultGateway failed: %v", err)
				}
				want.IPv6 = gw
			} else {
				gw := rapid.SampledFrom([]string{"192.168.1.1", "10.0.0.1", "172.16.0.1"}).Draw(rt, "gw4")
				if err := f.ctl.SetDefaultGateway(ctx, gw, "eth0"); err != nil {
					rt.Fatalf("SetDefaultGateway failed: %v", err)
				}
				want.IPv4 = gw
			}
		}

		if got := f.ctl.DefaultGateway(); got != want {
			rt.Fatalf("expected %+v, got %+v", want, got)
		}
	})
}

func TestClearAllRoutes(t *testing.T) {
	ctx := context.Background()

	t.Run("clears routes and gateways", func(t *testing.T) {
		f := newFixture(t)
		if err := f.ctl.AddRoute(ctx, "10.0.0.0/8", "", "eth0", 0); err != nil {
			t.Fatalf("AddRoute failed: %v", err)
		}
		if err := f.ctl.SetDefaultGateway(ctx, "192.168.1.1", "eth0"); err != nil {
			t.Fatalf("SetDefaultGateway failed: %v", err)
		}
		f.pub.Reset()

		if err := f.ctl.ClearAllRoutes(ctx); err != nil {
			t.Fatalf("ClearAllRoutes failed: %v", err)
		}
		if n := f.ctl.RouteCount(); n != 0 {
			t.Errorf("expected no routes, got %d", n)
		}
		if gw := f.ctl.DefaultGateway(); gw != (model.DefaultGateways{}) {
			t.Errorf("expected no gateways, got %+v", gw)
		}
		if n := f.pub.Count(events.RouteRemoved); n != 2 {
			t.Errorf("expected 2 RouteRemoved, got %d", n)
		}
		if n := f.pub.Count(events.DefaultGatewayChanged); n != 1 {
			t.Errorf("expected 1 DefaultGatewayChanged, got %d", n)
		}
	})

	t.Run("kernel failure keeps the registry", func(t *testing.T) {
		f := newFixture(t)
		if err := f.ctl.AddRoute(ctx, "10.0.0.0/8", "", "eth0", 0); err != nil {
			t.Fatalf("AddRoute failed: %v", err)
		}
		f.routes.DeleteFunc = func(ctx context.Context, route *model.Route) error {
			return errors.NewCommandFailedError("ip route del", nil, "No such process", nil)
		}

		assertCode(t, f.ctl.ClearAllRoutes(ctx), errors.ErrCodeCommandFailed)
		if n := f.ctl.RouteCount(); n != 1 {
			t.Errorf("expected the route to stay, got %d routes", n)
		}
	})
}
