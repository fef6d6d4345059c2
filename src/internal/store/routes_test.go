package store

import (
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"pgregory.net/rapid"
)

func TestRouteStore_DefaultRouteReplaced(t *testing.T) {
	s := NewRouteStore()
	s.Put(&model.Route{Destination: "default", Gateway: "10.0.0.1", Device: "eth0", Metric: 5})
	ch := s.Put(&model.Route{Destination: "default", Gateway: "10.0.0.2", Device: "eth0", Metric: 5})

	if ch.Op != OpReplaced || ch.Old.Gateway != "10.0.0.1" {
		t.Errorf("second Put change = %s (old gw %q), want replaced 10.0.0.1", ch.Op, ch.Old.Gateway)
	}
	routes := s.List()
	if len(routes) != 1 {
		t.Fatalf("List() has %d routes, want 1", len(routes))
	}
	if routes[0].Gateway != "10.0.0.2" {
		t.Errorf("default gateway = %s, want 10.0.0.2", routes[0].Gateway)
	}
}

func TestRouteStore_GatewaysTrackedPerFamily(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewRouteStore()
		var want model.DefaultGateways

		n := rapid.IntRange(1, 20).Draw(t, "n")
		for i := 0; i < n; i++ {
			gw := rapid.SampledFrom([]string{"10.0.0.1", "192.168.1.1", "fe80::1", "2001:db8::1"}).Draw(t, "gw")
			s.SetDefaultGateway(&model.Route{Gateway: gw, Device: "eth0"})
			if model.IsIPv6Address(gw) {
				want.IPv6 = gw
			} else {
				want.IPv4 = gw
			}
		}

		if got := s.Gateways(); got != want {
			t.Fatalf("Gateways() = %+v, want %+v", got, want)
		}
		r, err := s.Get(model.DefaultDestination)
		if err != nil {
			t.Fatalf("default route missing: %v", err)
		}
		if r.Metric != 0 {
			t.Fatalf("default route metric = %d, want 0", r.Metric)
		}
	})
}

func TestRouteStore_ClearDefaultGateway(t *testing.T) {
	tests := []struct {
		name        string
		routeGw     string
		clearIPv6   bool
		wantRemoved bool
		wantGw      model.DefaultGateways
	}{
		{"clear ipv4 removes ipv4 default", "10.0.0.1", false, true, model.DefaultGateways{IPv6: "fe80::1"}},
		{"clear ipv6 keeps ipv4 default", "10.0.0.1", true, false, model.DefaultGateways{IPv4: "10.0.0.1"}},
		{"clear ipv6 removes ipv6 default", "fe80::1", true, true, model.DefaultGateways{IPv4: "10.0.0.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRouteStore()
			s.SetDefaultGateway(&model.Route{Gateway: "10.0.0.1"})
			s.SetDefaultGateway(&model.Route{Gateway: "fe80::1"})
			s.SetDefaultGateway(&model.Route{Gateway: tt.routeGw})

			_, removed := s.ClearDefaultGateway(tt.clearIPv6)
			if (removed != nil) != tt.wantRemoved {
				t.Errorf("removed route = %v, want removed %v", removed, tt.wantRemoved)
			}
			if got := s.Gateways(); got != tt.wantGw {
				t.Errorf("Gateways() = %+v, want %+v", got, tt.wantGw)
			}
		})
	}
}

func TestRouteStore_RemoveWhereAndClear(t *testing.T) {
	s := NewRouteStore()
	s.Put(&model.Route{Destination: "10.1.0.0/16", Device: "eth0"})
	s.Put(&model.Route{Destination: "10.2.0.0/16", Device: "wg0"})
	s.Put(&model.Route{Destination: "10.3.0.0/16", Device: "eth0"})

	removed := s.RemoveWhere(func(r *model.Route) bool { return r.Device == "eth0" })
	if len(removed) != 2 || s.Len() != 1 {
		t.Fatalf("RemoveWhere() removed %d, left %d; want 2 and 1", len(removed), s.Len())
	}

	s.SetDefaultGateway(&model.Route{Gateway: "10.0.0.1"})
	s.Clear()
	if s.Len() != 0 || s.Gateways() != (model.DefaultGateways{}) {
		t.Errorf("Clear() left %d routes and gateways %+v", s.Len(), s.Gateways())
	}
	if _, err := s.Remove("10.2.0.0/16"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Remove() after Clear error = %v, want NOT_FOUND", err)
	}
}
