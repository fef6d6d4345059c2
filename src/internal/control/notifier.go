package control

import (
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/maksimkurb/netctl/src/internal/store"
)

// notifier turns store changes into bus events. Publishing is best effort: a
// failure is logged and never undoes the mutation.
type notifier struct {
	publisher events.Publisher
	changed   func()
}

func (n *notifier) publish(domain events.Domain, kind events.Kind, key string, args map[string]any) {
	if n.publisher == nil {
		return
	}
	if _, err := n.publisher.Publish(events.New(domain, kind, key, args)); err != nil {
		log.Warnf("Failed to publish %s(%s): %v", kind, key, err)
	}
}

func (n *notifier) storesChanged() {
	if n.changed != nil {
		n.changed()
	}
}

func (n *notifier) device(ch store.Change[*model.Device]) {
	defer n.storesChanged()
	switch ch.Op {
	case store.OpAdded:
		n.publish(events.DomainDevices, events.DeviceAdded, ch.New.Name, map[string]any{
			"type":  ch.New.Type.String(),
			"state": ch.New.State.String(),
		})
	case store.OpRemoved:
		n.publish(events.DomainDevices, events.DeviceRemoved, ch.Old.Name, nil)
	default:
		if ch.Old.State != ch.New.State {
			n.publish(events.DomainDevices, events.DeviceStateChanged, ch.New.Name, map[string]any{
				"state":     ch.New.State.String(),
				"old_state": ch.Old.State.String(),
			})
			return
		}
		n.publish(events.DomainDevices, events.DeviceUpdated, ch.New.Name, nil)
	}
}

func (n *notifier) connection(ch store.Change[*model.Connection]) {
	defer n.storesChanged()
	switch ch.Op {
	case store.OpAdded:
		n.publish(events.DomainConnections, events.ConnectionAdded, ch.New.ID, map[string]any{"name": ch.New.Name})
		return
	case store.OpRemoved:
		n.publish(events.DomainConnections, events.ConnectionRemoved, ch.Old.ID, nil)
		return
	}

	oldState, newState := ch.Old.State, ch.New.State
	if oldState == newState && ch.Old.Device == ch.New.Device {
		n.publish(events.DomainConnections, events.ConnectionUpdated, ch.New.ID, nil)
		return
	}
	if oldState != newState {
		n.publish(events.DomainConnections, events.ConnectionStateChanged, ch.New.ID, map[string]any{"state": newState.String()})
	}
	switch {
	case newState == state.ConnectionActivating:
		n.publish(events.DomainConnections, events.ConnectionActivated, ch.New.ID, map[string]any{"device": ch.New.Device})
	case oldState.IsActive() && !newState.IsActive():
		n.publish(events.DomainConnections, events.ConnectionDeactivated, ch.New.ID, nil)
	case oldState == newState:
		n.publish(events.DomainConnections, events.ConnectionUpdated, ch.New.ID, nil)
	}
}

func (n *notifier) routeAdded(r *model.Route) {
	defer n.storesChanged()
	n.publish(events.DomainRouting, events.RouteAdded, r.Destination, map[string]any{
		"gateway": r.Gateway,
		"device":  r.Device,
		"metric":  r.Metric,
	})
}

func (n *notifier) routeRemoved(r *model.Route) {
	defer n.storesChanged()
	n.publish(events.DomainRouting, events.RouteRemoved, r.Destination, nil)
}

func (n *notifier) gatewayChanged(gateway string, ipv6 bool) {
	n.publish(events.DomainRouting, events.DefaultGatewayChanged, gateway, map[string]any{
		"gateway": gateway,
		"ipv6":    ipv6,
	})
}

func (n *notifier) vpn(ch store.Change[*model.VpnTunnel]) {
	defer n.storesChanged()
	switch ch.Op {
	case store.OpAdded:
		n.publish(events.DomainVPN, events.VpnAdded, ch.New.Name, map[string]any{"type": ch.New.Type.String()})
	case store.OpRemoved:
		n.publish(events.DomainVPN, events.VpnRemoved, ch.Old.Name, nil)
	default:
		if ch.Old.State != ch.New.State {
			n.publish(events.DomainVPN, events.VpnStateChanged, ch.New.Name, map[string]any{"state": ch.New.State.String()})
		}
	}
}

func (n *notifier) networkState(s state.NetworkState) {
	n.publish(events.DomainNetwork, events.NetworkStateChanged, "", map[string]any{"state": s.String()})
}

func (n *notifier) connectivity(c state.Connectivity) {
	n.publish(events.DomainNetwork, events.ConnectivityChanged, "", map[string]any{"connectivity": c.String()})
}

func storeRemoved[V any](old V) store.Change[V] {
	return store.Change[V]{Op: store.OpRemoved, Old: old}
}
