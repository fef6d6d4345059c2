package mocks

import (
	"context"
	"sync"

	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

// MockRouteBackend is a mock implementation of domain.RouteBackend that
// records the routes it was asked to apply.
type MockRouteBackend struct {
	mu sync.Mutex

	ReplaceFunc func(ctx context.Context, route *model.Route) error
	DeleteFunc  func(ctx context.Context, route *model.Route) error

	Replaced []model.Route
	Deleted  []model.Route
}

// Replace records route.
func (m *MockRouteBackend) Replace(ctx context.Context, route *model.Route) error {
	m.mu.Lock()
	m.Replaced = append(m.Replaced, *route)
	m.mu.Unlock()
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, route)
	}
	return nil
}

// Delete records route.
func (m *MockRouteBackend) Delete(ctx context.Context, route *model.Route) error {
	m.mu.Lock()
	m.Deleted = append(m.Deleted, *route)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, route)
	}
	return nil
}

// MockVpnBackend is a mock implementation of domain.VpnBackend.
type MockVpnBackend struct {
	mu sync.Mutex

	ConnectFunc    func(ctx context.Context, tunnel *model.VpnTunnel) error
	DisconnectFunc func(ctx context.Context, tunnel *model.VpnTunnel) error

	// Track calls for verification in tests
	ConnectCalls    int
	DisconnectCalls int
}

// Connect counts the call.
func (m *MockVpnBackend) Connect(ctx context.Context, tunnel *model.VpnTunnel) error {
	m.mu.Lock()
	m.ConnectCalls++
	m.mu.Unlock()
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx, tunnel)
	}
	return nil
}

// Disconnect counts the call.
func (m *MockVpnBackend) Disconnect(ctx context.Context, tunnel *model.VpnTunnel) error {
	m.mu.Lock()
	m.DisconnectCalls++
	m.mu.Unlock()
	if m.DisconnectFunc != nil {
		return m.DisconnectFunc(ctx, tunnel)
	}
	return nil
}

// MockConnectivityChecker is a mock implementation of domain.ConnectivityChecker.
type MockConnectivityChecker struct {
	Result state.Connectivity
	Err    error
	Calls  int
}

// Check returns Result and Err.
func (m *MockConnectivityChecker) Check(ctx context.Context) (state.Connectivity, error) {
	m.Calls++
	return m.Result, m.Err
}
