package mocks

import (
	"context"
	"sync"

	"github.com/maksimkurb/netctl/src/internal/domain"
)

// MockSupplicant is a mock implementation of domain.Supplicant.
//
// Defaults: the supplicant is installed and running, scans succeed and
// return ScanResultsValue, Status reports Associated SSID as COMPLETED when
// set and DISCONNECTED otherwise.
type MockSupplicant struct {
	mu sync.Mutex

	ScanResultsValue []domain.ScanResult
	Networks         []domain.ConfiguredNetwork
	Associated       string
	RSSI             int32
	Running          bool
	Installed        bool

	ScanFunc          func(ctx context.Context, iface string) error
	ScanResultsFunc   func(ctx context.Context, iface string) ([]domain.ScanResult, error)
	ConnectFunc       func(ctx context.Context, iface, ssid, password string) error
	DisconnectFunc    func(ctx context.Context, iface string) error
	StatusFunc        func(ctx context.Context, iface string) (*domain.SupplicantStatus, error)
	SignalPollFunc    func(ctx context.Context, iface string) (int32, error)
	RemoveNetworkFunc func(ctx context.Context, iface string, id int) error

	// Track calls for verification in tests
	ScanCalls       int
	ConnectCalls    int
	DisconnectCalls int
	LastInterface   string
}

// NewMockSupplicant creates an installed, running supplicant with no networks.
func NewMockSupplicant() *MockSupplicant {
	return &MockSupplicant{Running: true, Installed: true, RSSI: -60}
}

func (m *MockSupplicant) record(iface string, counter *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
	m.LastInterface = iface
}

// Scan triggers a scan.
func (m *MockSupplicant) Scan(ctx context.Context, iface string) error {
	m.record(iface, &m.ScanCalls)
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, iface)
	}
	return nil
}

// ScanResults returns ScanResultsValue.
func (m *MockSupplicant) ScanResults(ctx context.Context, iface string) ([]domain.ScanResult, error) {
	if m.ScanResultsFunc != nil {
		return m.ScanResultsFunc(ctx, iface)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ScanResult(nil), m.ScanResultsValue...), nil
}

// Connect records ssid as the associated network.
func (m *MockSupplicant) Connect(ctx context.Context, iface, ssid, password string) error {
	m.record(iface, &m.ConnectCalls)
	if m.ConnectFunc != nil {
		return m.ConnectFunc(ctx, iface, ssid, password)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Associated = ssid
	m.Networks = append(m.Networks, domain.ConfiguredNetwork{ID: len(m.Networks), SSID: ssid})
	return nil
}

// Disconnect clears the associated network.
func (m *MockSupplicant) Disconnect(ctx context.Context, iface string) error {
	m.record(iface, &m.DisconnectCalls)
	if m.DisconnectFunc != nil {
		return m.DisconnectFunc(ctx, iface)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Associated = ""
	return nil
}

// Status reports COMPLETED while associated.
func (m *MockSupplicant) Status(ctx context.Context, iface string) (*domain.SupplicantStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, iface)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Associated == "" {
		return &domain.SupplicantStatus{State: "DISCONNECTED"}, nil
	}
	return &domain.SupplicantStatus{State: domain.SupplicantStateCompleted, SSID: m.Associated}, nil
}

// SignalPoll returns RSSI.
func (m *MockSupplicant) SignalPoll(ctx context.Context, iface string) (int32, error) {
	if m.SignalPollFunc != nil {
		return m.SignalPollFunc(ctx, iface)
	}
	return m.RSSI, nil
}

// IsRunning returns Running.
func (m *MockSupplicant) IsRunning(ctx context.Context, iface string) bool {
	return m.Running
}

// IsInstalled returns Installed.
func (m *MockSupplicant) IsInstalled() bool {
	return m.Installed
}

// ListNetworks returns Networks.
func (m *MockSupplicant) ListNetworks(ctx context.Context, iface string) ([]domain.ConfiguredNetwork, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ConfiguredNetwork(nil), m.Networks...), nil
}

// RemoveNetwork drops the network with the given id from Networks.
func (m *MockSupplicant) RemoveNetwork(ctx context.Context, iface string, id int) error {
	if m.RemoveNetworkFunc != nil {
		return m.RemoveNetworkFunc(ctx, iface, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.Networks {
		if n.ID == id {
			m.Networks = append(m.Networks[:i], m.Networks[i+1:]...)
			return nil
		}
	}
	return nil
}
