package mocks

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
)

// MockInterfaceController is a mock implementation of domain.InterfaceController.
//
// By default it serves the links stored in Interfaces and applies mutations to
// them, so tests can observe the effect of SetUp, SetMTU and friends. Any
// *Func field overrides the default behavior of its method.
//
// Example usage:
//
//	mock := NewMockInterfaceController(
//	    &domain.InterfaceInfo{Name: "lo", Flags: []string{"LOOPBACK", "UP"}},
//	    &domain.InterfaceInfo{Name: "eth0", MTU: 1500},
//	)
//	mock.SetMTUFunc = func(ctx context.Context, name string, mtu uint32) error {
//	    return errors.NewCommandFailedError("ip link set", nil, "denied", nil)
//	}
type MockInterfaceController struct {
	mu sync.Mutex

	Interfaces map[string]*domain.InterfaceInfo

	ListInterfaceNamesFunc func(ctx context.Context) ([]string, error)
	GetInterfaceInfoFunc   func(ctx context.Context, name string) (*domain.InterfaceInfo, error)
	SetUpFunc              func(ctx context.Context, name string) error
	SetDownFunc            func(ctx context.Context, name string) error
	SetMTUFunc             func(ctx context.Context, name string, mtu uint32) error
	SetMACFunc             func(ctx context.Context, name string, mac string) error
	AddIPFunc              func(ctx context.Context, name string, ip string, prefixLen int) error
	DelIPFunc              func(ctx context.Context, name string, ip string, prefixLen int) error
	DeleteDeviceFunc       func(ctx context.Context, name string) error

	// Track calls for verification in tests
	ListInterfaceNamesCalls int
	SetUpCalls              int
	SetDownCalls            int
	SetMTUCalls             int
	SetMACCalls             int
	AddIPCalls              int
	DelIPCalls              int
	DeleteDeviceCalls       int
}

// NewMockInterfaceController creates a mock serving the given links.
func NewMockInterfaceController(links ...*domain.InterfaceInfo) *MockInterfaceController {
	m := &MockInterfaceController{Interfaces: make(map[string]*domain.InterfaceInfo)}
	for _, link := range links {
		m.Interfaces[link.Name] = link
	}
	return m
}

// ListInterfaceNames returns the names of Interfaces in sorted order.
func (m *MockInterfaceController) ListInterfaceNames(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	m.ListInterfaceNamesCalls++
	m.mu.Unlock()
	if m.ListInterfaceNamesFunc != nil {
		return m.ListInterfaceNamesFunc(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.Interfaces))
	for name := range m.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetInterfaceInfo returns a copy of the stored link or NOT_FOUND.
func (m *MockInterfaceController) GetInterfaceInfo(ctx context.Context, name string) (*domain.InterfaceInfo, error) {
	if m.GetInterfaceInfoFunc != nil {
		return m.GetInterfaceInfoFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	info, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	cp := *info
	cp.Addresses = slices.Clone(info.Addresses)
	cp.Flags = slices.Clone(info.Flags)
	return &cp, nil
}

// SetUp adds the UP flag to the stored link.
func (m *MockInterfaceController) SetUp(ctx context.Context, name string) error {
	m.mu.Lock()
	m.SetUpCalls++
	m.mu.Unlock()
	if m.SetUpFunc != nil {
		return m.SetUpFunc(ctx, name)
	}
	return m.mutate(name, func(info *domain.InterfaceInfo) {
		if !slices.Contains(info.Flags, "UP") {
			info.Flags = append(info.Flags, "UP")
		}
		info.OperState = "up"
	})
}

// SetDown removes the UP flag from the stored link.
func (m *MockInterfaceController) SetDown(ctx context.Context, name string) error {
	m.mu.Lock()
	m.SetDownCalls++
	m.mu.Unlock()
	if m.SetDownFunc != nil {
		return m.SetDownFunc(ctx, name)
	}
	return m.mutate(name, func(info *domain.InterfaceInfo) {
		info.Flags = slices.DeleteFunc(info.Flags, func(f string) bool { return f == "UP" })
		info.OperState = "down"
	})
}

// SetMTU updates the stored MTU.
func (m *MockInterfaceController) SetMTU(ctx context.Context, name string, mtu uint32) error {
	m.mu.Lock()
	m.SetMTUCalls++
	m.mu.Unlock()
	if m.SetMTUFunc != nil {
		return m.SetMTUFunc(ctx, name, mtu)
	}
	return m.mutate(name, func(info *domain.InterfaceInfo) { info.MTU = mtu })
}

// SetMAC updates the stored hardware address.
func (m *MockInterfaceController) SetMAC(ctx context.Context, name string, mac string) error {
	m.mu.Lock()
	m.SetMACCalls++
	m.mu.Unlock()
	if m.SetMACFunc != nil {
		return m.SetMACFunc(ctx, name, mac)
	}
	return m.mutate(name, func(info *domain.InterfaceInfo) { info.HwAddress = mac })
}

// AddIP appends an address to the stored link.
func (m *MockInterfaceController) AddIP(ctx context.Context, name string, ip string, prefixLen int) error {
	m.mu.Lock()
	m.AddIPCalls++
	m.mu.Unlock()
	if m.AddIPFunc != nil {
		return m.AddIPFunc(ctx, name, ip, prefixLen)
	}
	return m.mutate(name, func(info *domain.InterfaceInfo) {
		info.Addresses = append(info.Addresses, domain.Address{IP: ip, PrefixLen: prefixLen})
	})
}

// DelIP removes an address from the stored link.
func (m *MockInterfaceController) DelIP(ctx context.Context, name string, ip string, prefixLen int) error {
	m.mu.Lock()
	m.DelIPCalls++
	m.mu.Unlock()
	if m.DelIPFunc != nil {
		return m.DelIPFunc(ctx, name, ip, prefixLen)
	}
	return m.mutate(name, func(info *domain.InterfaceInfo) {
		info.Addresses = slices.DeleteFunc(info.Addresses, func(a domain.Address) bool {
			return a.IP == ip && a.PrefixLen == prefixLen
		})
	})
}

// DeleteDevice removes the stored link.
func (m *MockInterfaceController) DeleteDevice(ctx context.Context, name string) error {
	m.mu.Lock()
	m.DeleteDeviceCalls++
	m.mu.Unlock()
	if m.DeleteDeviceFunc != nil {
		return m.DeleteDeviceFunc(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.lookup(name); err != nil {
		return err
	}
	delete(m.Interfaces, name)
	return nil
}

func (m *MockInterfaceController) mutate(name string, fn func(info *domain.InterfaceInfo)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, err := m.lookup(name)
	if err != nil {
		return err
	}
	fn(info)
	return nil
}

func (m *MockInterfaceController) lookup(name string) (*domain.InterfaceInfo, error) {
	info, ok := m.Interfaces[name]
	if !ok {
		return nil, errors.NewNotFoundError("interface", name)
	}
	return info, nil
}
