package store

import (
	"testing"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
)

func TestVpnStore(t *testing.T) {
	s := NewVpnStore()

	if _, err := s.Add(&model.VpnTunnel{Name: "wg0", Type: model.VpnTypeWireGuard, State: state.VpnDisconnected}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := s.Add(&model.VpnTunnel{Name: "wg0"}); !errors.IsCode(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("Add() duplicate error = %v, want ALREADY_EXISTS", err)
	}
	if _, err := s.SetState("wg0", state.VpnConnected); !errors.IsCode(err, errors.ErrCodeInvalidState) {
		t.Errorf("SetState(disconnected -> connected) error = %v, want INVALID_STATE", err)
	}
	ch, err := s.SetState("wg0", state.VpnConnecting)
	if err != nil {
		t.Fatalf("SetState(connecting) error: %v", err)
	}
	if ch.Old.State != state.VpnDisconnected || ch.New.State != state.VpnConnecting {
		t.Errorf("change = %s -> %s", ch.Old.State, ch.New.State)
	}
	if _, err := s.SetState("wg9", state.VpnConnecting); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("SetState(unknown) error = %v, want NOT_FOUND", err)
	}
}

func TestAccessPointStore_ScanLifecycle(t *testing.T) {
	s := NewAccessPointStore()
	s.CompleteScan([]model.AccessPoint{{SSID: "old"}})

	if err := s.BeginScan(); err != nil {
		t.Fatalf("BeginScan() error: %v", err)
	}
	if !s.Snapshot().Scanning {
		t.Errorf("Scanning = false during scan")
	}
	if err := s.BeginScan(); !errors.IsCode(err, errors.ErrCodeInvalidState) {
		t.Errorf("second BeginScan() error = %v, want INVALID_STATE", err)
	}

	s.CompleteScan(nil)
	snap := s.Snapshot()
	if snap.Scanning {
		t.Errorf("Scanning = true after completion")
	}
	if len(snap.AccessPoints) != 0 {
		t.Errorf("empty scan left %d stale entries", len(snap.AccessPoints))
	}
}

func TestAccessPointStore_CurrentSSIDIndependentOfScan(t *testing.T) {
	s := NewAccessPointStore()
	s.SetCurrentSSID("home")
	_ = s.BeginScan()
	s.CompleteScan([]model.AccessPoint{{SSID: "cafe"}})

	if got := s.CurrentSSID(); got != "home" {
		t.Errorf("CurrentSSID() = %q after scan, want home", got)
	}
	if prev := s.SetCurrentSSID(""); prev != "home" {
		t.Errorf("SetCurrentSSID() previous = %q, want home", prev)
	}
}
