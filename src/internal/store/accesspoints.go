package store

import (
	"slices"
	"sync"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
)

// AccessPointStore is the WiFi scan cache. The access point list is replaced
// as a whole on every completed scan; the associated SSID is tracked
// independently of scan results.
type AccessPointStore struct {
	mu          sync.RWMutex
	aps         []model.AccessPoint
	scanning    bool
	currentSSID string
}

func NewAccessPointStore() *AccessPointStore {
	return &AccessPointStore{}
}

// BeginScan sets the scanning flag. Only one scan may be in flight.
func (s *AccessPointStore) BeginScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning {
		return errors.NewInvalidStateError("a WiFi scan is already in progress")
	}
	s.scanning = true
	return nil
}

// CompleteScan replaces the access point list and clears the scanning flag.
// An empty result clears the list.
func (s *AccessPointStore) CompleteScan(aps []model.AccessPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.aps = slices.Clone(aps)
	s.scanning = false
}

// AbortScan clears the scanning flag and keeps the previous results.
func (s *AccessPointStore) AbortScan() {
	s.mu.Lock()
	s.scanning = false
	s.mu.Unlock()
}

func (s *AccessPointStore) Scanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// SetCurrentSSID records the associated network; "" means not associated.
func (s *AccessPointStore) SetCurrentSSID(ssid string) (previous string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, s.currentSSID = s.currentSSID, ssid
	return previous
}

func (s *AccessPointStore) CurrentSSID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSSID
}

// Snapshot returns the list, the scanning flag and the SSID read under one lock.
func (s *AccessPointStore) Snapshot() model.AccessPointSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.AccessPointSnapshot{
		AccessPoints: s.aps,
		Scanning:     s.scanning,
		CurrentSSID:  s.currentSSID,
	}.Clone()
}

func (s *AccessPointStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.aps)
}
