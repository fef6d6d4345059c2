package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/maksimkurb/netctl/src/internal/model"
)

type fakeProbe struct {
	drivers  map[string]string
	wireless map[string]bool
	phy      map[string]bool
	speeds   map[string]uint32
}

func (f fakeProbe) Driver(name string) (string, bool) {
	d, ok := f.drivers[name]
	return d, ok
}

func (f fakeProbe) IsWireless(name string) bool          { return f.wireless[name] }
func (f fakeProbe) SupportsAccessPoint(name string) bool { return f.phy[name] }

func (f fakeProbe) Speed(name string) (uint32, bool) {
	s, ok := f.speeds[name]
	return s, ok
}

func TestClassifyType(t *testing.T) {
	probe := fakeProbe{
		drivers: map[string]string{
			"eth0":   "e1000e",
			"eth1":   "iwlwifi",
			"enp3s0": "r8169",
			"eno1":   "ath10k_pci",
		},
		wireless: map[string]bool{"ra0": true},
	}

	tests := []struct {
		name string
		want model.DeviceType
	}{
		{"lo", model.DeviceTypeLoopback},
		{"wlan0", model.DeviceTypeWiFi},
		{"wlp2s0", model.DeviceTypeWiFi},
		{"eth0", model.DeviceTypeEthernet},
		{"eth1", model.DeviceTypeWiFi},
		{"enp3s0", model.DeviceTypeEthernet},
		{"eno1", model.DeviceTypeWiFi},
		{"eth7", model.DeviceTypeEthernet},
		{"br-lan", model.DeviceTypeBridge},
		{"bridge0", model.DeviceTypeBridge},
		{"vlan100", model.DeviceTypeVlan},
		{"tun0", model.DeviceTypeTunTap},
		{"tap3", model.DeviceTypeTunTap},
		{"veth0", model.DeviceTypeVeth},
		{"veth12ab", model.DeviceTypeVeth},
		{"veth1a2b3c", model.DeviceTypeVeth},
		{"veth1a2b3c4", model.DeviceTypeContainer},
		{"vethd2f1e0a9b", model.DeviceTypeContainer},
		{"bond0", model.DeviceTypeBond},
		{"docker0", model.DeviceTypeContainer},
		{"ppp0", model.DeviceTypePpp},
		{"wg0", model.DeviceTypeVpn},
		{"ra0", model.DeviceTypeWiFi},
		{"foo123", model.DeviceTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyType(tt.name, probe); got != tt.want {
				t.Errorf("ClassifyType(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassify_NilProbe(t *testing.T) {
	if got := Classify("eth0", nil).Type; got != model.DeviceTypeEthernet {
		t.Errorf("Classify(eth0, nil) = %s, want ethernet", got)
	}
	if got := Classify("foo123", nil).Type; got != model.DeviceTypeUnknown {
		t.Errorf("Classify(foo123, nil) = %s, want unknown", got)
	}
}

func TestClassify_Capabilities(t *testing.T) {
	probe := fakeProbe{
		phy:    map[string]bool{"wlan0": true},
		speeds: map[string]uint32{"eth0": 1000},
	}

	tests := []struct {
		name string
		want model.DeviceCapabilities
	}{
		{"wlan0", model.DeviceCapabilities{WiFi: true, AccessPoint: true}},
		{"wlan1", model.DeviceCapabilities{WiFi: true}},
		{"eth0", model.DeviceCapabilities{Vlan: true, Bridge: true, SpeedMbps: 1000}},
		{"eth1", model.DeviceCapabilities{Vlan: true, Bridge: true}},
		{"br0x", model.DeviceCapabilities{}},
		{"br-lan", model.DeviceCapabilities{Bridge: true}},
		{"wg0", model.DeviceCapabilities{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name, probe).Capabilities; got != tt.want {
				t.Errorf("Classify(%q).Capabilities = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	probe := fakeProbe{drivers: map[string]string{"eth0": "iwlwifi"}}
	first := Classify("eth0", probe)
	for i := 0; i < 10; i++ {
		if got := Classify("eth0", probe); got != first {
			t.Fatalf("Classify() changed between calls: %+v vs %+v", got, first)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSysfsProbe(t *testing.T) {
	root := t.TempDir()

	// eth0: PCI NIC with a driver symlink and negotiated speed
	driverDir := filepath.Join(root, "drivers", "e1000e")
	if err := os.MkdirAll(driverDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "eth0", "device"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(driverDir, filepath.Join(root, "eth0", "device", "driver")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "eth0", "speed"), "1000\n")
	writeFile(t, filepath.Join(root, "eth0", "device", "vendor"), "0x8086\n")
	writeFile(t, filepath.Join(root, "eth0", "device", "device"), "0x15b8\n")
	writeFile(t, filepath.Join(root, "eth0", "device", "uevent"), "DRIVER=e1000e\nPCI_CLASS=20000\nPCI_SLOT_NAME=0000:00:1f.6\n")

	// wlx0: USB dongle with only the wireless marker and a phy
	writeFile(t, filepath.Join(root, "wlx0", "wireless", "link"), "0\n")
	writeFile(t, filepath.Join(root, "wlx0", "phy80211", "name"), "phy0\n")

	// eth1: no carrier
	writeFile(t, filepath.Join(root, "eth1", "speed"), "-1\n")

	probe := NewSysfsProbe(root)

	if d, ok := probe.Driver("eth0"); !ok || d != "e1000e" {
		t.Errorf("Driver(eth0) = %q, %v; want e1000e, true", d, ok)
	}
	if s, ok := probe.Speed("eth0"); !ok || s != 1000 {
		t.Errorf("Speed(eth0) = %d, %v; want 1000, true", s, ok)
	}
	if _, ok := probe.Speed("eth1"); ok {
		t.Errorf("Speed(eth1) reported a speed for a link without carrier")
	}
	if !probe.IsWireless("wlx0") || probe.IsWireless("eth0") {
		t.Errorf("IsWireless mismatch")
	}
	if !probe.SupportsAccessPoint("wlx0") {
		t.Errorf("SupportsAccessPoint(wlx0) = false, want true")
	}

	md := probe.Metadata("eth0")
	want := Metadata{Driver: "e1000e", Vendor: "0x8086", Model: "0x15b8", Bus: "0000:00:1f.6"}
	if md != want {
		t.Errorf("Metadata(eth0) = %+v, want %+v", md, want)
	}

	if got := Classify("wlx0", probe); got.Type != model.DeviceTypeWiFi || !got.Capabilities.AccessPoint {
		t.Errorf("Classify(wlx0) = %+v, want wifi with AP capability", got)
	}
	if md := probe.Metadata("missing0"); md != (Metadata{}) {
		t.Errorf("Metadata(missing0) = %+v, want zero value", md)
	}
}
