package classifier

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Probe answers hardware questions about an interface. Every method must be
// free of side effects; a failed lookup is reported as "no data".
type Probe interface {
	// Driver returns the kernel driver bound to the interface.
	Driver(name string) (string, bool)
	// IsWireless reports whether the interface carries a wireless marker.
	IsWireless(name string) bool
	// SupportsAccessPoint reports whether the AP-mode query succeeds.
	SupportsAccessPoint(name string) bool
	// Speed returns the negotiated link speed in Mbps.
	Speed(name string) (uint32, bool)
}

// Metadata is descriptive hardware information about an interface.
type Metadata struct {
	Driver string
	Vendor string
	Model  string
	Bus    string
}

// DefaultSysfsRoot is where the kernel exposes network interfaces.
const DefaultSysfsRoot = "/sys/class/net"

// SysfsProbe reads interface attributes from sysfs.
type SysfsProbe struct {
	Root string
}

// NewSysfsProbe returns a probe reading from root, or DefaultSysfsRoot when root is empty.
func NewSysfsProbe(root string) *SysfsProbe {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsProbe{Root: root}
}

func (p *SysfsProbe) path(name string, elem ...string) string {
	return filepath.Join(append([]string{p.Root, name}, elem...)...)
}

func (p *SysfsProbe) Driver(name string) (string, bool) {
	target, err := os.Readlink(p.path(name, "device", "driver"))
	if err != nil {
		return "", false
	}
	return filepath.Base(target), true
}

func (p *SysfsProbe) IsWireless(name string) bool {
	_, err := os.Stat(p.path(name, "wireless"))
	return err == nil
}

// SupportsAccessPoint succeeds when the interface is attached to an 802.11 phy.
func (p *SysfsProbe) SupportsAccessPoint(name string) bool {
	_, err := os.Stat(p.path(name, "phy80211"))
	return err == nil
}

func (p *SysfsProbe) Speed(name string) (uint32, bool) {
	raw, err := os.ReadFile(p.path(name, "speed"))
	if err != nil {
		return 0, false
	}
	// Links without carrier report -1.
	speed, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return uint32(speed), true
}

// Metadata collects driver, PCI vendor/device ids and bus address.
func (p *SysfsProbe) Metadata(name string) Metadata {
	var md Metadata
	md.Driver, _ = p.Driver(name)
	md.Vendor = p.readTrimmed(name, "device", "vendor")
	md.Model = p.readTrimmed(name, "device", "device")

	f, err := os.Open(p.path(name, "device", "uevent"))
	if err != nil {
		return md
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if slot, ok := strings.CutPrefix(scanner.Text(), "PCI_SLOT_NAME="); ok {
			md.Bus = slot
			break
		}
	}
	return md
}

func (p *SysfsProbe) readTrimmed(name string, elem ...string) string {
	raw, err := os.ReadFile(p.path(name, elem...))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

type nopProbe struct{}

func (nopProbe) Driver(string) (string, bool)    { return "", false }
func (nopProbe) IsWireless(string) bool          { return false }
func (nopProbe) SupportsAccessPoint(string) bool { return false }
func (nopProbe) Speed(string) (uint32, bool)     { return 0, false }
