package control

import (
	"context"

	"github.com/maksimkurb/netctl/src/internal/classifier"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
)

// metadataProbe is implemented by probes that can also describe hardware.
type metadataProbe interface {
	Metadata(name string) classifier.Metadata
}

// Discover pulls the interface list from the collaborator, classifies every
// interface and registers it. Devices found by an earlier pass that are gone
// now are removed. It returns the number of devices registered.
func (c *NetworkControl) Discover(ctx context.Context) (n int, err error) {
	defer c.finish("discover_devices", &err)

	if !c.discovering.CompareAndSwap(false, true) {
		return 0, errors.NewInvalidStateError("device discovery is already running")
	}
	defer c.discovering.Store(false)

	names, err := c.interfaces.ListInterfaceNames(ctx)
	if err != nil {
		return 0, err
	}

	found := make([]*model.Device, 0, len(names))
	for _, name := range names {
		info, err := c.interfaces.GetInterfaceInfo(ctx, name)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeNotFound) {
				log.Debugf("Interface %s disappeared during discovery", name)
			} else {
				log.Warnf("Skipping interface %s: %v", name, err)
			}
			continue
		}
		d := deviceFromInfo(info, classifier.Classify(name, c.probe))
		if meta, ok := c.probe.(metadataProbe); ok {
			m := meta.Metadata(name)
			d.Driver, d.Vendor, d.Model, d.Bus = m.Driver, m.Vendor, m.Model, m.Bus
		}
		found = append(found, d)
	}
	linkChildren(found)

	seen := make(map[string]bool, len(found))
	for _, d := range orderByParent(found) {
		if err := c.AddDevice(d); err != nil {
			log.Warnf("Failed to register %s: %v", d.Name, err)
			continue
		}
		seen[d.Name] = true
	}

	if prev := c.discoveredNames.Load(); prev != nil {
		for name := range *prev {
			if !seen[name] && c.devices.Exists(name) {
				log.Infof("Device %s is gone", name)
				if err := c.RemoveDevice(name); err != nil {
					log.Warnf("Failed to remove %s: %v", name, err)
				}
			}
		}
	}
	c.discoveredNames.Store(&seen)

	c.discovered.Store(true)
	c.refreshNetworkState()
	log.Infof("Discovered %d devices", len(seen))
	return len(seen), nil
}

// Discovered reports whether a discovery pass has completed.
func (c *NetworkControl) Discovered() bool {
	return c.discovered.Load()
}

// linkChildren fills Children from the parents named by the other devices.
func linkChildren(devices []*model.Device) {
	byName := make(map[string]*model.Device, len(devices))
	for _, d := range devices {
		byName[d.Name] = d
	}
	for _, d := range devices {
		if p, ok := byName[d.Parent]; ok && d.Parent != d.Name {
			p.Children = append(p.Children, d.Name)
		} else if d.Parent != "" {
			log.Debugf("Parent %s of %s is not a discovered device", d.Parent, d.Name)
			d.Parent = ""
		}
	}
}

// orderByParent returns devices so that every parent precedes its children.
// Devices caught in a parent cycle lose their parent.
func orderByParent(devices []*model.Device) []*model.Device {
	placed := make(map[string]bool, len(devices))
	out := make([]*model.Device, 0, len(devices))
	pending := devices
	for len(pending) > 0 {
		var next []*model.Device
		for _, d := range pending {
			if d.Parent == "" || placed[d.Parent] {
				placed[d.Name] = true
				out = append(out, d)
			} else {
				next = append(next, d)
			}
		}
		if len(next) == len(pending) {
			for _, d := range next {
				d.Parent = ""
			}
		}
		pending = next
	}
	return out
}
