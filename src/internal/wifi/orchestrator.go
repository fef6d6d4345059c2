package wifi

import (
	"context"
	"strings"
	"time"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/events"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/state"
	"github.com/maksimkurb/netctl/src/internal/store"
)

// DefaultScanGrace is how long a scan waits before fetching results.
const DefaultScanGrace = 3 * time.Second

// DeviceStateSink records device states observed by the orchestrator.
type DeviceStateSink interface {
	ObserveDeviceState(name string, st state.DeviceState)
}

// ScanRecorder receives scan timings. The metrics package implements it.
type ScanRecorder interface {
	ScanFinished(duration time.Duration, found int, err error)
}

type Options struct {
	// Interface is used when an operation does not name one.
	Interface string
	ScanGrace time.Duration
}

// Orchestrator sequences supplicant calls and keeps the access point cache
// and WiFi device states in step with them.
type Orchestrator struct {
	supplicant domain.Supplicant
	aps        *store.AccessPointStore
	devices    *store.DeviceStore
	publisher  events.Publisher
	sink       DeviceStateSink
	recorder   ScanRecorder
	opts       Options
}

func NewOrchestrator(supplicant domain.Supplicant, aps *store.AccessPointStore, devices *store.DeviceStore, publisher events.Publisher, opts Options) *Orchestrator {
	if opts.ScanGrace <= 0 {
		opts.ScanGrace = DefaultScanGrace
	}
	o := &Orchestrator{
		supplicant: supplicant,
		aps:        aps,
		devices:    devices,
		publisher:  publisher,
		opts:       opts,
	}
	o.sink = storeSink{devices: devices}
	return o
}

// SetDeviceStateSink replaces the default sink, which writes observed states
// straight into the device store.
func (o *Orchestrator) SetDeviceStateSink(sink DeviceStateSink) {
	o.sink = sink
}

func (o *Orchestrator) SetScanRecorder(r ScanRecorder) {
	o.recorder = r
}

// ResolveInterface picks the interface to operate on: the argument, then the
// configured interface, then the first WiFi device, then the first device
// whose name starts with "wl".
func (o *Orchestrator) ResolveInterface(iface string) (string, error) {
	if iface != "" {
		return iface, nil
	}
	if o.opts.Interface != "" {
		return o.opts.Interface, nil
	}
	if d, ok := o.devices.Find(func(d *model.Device) bool { return d.Type == model.DeviceTypeWiFi }); ok {
		return d.Name, nil
	}
	if d, ok := o.devices.Find(func(d *model.Device) bool { return strings.HasPrefix(d.Name, "wl") }); ok {
		return d.Name, nil
	}
	return "", errors.New(errors.ErrCodeNotFound, "no WiFi interface found")
}

// Scan triggers a scan, waits the grace period and replaces the access point
// cache with the results, even when there are none.
func (o *Orchestrator) Scan(ctx context.Context, iface string) ([]model.AccessPoint, error) {
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return nil, err
	}
	if err := o.aps.BeginScan(); err != nil {
		return nil, err
	}

	started := time.Now()
	log.Infof("Starting WiFi scan on %s", name)
	o.publish(events.New(events.DomainWiFi, events.ScanStarted, name, nil))

	aps, err := o.scan(ctx, name)
	if o.recorder != nil {
		o.recorder.ScanFinished(time.Since(started), len(aps), err)
	}
	if err != nil {
		o.aps.AbortScan()
		log.Warnf("WiFi scan on %s failed: %v", name, err)
		return nil, err
	}

	o.aps.CompleteScan(aps)
	log.Infof("WiFi scan on %s found %d access points", name, len(aps))
	o.publish(events.New(events.DomainWiFi, events.ScanCompleted, name, map[string]any{"count": len(aps)}))
	return aps, nil
}

func (o *Orchestrator) scan(ctx context.Context, iface string) ([]model.AccessPoint, error) {
	if err := o.supplicant.Scan(ctx, iface); err != nil {
		return nil, errors.Ensure(err, "failed to trigger WiFi scan")
	}

	timer := time.NewTimer(o.opts.ScanGrace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, errors.Ensure(ctx.Err(), "WiFi scan interrupted")
	case <-timer.C:
	}

	results, err := o.supplicant.ScanResults(ctx, iface)
	if err != nil {
		return nil, errors.Ensure(err, "failed to fetch WiFi scan results")
	}
	aps := make([]model.AccessPoint, 0, len(results))
	for _, r := range results {
		aps = append(aps, Translate(r))
	}
	return aps, nil
}

// Connect associates iface with ssid. An empty password selects an open
// network. On failure the device state and current SSID are left unchanged.
func (o *Orchestrator) Connect(ctx context.Context, iface, ssid, password string) error {
	if ssid == "" {
		return errors.NewInvalidParameterError("ssid cannot be empty", nil)
	}
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return err
	}

	log.Infof("Connecting %s to '%s'", name, ssid)
	if err := o.supplicant.Connect(ctx, name, ssid, password); err != nil {
		return errors.Ensure(err, "failed to connect to '"+ssid+"'")
	}

	o.aps.SetCurrentSSID(ssid)
	o.sink.ObserveDeviceState(name, state.DeviceActivated)
	o.publish(events.New(events.DomainWiFi, events.WiFiConnected, name, map[string]any{"ssid": ssid}))
	return nil
}

func (o *Orchestrator) Disconnect(ctx context.Context, iface string) error {
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return err
	}

	if err := o.supplicant.Disconnect(ctx, name); err != nil {
		return errors.Ensure(err, "failed to disconnect "+name)
	}

	previous := o.aps.SetCurrentSSID("")
	log.Infof("Disconnected %s from '%s'", name, previous)
	o.sink.ObserveDeviceState(name, state.DeviceDisconnected)
	o.publish(events.New(events.DomainWiFi, events.WiFiDisconnect, name, nil))
	return nil
}

// Status returns the associated SSID, or "" when the supplicant is not
// running or the interface is not fully associated.
func (o *Orchestrator) Status(ctx context.Context, iface string) (string, error) {
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return "", err
	}
	if !o.supplicant.IsRunning(ctx, name) {
		return "", nil
	}
	st, err := o.supplicant.Status(ctx, name)
	if err != nil {
		return "", errors.Ensure(err, "failed to query supplicant status")
	}
	if st.State != domain.SupplicantStateCompleted {
		return "", nil
	}
	return st.SSID, nil
}

// SignalStrength returns the RSSI of the current association in dBm.
func (o *Orchestrator) SignalStrength(ctx context.Context, iface string) (int32, error) {
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return 0, err
	}
	rssi, err := o.supplicant.SignalPoll(ctx, name)
	if err != nil {
		return 0, errors.Ensure(err, "failed to poll signal")
	}
	return rssi, nil
}

func (o *Orchestrator) AccessPoints() model.AccessPointSnapshot {
	return o.aps.Snapshot()
}

func (o *Orchestrator) ListNetworks(ctx context.Context, iface string) ([]domain.ConfiguredNetwork, error) {
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return nil, err
	}
	networks, err := o.supplicant.ListNetworks(ctx, name)
	if err != nil {
		return nil, errors.Ensure(err, "failed to list configured networks")
	}
	if networks == nil {
		networks = []domain.ConfiguredNetwork{}
	}
	return networks, nil
}

func (o *Orchestrator) RemoveNetwork(ctx context.Context, iface string, id int) error {
	if id < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "invalid network id %d", id)
	}
	name, err := o.ResolveInterface(iface)
	if err != nil {
		return err
	}
	if err := o.supplicant.RemoveNetwork(ctx, name, id); err != nil {
		return errors.Ensure(err, "failed to remove network")
	}
	return nil
}

// SupplicantAvailable reports whether the supplicant client is installed.
func (o *Orchestrator) SupplicantAvailable() bool {
	return o.supplicant.IsInstalled()
}

func (o *Orchestrator) publish(e events.Event) {
	if _, err := o.publisher.Publish(e); err != nil {
		log.Warnf("Failed to publish %s event: %v", e.Kind, err)
	}
}

// Translate converts a supplicant scan result into an access point.
func Translate(r domain.ScanResult) model.AccessPoint {
	return model.AccessPoint{
		SSID:      r.SSID,
		BSSID:     r.BSSID,
		Signal:    min(r.SignalPercent, 100),
		Security:  securityOf(r.Security),
		Frequency: r.Frequency,
		Mode:      model.WiFiModeInfrastructure,
	}
}

func securityOf(s domain.SupplicantSecurity) model.WiFiSecurity {
	switch s {
	case domain.SecurityWEP:
		return model.WiFiSecurityWep
	case domain.SecurityWPAPSK:
		return model.WiFiSecurityWpa
	case domain.SecurityWPA2PSK:
		return model.WiFiSecurityWpa2
	case domain.SecurityWPA3SAE:
		return model.WiFiSecurityWpa3
	case domain.SecurityEAP:
		return model.WiFiSecurityEnterprise
	default:
		return model.WiFiSecurityNone
	}
}

// storeSink writes observed states without transition checks.
type storeSink struct {
	devices *store.DeviceStore
}

func (s storeSink) ObserveDeviceState(name string, st state.DeviceState) {
	if _, err := s.devices.SetState(name, st, false); err != nil {
		log.Debugf("Not recording state of %s: %v", name, err)
	}
}
