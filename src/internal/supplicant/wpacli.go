package supplicant

import (
	"context"
	"strconv"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
)

const DefaultPath = "wpa_cli"

// WpaCli implements domain.Supplicant by invoking wpa_cli against a running
// wpa_supplicant control socket.
type WpaCli struct {
	path   string
	runner Runner
}

var _ domain.Supplicant = (*WpaCli)(nil)

func NewWpaCli(path string) *WpaCli {
	return NewWpaCliWithRunner(path, ExecRunner{})
}

func NewWpaCliWithRunner(path string, runner Runner) *WpaCli {
	if path == "" {
		path = DefaultPath
	}
	return &WpaCli{path: path, runner: runner}
}

func (w *WpaCli) Scan(ctx context.Context, iface string) error {
	return w.expectOK(ctx, iface, "scan")
}

func (w *WpaCli) ScanResults(ctx context.Context, iface string) ([]domain.ScanResult, error) {
	out, err := w.run(ctx, iface, "scan_results")
	if err != nil {
		return nil, err
	}
	return parseScanResults(out)
}

func (w *WpaCli) Connect(ctx context.Context, iface, ssid, password string) error {
	out, err := w.run(ctx, iface, "add_network")
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(lastLine(out))
	if err != nil {
		return errors.NewParseError("unexpected add_network reply '"+strings.TrimSpace(out)+"'", err)
	}
	network := strconv.Itoa(id)

	steps := [][]string{
		{"set_network", network, "ssid", quote(ssid)},
	}
	if password == "" {
		steps = append(steps, []string{"set_network", network, "key_mgmt", "NONE"})
	} else {
		steps = append(steps, []string{"set_network", network, "psk", quote(password)})
	}
	steps = append(steps,
		[]string{"enable_network", network},
		[]string{"select_network", network},
	)

	for _, step := range steps {
		if err := w.expectOK(ctx, iface, step...); err != nil {
			log.Warnf("Configuring network %d on %s failed, removing it: %v", id, iface, err)
			if rmErr := w.RemoveNetwork(ctx, iface, id); rmErr != nil {
				log.Warnf("Failed to remove network %d on %s: %v", id, iface, rmErr)
			}
			return err
		}
	}
	log.Infof("Associating %s with '%s' (network %d)", iface, ssid, id)
	return nil
}

func (w *WpaCli) Disconnect(ctx context.Context, iface string) error {
	return w.expectOK(ctx, iface, "disconnect")
}

func (w *WpaCli) Status(ctx context.Context, iface string) (*domain.SupplicantStatus, error) {
	out, err := w.run(ctx, iface, "status")
	if err != nil {
		return nil, err
	}
	values := parseKeyValues(out)
	st, ok := values["wpa_state"]
	if !ok {
		return nil, errors.NewParseError("status reply has no wpa_state", nil)
	}
	return &domain.SupplicantStatus{
		State: st,
		SSID:  values["ssid"],
		BSSID: values["bssid"],
	}, nil
}

func (w *WpaCli) SignalPoll(ctx context.Context, iface string) (int32, error) {
	out, err := w.run(ctx, iface, "signal_poll")
	if err != nil {
		return 0, err
	}
	raw, ok := parseKeyValues(out)["RSSI"]
	if !ok {
		return 0, errors.NewParseError("signal_poll reply has no RSSI", nil)
	}
	rssi, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, errors.NewParseError("invalid RSSI '"+raw+"'", err)
	}
	return int32(rssi), nil
}

func (w *WpaCli) IsRunning(ctx context.Context, iface string) bool {
	out, err := w.run(ctx, iface, "ping")
	return err == nil && lastLine(out) == "PONG"
}

func (w *WpaCli) IsInstalled() bool {
	_, err := w.runner.LookPath(w.path)
	return err == nil
}

func (w *WpaCli) ListNetworks(ctx context.Context, iface string) ([]domain.ConfiguredNetwork, error) {
	out, err := w.run(ctx, iface, "list_networks")
	if err != nil {
		return nil, err
	}
	return parseListNetworks(out)
}

func (w *WpaCli) RemoveNetwork(ctx context.Context, iface string, id int) error {
	return w.expectOK(ctx, iface, "remove_network", strconv.Itoa(id))
}

func (w *WpaCli) run(ctx context.Context, iface string, args ...string) (string, error) {
	full := append([]string{"-i", iface}, args...)
	return w.runner.Run(ctx, w.path, full...)
}

// expectOK runs a command whose only successful reply is "OK". wpa_cli
// exits 0 on "FAIL" too, so the reply text decides.
func (w *WpaCli) expectOK(ctx context.Context, iface string, args ...string) error {
	out, err := w.run(ctx, iface, args...)
	if err != nil {
		return err
	}
	if reply := lastLine(out); reply != "OK" {
		command := w.path + " -i " + iface + " " + strings.Join(redact(args), " ")
		return errors.NewCommandFailedError(command, nil, reply, nil)
	}
	return nil
}

func lastLine(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
