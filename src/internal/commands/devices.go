package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/core"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/model"
)

func CreateDevicesCommand() *DevicesCommand {
	dc := &DevicesCommand{
		fs:  flag.NewFlagSet("devices", flag.ExitOnError),
		out: os.Stdout,
	}
	dc.fs.StringVar(&dc.Format, "format", formatText, "Output format: text, json or yaml")
	dc.fs.BoolVar(&dc.Stats, "stats", false, "Include traffic counters")
	return dc
}

// DevicesCommand discovers the host's interfaces once and prints them.
type DevicesCommand struct {
	fs     *flag.FlagSet
	ctx    *AppContext
	cfg    *config.Config
	out    io.Writer
	Format string
	Stats  bool

	deps *core.AppDependencies
}

func (d *DevicesCommand) Name() string {
	return d.fs.Name()
}

func (d *DevicesCommand) Init(args []string, ctx *AppContext) error {
	d.ctx = ctx

	if err := d.fs.Parse(args); err != nil {
		return err
	}
	switch d.Format {
	case formatText, formatJSON, formatYAML:
	default:
		return errors.NewInvalidParameterError("-format must be text, json or yaml", nil)
	}

	cfg, err := loadAndValidateConfig(ctx)
	if err != nil {
		return err
	}
	d.cfg = cfg
	d.cfg.Metrics.Enabled = false

	if d.deps == nil {
		deps, err := core.NewAppDependencies(core.AppConfig{Config: d.cfg})
		if err != nil {
			return err
		}
		d.deps = deps
	}
	return nil
}

func (d *DevicesCommand) Run() error {
	ctx := context.Background()
	defer d.deps.Close(ctx)

	if _, err := d.deps.Control().Discover(ctx); err != nil {
		return err
	}

	devices := d.deps.Control().ListDevices()
	if d.Stats {
		for _, dev := range devices {
			stats, err := d.deps.Control().DeviceStats(ctx, dev.Name)
			if err != nil {
				return err
			}
			dev.Stats = stats
		}
	}
	if d.Format != formatText {
		data, err := marshalOutput(devices, d.Format)
		if err != nil {
			return err
		}
		_, err = d.out.Write(data)
		return err
	}

	_, err := io.WriteString(d.out, formatDevices(devices))
	return err
}

func formatDevices(devices []*model.Device) string {
	var sb strings.Builder

	for i, dev := range devices {
		up := !dev.State.IsDown()
		sb.WriteString(fmt.Sprintf("%d. %s%s%s (%s) (%sstate%s=%s%s%s",
			i+1,
			colorCyan, dev.Name, colorReset,
			dev.Type,
			colorCyan, colorReset,
			colorForBool(up), dev.State, colorReset))
		if dev.MTU > 0 {
			sb.WriteString(fmt.Sprintf(" %smtu%s=%d", colorCyan, colorReset, dev.MTU))
		}
		if dev.HwAddress != "" {
			sb.WriteString(fmt.Sprintf(" %smac%s=%s", colorCyan, colorReset, dev.HwAddress))
		}
		sb.WriteString(")\n")

		for _, ip := range dev.Addresses {
			family := "IPv4"
			if model.IsIPv6Address(ip) {
				family = "IPv6"
			}
			sb.WriteString(fmt.Sprintf("  IP Address (%s): %s\n", family, ip))
		}
		if dev.Driver != "" {
			sb.WriteString(fmt.Sprintf("  Driver: %s\n", dev.Driver))
		}
		if dev.Stats != nil {
			sb.WriteString(fmt.Sprintf("  RX: %d bytes, %d packets  TX: %d bytes, %d packets\n",
				dev.Stats.RxBytes, dev.Stats.RxPackets, dev.Stats.TxBytes, dev.Stats.TxPackets))
		}
	}

	return sb.String()
}
