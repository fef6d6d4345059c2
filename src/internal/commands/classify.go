package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/netctl/src/internal/classifier"
	"github.com/maksimkurb/netctl/src/internal/config"
	"github.com/maksimkurb/netctl/src/internal/errors"
)

func CreateClassifyCommand() *ClassifyCommand {
	cc := &ClassifyCommand{
		fs:  flag.NewFlagSet("classify", flag.ExitOnError),
		out: os.Stdout,
	}
	cc.fs.StringVar(&cc.SysfsRoot, "sysfs", "", "Override general.sysfs_root")
	return cc
}

// ClassifyCommand prints the device type and capabilities netctl would
// assign to the named interfaces. The interfaces do not have to exist.
type ClassifyCommand struct {
	fs        *flag.FlagSet
	out       io.Writer
	SysfsRoot string
	names     []string
	probe     classifier.Probe
}

func (c *ClassifyCommand) Name() string {
	return c.fs.Name()
}

func (c *ClassifyCommand) Init(args []string, ctx *AppContext) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	c.names = c.fs.Args()
	if len(c.names) == 0 {
		return errors.NewInvalidParameterError("at least one interface name is required", nil)
	}

	if c.SysfsRoot == "" {
		cfg, err := config.LoadConfig(ctx.ConfigPath)
		if err != nil {
			return err
		}
		c.SysfsRoot = cfg.General.SysfsRoot
	}
	c.probe = classifier.NewSysfsProbe(c.SysfsRoot)
	return nil
}

func (c *ClassifyCommand) Run() error {
	for _, name := range c.names {
		res := classifier.Classify(name, c.probe)
		caps := res.Capabilities
		if _, err := fmt.Fprintf(c.out, "%s%s%s: %s (wifi=%v ap=%v vlan=%v bridge=%v",
			colorCyan, name, colorReset, res.Type,
			caps.WiFi, caps.AccessPoint, caps.Vlan, caps.Bridge); err != nil {
			return err
		}
		if caps.SpeedMbps > 0 {
			fmt.Fprintf(c.out, " speed=%dMb/s", caps.SpeedMbps)
		}
		fmt.Fprintln(c.out, ")")
	}
	return nil
}
