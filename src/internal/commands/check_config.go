package commands

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maksimkurb/netctl/src/internal/config"
)

func CreateCheckConfigCommand() *CheckConfigCommand {
	return &CheckConfigCommand{
		fs:  flag.NewFlagSet("check-config", flag.ExitOnError),
		out: os.Stdout,
	}
}

// CheckConfigCommand validates the configuration file and prints the
// effective configuration with defaults filled in.
type CheckConfigCommand struct {
	fs  *flag.FlagSet
	out io.Writer
	cfg *config.Config
}

func (c *CheckConfigCommand) Name() string {
	return c.fs.Name()
}

func (c *CheckConfigCommand) Init(args []string, ctx *AppContext) error {
	if err := c.fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadAndValidateConfig(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func (c *CheckConfigCommand) Run() error {
	buf, err := c.cfg.SerializeConfig()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "# %s: configuration is valid\n", c.cfg.Path())
	_, err = c.out.Write(buf.Bytes())
	return err
}
