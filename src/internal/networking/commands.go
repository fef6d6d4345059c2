package networking

import (
	"fmt"
	"io"

	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/valyala/fasttemplate"
)

type vars = map[string]interface{}

// Equivalent iproute2 commands, used to describe failed netlink calls.
var (
	cmdLinkShow    = newCommand("ip link show")
	cmdLinkShowDev = newCommand("ip link show dev {{name}}")
	cmdLinkUp      = newCommand("ip link set dev {{name}} up")
	cmdLinkDown    = newCommand("ip link set dev {{name}} down")
	cmdLinkMTU     = newCommand("ip link set dev {{name}} mtu {{mtu}}")
	cmdLinkMAC     = newCommand("ip link set dev {{name}} address {{mac}}")
	cmdLinkDel     = newCommand("ip link delete dev {{name}}")
	cmdAddrShow    = newCommand("ip addr show dev {{name}}")
	cmdAddrAdd     = newCommand("ip addr add {{cidr}} dev {{name}}")
	cmdAddrDel     = newCommand("ip addr del {{cidr}} dev {{name}}")
	cmdRouteAdd    = newCommand("ip route replace {{dst}}{{via}}{{dev}} metric {{metric}} table {{table}}")
	cmdRouteDel    = newCommand("ip route del {{dst}} table {{table}}")
)

func newCommand(template string) *fasttemplate.Template {
	return fasttemplate.New(template, "{{", "}}")
}

// describe renders a command template. Missing variables render as empty.
func describe(t *fasttemplate.Template, v vars) string {
	if v == nil {
		v = vars{}
	}
	return t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		value, ok := v[tag]
		if !ok {
			return 0, nil
		}
		return fmt.Fprint(w, value)
	})
}

// commandFailed wraps a netlink error as COMMAND_FAILED. Netlink reports no
// exit code, so the kernel error text is carried as stderr.
func commandFailed(t *fasttemplate.Template, v vars, err error) error {
	return errors.NewCommandFailedError(describe(t, v), nil, err.Error(), err)
}
