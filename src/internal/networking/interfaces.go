package networking

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"

	"github.com/maksimkurb/netctl/src/internal/domain"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/vishvananda/netlink"
)

// LinkController implements domain.InterfaceController on top of netlink.
type LinkController struct {
	handle *netlink.Handle
}

var _ domain.InterfaceController = (*LinkController)(nil)

// NewLinkController uses the netlink socket of the current network namespace.
func NewLinkController() *LinkController {
	return &LinkController{handle: &netlink.Handle{}}
}

func (c *LinkController) ListInterfaceNames(ctx context.Context) ([]string, error) {
	links, err := c.handle.LinkList()
	if err != nil {
		return nil, commandFailed(cmdLinkShow, nil, err)
	}
	names := make([]string, 0, len(links))
	for _, link := range links {
		names = append(names, link.Attrs().Name)
	}
	return names, nil
}

func (c *LinkController) GetInterfaceInfo(ctx context.Context, name string) (*domain.InterfaceInfo, error) {
	link, err := c.link(name)
	if err != nil {
		return nil, err
	}
	attrs := link.Attrs()

	info := &domain.InterfaceInfo{
		Name:      attrs.Name,
		Index:     attrs.Index,
		Kind:      link.Type(),
		HwAddress: attrs.HardwareAddr.String(),
		MTU:       uint32(attrs.MTU),
		OperState: attrs.OperState.String(),
		Flags:     FlagNames(attrs.RawFlags),
		Stats:     convertStats(attrs.Statistics),
	}

	addrs, err := c.handle.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, commandFailed(cmdAddrShow, vars{"name": name}, err)
	}
	for _, addr := range addrs {
		if addr.IPNet == nil {
			continue
		}
		ones, _ := addr.IPNet.Mask.Size()
		info.Addresses = append(info.Addresses, domain.Address{IP: addr.IP.String(), PrefixLen: ones})
	}

	info.Parent = c.linkName(attrs.ParentIndex)
	info.Master = c.linkName(attrs.MasterIndex)
	return info, nil
}

func (c *LinkController) SetUp(ctx context.Context, name string) error {
	link, err := c.link(name)
	if err != nil {
		return err
	}
	log.Debugf("Bringing %s up", name)
	if err := c.handle.LinkSetUp(link); err != nil {
		return commandFailed(cmdLinkUp, vars{"name": name}, err)
	}
	return nil
}

func (c *LinkController) SetDown(ctx context.Context, name string) error {
	link, err := c.link(name)
	if err != nil {
		return err
	}
	log.Debugf("Bringing %s down", name)
	if err := c.handle.LinkSetDown(link); err != nil {
		return commandFailed(cmdLinkDown, vars{"name": name}, err)
	}
	return nil
}

func (c *LinkController) SetMTU(ctx context.Context, name string, mtu uint32) error {
	link, err := c.link(name)
	if err != nil {
		return err
	}
	if err := c.handle.LinkSetMTU(link, int(mtu)); err != nil {
		return commandFailed(cmdLinkMTU, vars{"name": name, "mtu": mtu}, err)
	}
	return nil
}

func (c *LinkController) SetMAC(ctx context.Context, name string, mac string) error {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return errors.NewInvalidParameterError("invalid MAC address '"+mac+"'", err)
	}
	link, err := c.link(name)
	if err != nil {
		return err
	}
	if err := c.handle.LinkSetHardwareAddr(link, hw); err != nil {
		return commandFailed(cmdLinkMAC, vars{"name": name, "mac": mac}, err)
	}
	return nil
}

func (c *LinkController) AddIP(ctx context.Context, name string, ip string, prefixLen int) error {
	return c.changeAddr(name, ip, prefixLen, true)
}

func (c *LinkController) DelIP(ctx context.Context, name string, ip string, prefixLen int) error {
	return c.changeAddr(name, ip, prefixLen, false)
}

func (c *LinkController) changeAddr(name, ip string, prefixLen int, add bool) error {
	cidr := domain.Address{IP: ip, PrefixLen: prefixLen}.String()
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return errors.NewInvalidParameterError("invalid address '"+cidr+"'", err)
	}
	link, err := c.link(name)
	if err != nil {
		return err
	}

	v := vars{"name": name, "cidr": cidr}
	if add {
		if err := c.handle.AddrAdd(link, addr); err != nil {
			return commandFailed(cmdAddrAdd, v, err)
		}
		return nil
	}
	if err := c.handle.AddrDel(link, addr); err != nil {
		return commandFailed(cmdAddrDel, v, err)
	}
	return nil
}

func (c *LinkController) DeleteDevice(ctx context.Context, name string) error {
	link, err := c.link(name)
	if err != nil {
		return err
	}
	log.Infof("Deleting link %s (%s)", name, link.Type())
	if err := c.handle.LinkDel(link); err != nil {
		return commandFailed(cmdLinkDel, vars{"name": name}, err)
	}
	return nil
}

func (c *LinkController) link(name string) (netlink.Link, error) {
	link, err := c.handle.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if stderrors.As(err, &notFound) || stderrors.Is(err, syscall.ENODEV) {
			return nil, errors.NewNotFoundError("interface", name)
		}
		return nil, commandFailed(cmdLinkShowDev, vars{"name": name}, err)
	}
	return link, nil
}

func (c *LinkController) linkName(index int) string {
	if index <= 0 {
		return ""
	}
	link, err := c.handle.LinkByIndex(index)
	if err != nil {
		log.Debugf("Failed to resolve link index %d: %v", index, err)
		return ""
	}
	return link.Attrs().Name
}

func convertStats(s *netlink.LinkStatistics) *model.DeviceStats {
	if s == nil {
		return nil
	}
	return &model.DeviceStats{
		RxBytes:   s.RxBytes,
		TxBytes:   s.TxBytes,
		RxPackets: s.RxPackets,
		TxPackets: s.TxPackets,
		RxErrors:  s.RxErrors,
		TxErrors:  s.TxErrors,
		RxDropped: s.RxDropped,
		TxDropped: s.TxDropped,
	}
}
