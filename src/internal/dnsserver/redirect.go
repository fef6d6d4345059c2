package dnsserver

import (
	"fmt"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/valyala/fasttemplate"
)

const (
	// RedirectChain is the nat chain holding the port 53 redirect rules.
	RedirectChain = "NETCTL_DNS"

	dnsPort = 53
)

var redirectRule = fasttemplate.New("-i {{iface}} -p {{proto}} --dport {{from}} -j REDIRECT --to-ports {{to}}", "{{", "}}")

// ruleTable is the subset of *iptables.IPTables the redirect uses.
type ruleTable interface {
	NewChain(table, chain string) error
	ClearChain(table, chain string) error
	DeleteChain(table, chain string) error
	ChainExists(table, chain string) (bool, error)
	AppendUnique(table, chain string, rulespec ...string) error
	InsertUnique(table, chain string, pos int, rulespec ...string) error
	DeleteIfExists(table, chain string, rulespec ...string) error
	List(table, chain string) ([]string, error)
}

// Redirect sends DNS traffic arriving on the given interfaces to the local
// server port, so a server on a non-standard port still serves clients.
type Redirect struct {
	interfaces []string
	ipt4       ruleTable
	ipt6       ruleTable
}

// NewRedirect uses iptables for IPv4 and, when available, ip6tables.
func NewRedirect(interfaces []string) (*Redirect, error) {
	ipt4, err := iptables.NewWithProtocol(iptables.ProtocolIPv4)
	if err != nil {
		return nil, errors.NewServiceError("failed to create iptables (IPv4)", err)
	}

	r := &Redirect{interfaces: interfaces, ipt4: ipt4}
	ipt6, err := iptables.NewWithProtocol(iptables.ProtocolIPv6)
	if err != nil {
		// IPv6 might not be available, that's okay
		log.Debugf("IPv6 iptables not available: %v", err)
	} else {
		r.ipt6 = ipt6
	}
	return r, nil
}

// Rules renders the rule specs installed for port.
func (r *Redirect) Rules(port uint16) [][]string {
	var rules [][]string
	for _, iface := range r.interfaces {
		for _, proto := range []string{"udp", "tcp"} {
			spec := redirectRule.ExecuteString(map[string]interface{}{
				"iface": iface,
				"proto": proto,
				"from":  fmt.Sprint(dnsPort),
				"to":    fmt.Sprint(port),
			})
			rules = append(rules, strings.Fields(spec))
		}
	}
	return rules
}

// Install recreates the chain with rules redirecting to port and links it
// from PREROUTING.
func (r *Redirect) Install(port uint16) error {
	if err := r.Remove(); err != nil {
		return err
	}
	for _, ipt := range r.tables() {
		if err := r.install(ipt, port); err != nil {
			return err
		}
	}
	log.Infof("Installed DNS redirect on %s (port %d -> %d)", strings.Join(r.interfaces, ", "), dnsPort, port)
	return nil
}

func (r *Redirect) install(ipt ruleTable, port uint16) error {
	if err := ipt.NewChain("nat", RedirectChain); err != nil {
		// Exit status 1 means the chain already exists
		if eerr, ok := err.(*iptables.Error); !(ok && eerr.ExitStatus() == 1) {
			return errors.NewServiceError("failed to create chain "+RedirectChain, err)
		}
	}
	for _, rule := range r.Rules(port) {
		if err := ipt.AppendUnique("nat", RedirectChain, rule...); err != nil {
			return errors.NewServiceError("failed to add redirect rule", err)
		}
	}
	if err := ipt.InsertUnique("nat", "PREROUTING", 1, "-j", RedirectChain); err != nil {
		return errors.NewServiceError("failed to link chain "+RedirectChain, err)
	}
	return nil
}

// Remove unlinks and deletes the chain. Missing pieces are ignored.
func (r *Redirect) Remove() error {
	for _, ipt := range r.tables() {
		exists, err := ipt.ChainExists("nat", RedirectChain)
		if err != nil {
			return errors.NewServiceError("failed to inspect chain "+RedirectChain, err)
		}
		if !exists {
			continue
		}
		if err := ipt.DeleteIfExists("nat", "PREROUTING", "-j", RedirectChain); err != nil {
			log.Debugf("Failed to unlink chain: %v", err)
		}
		if err := ipt.ClearChain("nat", RedirectChain); err != nil {
			log.Debugf("Failed to clear chain: %v", err)
		}
		if err := ipt.DeleteChain("nat", RedirectChain); err != nil {
			log.Debugf("Failed to delete chain: %v", err)
		}
	}
	return nil
}

// Installed reports whether the chain exists, is linked from PREROUTING and
// holds the expected number of rules.
func (r *Redirect) Installed() (bool, error) {
	for _, ipt := range r.tables() {
		exists, err := ipt.ChainExists("nat", RedirectChain)
		if err != nil || !exists {
			return false, err
		}
		prerouting, err := ipt.List("nat", "PREROUTING")
		if err != nil {
			return false, err
		}
		linked := false
		for _, rule := range prerouting {
			if strings.Contains(rule, "-j "+RedirectChain) {
				linked = true
				break
			}
		}
		if !linked {
			return false, nil
		}
		rules, err := ipt.List("nat", RedirectChain)
		if err != nil {
			return false, err
		}
		count := 0
		for _, rule := range rules {
			if strings.HasPrefix(rule, "-A") {
				count++
			}
		}
		if count != 2*len(r.interfaces) {
			return false, nil
		}
	}
	return true, nil
}

func (r *Redirect) tables() []ruleTable {
	tables := []ruleTable{r.ipt4}
	if r.ipt6 != nil {
		tables = append(tables, r.ipt6)
	}
	return tables
}
