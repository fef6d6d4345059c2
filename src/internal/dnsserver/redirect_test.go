package dnsserver

import (
	"reflect"
	"slices"
	"strings"
	"testing"
)

// fakeTable records rules per chain like iptables would list them.
type fakeTable struct {
	chains map[string][]string
}

func newFakeTable() *fakeTable {
	return &fakeTable{chains: map[string][]string{"nat/PREROUTING": nil}}
}

func (f *fakeTable) key(table, chain string) string { return table + "/" + chain }

func (f *fakeTable) NewChain(table, chain string) error {
	if _, ok := f.chains[f.key(table, chain)]; !ok {
		f.chains[f.key(table, chain)] = nil
	}
	return nil
}

func (f *fakeTable) ClearChain(table, chain string) error {
	f.chains[f.key(table, chain)] = nil
	return nil
}

func (f *fakeTable) DeleteChain(table, chain string) error {
	delete(f.chains, f.key(table, chain))
	return nil
}

func (f *fakeTable) ChainExists(table, chain string) (bool, error) {
	_, ok := f.chains[f.key(table, chain)]
	return ok, nil
}

func (f *fakeTable) AppendUnique(table, chain string, rulespec ...string) error {
	rule := "-A " + chain + " " + strings.Join(rulespec, " ")
	k := f.key(table, chain)
	if !slices.Contains(f.chains[k], rule) {
		f.chains[k] = append(f.chains[k], rule)
	}
	return nil
}

func (f *fakeTable) InsertUnique(table, chain string, pos int, rulespec ...string) error {
	return f.AppendUnique(table, chain, rulespec...)
}

func (f *fakeTable) DeleteIfExists(table, chain string, rulespec ...string) error {
	rule := "-A " + chain + " " + strings.Join(rulespec, " ")
	k := f.key(table, chain)
	f.chains[k] = slices.DeleteFunc(f.chains[k], func(r string) bool { return r == rule })
	return nil
}

func (f *fakeTable) List(table, chain string) ([]string, error) {
	return append([]string{"-N " + chain}, f.chains[f.key(table, chain)]...), nil
}

func TestRedirectRules(t *testing.T) {
	r := &Redirect{interfaces: []string{"br0"}}
	got := r.Rules(5353)
	want := [][]string{
		{"-i", "br0", "-p", "udp", "--dport", "53", "-j", "REDIRECT", "--to-ports", "5353"},
		{"-i", "br0", "-p", "tcp", "--dport", "53", "-j", "REDIRECT", "--to-ports", "5353"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rules() = %v, want %v", got, want)
	}
}

func TestRedirectInstallAndRemove(t *testing.T) {
	ipt4, ipt6 := newFakeTable(), newFakeTable()
	r := &Redirect{interfaces: []string{"br0", "wlan0"}, ipt4: ipt4, ipt6: ipt6}

	if ok, _ := r.Installed(); ok {
		t.Fatal("Installed() = true before Install")
	}
	if err := r.Install(5353); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if ok, err := r.Installed(); !ok || err != nil {
		t.Fatalf("Installed() = %v, %v after Install", ok, err)
	}
	for _, ipt := range []*fakeTable{ipt4, ipt6} {
		if n := len(ipt.chains["nat/"+RedirectChain]); n != 4 {
			t.Errorf("chain has %d rules, want 4", n)
		}
		if !slices.Contains(ipt.chains["nat/PREROUTING"], "-A PREROUTING -j "+RedirectChain) {
			t.Errorf("chain not linked from PREROUTING: %v", ipt.chains["nat/PREROUTING"])
		}
	}

	// reinstalling with another port replaces the rules
	if err := r.Install(5454); err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if rules := ipt4.chains["nat/"+RedirectChain]; len(rules) != 4 || !strings.HasSuffix(rules[0], "5454") {
		t.Errorf("rules after reinstall = %v", rules)
	}

	if err := r.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if ok, _ := r.Installed(); ok {
		t.Error("Installed() = true after Remove")
	}
	if len(ipt4.chains["nat/PREROUTING"]) != 0 {
		t.Errorf("PREROUTING still has %v", ipt4.chains["nat/PREROUTING"])
	}
}
