package settings

import (
	"github.com/maksimkurb/netctl/src/internal/model"
)

// Connection is the typed form of a connection settings bag.
type Connection struct {
	Name        string               `key:"id" validate:"required,max=255"`
	Type        model.ConnectionType `key:"type"`
	Autoconnect bool                 `key:"autoconnect"`
	Interface   string               `key:"interface" validate:"omitempty,ifname"`
}

// ParseConnection converts a bag with keys id, type, autoconnect and
// interface. id and type are required; autoconnect defaults to true.
func ParseConnection(bag Bag) (*Connection, error) {
	r := newReader(bag)
	c := &Connection{
		Name:        r.string("id"),
		Autoconnect: r.bool("autoconnect", true),
		Interface:   r.string("interface"),
	}
	if raw, ok := r.enum("type"); ok {
		t, err := model.ParseConnectionType(raw)
		if err != nil {
			r.fail("type", err.Error())
		}
		c.Type = t
	} else if v, present := bag["type"]; !present || v == nil {
		r.fail("type", "field is required")
	}
	r.check(c)
	if err := r.finish("connection"); err != nil {
		return nil, err
	}
	return c, nil
}

// ConnectionPatch is a partial update of an existing connection. Nil fields
// are left unchanged.
type ConnectionPatch struct {
	Name        *string
	Autoconnect *bool
	Interface   *string
}

// ParseConnectionPatch accepts the keys id, autoconnect and interface. A type
// key is rejected because a profile cannot change its type.
func ParseConnectionPatch(bag Bag) (*ConnectionPatch, error) {
	r := newReader(bag)
	p := &ConnectionPatch{}
	if _, ok := bag["id"]; ok {
		name := r.string("id")
		if name == "" {
			r.fail("id", "field is required")
		}
		p.Name = &name
	}
	if _, ok := bag["autoconnect"]; ok {
		v := r.bool("autoconnect", true)
		p.Autoconnect = &v
	}
	if _, ok := bag["interface"]; ok {
		iface := r.string("interface")
		if iface != "" {
			if err := validate.Var(iface, "ifname"); err != nil {
				r.fail("interface", "must be a valid interface name (up to 15 characters, no '/', ':' or whitespace)")
			}
		}
		p.Interface = &iface
	}
	if _, ok := bag["type"]; ok {
		r.seen["type"] = true
		r.fail("type", "connection type cannot be changed")
	}
	if err := r.finish("connection"); err != nil {
		return nil, err
	}
	return p, nil
}

// ExportConnection renders a connection as a settings bag that
// ParseConnection accepts.
func ExportConnection(c *model.Connection) Bag {
	bag := Bag{
		"id":          c.Name,
		"type":        c.Type.String(),
		"autoconnect": c.Autoconnect,
	}
	if c.Device != "" {
		bag["interface"] = c.Device
	}
	return bag
}
