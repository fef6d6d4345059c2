package control

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/maksimkurb/netctl/src/internal/errors"
	"github.com/maksimkurb/netctl/src/internal/log"
	"github.com/maksimkurb/netctl/src/internal/model"
	"github.com/maksimkurb/netctl/src/internal/settings"
	"github.com/maksimkurb/netctl/src/internal/state"
	"gopkg.in/yaml.v3"
)

// Export formats accepted by ExportConnection and ImportConnection.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// newConnectionID returns a time-ordered UUID, or a random one if the clock
// based generator fails.
func newConnectionID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.New().String()
}

// AddConnection validates the settings bag and stores a new profile. It
// returns the generated identifier.
func (c *NetworkControl) AddConnection(bag settings.Bag) (id string, err error) {
	defer c.finish("add_connection", &err)

	parsed, err := settings.ParseConnection(bag)
	if err != nil {
		return "", err
	}
	conn := &model.Connection{
		ID:          newConnectionID(),
		Name:        parsed.Name,
		Type:        parsed.Type,
		State:       state.ConnectionNew,
		Autoconnect: parsed.Autoconnect,
		Device:      parsed.Interface,
	}
	ch, err := c.connections.Add(conn)
	if err != nil {
		return "", err
	}
	log.Infof("Added connection '%s' (%s, %s)", conn.Name, conn.ID, conn.Type)
	c.notify.connection(ch)
	return conn.ID, nil
}

func (c *NetworkControl) GetConnection(idOrName string) (conn *model.Connection, err error) {
	defer c.finish("get_connection", &err)
	return c.connections.Resolve(idOrName)
}

func (c *NetworkControl) ListConnections() []*model.Connection {
	return c.connections.List()
}

// GetActiveConnections lists the connections that are Activating or Activated.
func (c *NetworkControl) GetActiveConnections() []*model.Connection {
	return c.connections.Filter(func(conn *model.Connection) bool { return conn.State.IsActive() })
}

// ModifyConnection applies a partial settings bag. The type cannot change.
func (c *NetworkControl) ModifyConnection(idOrName string, bag settings.Bag) (err error) {
	defer c.finish("modify_connection", &err)

	patch, err := settings.ParseConnectionPatch(bag)
	if err != nil {
		return err
	}
	conn, err := c.connections.Resolve(idOrName)
	if err != nil {
		return err
	}
	ch, err := c.connections.Update(conn.ID, func(next *model.Connection) error {
		if patch.Name != nil {
			next.Name = *patch.Name
		}
		if patch.Autoconnect != nil {
			next.Autoconnect = *patch.Autoconnect
		}
		if patch.Interface != nil {
			next.Device = *patch.Interface
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.notify.connection(ch)
	return nil
}

func (c *NetworkControl) DeleteConnection(idOrName string) (err error) {
	defer c.finish("delete_connection", &err)

	conn, err := c.connections.Resolve(idOrName)
	if err != nil {
		return err
	}
	removed, err := c.connections.Remove(conn.ID)
	if err != nil {
		return err
	}
	log.Infof("Deleted connection '%s' (%s)", removed.Name, removed.ID)
	c.notify.connection(storeRemoved(removed))
	return nil
}

// ActivateConnection binds the connection to a device and marks it
// Activating. On a device that is already Activated the connection is
// promoted at once; otherwise the device state reactions complete it.
func (c *NetworkControl) ActivateConnection(idOrName, deviceName string) (err error) {
	defer c.finish("activate_connection", &err)

	if deviceName == "" {
		return errors.NewInvalidParameterError("device name cannot be empty", nil)
	}
	conn, err := c.connections.Resolve(idOrName)
	if err != nil {
		return err
	}
	if !c.devices.Exists(deviceName) {
		return errors.NewNotFoundError("device", deviceName)
	}

	ch, err := c.connections.Update(conn.ID, func(next *model.Connection) error {
		if !state.CanTransitionConnection(next.State, state.ConnectionActivating) {
			return errors.NewInvalidStateError("connection '" + next.Name + "' is " + next.State.String() + " and cannot be activated")
		}
		next.State = state.ConnectionActivating
		next.Device = deviceName
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Activating connection '%s' on %s", conn.Name, deviceName)
	c.notify.connection(ch)

	if d, err := c.devices.Get(deviceName); err == nil && d.State == state.DeviceActivated {
		c.promoteConnections(deviceName)
	}
	return nil
}

// DeactivateConnection marks an active connection Deactivating, unbinds it
// from its device and completes it to Deactivated.
func (c *NetworkControl) DeactivateConnection(idOrName string) (err error) {
	defer c.finish("deactivate_connection", &err)

	conn, err := c.connections.Resolve(idOrName)
	if err != nil {
		return err
	}
	ch, err := c.connections.Update(conn.ID, func(next *model.Connection) error {
		if !next.State.IsActive() {
			return errors.NewInvalidStateError("connection '" + next.Name + "' is " + next.State.String() + " and cannot be deactivated")
		}
		next.State = state.ConnectionDeactivating
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Deactivating connection '%s'", conn.Name)
	c.notify.connection(ch)

	done, err := c.connections.Update(conn.ID, func(next *model.Connection) error {
		if next.State == state.ConnectionDeactivating {
			next.State = state.ConnectionDeactivated
			next.Device = ""
		}
		return nil
	})
	if err != nil {
		// deleted concurrently
		return nil
	}
	c.notify.connection(done)
	return nil
}

// CloneConnection copies type and autoconnect of a profile under a new
// display name and identifier.
func (c *NetworkControl) CloneConnection(idOrName, newName string) (id string, err error) {
	defer c.finish("clone_connection", &err)

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return "", errors.NewInvalidParameterError("new connection name cannot be empty", nil)
	}
	src, err := c.connections.Resolve(idOrName)
	if err != nil {
		return "", err
	}
	clone := &model.Connection{
		ID:          newConnectionID(),
		Name:        newName,
		Type:        src.Type,
		State:       state.ConnectionNew,
		Autoconnect: src.Autoconnect,
	}
	ch, err := c.connections.Add(clone)
	if err != nil {
		return "", err
	}
	log.Infof("Cloned connection '%s' as '%s' (%s)", src.Name, clone.Name, clone.ID)
	c.notify.connection(ch)
	return clone.ID, nil
}

// ExportConnection renders the settings bag of a profile as JSON or YAML.
func (c *NetworkControl) ExportConnection(idOrName, format string) (data []byte, err error) {
	defer c.finish("export_connection", &err)

	conn, err := c.connections.Resolve(idOrName)
	if err != nil {
		return nil, err
	}
	bag := settings.ExportConnection(conn)
	switch normalizeFormat(format) {
	case FormatJSON:
		return json.MarshalIndent(bag, "", "  ")
	case FormatYAML:
		return yaml.Marshal(map[string]any(bag))
	default:
		return nil, errors.NewInvalidParameterError("unsupported format '"+format+"'", nil)
	}
}

// ImportConnection decodes a settings bag and adds it as a new profile.
func (c *NetworkControl) ImportConnection(data []byte, format string) (id string, err error) {
	defer c.finish("import_connection", &err)

	bag := settings.Bag{}
	switch normalizeFormat(format) {
	case FormatJSON:
		err = json.Unmarshal(data, &bag)
	case FormatYAML:
		err = yaml.Unmarshal(data, &bag)
	default:
		return "", errors.NewInvalidParameterError("unsupported format '"+format+"'", nil)
	}
	if err != nil {
		return "", errors.NewParseError("failed to decode connection settings", err)
	}
	return c.AddConnection(bag)
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	}
	return format
}
