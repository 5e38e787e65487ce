package onoff

import (
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
)

// Settings is an instance's configuration after validation.
type Settings struct {
	Name           string
	Port           hardware.OutputPort
	AutomationOnly bool
}

// BuildAutomationUnit validates inst and builds its live unit.
//
// Steps, in order; the first failure aborts with no unit:
//  1. validate portId (*configurable.ValidationError when missing or empty)
//  2. resolve it as a relay_output port (hardware errors returned unchanged)
//  3. read the name (*configurable.MissingFieldError when absent or blank)
//  4. validate automationOnly (default false)
//  5. take a fresh state catalog
//  6. construct the unit
func (c *Configurable) BuildAutomationUnit(inst *configurable.Instance) (*automation.Unit, error) {
	if inst == nil {
		return nil, fmt.Errorf("%w: nil instance", configurable.ErrInvalidDescriptor)
	}

	settings, err := c.settings(inst.Fields)
	if err != nil {
		return nil, err
	}

	unit, err := automation.NewUnit(
		c.bus,
		automation.Identity{ID: inst.ID, Class: Class},
		settings.Name,
		States(),
		settings.Port,
		settings.AutomationOnly,
	)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		unit.SetLogger(c.logger)
	}
	return unit, nil
}

// settings runs build steps 1 to 4.
func (c *Configurable) settings(fields configurable.Fields) (Settings, error) {
	portID, err := portField.ValidateIn(fields)
	if err != nil {
		return Settings{}, err
	}

	if c.ports == nil {
		return Settings{}, &hardware.PortNotFoundError{Capability: portField.Capability(), PortID: portID.String()}
	}
	port, err := c.ports.SearchForOutputPort(portField.Capability(), portID.String())
	if err != nil {
		return Settings{}, err
	}

	name, err := requiredName(fields)
	if err != nil {
		return Settings{}, err
	}

	automationOnly, err := autoField.ValidateIn(fields)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Name:           name,
		Port:           port,
		AutomationOnly: automationOnly.Bool(),
	}, nil
}

// requiredName reads the inherited name field. Its content rules are
// enforced when the instance is saved; here only its presence matters.
func requiredName(fields configurable.Fields) (string, error) {
	name := strings.TrimSpace(fields[configurable.FieldName])
	if name == "" {
		return "", &configurable.MissingFieldError{Field: configurable.FieldName}
	}
	return name, nil
}
