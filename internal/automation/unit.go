package automation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
)

// Identity names the configured instance a unit controls.
type Identity struct {
	ID    string
	Class string
}

// Status is a snapshot of a unit for API responses.
type Status struct {
	InstanceID     string    `json:"instance_id"`
	Class          string    `json:"class"`
	Name           string    `json:"name"`
	State          string    `json:"state"`
	ReadOnly       bool      `json:"read_only"`
	PortID         string    `json:"port_id"`
	AutomationOnly bool      `json:"automation_only"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Unit is the live controller for one device instance.
type Unit struct {
	identity       Identity
	name           string
	catalog        *Catalog
	port           hardware.OutputPort
	automationOnly bool
	bus            EventBus
	logger         Logger

	// cmdMu serialises commands and reconciliation so port writes from this
	// unit are never interleaved. mu guards the fields below.
	cmdMu     sync.Mutex
	mu        sync.RWMutex
	state     State
	updatedAt time.Time
}

// NewUnit constructs a unit in the catalog's initial state.
//
// Parameters:
//   - bus: receives an Event on every state change (nil discards events)
//   - identity: instance ID and device class
//   - name: display name
//   - catalog: the device class's states
//   - port: the resolved output port
//   - automationOnly: reject SourceManual commands when true
//
// Returns ErrInvalidUnit when identity.ID, catalog, or port is missing.
func NewUnit(bus EventBus, identity Identity, name string, catalog *Catalog, port hardware.OutputPort, automationOnly bool) (*Unit, error) {
	switch {
	case identity.ID == "":
		return nil, fmt.Errorf("%w: instance id is required", ErrInvalidUnit)
	case catalog == nil:
		return nil, fmt.Errorf("%w: catalog is required", ErrInvalidUnit)
	case port == nil:
		return nil, fmt.Errorf("%w: port is required", ErrInvalidUnit)
	}
	if bus == nil {
		bus = noopBus{}
	}
	return &Unit{
		identity:       identity,
		name:           name,
		catalog:        catalog,
		port:           port,
		automationOnly: automationOnly,
		bus:            bus,
		logger:         noopLogger{},
		state:          catalog.Initial(),
		updatedAt:      time.Now().UTC(),
	}, nil
}

// SetLogger sets the logger used for bus failures.
func (u *Unit) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	u.logger = logger
}

// ID returns the instance ID.
func (u *Unit) ID() string { return u.identity.ID }

// Class returns the device class name.
func (u *Unit) Class() string { return u.identity.Class }

// Name returns the display name.
func (u *Unit) Name() string { return u.name }

// Catalog returns the unit's state catalog.
func (u *Unit) Catalog() *Catalog { return u.catalog }

// PortID returns the identifier of the bound port.
func (u *Unit) PortID() string { return u.port.ID() }

// AutomationOnly reports whether manual commands are rejected.
func (u *Unit) AutomationOnly() bool { return u.automationOnly }

// State returns the current state.
func (u *Unit) State() State {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.state
}

// Status returns a snapshot of the unit.
func (u *Unit) Status() Status {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return Status{
		InstanceID:     u.identity.ID,
		Class:          u.identity.Class,
		Name:           u.name,
		State:          u.state.Name,
		ReadOnly:       u.state.ReadOnly,
		PortID:         u.port.ID(),
		AutomationOnly: u.automationOnly,
		UpdatedAt:      u.updatedAt,
	}
}

// ChangeState commands the unit into the named state.
//
// The state's signal is written to the port before the unit's state changes;
// a failed write leaves the state untouched. Commanding the current state
// re-asserts the level on the port without publishing an event.
//
// Returns:
//   - ErrUnknownState if name is not in the catalog
//   - ErrReadOnlyState if the state cannot be commanded
//   - ErrAutomationOnly if source is SourceManual on an automation-only unit
//   - ErrPortWrite wrapping the driver error if the write fails
func (u *Unit) ChangeState(ctx context.Context, name string, source Source) error {
	target, ok := u.catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	if target.ReadOnly {
		return fmt.Errorf("%w: %q", ErrReadOnlyState, name)
	}
	if u.automationOnly && source == SourceManual {
		return ErrAutomationOnly
	}

	u.cmdMu.Lock()
	defer u.cmdMu.Unlock()

	if err := u.port.Write(ctx, target.IsSignaled); err != nil {
		return fmt.Errorf("%w: port %s: %w", ErrPortWrite, u.port.ID(), err)
	}

	if ev, changed := u.transition(target, source); changed {
		u.publish(ctx, ev)
	}
	return nil
}

// Reconcile reads the port back and, when the level diverges from the
// current state, moves to the controllable state matching the level.
//
// Returns whether the state changed. A unit still in its initial read-only
// state always adopts the observed level. A port that has not observed its
// level yet is not a change.
func (u *Unit) Reconcile(ctx context.Context) (bool, error) {
	u.cmdMu.Lock()
	defer u.cmdMu.Unlock()

	level, err := u.port.Read(ctx)
	if errors.Is(err, hardware.ErrNoReading) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: port %s: %w", ErrPortRead, u.port.ID(), err)
	}

	current := u.State()
	if current.Controllable() && current.IsSignaled == level {
		return false, nil
	}
	target, ok := u.catalog.ForSignal(level)
	if !ok {
		return false, nil
	}

	ev, changed := u.transition(target, SourceHardware)
	if changed {
		u.publish(ctx, ev)
	}
	return changed, nil
}

// transition moves to target and returns the event describing the move.
func (u *Unit) transition(target State, source Source) (Event, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state.Name == target.Name {
		return Event{}, false
	}
	now := time.Now().UTC()
	ev := Event{
		InstanceID: u.identity.ID,
		Class:      u.identity.Class,
		Name:       u.name,
		State:      target.Name,
		Previous:   u.state.Name,
		Signal:     target.IsSignaled,
		PortID:     u.port.ID(),
		Source:     source,
		Timestamp:  now,
	}
	u.state = target
	u.updatedAt = now
	return ev, true
}

// publish hands ev to the bus. The state change already happened on the
// port, so bus failures are logged rather than returned.
func (u *Unit) publish(ctx context.Context, ev Event) {
	if err := u.bus.Publish(ctx, ev); err != nil {
		u.logger.Warn("publishing state change failed",
			"instance_id", ev.InstanceID,
			"state", ev.State,
			"error", err,
		)
	}
}
