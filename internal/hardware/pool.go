package hardware

import (
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the hardware package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// driverNamer is implemented by ports that report which driver serves them.
type driverNamer interface {
	Driver() string
}

// Pool is the registry of ports currently exposed by the hardware topology.
//
// Pool implements PortFinder and is safe for concurrent use.
type Pool struct {
	ports  map[string]Port
	mu     sync.RWMutex
	logger Logger
}

// NewPool creates an empty port pool.
func NewPool() *Pool {
	return &Pool{
		ports:  make(map[string]Port),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the pool.
func (p *Pool) SetLogger(logger Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	p.logger = logger
}

// Register adds a port to the pool.
//
// Returns ErrInvalidPort for a nil port or empty identifier, and
// ErrPortExists when the identifier is already taken.
func (p *Pool) Register(port Port) error {
	if port == nil {
		return fmt.Errorf("%w: nil port", ErrInvalidPort)
	}
	id := port.ID()
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidPort)
	}
	for _, c := range port.Capabilities() {
		if !IsValidCapability(c) {
			return fmt.Errorf("%w: %q has unknown capability %q", ErrInvalidPort, id, c)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.ports[id]; exists {
		return fmt.Errorf("%w: %s", ErrPortExists, id)
	}
	p.ports[id] = port
	p.logger.Debug("port registered", "port_id", id, "capabilities", port.Capabilities())
	return nil
}

// Remove detaches a port from the pool. Units already holding the port keep
// their handle; subsequent lookups fail with ErrPortNotFound.
func (p *Pool) Remove(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.ports[id]; !exists {
		return &PortNotFoundError{PortID: id}
	}
	delete(p.ports, id)
	p.logger.Info("port removed", "port_id", id)
	return nil
}

// SearchForOutputPort resolves portID to an output port supporting capability.
func (p *Pool) SearchForOutputPort(capability Capability, portID string) (OutputPort, error) {
	p.mu.RLock()
	port, exists := p.ports[portID]
	p.mu.RUnlock()

	if !exists {
		return nil, &PortNotFoundError{Capability: capability, PortID: portID}
	}
	out, isOutput := port.(OutputPort)
	if !isOutput || !hasCapability(port, capability) {
		return nil, &PortCapabilityMismatchError{
			Capability: capability,
			PortID:     portID,
			Available:  port.Capabilities(),
		}
	}
	return out, nil
}

// List returns a snapshot of all registered ports sorted by identifier.
func (p *Pool) List() []PortInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	infos := make([]PortInfo, 0, len(p.ports))
	for id, port := range p.ports {
		info := PortInfo{
			ID:           id,
			Capabilities: append([]Capability(nil), port.Capabilities()...),
		}
		if d, ok := port.(driverNamer); ok {
			info.Driver = d.Driver()
		}
		_, info.Output = port.(OutputPort)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Len returns the number of registered ports.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.ports)
}
