package hardware

import (
	"context"
	"sync"
)

// DriverMemory is the driver name for in-process latched ports.
const DriverMemory = "memory"

// MemoryPort is an in-process latched port.
//
// It is used for simulation and commissioning: writes latch immediately and
// reads return the latched level. SetLevel simulates an external change
// (a manual override at the panel, for example).
type MemoryPort struct {
	id    string
	caps  []Capability
	mu    sync.Mutex
	level bool
	err   error
}

// NewMemoryPort creates a latched port with the given capabilities.
// A port with no capabilities defaults to relay_output.
func NewMemoryPort(id string, caps ...Capability) *MemoryPort {
	if len(caps) == 0 {
		caps = []Capability{CapRelayOutput}
	}
	return &MemoryPort{id: id, caps: caps}
}

// ID returns the port identifier.
func (m *MemoryPort) ID() string { return m.id }

// Capabilities returns the port's capabilities.
func (m *MemoryPort) Capabilities() []Capability { return m.caps }

// Driver returns DriverMemory.
func (m *MemoryPort) Driver() string { return DriverMemory }

// Write latches level. Returns the injected failure, if any.
func (m *MemoryPort) Write(ctx context.Context, level bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.level = level
	return nil
}

// Read returns the latched level.
func (m *MemoryPort) Read(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level, nil
}

// SetLevel changes the latched level without going through Write.
func (m *MemoryPort) SetLevel(level bool) {
	m.mu.Lock()
	m.level = level
	m.mu.Unlock()
}

// FailWrites makes subsequent writes return err. Pass nil to clear.
func (m *MemoryPort) FailWrites(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
