package hardware

import (
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/config"
)

// startable is implemented by ports that need a subscription to follow state.
type startable interface {
	Start() error
}

// LoadPorts registers every configured port with the pool.
//
// client may be nil when no port uses the mqtt driver. Ports are started
// (subscribed to bridge state) as they are registered; the first failure
// aborts loading and is returned with the offending port identifier.
func LoadPorts(pool *Pool, ports []config.PortConfig, client MQTTClient) error {
	for _, pc := range ports {
		port, err := newPort(pc, client)
		if err != nil {
			return err
		}
		if err := pool.Register(port); err != nil {
			return err
		}
		if s, ok := port.(startable); ok {
			if err := s.Start(); err != nil {
				return fmt.Errorf("starting port %s: %w", pc.ID, err)
			}
		}
	}
	return nil
}

func newPort(pc config.PortConfig, client MQTTClient) (Port, error) {
	caps := make([]Capability, 0, len(pc.Capabilities))
	for _, c := range pc.Capabilities {
		caps = append(caps, Capability(c))
	}

	switch pc.Driver {
	case DriverMemory:
		return NewMemoryPort(pc.ID, caps...), nil
	case DriverMQTT:
		if client == nil {
			return nil, fmt.Errorf("%w: %s: mqtt driver requires a broker connection", ErrInvalidPort, pc.ID)
		}
		return NewMQTTPort(pc.ID, pc.Protocol, pc.Address, client, caps...)
	default:
		return nil, fmt.Errorf("%w: %q for port %s", ErrUnknownDriver, pc.Driver, pc.ID)
	}
}
