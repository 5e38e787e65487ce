package automation

import (
	"context"
	"time"
)

// Source identifies what caused a state change.
type Source string

// Source constants.
const (
	// SourceManual is a command from an operator-facing surface.
	SourceManual Source = "manual"

	// SourceAutomation is a command from an automation rule or integration.
	SourceAutomation Source = "automation"

	// SourceHardware is a change observed on the port read-back.
	SourceHardware Source = "hardware"
)

// IsValidSource reports whether s is a recognised source.
func IsValidSource(s Source) bool {
	switch s {
	case SourceManual, SourceAutomation, SourceHardware:
		return true
	}
	return false
}

// Event is published whenever a unit changes state.
type Event struct {
	InstanceID string    `json:"instance_id"`
	Class      string    `json:"class"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	Previous   string    `json:"previous"`
	Signal     bool      `json:"signal"`
	PortID     string    `json:"port_id"`
	Source     Source    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventBus accepts state-change notifications keyed by instance identity.
type EventBus interface {
	Publish(ctx context.Context, ev Event) error
}

type noopBus struct{}

func (noopBus) Publish(context.Context, Event) error { return nil }
