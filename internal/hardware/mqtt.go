package hardware

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/mqtt"
)

// DriverMQTT is the driver name for relays reached through a protocol bridge.
const DriverMQTT = "mqtt"

// mqttQoS is used for both commands and state subscriptions.
const mqttQoS = 1

// MQTTClient is the subset of the MQTT client used by bridge-backed ports.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// BridgeCommand is published to graylogic/command/{protocol}/{address}.
type BridgeCommand struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Command   string    `json:"command"`
	Source    string    `json:"source"`
}

// BridgeState is received on graylogic/state/{protocol}/{address}.
type BridgeState struct {
	DeviceID  string         `json:"device_id"`
	Timestamp time.Time      `json:"timestamp"`
	State     map[string]any `json:"state"`
}

// MQTTPort is a relay output driven through a protocol bridge.
//
// Write publishes an "on"/"off" command; the read-back level follows the
// bridge's state messages. Until the bridge reports, Read returns the last
// commanded level, or ErrNoReading when nothing has been commanded either.
type MQTTPort struct {
	id       string
	caps     []Capability
	protocol string
	address  string
	client   MQTTClient
	topics   mqtt.Topics
	retry    RetryPolicy

	mu    sync.RWMutex
	level bool
	known bool
}

// NewMQTTPort creates a bridge-backed port. Call Start to follow bridge state.
func NewMQTTPort(id, protocol, address string, client MQTTClient, caps ...Capability) (*MQTTPort, error) {
	if protocol == "" || address == "" {
		return nil, fmt.Errorf("%w: %s: protocol and address are required", ErrInvalidPort, id)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s: mqtt client is required", ErrInvalidPort, id)
	}
	if len(caps) == 0 {
		caps = []Capability{CapRelayOutput}
	}
	return &MQTTPort{
		id:       id,
		caps:     caps,
		protocol: protocol,
		address:  address,
		client:   client,
		retry:    DefaultRetryPolicy(),
	}, nil
}

// SetRetryPolicy replaces the publish retry policy. Call before Start.
func (p *MQTTPort) SetRetryPolicy(rp RetryPolicy) {
	p.retry = rp
}

// ID returns the port identifier.
func (p *MQTTPort) ID() string { return p.id }

// Capabilities returns the port's capabilities.
func (p *MQTTPort) Capabilities() []Capability { return p.caps }

// Driver returns DriverMQTT.
func (p *MQTTPort) Driver() string { return DriverMQTT }

// Start subscribes to the bridge state topic.
func (p *MQTTPort) Start() error {
	topic := p.topics.BridgeState(p.protocol, p.address)
	if err := p.client.Subscribe(topic, mqttQoS, p.handleState); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	return nil
}

// Stop unsubscribes from the bridge state topic.
func (p *MQTTPort) Stop() error {
	return p.client.Unsubscribe(p.topics.BridgeState(p.protocol, p.address))
}

// Write publishes an on/off command to the bridge. Transient broker errors
// are retried with the same command id so the bridge can drop duplicates.
func (p *MQTTPort) Write(ctx context.Context, level bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := BridgeCommand{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		DeviceID:  p.id,
		Command:   commandFor(level),
		Source:    "core",
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshalling command: %w", err)
	}
	topic := p.topics.BridgeCommand(p.protocol, p.address)
	err = p.retry.do(ctx, func() error {
		return p.client.Publish(topic, payload, mqttQoS, false)
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.level, p.known = level, true
	p.mu.Unlock()
	return nil
}

// Read returns the level last reported by the bridge.
func (p *MQTTPort) Read(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.known {
		return false, fmt.Errorf("%w: %s", ErrNoReading, p.id)
	}
	return p.level, nil
}

// handleState updates the read-back level from a bridge state message.
// Messages without a boolean "on" key are ignored.
func (p *MQTTPort) handleState(_ string, payload []byte) error {
	var msg BridgeState
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding bridge state: %w", err)
	}
	on, ok := msg.State["on"].(bool)
	if !ok {
		return nil
	}
	p.mu.Lock()
	p.level, p.known = on, true
	p.mu.Unlock()
	return nil
}

func commandFor(level bool) string {
	if level {
		return "on"
	}
	return "off"
}
