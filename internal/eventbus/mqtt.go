package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/mqtt"
)

// Publisher is the subset of the MQTT client used by MQTTSink.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink republishes unit events as retained device state messages on
// graylogic/core/device/{instance_id}/state.
type MQTTSink struct {
	client Publisher
	qos    byte
	topics mqtt.Topics
}

// DeviceStateMessage is the retained payload published per instance.
type DeviceStateMessage struct {
	InstanceID string            `json:"instance_id"`
	Class      string            `json:"class"`
	Name       string            `json:"name"`
	State      string            `json:"state"`
	Previous   string            `json:"previous"`
	Signal     bool              `json:"signal"`
	PortID     string            `json:"port_id"`
	Source     automation.Source `json:"source"`
	Timestamp  string            `json:"timestamp"`
}

// NewMQTTSink creates a sink publishing with the given QoS.
func NewMQTTSink(client Publisher, qos byte) *MQTTSink {
	return &MQTTSink{client: client, qos: qos}
}

// Handle publishes ev. It matches the Handler signature.
func (s *MQTTSink) Handle(_ context.Context, ev automation.Event) error {
	payload, err := json.Marshal(DeviceStateMessage{
		InstanceID: ev.InstanceID,
		Class:      ev.Class,
		Name:       ev.Name,
		State:      ev.State,
		Previous:   ev.Previous,
		Signal:     ev.Signal,
		PortID:     ev.PortID,
		Source:     ev.Source,
		Timestamp:  ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("marshalling device state: %w", err)
	}
	return s.client.Publish(s.topics.CoreDeviceState(ev.InstanceID), payload, s.qos, true)
}
