package influxdb

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
)

// Measurement names.
const (
	MeasurementState = "onoff_state"
	MeasurementBuild = "unit_build"
)

// WriteStateChange records one unit state change.
//
// Tags: instance_id, class, port_id, source. Fields: state, previous and
// signal (0/1 so the series can be graphed as a duty cycle).
//
// Example:
//
//	bus.Subscribe("influxdb", influx.Handle)
func (c *Client) WriteStateChange(ev automation.Event) {
	if !c.IsConnected() {
		return
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	signal := 0
	if ev.Signal {
		signal = 1
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementState,
		map[string]string{
			"instance_id": ev.InstanceID,
			"class":       ev.Class,
			"port_id":     ev.PortID,
			"source":      string(ev.Source),
		},
		map[string]interface{}{
			"state":    ev.State,
			"previous": ev.Previous,
			"signal":   signal,
		},
		ts,
	))
}

// WriteBuildOutcome records an automation unit build attempt.
func (c *Client) WriteBuildOutcome(class, outcome string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementBuild,
		map[string]string{"class": class, "outcome": outcome},
		map[string]interface{}{"duration_ms": float64(duration) / float64(time.Millisecond)},
		time.Now(),
	))
}

// Handle adapts WriteStateChange to an event bus handler. It never fails;
// write errors surface through SetOnError.
func (c *Client) Handle(_ context.Context, ev automation.Event) error {
	c.WriteStateChange(ev)
	return nil
}
