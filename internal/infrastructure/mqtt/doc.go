// Package mqtt connects the on/off device service to the MQTT broker.
//
// The broker is the bus between this service and its surroundings:
//
//	on/off service ──▶ graylogic/command/{protocol}/{address}   relay commands to bridges
//	on/off service ◀── graylogic/state/{protocol}/{address}     relay read-back from bridges
//	on/off service ──▶ graylogic/core/device/{id}/state         retained unit state
//	on/off service ──▶ graylogic/system/status                  online/offline (LWT)
//
// The client wraps paho.mqtt.golang with auto-reconnect, subscription
// restoration after reconnect, panic-safe handlers, and a Last Will so other
// services notice an unexpected disconnect.
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) outside a trusted local network
//   - Credentials come from GRAYLOGIC_MQTT_USERNAME / GRAYLOGIC_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.BridgeState("knx", "1/0/1"), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt
