package mqtt

import "fmt"

// Topic prefixes. Bridge topics use the flat scheme
// graylogic/{category}/{protocol}/{address}.
const (
	TopicPrefix       = "graylogic"
	TopicPrefixCore   = "graylogic/core"
	TopicPrefixSystem = "graylogic/system"
)

// Topics builds the MQTT topics this service uses.
//
//	topics := mqtt.Topics{}
//	topics.BridgeCommand("knx", "1/0/1") // "graylogic/command/knx/1/0/1"
type Topics struct{}

// BridgeState returns the topic a bridge reports device state on.
func (Topics) BridgeState(protocol, address string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, protocol, address)
}

// BridgeCommand returns the topic a bridge accepts commands on.
func (Topics) BridgeCommand(protocol, address string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, protocol, address)
}

// CoreDeviceState returns the retained state topic of a device instance.
func (Topics) CoreDeviceState(instanceID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, instanceID)
}

// AllCoreDeviceStates matches every device instance state topic.
func (Topics) AllCoreDeviceStates() string {
	return TopicPrefixCore + "/device/+/state"
}

// SystemStatus returns the service online/offline topic.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
