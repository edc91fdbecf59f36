package mqtt

import "fmt"

// TopicPrefixSystem is the base for the relay's own system topics.
const TopicPrefixSystem = "graydispatch/system"

// Topics provides builders for Gray Dispatch MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// SystemStatus returns the relay status topic, used for the online/offline
// status messages and the LWT.
//
// Example: graydispatch/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
