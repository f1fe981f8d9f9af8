package mqtt

// Topic prefixes for licensegate MQTT traffic.
const (
	// TopicPrefixEvents is the base for event topics.
	TopicPrefixEvents = "licensegate/events"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "licensegate/system"
)

// Topics provides builders for licensegate MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// RegistrationEvents returns the topic for registration change events.
//
// Topic: licensegate/events/registrations
func (Topics) RegistrationEvents() string {
	return TopicPrefixEvents + "/registrations"
}

// SystemStatus returns the retained online/offline status topic.
//
// Topic: licensegate/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
