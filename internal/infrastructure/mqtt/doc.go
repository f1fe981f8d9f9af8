// Package mqtt provides an optional MQTT publisher for licensegate events.
//
// When enabled in configuration, every registration change event broadcast to
// WebSocket subscribers is also published to an MQTT broker. This lets
// external integrations (provisioning pipelines, monitoring, dashboards)
// react to approvals without polling the HTTP API.
//
// # Features
//
//   - Publish-only client (licensegate never subscribes)
//   - Automatic reconnection with backoff, handled by the paho library
//   - Last Will and Testament for offline detection
//   - Retained status topic so new subscribers see the current state
//
// # Topics
//
//	licensegate/events/registrations   registration change events
//	licensegate/system/status          online/offline status (retained)
//
// # Security Considerations
//
//   - TLS is recommended for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(mqtt.Topics{}.RegistrationEvents(), payload, 1, false)
package mqtt
