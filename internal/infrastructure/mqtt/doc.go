// Package mqtt publishes catalog write events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - The catalog.EventPublisher adapter
//
// # Topics
//
// Every topic lives under the configured prefix (default "emotionalsongs"):
//
//	<prefix>/events/<kind>    one JSON catalog.Event per write, not retained
//	<prefix>/system/status    retained online/offline status and LWT
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) for brokers outside the host
//   - Event payloads never carry password hashes or e-mail addresses
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := catalog.NewStore(db, db.Dialect(),
//	    catalog.WithPublisher(mqtt.NewEventPublisher(client, byte(cfg.MQTT.QoS))))
package mqtt
