package mqtt

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/config"
)

// Logger is the logging surface the client needs. *logging.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Client is a publish-only broker connection for catalog events.
// It is safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics

	connected atomic.Bool
	logger    atomic.Pointer[Logger]
}

// Connect dials the broker and waits for the first connection.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS, keep-alive)
//  2. Registers a retained offline status as Last Will and Testament
//  3. Enables paho auto-reconnect between reconnect.initial_delay and max_delay
//  4. Waits up to defaultConnectTimeout for the broker to accept
//  5. Publishes a retained online status on every (re)connect
//
// Parameters:
//   - cfg: the mqtt section of the configuration
//
// Returns:
//   - *Client: connected client, ready for Publish
//   - error: ErrConnectionFailed (wrapped, with the broker URL) on timeout or refusal
//
// Callers that treat MQTT as optional log the error and carry on without
// catalog events.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{cfg: cfg, topics: NewTopics(cfg.TopicPrefix)}

	// Build options
	opts := buildClientOptions(cfg)
	configureLWT(opts, c.topics, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })

	// Dial
	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		// ConnectRetry keeps dialling otherwise.
		c.client.Disconnect(0)
		return nil, fmt.Errorf("%w: %s: no answer within %v", ErrConnectionFailed, brokerURL(cfg.Broker), defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, brokerURL(cfg.Broker), err)
	}

	// onConnect runs on a paho goroutine and may not have fired yet.
	c.connected.Store(true)
	return c, nil
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

func (c *Client) onConnect() {
	c.connected.Store(true)
	c.client.Publish(c.topics.Status(), 1, true, onlineStatus(c.cfg.Broker.ClientID, time.Now()))
	if l := c.log(); l != nil {
		l.Info("mqtt connected", "broker", brokerURL(c.cfg.Broker), "client_id", c.cfg.Broker.ClientID)
	}
}

func (c *Client) onConnectionLost(err error) {
	c.connected.Store(false)
	if l := c.log(); l != nil {
		l.Warn("mqtt connection lost, catalog events dropped until reconnect", "error", err)
	}
}

// Close replaces the retained status with a graceful offline message and
// disconnects.
//
// The LWT only fires on an unclean drop, so a normal shutdown publishes its
// own offline status first. Close waits up to defaultPublishTimeout for that
// message and then gives paho disconnectQuiesceMS to flush in-flight work.
// It is safe on a client that never connected and always returns nil.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.client.Publish(c.topics.Status(), 1, true,
			offlineStatus(c.cfg.Broker.ClientID, reasonShutdown, time.Now())).
			WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(disconnectQuiesceMS)
	c.connected.Store(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker link is down.
//
// It does not round-trip to the broker: paho's keep-alive already detects a
// dead link and flips the connection state.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known connection state. A nil client is
// never connected.
func (c *Client) IsConnected() bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.connected.Load() && c.client.IsConnected()
}

// SetLogger sets the logger for connection transitions.
func (c *Client) SetLogger(l Logger) {
	c.logger.Store(&l)
}

func (c *Client) log() Logger {
	if p := c.logger.Load(); p != nil {
		return *p
	}
	return nil
}
