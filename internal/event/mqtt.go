package event

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/HerbHall/lankaportal/pkg/plugin"
)

const defaultAckTimeout = 5 * time.Second

// Publisher is the part of an MQTT client the bridge needs. mqtt.Client
// satisfies it.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// BridgeConfig configures an MQTT bridge.
type BridgeConfig struct {
	// Prefix is prepended to every MQTT topic, e.g. "lankaportal".
	Prefix string
	QoS    byte
	// Topics limits forwarding to these bus topics. Empty forwards all.
	Topics     []string
	AckTimeout time.Duration
}

// Bridge forwards bus events to an MQTT broker as JSON. A bus topic such
// as "booking.checkout.changed" is published to
// "<prefix>/booking/checkout/changed".
type Bridge struct {
	client Publisher
	cfg    BridgeConfig
	logger *zap.Logger
}

// NewBridge creates a bridge over client.
func NewBridge(client Publisher, cfg BridgeConfig, logger *zap.Logger) *Bridge {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Bridge{client: client, cfg: cfg, logger: logger}
}

// Attach subscribes the bridge to every topic of bus and returns the
// unsubscribe func.
func (b *Bridge) Attach(bus *Bus) func() {
	return bus.SubscribeAll(b.Forward)
}

// Forward publishes one event. The broker acknowledgement is awaited off
// the publishing goroutine so slow brokers never stall the bus.
func (b *Bridge) Forward(_ context.Context, ev plugin.Event) {
	if len(b.cfg.Topics) > 0 && !slices.Contains(b.cfg.Topics, ev.Topic) {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Warn("mqtt bridge: encode event", zap.String("topic", ev.Topic), zap.Error(err))
		return
	}
	topic := b.Topic(ev.Topic)
	tok := b.client.Publish(topic, b.cfg.QoS, false, payload)
	go func() {
		if !tok.WaitTimeout(b.cfg.AckTimeout) {
			b.logger.Warn("mqtt bridge: publish timed out", zap.String("topic", topic))
			return
		}
		if err := tok.Error(); err != nil {
			b.logger.Warn("mqtt bridge: publish failed", zap.String("topic", topic), zap.Error(err))
		}
	}()
}

// Topic maps a bus topic to its MQTT topic.
func (b *Bridge) Topic(busTopic string) string {
	t := strings.ReplaceAll(busTopic, ".", "/")
	if b.cfg.Prefix == "" {
		return t
	}
	return b.cfg.Prefix + "/" + t
}

// DialMQTT connects to broker and waits up to timeout for the session.
func DialMQTT(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect %s: timed out", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return c, nil
}
