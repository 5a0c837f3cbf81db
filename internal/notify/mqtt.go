package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"pantemp/internal/logger"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttClientID       = "pantemp"
)

// MQTTNotifier publishes alerts to a broker topic so external listeners
// (a kitchen display, an automation hub) can react to them.
type MQTTNotifier struct {
	client paho.Client
	topic  string
	log    *logger.Logger
}

// NewMQTTNotifier connects to the broker. The caller should treat a nil
// return with error as "run without MQTT" rather than fatal.
func NewMQTTNotifier(broker, topic string, log *logger.Logger) (*MQTTNotifier, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(mqttClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}

	return &MQTTNotifier{client: client, topic: topic, log: log}, nil
}

// Notify publishes the alert as JSON, QoS 0, not retained. Failures are
// logged and swallowed.
func (n *MQTTNotifier) Notify(_ context.Context, a Alert) {
	payload, err := json.Marshal(a)
	if err != nil {
		n.log.Errorw("mqtt alert marshal failed", "err", err)
		return
	}
	token := n.client.Publish(n.topic, 0, false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		n.log.Warnw("mqtt publish timeout", "topic", n.topic)
		return
	}
	if err := token.Error(); err != nil {
		n.log.Warnw("mqtt publish failed", "topic", n.topic, "err", err)
	}
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(1000) // milliseconds
}
