// Package events carries store events over MQTT.
package events

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/domain"
)

// Connect dials the broker and waits for the connection.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return client, nil
}

// Publisher forwards store events to one topic. Its Handle method is meant to be
// registered with Store.Subscribe.
type Publisher struct {
	client mqtt.Client
	topic  string
	log    zerolog.Logger
}

func NewPublisher(client mqtt.Client, topic string, logger zerolog.Logger) *Publisher {
	return &Publisher{client: client, topic: topic, log: logger}
}

// Handle publishes ev with QoS 0 and returns without waiting for the broker.
// Failures are logged once the token completes and never reach the store.
func (p *Publisher) Handle(ev domain.Event) {
	payload, err := Encode(ev)
	if err != nil {
		p.log.Error().Err(err).Str("kind", string(ev.Kind)).Msg("encode event")
		return
	}
	token := p.client.Publish(p.topic, 0, false, payload)
	go p.report(token, ev.Kind)
}

func (p *Publisher) report(token mqtt.Token, kind domain.EventKind) {
	<-token.Done()
	if err := token.Error(); err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Str("kind", string(kind)).Msg("event publish failed")
	}
}

func Encode(ev domain.Event) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode parses a payload and rejects events without a kind.
func Decode(payload []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return domain.Event{}, fmt.Errorf("decode event: %w", err)
	}
	if ev.Kind == "" {
		return domain.Event{}, fmt.Errorf("decode event: missing kind")
	}
	return ev, nil
}
