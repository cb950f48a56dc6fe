// Package repository holds the Kafka-backed outbound adapters.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/openlend/lendsight/internal/event"
)

// Events publishes chain event envelopes onto the events topic, keyed
// by market address so one market's events stay in one partition.
type Events struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEvents(producer sarama.SyncProducer, topic string) *Events {
	return &Events{
		producer: producer,
		topic:    topic,
	}
}

func (e *Events) Publish(ctx context.Context, ev any) error {
	env, err := event.Wrap(ev)
	if err != nil {
		return fmt.Errorf("wrap event: %w", err)
	}
	js, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: e.topic,
		Value: sarama.ByteEncoder(js),
	}
	if key := event.Key(ev); key != "" {
		msg.Key = sarama.StringEncoder(key)
	}

	if _, _, err := e.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send envelope: %w", err)
	}
	return nil
}
