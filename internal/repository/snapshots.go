package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/openlend/lendsight/internal/event"
)

// Snapshots forwards financials snapshots to a downstream topic. It
// subscribes to the bus next to the web server, so every snapshot
// write fans out to both.
type Snapshots struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSnapshots(producer sarama.SyncProducer, topic string) *Snapshots {
	return &Snapshots{
		producer: producer,
		topic:    topic,
	}
}

func (s *Snapshots) HandleFinancials(ctx context.Context, ev event.FinancialsUpdated) error {
	js, err := json.Marshal(ev.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(ev.Snapshot.ID),
		Value: sarama.ByteEncoder(js),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}
	return nil
}
