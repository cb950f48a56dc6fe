package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/openlend/lendsight/internal/event"
	"github.com/openlend/lendsight/internal/observability"
	"github.com/openlend/lendsight/pkg/ebus"
)

var _ sarama.ConsumerGroupHandler = Handler{}

type Handler struct {
	topic string
	eBus  *ebus.EBus
}

func (h Handler) Setup(session sarama.ConsumerGroupSession) error {
	return nil
}

func (h Handler) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim runs each message's handlers to completion before the
// next message is taken, so offsets are only marked past fully
// processed events.
func (h Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			errs := make(chan error, 1)
			go func() {
				errs <- h.handle(session.Context(), msg)
			}()
			select {
			case err := <-errs:
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return fmt.Errorf("claim handle: %w", err)
				}
				session.MarkMessage(msg, "")

			case <-session.Context().Done():
				return nil
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h Handler) topics() []string {
	return []string{h.topic}
}

func (h Handler) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	env := event.Envelope{}
	if err := json.Unmarshal(message.Value, &env); err != nil {
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	ev, err := event.Decode(env)
	if err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	observability.EventsProcessed.WithLabelValues(env.Kind).Inc()
	if err := h.eBus.Emit(ctx, ev); err != nil {
		observability.EventFailures.WithLabelValues(env.Kind).Inc()
		return fmt.Errorf("handle %s: %w", env.Kind, err)
	}
	return nil
}
