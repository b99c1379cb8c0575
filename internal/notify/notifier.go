package notify

import (
	"context"
	"encoding/json"
	"time"

	"maintenance-service/internal/logging"
)

// Sink delivers one serialized event. Delivery is fire-and-forget; a failed
// sink is logged and never fails the publishing cycle.
type Sink interface {
	Deliver(ctx context.Context, event string, payload []byte) error
	Name() string
}

// Notifier fans events out to all configured sinks.
type Notifier struct {
	sinks  []Sink
	logger *logging.Logger
}

func New(logger *logging.Logger, sinks ...Sink) *Notifier {
	return &Notifier{sinks: sinks, logger: logger}
}

// Publish serializes data and delivers it to every sink. Errors are logged
// per sink; Publish itself never fails.
func (n *Notifier) Publish(ctx context.Context, event string, data interface{}) {
	payload, err := json.Marshal(envelope{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
	if err != nil {
		n.logger.Errorf("Failed to marshal %s event: %v", event, err)
		return
	}

	for _, sink := range n.sinks {
		if err := sink.Deliver(ctx, event, payload); err != nil {
			n.logger.Errorf("Sink %s failed to deliver %s: %v", sink.Name(), event, err)
		}
	}
}

type envelope struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}
